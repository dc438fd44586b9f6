package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/okian/ironsys/internal/adapters/notify"
	"github.com/okian/ironsys/internal/adapters/repository"
	"github.com/okian/ironsys/internal/adapters/table"
	service "github.com/okian/ironsys/internal/app"
	"github.com/okian/ironsys/internal/config"
	"github.com/okian/ironsys/internal/domain/detect"
	"github.com/okian/ironsys/internal/domain/scoring"
	"github.com/okian/ironsys/pkg/logger"
)

// app carries what every subcommand needs once PersistentPreRunE ran.
type app struct {
	configPath string
	cfg        *config.Config
	svc        *service.Service
	closers    []io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "ironsys",
		Short:        "Score powerlifting meets and watch training health",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (overrides $"+config.EnvConfigFile+")")

	root.AddCommand(
		newSetupCmd(a),
		newScoreCmd(a),
		newClassifyCmd(a),
		newTeamsCmd(a),
		newArchiveCmd(a),
		newExportCmd(a),
		newDetectCmd(a),
		newDashboardCmd(a),
		newServeCmd(a),
	)
	for _, c := range root.Commands() {
		c.RunE = a.closing(c.RunE)
	}
	return root
}

func (a *app) init(ctx context.Context) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := []logger.Option{logger.WithLevel(a.cfg.LogLevel)}
	if a.cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(a.cfg.LogFile, 0, true))
	}
	if a.cfg.LogJSON {
		opts = append(opts, logger.WithJSON())
	}
	if err := logger.InitWithOptions(opts...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	a.svc, err = a.buildService()
	return err
}

func (a *app) buildService() (*service.Service, error) {
	cfg := a.cfg
	store, err := repository.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithWorkbook(table.NewWorkbook(cfg.WorkbookDir, table.WithComma(cfg.Delimiter()))),
		service.WithExporter(table.NewExporter(cfg.ExportDir)),
		service.WithArchive(store),
		service.WithTables(cfg.Tables),
		service.WithScorer(scoring.NewScorer(scoring.WithCategoryBounds(cfg.Scoring.NoobBelow, cfg.Scoring.ComradeAbove))),
		service.WithTeamStrategyBounds(cfg.Teams.SafeBelow, cfg.Teams.HighRiskAbove),
		service.WithDetectConfig(detectConfig(cfg.Detect)),
	}
	if cfg.Detect.DedupeAlerts {
		opts = append(opts, service.WithAlertDedupe(cfg.Detect.DedupeSize))
	}
	if cfg.Detect.NotifyByEmail {
		n, err := buildNotifier(cfg.Notify)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		if c, ok := n.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
		opts = append(opts, service.WithDispatcher(
			notify.NewDispatcher(n, notify.WithLogger(logger.Named("notify"))),
		))
	}
	return service.New(opts...), nil
}

func detectConfig(d config.Detect) detect.Config {
	return detect.Config{
		WeeksForTrend:          d.WeeksForTrend,
		StagnationPctThreshold: d.StagnationPctThreshold,
		RecentDays:             d.RecentDays,
		PriorDays:              d.PriorDays,
		RPEIncreaseThreshold:   d.RPEIncreaseThreshold,
		MinObservations:        d.MinObservations,
		FallbackCoachEmail:     d.CoachEmailFallback,
	}
}

// buildNotifier selects the delivery driver.
func buildNotifier(n config.Notify) (notify.Notifier, error) {
	switch strings.ToLower(n.Driver) {
	case config.DriverSMTP:
		var opts []notify.SMTPOption
		if n.SMTP.Username != "" {
			opts = append(opts, notify.WithAuth(n.SMTP.Username, n.SMTP.Password))
		}
		return notify.NewSMTPNotifier(n.SMTP.Host, n.SMTP.Port, n.SMTP.From, opts...)
	case config.DriverKafka:
		return notify.NewKafkaNotifier(n.Kafka.Brokers, n.Kafka.Topic)
	default:
		return notify.NewLogNotifier(logger.Named("notify")), nil
	}
}

// closing releases the service after run, whether or not it failed.
func (a *app) closing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() { err = multierr.Append(err, a.close()) }()
		return run(cmd, args)
	}
}

func (a *app) close() error {
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c.Close())
	}
	a.closers = nil
	if a.svc != nil {
		err = multierr.Append(err, a.svc.Close())
		a.svc = nil
	}
	return err
}

// report prints the run summary and, for non-fatal delivery failures, the
// error next to it.
func report(cmd *cobra.Command, sum service.Summary, err error) error {
	if err != nil && !errors.Is(err, notify.ErrDelivery) {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sum.String())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
	}
	return nil
}
