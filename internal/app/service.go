// Package service orchestrates the batch operations over a workbook: tournament
// scoring, classification, team ranking, archiving, export and training-health
// detection. It also serves the read model behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ironsys/internal/adapters/notify"
	"github.com/okian/ironsys/internal/adapters/repository"
	"github.com/okian/ironsys/internal/adapters/table"
	"github.com/okian/ironsys/internal/config"
	"github.com/okian/ironsys/internal/domain/detect"
	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/scoring"
	"github.com/okian/ironsys/internal/domain/teams"
	"github.com/okian/ironsys/internal/domain/types"
	"github.com/okian/ironsys/pkg/logger"
	"github.com/okian/ironsys/pkg/metrics"
)

// Workbook is the tabular source and sink.
type Workbook interface {
	Exists(ctx context.Context, name string) bool
	Read(ctx context.Context, name string) (*table.Table, error)
	Write(ctx context.Context, t *table.Table) error
	List(ctx context.Context) ([]string, error)
}

// Exporter writes processed copies of tables.
type Exporter interface {
	Export(ctx context.Context, name string, headers []string, rows [][]string) (string, error)
}

// Dispatcher delivers alert notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []model.Alert) (notify.Result, error)
}

// Service runs the batch operations. Each operation reads a full snapshot,
// computes in memory and writes once.
type Service struct {
	mu sync.RWMutex

	// Core components
	workbook    Workbook
	exporter    Exporter
	archive     repository.Archive
	leaderboard *repository.Leaderboard
	dispatcher  Dispatcher
	scorer      *scoring.Scorer
	detector    *detect.Detector

	// Configuration
	tables         config.Tables
	safeBelow      float64
	highRiskAbove  float64
	notifyOnDetect bool
	dedupeAlerts   bool
	dedupeSize     int
	now            func() time.Time
	newID          func() string

	// Read model
	standings []model.TeamStanding
	dashboard types.Dashboard

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkbook sets the tabular source and sink.
func WithWorkbook(w Workbook) Option {
	return func(s *Service) {
		s.workbook = w
	}
}

// WithExporter sets the export sink.
func WithExporter(e Exporter) Option {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithArchive sets the history archive and alert log.
func WithArchive(a repository.Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithLeaderboard shares a leaderboard with other readers.
func WithLeaderboard(l *repository.Leaderboard) Option {
	return func(s *Service) {
		if l != nil {
			s.leaderboard = l
		}
	}
}

// WithDispatcher enables alert notifications after Detect.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
		s.notifyOnDetect = d != nil
	}
}

// WithTables sets the names of the reserved workbook tables.
func WithTables(t config.Tables) Option {
	return func(s *Service) {
		s.tables = t
	}
}

// WithScorer sets the scorer, e.g. one with custom category bounds.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithTeamStrategyBounds sets the failure-rate bounds for team strategies.
func WithTeamStrategyBounds(safeBelow, highRiskAbove float64) Option {
	return func(s *Service) {
		s.safeBelow = safeBelow
		s.highRiskAbove = highRiskAbove
	}
}

// WithDetectConfig sets the detector thresholds.
func WithDetectConfig(cfg detect.Config) Option {
	return func(s *Service) {
		s.detector = detect.NewDetector(detect.WithConfig(cfg), detect.WithClock(s.clock))
	}
}

// WithAlertDedupe suppresses alerts already logged in the same ISO week.
func WithAlertDedupe(size int) Option {
	return func(s *Service) {
		s.dedupeAlerts = true
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		leaderboard:   repository.NewLeaderboard(),
		scorer:        scoring.NewScorer(),
		tables:        config.New().Tables,
		safeBelow:     teams.DefaultSafeBelow,
		highRiskAbove: teams.DefaultHighRiskAbove,
		dedupeSize:    50000,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	s.detector = detect.NewDetector(detect.WithClock(s.clock))

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

func (s *Service) clock() time.Time { return s.now() }

// Close releases the archive.
func (s *Service) Close() error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Close()
}

// IsReserved reports whether name is one of the fixed-role tables.
func (s *Service) IsReserved(name string) bool {
	return slices.Contains(s.tables.Reserved(), name)
}

func (s *Service) checkTable(name string) error {
	if s.workbook == nil {
		return fmt.Errorf("%w: workbook", ErrNotConfigured)
	}
	if s.IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedTable, name)
	}
	return nil
}

// Summary is the single report of one batch run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Operation  string        `json:"operation"`
	Table      string        `json:"table,omitempty"`
	Rows       int           `json:"rows"`
	Processed  int           `json:"processed"`
	Skipped    int           `json:"skipped"`
	Written    int           `json:"written"`
	Suppressed int           `json:"suppressed,omitempty"`
	Notified   int           `json:"notified,omitempty"`
	Failed     int           `json:"failed,omitempty"`
	Duration   time.Duration `json:"duration"`
	Paths      []string      `json:"paths,omitempty"`
}

// String renders the summary message shown to the operator.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", s.Operation)
	if s.Table != "" {
		fmt.Fprintf(&b, " %q", s.Table)
	}
	fmt.Fprintf(&b, ": %d rows, %d processed, %d skipped, %d written", s.Rows, s.Processed, s.Skipped, s.Written)
	if s.Suppressed > 0 {
		fmt.Fprintf(&b, ", %d suppressed", s.Suppressed)
	}
	if s.Notified > 0 || s.Failed > 0 {
		fmt.Fprintf(&b, ", %d notified, %d failed", s.Notified, s.Failed)
	}
	fmt.Fprintf(&b, " (run %s, %s)", s.RunID, s.Duration.Round(time.Millisecond))
	return b.String()
}

// Operation names used in logs and metrics.
const (
	opScore    = "score"
	opProcess  = "process"
	opClassify = "classify"
	opTeams    = "teams"
	opArchive  = "archive"
	opExport   = "export"
	opDetect   = "detect"
	opSetup    = "setup"
	opDash     = "dashboard"
	opRefresh  = "refresh"
)

type run struct {
	s       *Service
	ctx     context.Context
	started time.Time
	summary Summary
}

func (s *Service) begin(ctx context.Context, op, name string) *run {
	r := &run{
		s:       s,
		ctx:     ctx,
		started: time.Now(),
		summary: Summary{RunID: s.newID(), Operation: op, Table: name},
	}
	s.logger.Info(ctx, "run started",
		logger.String("run_id", r.summary.RunID),
		logger.String("operation", op),
		logger.String("table", name),
	)
	return r
}

// finish records the run outcome and returns the summary with err.
func (r *run) finish(err error) (Summary, error) {
	r.summary.Duration = time.Since(r.started)
	metrics.RecordRun(r.summary.Operation, r.summary.Duration)
	fields := []logger.Field{
		logger.String("run_id", r.summary.RunID),
		logger.String("operation", r.summary.Operation),
		logger.String("table", r.summary.Table),
		logger.Int("rows", r.summary.Rows),
		logger.Int("processed", r.summary.Processed),
		logger.Int("skipped", r.summary.Skipped),
		logger.Int("written", r.summary.Written),
		logger.Duration("duration", r.summary.Duration),
	}
	if err != nil {
		metrics.RecordRunError(r.summary.Operation, errorType(err))
		r.s.logger.Error(r.ctx, "run failed", append(fields, logger.Error(err))...)
		return r.summary, err
	}
	if r.summary.Skipped > 0 {
		metrics.RecordRowsSkipped(r.summary.Operation, "data_quality", r.summary.Skipped)
	}
	r.s.logger.Info(r.ctx, "run finished", fields...)
	return r.summary, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, table.ErrMissingColumns):
		return "schema"
	case errors.Is(err, table.ErrTableNotFound):
		return "table_not_found"
	case errors.Is(err, ErrReservedTable):
		return "reserved_table"
	case errors.Is(err, ErrNoValidRows):
		return "no_valid_rows"
	case errors.Is(err, notify.ErrDelivery):
		return "delivery"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
