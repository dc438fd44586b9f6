// Command gen-fixtures writes a synthetic workbook: a tournament table and
// an athlete register with its training log.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/ironsys/internal/fixtures"
	"github.com/okian/ironsys/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	cfg := fixtures.DefaultConfig()
	cmd := &cobra.Command{
		Use:          "gen-fixtures",
		Short:        "Generate a synthetic powerlifting workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := fixtures.NewGenerator(cfg).Generate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d lifters (%d bombed), %d athletes, %d sets -> %s\n",
				stats.Lifters, stats.Bombed, stats.Athletes, stats.Sets, cfg.Dir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&cfg.Dir, "dir", "d", cfg.Dir, "workbook directory")
	f.StringVar(&cfg.Tournament, "tournament", cfg.Tournament, "tournament table name")
	f.StringVar(&cfg.AthletesTable, "athletes-table", cfg.AthletesTable, "athlete register table name")
	f.StringVar(&cfg.LogsTable, "logs-table", cfg.LogsTable, "training log table name")
	f.IntVar(&cfg.Lifters, "lifters", cfg.Lifters, "lifters in the tournament table (0 skips it)")
	f.IntVar(&cfg.Teams, "teams", cfg.Teams, "distinct teams")
	f.IntVar(&cfg.Athletes, "athletes", cfg.Athletes, "athletes in the training log (0 skips it)")
	f.IntVar(&cfg.Weeks, "weeks", cfg.Weeks, "weeks of training history")
	f.Int64Var(&cfg.Seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
