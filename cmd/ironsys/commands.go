package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the history archive and alert log, and the instructions table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := a.svc.SetupArchive(cmd.Context())
			return report(cmd, sum, err)
		},
	}
}

func newScoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "score <table>",
		Short: "Score a tournament table and write totals, progress and scores back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.svc.ProcessTournament(cmd.Context(), args[0])
			return report(cmd, sum, err)
		},
	}
}

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <table>",
		Short: "Fill the age and weight class columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.svc.ClassifyTable(cmd.Context(), args[0])
			return report(cmd, sum, err)
		},
	}
}

func newTeamsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "teams <table>",
		Short: "Rank teams by average total and classify their strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			standings, sum, err := a.svc.RankTeams(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tTEAM\tAVG TOTAL\tFAIL RATE\tSTRATEGY")
			for _, st := range standings {
				fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f%%\t%s\n", st.Rank, st.Team, st.AverageTotal, st.FailureRate*100, st.Strategy)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return report(cmd, sum, nil)
		},
	}
}

func newArchiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <table> [tournament]",
		Short: "Append one history record per scored athlete of a table",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tournament := ""
			if len(args) == 2 {
				tournament = args[1]
			}
			sum, err := a.svc.ArchiveTournament(cmd.Context(), args[0], tournament)
			return report(cmd, sum, err)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Process every table and export a CSV copy with best lifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := a.svc.ExportAll(cmd.Context())
			if err == nil {
				for _, p := range sum.Paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
			}
			return report(cmd, sum, err)
		},
	}
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Scan training logs for stagnation and fatigue and log alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := a.svc.Detect(cmd.Context())
			return report(cmd, sum, err)
		},
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard <table>",
		Short: "Print the dashboard data blocks of a table as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.svc.Dashboard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		},
	}
}
