package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/braintrustdata/overlap-go/config"
	"github.com/braintrustdata/overlap-go/report"
	"github.com/braintrustdata/overlap-go/score"
	"github.com/braintrustdata/overlap-go/store"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List archived runs, or show one run's summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRuns,
	}
	cmd.Flags().String("db", "", "SQLite database holding archived runs (default OVERLAP_DB_PATH)")
	return cmd
}

func runRuns(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = config.FromEnv().DBPath
	}
	if path == "" {
		return errors.New("no database: pass --db or set OVERLAP_DB_PATH")
	}

	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		result, err := db.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Run %s: %d rows scored, %d skipped\n\n", result.ID(), result.Summary.Count, result.Summary.Skipped)
		return report.WriteSummary(out, result)
	}

	runs, err := db.Runs(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "ID\tCREATED\tROWS\tSKIPPED")
	for _, m := range score.Metrics {
		fmt.Fprintf(tw, "\t%s", m)
	}
	fmt.Fprintln(tw)
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Records, r.Skipped)
		for _, m := range score.Metrics {
			fmt.Fprintf(tw, "\t%.4f", r.Means[m])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
