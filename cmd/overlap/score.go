package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	overlap "github.com/braintrustdata/overlap-go"
	"github.com/braintrustdata/overlap-go/bleu"
	"github.com/braintrustdata/overlap-go/config"
	"github.com/braintrustdata/overlap-go/eval"
	"github.com/braintrustdata/overlap-go/input"
	"github.com/braintrustdata/overlap-go/logger"
	"github.com/braintrustdata/overlap-go/report"
	ovtrace "github.com/braintrustdata/overlap-go/trace"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Score a CSV or JSON lines corpus",
		Long: "Score every row of a corpus. Column 1 holds the reference text and column 2 the\n" +
			"candidate text; column 0 is ignored. Rows that cannot be scored are skipped and listed.",
		Args: cobra.ExactArgs(1),
		RunE: runScore,
	}

	cmd.Flags().String("format", "", "Input format: csv or jsonl (default from file extension)")
	cmd.Flags().Bool("no-header", false, "Treat the first CSV line as data")
	cmd.Flags().Int("parallelism", 1, "Number of scoring workers")
	cmd.Flags().String("bleu-smoothing", "none", "BLEU smoothing: none, epsilon or add-one")
	cmd.Flags().Bool("no-rouge-stem", false, "Disable Porter stemming for ROUGE")
	cmd.Flags().String("out-csv", "", "Write scored rows to this CSV file")
	cmd.Flags().String("out-pdf", "", "Write distribution and mean charts to this PDF file")
	cmd.Flags().String("db", "", "Archive the run in this SQLite database")
	cmd.Flags().Bool("quiet", false, "Do not print the summary")

	return cmd
}

// clientOptions maps explicitly set flags onto client options so that
// unset flags leave environment configuration alone.
func clientOptions(cmd *cobra.Command, log logger.Logger) ([]overlap.Option, error) {
	flags := cmd.Flags()
	opts := []overlap.Option{
		overlap.WithLogger(log),
		// the command prints its own summary
		overlap.WithQuiet(true),
	}

	if flags.Changed("parallelism") {
		n, _ := flags.GetInt("parallelism")
		opts = append(opts, overlap.WithParallelism(n))
	}
	if flags.Changed("bleu-smoothing") {
		name, _ := flags.GetString("bleu-smoothing")
		s, err := bleu.ParseSmoothing(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, overlap.WithBLEUSmoothing(s))
	}
	if flags.Changed("no-rouge-stem") {
		off, _ := flags.GetBool("no-rouge-stem")
		opts = append(opts, overlap.WithROUGEStemming(!off))
	}
	if flags.Changed("db") {
		path, _ := flags.GetString("db")
		opts = append(opts, overlap.WithDBPath(path))
	}
	return opts, nil
}

func openRows(path, format string, noHeader bool) (eval.Rows, io.Closer, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jsonl", ".ndjson":
			format = "jsonl"
		default:
			format = "csv"
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	switch format {
	case "csv":
		return input.NewCSVRows(f, input.CSVOptions{NoHeader: noHeader}), f, nil
	case "jsonl":
		return input.NewJSONLRows(f), f, nil
	default:
		_ = f.Close()
		return nil, nil, fmt.Errorf("unknown format %q (want csv or jsonl)", format)
	}
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := logger.NewDefaultLogger()
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	noHeader, _ := flags.GetBool("no-header")
	quiet, _ := flags.GetBool("quiet")
	outCSV, _ := flags.GetString("out-csv")
	outPDF, _ := flags.GetString("out-pdf")

	opts, err := clientOptions(cmd, log)
	if err != nil {
		return err
	}

	cfg := config.FromEnv()
	tp, err := ovtrace.NewTracerProvider(ctx, ovtrace.Config{
		Console: cfg.TraceConsole,
		OTLPURL: cfg.OTLPEndpoint,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	client, err := overlap.New(tp, opts...)
	if err != nil {
		return err
	}

	rows, closer, err := openRows(args[0], format, noHeader)
	if err != nil {
		return err
	}
	defer closer.Close()

	result, runErr := client.Evaluate(ctx, rows)
	if errors.Is(runErr, eval.ErrNothingToScore) {
		fmt.Fprintf(cmd.OutOrStdout(), "nothing to score: %s has no rows\n", args[0])
		return nil
	}
	if result == nil {
		return runErr
	}

	if !quiet {
		if err := report.WriteSummary(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	}
	if outCSV != "" {
		if err := writeFile(outCSV, func(w io.Writer) error { return report.WriteCSV(w, result) }); err != nil {
			return err
		}
	}
	if outPDF != "" {
		if err := writeFile(outPDF, func(w io.Writer) error { return report.WritePDF(w, result) }); err != nil {
			return err
		}
	}
	return runErr
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
