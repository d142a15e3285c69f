// Package report renders evaluation results as a text summary, a scored CSV
// table, and a PDF with distribution and mean-score charts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/braintrustdata/overlap-go/eval"
	"github.com/braintrustdata/overlap-go/score"
)

// WriteSummary writes the mean scores as a small markdown document.
func WriteSummary(w io.Writer, res *eval.Result) error {
	var b strings.Builder
	b.WriteString("## Mean Scores\n")
	if res.Summary.Count == 0 {
		b.WriteString("No rows were scored.\n")
	} else {
		for _, m := range score.Metrics {
			fmt.Fprintf(&b, "- %s Score: %.4f\n", m, res.Summary.Mean(m))
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, "\n## Skipped Rows (%d)\n", len(res.Skipped))
		for _, s := range res.Skipped {
			fmt.Fprintf(&b, "- %s\n", s.Err)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"row", "reference", "candidate", "ROUGE-1", "ROUGE-2", "ROUGE-L", "BLEU"}

// WriteCSV writes one line per scored record, in input order.
func WriteCSV(w io.Writer, res *eval.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range res.Records {
		line := []string{strconv.Itoa(r.Row), r.Reference, r.Candidate}
		for _, m := range score.Metrics {
			line = append(line, strconv.FormatFloat(r.Scores.Get(m), 'f', -1, 64))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
