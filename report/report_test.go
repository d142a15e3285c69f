package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/overlap-go/eval"
	"github.com/braintrustdata/overlap-go/score"
)

func sampleResult() *eval.Result {
	return eval.NewResult("run-1",
		[]eval.Record{
			{Row: 1, Reference: "the cat sat", Candidate: "the cat sat", Scores: score.Set{ROUGE1: 1, ROUGE2: 1, ROUGEL: 1, BLEU: 0.5}},
			{Row: 3, Reference: "a, b", Candidate: "a\nb", Scores: score.Set{ROUGE1: 0.5, ROUGE2: 0, ROUGEL: 0.5, BLEU: 0}},
		},
		[]eval.Skipped{{Row: 2, Err: errors.New("row 2: malformed row: candidate field is float64, not text")}},
		time.Second,
	)
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleResult()))

	want := "## Mean Scores\n" +
		"- ROUGE-1 Score: 0.7500\n" +
		"- ROUGE-2 Score: 0.5000\n" +
		"- ROUGE-L Score: 0.7500\n" +
		"- BLEU Score: 0.2500\n" +
		"\n## Skipped Rows (1)\n" +
		"- row 2: malformed row: candidate field is float64, not text\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummary_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, eval.NewResult("empty", nil, nil, 0)))
	assert.Equal(t, "## Mean Scores\nNo rows were scored.\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, CSVHeader, lines[0])
	assert.Equal(t, []string{"1", "the cat sat", "the cat sat", "1", "1", "1", "0.5"}, lines[1])
	assert.Equal(t, []string{"3", "a, b", "a\nb", "0.5", "0", "0.5", "0"}, lines[2])
}

func TestWritePDF(t *testing.T) {
	t.Parallel()

	for name, res := range map[string]*eval.Result{
		"scored": sampleResult(),
		"empty":  eval.NewResult("empty", nil, nil, 0),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, WritePDF(&buf, res))
			assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
			assert.Greater(t, buf.Len(), 500)
		})
	}
}

func TestPanelY(t *testing.T) {
	t.Parallel()

	p := panel{x0: 0, y0: 0}
	assert.Equal(t, p.bottom(), p.y(0))
	assert.Equal(t, p.bottom()-plotHeight, p.y(1))
	assert.Equal(t, p.y(1), p.y(1.5))
	assert.Equal(t, p.y(0), p.y(-0.2))
}
