package input

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/overlap-go/eval"
)

func TestReadCSV_SkipsHeader(t *testing.T) {
	t.Parallel()

	src := "question,reference,candidate\n" +
		"q1,the cat sat,the cat sat\n" +
		"q2,\"a, quoted\",b\n"
	rows, err := ReadCSV(strings.NewReader(src), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, eval.Row{Index: 1, Fields: []any{"q1", "the cat sat", "the cat sat"}}, rows[0])
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, "a, quoted", rows[1].Fields[1])
}

func TestReadCSV_NoHeaderAndRaggedRows(t *testing.T) {
	t.Parallel()

	src := "q1;ref;cand\nq2;only\n"
	rows, err := ReadCSV(strings.NewReader(src), CSVOptions{NoHeader: true, Comma: ';'})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1].Fields, 2)

	_, _, err = rows[1].Pair()
	assert.ErrorIs(t, err, eval.ErrMalformedRow)
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ReadCSV(strings.NewReader("question,reference,candidate\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSV_ParseError(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("h\n\"unterminated\n"), CSVOptions{})
	assert.ErrorIs(t, err, errRead)
}

func TestCSVRows_StopsAfterError(t *testing.T) {
	t.Parallel()

	rows := NewCSVRows(strings.NewReader("h\na,b,c\n\"bad\n"), CSVOptions{})
	_, err := rows.Next()
	require.NoError(t, err)
	_, err = rows.Next()
	require.Error(t, err)
	_, err = rows.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReadJSONL(t *testing.T) {
	t.Parallel()

	src := `["q1", "the cat sat", "the cat sat"]

["q2", 42, "text"]
["q3", "ref", null]
`
	rows, err := ReadJSONL(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, eval.Row{Index: 1, Fields: []any{"q1", "the cat sat", "the cat sat"}}, rows[0])
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, float64(42), rows[1].Fields[1])
	assert.Nil(t, rows[2].Fields[2])

	_, _, err = rows[1].Pair()
	var malformed *eval.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Row)
}

func TestReadJSONL_BadLine(t *testing.T) {
	t.Parallel()

	_, err := ReadJSONL(strings.NewReader("[\"a\",\"b\",\"c\"]\n{\"not\": \"array\"}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errRead)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ReadJSONL(strings.NewReader("[\"a\",\n"))
	assert.ErrorContains(t, err, "invalid json")
}

func TestJSONLRows_FeedEval(t *testing.T) {
	t.Parallel()

	src := `["q1", "the cat sat on the mat", "the cat sat on the mat"]
not json
["q3", "a b", "a b"]
`
	res, err := eval.Run(context.Background(), eval.Opts{Rows: NewJSONLRows(strings.NewReader(src)), Quiet: true})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Records[0].Row)
	assert.Equal(t, 3, res.Records[1].Row)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Row)
}
