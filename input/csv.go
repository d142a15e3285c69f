// Package input reads evaluation corpora into rows for the eval package.
//
// Columns are positional: index 1 holds the reference text and index 2 the
// candidate text. Header names are never consulted.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/braintrustdata/overlap-go/eval"
)

var errRead = errors.New("input read error")

// CSVOptions controls how CSV input is parsed.
type CSVOptions struct {
	// NoHeader treats the first record as data. By default it is a header
	// and is dropped.
	NoHeader bool

	// Comma is the field delimiter.
	// Optional. Defaults to ','.
	Comma rune
}

// CSVRows streams rows from a CSV source. Data rows are numbered from 1,
// not counting the header.
type CSVRows struct {
	r      *csv.Reader
	header bool
	index  int
	done   bool
}

// NewCSVRows returns a lazy eval.Rows over r.
func NewCSVRows(r io.Reader, opts CSVOptions) *CSVRows {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	return &CSVRows{r: cr, header: !opts.NoHeader}
}

// Next implements eval.Rows. After a parse error the source is abandoned
// and further calls return io.EOF.
func (c *CSVRows) Next() (eval.Row, error) {
	if c.done {
		return eval.Row{}, io.EOF
	}
	if c.header {
		c.header = false
		if _, err := c.r.Read(); err != nil {
			return c.fail(err)
		}
	}

	rec, err := c.r.Read()
	if err != nil {
		return c.fail(err)
	}
	c.index++
	fields := make([]any, len(rec))
	for i, f := range rec {
		fields[i] = f
	}
	return eval.Row{Index: c.index, Fields: fields}, nil
}

func (c *CSVRows) fail(err error) (eval.Row, error) {
	c.done = true
	if err == io.EOF {
		return eval.Row{}, io.EOF
	}
	return eval.Row{}, fmt.Errorf("%w: csv: %w", errRead, err)
}

// ReadCSV reads every row from r. It fails on the first parse error.
func ReadCSV(r io.Reader, opts CSVOptions) ([]eval.Row, error) {
	return drain(NewCSVRows(r, opts))
}

func drain(src eval.Rows) ([]eval.Row, error) {
	var rows []eval.Row
	for {
		row, err := src.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
