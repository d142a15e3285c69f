package eval

import (
	"fmt"
	"io"
)

// Column positions of the two scored fields. Columns are positional and
// never looked up by header name; column 0 is typically a question or id.
const (
	ReferenceColumn = 1
	CandidateColumn = 2
)

// Row is one input row as supplied by the input source.
type Row struct {
	// Index identifies the row in the source corpus. It is carried through to
	// the Record unchanged.
	Index int

	// Fields holds the row's cells in column order.
	Fields []any
}

// Pair extracts the reference and candidate texts from the row.
// It returns a *MalformedRowError when the row is too short or either field is
// not text.
func (r Row) Pair() (reference, candidate string, err error) {
	if len(r.Fields) <= CandidateColumn {
		return "", "", &MalformedRowError{
			Row:    r.Index,
			Reason: fmt.Sprintf("want at least %d fields, got %d", CandidateColumn+1, len(r.Fields)),
		}
	}
	reference, ok := r.Fields[ReferenceColumn].(string)
	if !ok {
		return "", "", &MalformedRowError{
			Row:    r.Index,
			Reason: fmt.Sprintf("reference field is %T, not text", r.Fields[ReferenceColumn]),
		}
	}
	candidate, ok = r.Fields[CandidateColumn].(string)
	if !ok {
		return "", "", &MalformedRowError{
			Row:    r.Index,
			Reason: fmt.Sprintf("candidate field is %T, not text", r.Fields[CandidateColumn]),
		}
	}
	return reference, candidate, nil
}

// Rows is an iterator interface for input rows.
// This allows lazy loading of rows without requiring them all in memory.
// Implementations must return io.EOF when iteration is complete.
type Rows interface {
	// Next returns the next row, or io.EOF if there are no more rows.
	Next() (Row, error)
}

// NewRows creates a Rows iterator from a slice of rows.
func NewRows(rows []Row) Rows {
	return &sliceRows{rows: rows}
}

// NewStringRows creates a Rows iterator from string records, numbering them
// from 1 in the order given.
func NewStringRows(records [][]string) Rows {
	rows := make([]Row, len(records))
	for i, rec := range records {
		fields := make([]any, len(rec))
		for j, f := range rec {
			fields[j] = f
		}
		rows[i] = Row{Index: i + 1, Fields: fields}
	}
	return NewRows(rows)
}

// sliceRows implements the Rows interface for a slice of rows.
type sliceRows struct {
	rows  []Row
	index int
}

// Next returns the next row, or io.EOF if there are no more rows.
func (s *sliceRows) Next() (Row, error) {
	if s.index >= len(s.rows) {
		return Row{}, io.EOF
	}
	r := s.rows[s.index]
	s.index++
	return r, nil
}
