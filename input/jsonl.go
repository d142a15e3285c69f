package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/braintrustdata/overlap-go/eval"
)

const maxLineSize = 16 << 20

// JSONLRows streams rows from JSON lines input where each non-blank line is
// a JSON array of fields. String elements stay strings; anything else keeps
// its decoded Go value and is rejected later as a malformed row.
type JSONLRows struct {
	sc    *bufio.Scanner
	line  int
	index int
	done  bool
}

// NewJSONLRows returns a lazy eval.Rows over r.
func NewJSONLRows(r io.Reader) *JSONLRows {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &JSONLRows{sc: sc}
}

// Next implements eval.Rows. A line that is not a JSON array yields an error
// for that line only; iteration continues with the next line.
func (j *JSONLRows) Next() (eval.Row, error) {
	if j.done {
		return eval.Row{}, io.EOF
	}
	for j.sc.Scan() {
		j.line++
		text := strings.TrimSpace(j.sc.Text())
		if text == "" {
			continue
		}
		j.index++

		if !gjson.Valid(text) {
			return eval.Row{}, fmt.Errorf("%w: line %d: invalid json", errRead, j.line)
		}
		parsed := gjson.Parse(text)
		if !parsed.IsArray() {
			return eval.Row{}, fmt.Errorf("%w: line %d: want a json array, got %s", errRead, j.line, parsed.Type)
		}

		elems := parsed.Array()
		fields := make([]any, len(elems))
		for i, e := range elems {
			if e.Type == gjson.String {
				fields[i] = e.Str
				continue
			}
			fields[i] = e.Value()
		}
		return eval.Row{Index: j.index, Fields: fields}, nil
	}

	j.done = true
	if err := j.sc.Err(); err != nil {
		return eval.Row{}, fmt.Errorf("%w: jsonl: %w", errRead, err)
	}
	return eval.Row{}, io.EOF
}

// ReadJSONL reads every row from r. It fails on the first bad line.
func ReadJSONL(r io.Reader) ([]eval.Row, error) {
	return drain(NewJSONLRows(r))
}
