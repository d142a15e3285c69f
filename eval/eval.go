// Package eval scores a corpus of (reference, candidate) rows with ROUGE and
// BLEU and aggregates the results.
//
// Rows are scored by a pool of stateless workers; results are written into
// per-row slots and compacted in input order, so the returned Records always
// line up with the source corpus regardless of parallelism.
package eval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/braintrustdata/overlap-go/logger"
	"github.com/braintrustdata/overlap-go/score"
)

var (
	// ErrMalformedRow is wrapped by every *MalformedRowError.
	ErrMalformedRow = errors.New("malformed row")

	// ErrNothingToScore is returned when the input source yields no rows.
	ErrNothingToScore = errors.New("nothing to score")

	errEval        = errors.New("eval error")
	errRowIterator = errors.New("row iterator error")
)

// MalformedRowError reports a row that could not be turned into a pair.
type MalformedRowError struct {
	Row    int
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, ErrMalformedRow, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalformedRow) work.
func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedRow
}

// Scorer computes the score set for one pair. *score.Scorer implements it.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Score(reference, candidate string) score.Set
}

// Opts defines the options for running an evaluation.
type Opts struct {
	// Rows is an iterator over the input rows.
	// Required.
	Rows Rows

	// Scorer scores each pair.
	// Optional. Defaults to score.Default().
	Scorer Scorer

	// Parallelism controls the number of workers scoring rows.
	// Optional. Defaults to 1 (sequential execution).
	Parallelism int

	// Tracer creates one span per row.
	// Optional. Defaults to the global otel tracer provider.
	Tracer oteltrace.Tracer

	// Logger receives run progress and skipped-row warnings.
	// Optional. Defaults to logger.Discard().
	Logger logger.Logger

	// Quiet controls whether to suppress printing the result summary.
	// Optional. Defaults to false (summary is printed).
	Quiet bool
}

// Record is one successfully scored row.
type Record struct {
	Row       int       `json:"row"`
	Reference string    `json:"reference"`
	Candidate string    `json:"candidate"`
	Scores    score.Set `json:"scores"`
}

// Skipped is a row excluded from scoring and the reason why.
type Skipped struct {
	Row int   `json:"row"`
	Err error `json:"-"`
}

// Result contains the results of an evaluation.
type Result struct {
	id       string
	elapsed  time.Duration
	canceled bool

	// Records are the scored rows in input order.
	Records []Record

	// Skipped are the rows excluded by validation, in input order.
	Skipped []Skipped

	// Summary is derived from Records.
	Summary Summary
}

// NewResult builds a Result from already scored records, recomputing the
// summary. It is used when loading archived runs.
func NewResult(id string, records []Record, skipped []Skipped, elapsed time.Duration) *Result {
	return &Result{
		id:      id,
		elapsed: elapsed,
		Records: records,
		Skipped: skipped,
		Summary: Summarize(records, len(skipped)),
	}
}

// ID returns the run ID.
func (r *Result) ID() string {
	return r.id
}

// Elapsed returns how long the run took.
func (r *Result) Elapsed() time.Duration {
	return r.elapsed
}

// Canceled reports whether the run stopped before every row was processed.
func (r *Result) Canceled() bool {
	return r.canceled
}

// String returns a string representaton of the result for printing on the console.
//
// The format it prints will change and shouldn't be relied on for programmatic use.
func (r *Result) String() string {
	lines := []string{
		"",
		fmt.Sprintf("=== Overlap evaluation: %s ===", r.id),
		fmt.Sprintf("Rows scored: %d", r.Summary.Count),
		fmt.Sprintf("Rows skipped: %d", r.Summary.Skipped),
		fmt.Sprintf("Duration: %.1fs", r.elapsed.Seconds()),
	}
	if r.canceled {
		lines = append(lines, "Warning: run was canceled, results are partial")
	}

	if r.Summary.Count == 0 {
		lines = append(lines, "No rows were scored.")
	} else {
		lines = append(lines, "Mean scores:")
		for _, m := range score.Metrics {
			lines = append(lines, fmt.Sprintf("  %s: %.4f", m, r.Summary.Mean(m)))
		}
	}

	if len(r.Skipped) > 0 {
		lines = append(lines, "Skipped rows:")
		for _, s := range r.Skipped {
			lines = append(lines, "  "+s.Err.Error())
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// eval (private) is the execution engine for evaluations.
type eval struct {
	id         string
	rows       Rows
	scorer     Scorer
	tracer     oteltrace.Tracer
	log        logger.Logger
	goroutines int
	quiet      bool
}

// slot holds the outcome of one row. Exactly one of record and skipped is
// set once the row is processed; both stay nil for rows never processed.
type slot struct {
	record  *Record
	skipped *Skipped
}

// rowTask is the argument handed to the worker pool.
type rowTask struct {
	ctx  context.Context
	row  Row
	err  error
	slot *slot
	wg   *sync.WaitGroup
}

func newEval(opts Opts) *eval {
	scorer := opts.Scorer
	if scorer == nil {
		scorer = score.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer("overlap.eval")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	goroutines := opts.Parallelism
	if goroutines < 1 {
		goroutines = 1
	}

	return &eval{
		id:         uuid.NewString(),
		rows:       opts.Rows,
		scorer:     scorer,
		tracer:     tracer,
		log:        log,
		goroutines: goroutines,
		quiet:      opts.Quiet,
	}
}

// Run scores every row and returns the ordered records with their summary.
//
// Invalid rows are skipped and reported in Result.Skipped; they never stop the
// run. If ctx is canceled, Run returns the rows finished so far together with
// ctx.Err(). An input source with no rows at all yields ErrNothingToScore.
func Run(ctx context.Context, opts Opts) (*Result, error) {
	if opts.Rows == nil {
		return nil, fmt.Errorf("%w: Rows is required", errEval)
	}
	return newEval(opts).run(ctx)
}

func (e *eval) run(ctx context.Context) (*Result, error) {
	start := time.Now()

	tasks := e.collect()
	if len(tasks) == 0 {
		return nil, ErrNothingToScore
	}
	e.log.Debug("scoring corpus", "run", e.id, "rows", len(tasks), "parallelism", e.goroutines)

	pool, err := ants.NewPoolWithFunc(min(e.goroutines, len(tasks)), func(arg any) {
		t := arg.(*rowTask)
		defer t.wg.Done()
		e.process(t)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create worker pool: %w", errEval, err)
	}
	defer pool.Release()

	slots := make([]slot, len(tasks))
	var wg sync.WaitGroup
	for i := range tasks {
		if ctx.Err() != nil {
			break
		}
		t := &tasks[i]
		t.ctx = ctx
		t.slot = &slots[i]
		t.wg = &wg
		wg.Add(1)
		if err := pool.Invoke(t); err != nil {
			wg.Done()
			e.log.Error("failed to schedule row", "row", t.row.Index, "error", err)
			t.slot.skipped = &Skipped{Row: t.row.Index, Err: fmt.Errorf("%w: schedule row: %w", errEval, err)}
		}
	}
	wg.Wait()

	result := e.compact(ctx, slots)
	result.elapsed = time.Since(start)

	e.log.Info("corpus scored",
		"run", e.id,
		"records", result.Summary.Count,
		"skipped", result.Summary.Skipped,
		"elapsed", result.elapsed)

	if !e.quiet {
		fmt.Println(result.String())
	}

	if result.canceled {
		return result, ctx.Err()
	}
	return result, nil
}

// collect drains the row iterator. Iterator errors become skipped rows,
// positioned where they occurred and numbered one past the previous row's
// index. Sources are expected to number rows in increasing order.
func (e *eval) collect() []rowTask {
	var tasks []rowTask
	last := 0
	for {
		row, err := e.rows.Next()
		if err == io.EOF {
			return tasks
		}
		if err != nil {
			row = Row{Index: last + 1}
			err = fmt.Errorf("%w: %w", errRowIterator, err)
		}
		last = row.Index
		tasks = append(tasks, rowTask{row: row, err: err})
	}
}

// process scores one row inside its own span. Rows reached after
// cancellation are left unprocessed.
func (e *eval) process(t *rowTask) {
	if t.ctx.Err() != nil {
		return
	}

	_, span := e.tracer.Start(t.ctx, "score", oteltrace.WithAttributes(
		attribute.String("overlap.run_id", e.id),
		attribute.Int("overlap.row", t.row.Index),
	))
	defer span.End()

	// a panicking scorer costs only its own row
	defer func() {
		if r := recover(); r != nil {
			t.slot.record = nil
			e.skip(t, span, fmt.Errorf("%w: panic: %v", errEval, r))
		}
	}()

	if t.err != nil {
		e.skip(t, span, t.err)
		return
	}

	reference, candidate, err := t.row.Pair()
	if err != nil {
		e.skip(t, span, err)
		return
	}

	scores := e.scorer.Score(reference, candidate)
	t.slot.record = &Record{
		Row:       t.row.Index,
		Reference: reference,
		Candidate: candidate,
		Scores:    scores,
	}

	if err := setJSONAttrs(span, map[string]any{
		"overlap.scores": scores.Map(),
	}); err != nil {
		e.log.Debug("failed to encode span attributes", "row", t.row.Index, "error", err)
	}
	span.SetAttributes(
		attribute.String("overlap.reference", reference),
		attribute.String("overlap.candidate", candidate),
	)
	e.log.Debug("scored row", "row", t.row.Index)
}

func (e *eval) skip(t *rowTask, span oteltrace.Span, err error) {
	recordSpanError(span, err)
	t.slot.skipped = &Skipped{Row: t.row.Index, Err: err}
	e.log.Warn("skipping row", "row", t.row.Index, "error", err)
}

// compact gathers processed slots in input order. Slots are only left empty
// by cancellation.
func (e *eval) compact(ctx context.Context, slots []slot) *Result {
	var records []Record
	var skipped []Skipped
	unprocessed := 0
	for _, s := range slots {
		switch {
		case s.record != nil:
			records = append(records, *s.record)
		case s.skipped != nil:
			skipped = append(skipped, *s.skipped)
		default:
			unprocessed++
		}
	}
	return &Result{
		id:       e.id,
		canceled: unprocessed > 0 && ctx.Err() != nil,
		Records:  records,
		Skipped:  skipped,
		Summary:  Summarize(records, len(skipped)),
	}
}

func setJSONAttrs(span oteltrace.Span, attrs map[string]any) error {
	for key, value := range attrs {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.String(key, string(b)))
	}
	return nil
}

func recordSpanError(span oteltrace.Span, err error) {
	// otel would report *fmt.wrapErrors as the type, so name the known kinds
	var errType string
	switch {
	case errors.Is(err, ErrMalformedRow):
		errType = "ErrMalformedRow"
	case errors.Is(err, errRowIterator):
		errType = "ErrRowIterator"
	case errors.Is(err, errEval):
		errType = "ErrEval"
	default:
		errType = fmt.Sprintf("%T", err)
	}

	span.AddEvent("exception", oteltrace.WithAttributes(
		attribute.String("exception.type", errType),
		attribute.String("exception.message", err.Error()),
	))
	span.SetStatus(codes.Error, err.Error())
}
