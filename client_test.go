package overlap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/braintrustdata/overlap-go/bleu"
	"github.com/braintrustdata/overlap-go/eval"
	intlogger "github.com/braintrustdata/overlap-go/internal/logger"
	"github.com/braintrustdata/overlap-go/store"
)

func corpus() eval.Rows {
	return eval.NewStringRows([][]string{
		{"q1", "the cat sat on the mat", "the cat sat on the mat"},
		{"q2", "the cat sat on the mat", "the cat is on the mat"},
	})
}

func TestNew_WithMinimalConfig(t *testing.T) {
	t.Parallel()

	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client, err := New(tp,
		WithParallelism(3),
		WithLogger(intlogger.NewFailTestLogger(t)),
	)
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, tp, client.TracerProvider())

	tracer := client.Tracer("test-tracer")
	ctx, span := tracer.Start(context.Background(), "test-span")
	span.End()
	assert.NotNil(t, ctx)

	str := client.String()
	assert.Contains(t, str, "Overlap Client")
	assert.Contains(t, str, "Parallelism: 3")
	assert.Contains(t, str, "Archive: <disabled>")
}

func TestNew_RequiresTracerProvider(t *testing.T) {
	t.Parallel()

	client, err := New(nil, WithLogger(intlogger.NewFailTestLogger(t)))
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidSmoothing(t *testing.T) {
	// Note: No t.Parallel() because we're setting environment variables
	t.Setenv("OVERLAP_BLEU_SMOOTHING", "laplace")

	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client, err := New(tp, WithLogger(intlogger.NewRecordingLogger()))
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "laplace")
}

func TestScore_Policy(t *testing.T) {
	t.Parallel()

	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	stemmed, err := New(tp, WithLogger(intlogger.NewFailTestLogger(t)))
	require.NoError(t, err)
	plain, err := New(tp, WithROUGEStemming(false), WithLogger(intlogger.NewFailTestLogger(t)))
	require.NoError(t, err)

	ref, cand := "the runner was running", "the runner runs"
	assert.Greater(t, stemmed.Score(ref, cand).ROUGE1, plain.Score(ref, cand).ROUGE1)

	// a three-token pair has no 4-grams, so only smoothing gives it a score
	unsmoothed, err := New(tp, WithLogger(intlogger.NewFailTestLogger(t)))
	require.NoError(t, err)
	smoothed, err := New(tp, WithBLEUSmoothing(bleu.SmoothingEpsilon), WithLogger(intlogger.NewFailTestLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, unsmoothed.Score("a b c", "a b c").BLEU)
	assert.Greater(t, smoothed.Score("a b c", "a b c").BLEU, 0.0)
	assert.Contains(t, smoothed.String(), "BLEU smoothing: epsilon")
}

func TestEvaluate_EndToEnd(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client, err := New(tp,
		WithParallelism(2),
		WithQuiet(true),
		WithExporter(exporter),
		WithLogger(intlogger.NewFailTestLogger(t)),
	)
	require.NoError(t, err)

	result, err := client.Evaluate(context.Background(), corpus())
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Records[0].Row)
	assert.Equal(t, 1.0, result.Records[0].Scores.ROUGE1)
	assert.Equal(t, 1.0, result.Records[0].Scores.BLEU)

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, "score", s.Name)
	}
}

func TestEvaluate_Archives(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client, err := New(tp,
		WithQuiet(true),
		WithDBPath(dbPath),
		WithLogger(intlogger.NewFailTestLogger(t)),
	)
	require.NoError(t, err)
	assert.Contains(t, client.String(), dbPath)

	result, err := client.Evaluate(context.Background(), corpus())
	require.NoError(t, err)

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	loaded, err := db.Load(context.Background(), result.ID())
	require.NoError(t, err)
	assert.Equal(t, result.Records, loaded.Records)
	assert.InDelta(t, result.Summary.MeanROUGE1, loaded.Summary.MeanROUGE1, 1e-12)
}

func TestEvaluate_NothingToScore(t *testing.T) {
	t.Parallel()

	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client, err := New(tp, WithQuiet(true), WithLogger(intlogger.NewFailTestLogger(t)))
	require.NoError(t, err)

	result, err := client.Evaluate(context.Background(), eval.NewStringRows(nil))
	assert.ErrorIs(t, err, eval.ErrNothingToScore)
	assert.Nil(t, result)
}
