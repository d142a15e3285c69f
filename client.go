package overlap

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/braintrustdata/overlap-go/bleu"
	"github.com/braintrustdata/overlap-go/config"
	"github.com/braintrustdata/overlap-go/eval"
	"github.com/braintrustdata/overlap-go/logger"
	"github.com/braintrustdata/overlap-go/score"
	"github.com/braintrustdata/overlap-go/store"
	"github.com/braintrustdata/overlap-go/tokenize"
	ovtrace "github.com/braintrustdata/overlap-go/trace"
)

// Client scores corpora with one fixed scoring policy.
type Client struct {
	config         *config.Config
	logger         logger.Logger
	tracerProvider *trace.TracerProvider
	scorer         *score.Scorer
	smoothing      bleu.Smoothing
}

// New creates a new overlap client with the provided TracerProvider.
//
// The TracerProvider is required and should be managed by the caller.
// The client will NOT shut down the provider - you must do this yourself.
//
// Configuration is loaded from environment variables first, then
// explicit options are applied (options take precedence).
//
// Example:
//
//	tp := trace.NewTracerProvider()
//	client, err := overlap.New(tp,
//	    overlap.WithParallelism(8),
//	    overlap.WithBLEUSmoothing(bleu.SmoothingEpsilon),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tp.Shutdown(context.Background())
func New(tp *trace.TracerProvider, opts ...Option) (*Client, error) {
	if tp == nil {
		return nil, errors.New("tracer provider is required")
	}

	// Build config from environment variables
	cfg := config.FromEnv()

	// Apply user options (override env vars)
	for _, opt := range opts {
		opt(cfg)
	}

	// Setup default logger if none provided
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefaultLogger()
	}

	smoothing, err := bleu.ParseSmoothing(cfg.BLEUSmoothing)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}

	log.Debug("initializing overlap client",
		"parallelism", cfg.Parallelism,
		"rouge_stem", cfg.ROUGEStem,
		"bleu_stem", cfg.BLEUStem,
		"bleu_smoothing", smoothing,
		"db_path", cfg.DBPath)

	if cfg.Exporter != nil {
		tp.RegisterSpanProcessor(trace.NewSimpleSpanProcessor(cfg.Exporter))
		log.Debug("registered provided exporter")
	}

	return &Client{
		config:         cfg,
		logger:         log,
		tracerProvider: tp,
		smoothing:      smoothing,
		scorer:         newScorer(cfg, smoothing),
	}, nil
}

func newScorer(cfg *config.Config, smoothing bleu.Smoothing) *score.Scorer {
	rougeOpts := tokenize.ROUGE().Options()
	rougeOpts.Stem = cfg.ROUGEStem

	bleuOpts := tokenize.BLEU().Options()
	if cfg.BLEUStem {
		bleuOpts.Stem = true
		bleuOpts.MinStemLength = tokenize.DefaultMinStemLength
	}

	return score.New(score.Opts{
		ROUGETokenizer: tokenize.New(rougeOpts),
		BLEUTokenizer:  tokenize.New(bleuOpts),
		BLEUOptions:    []bleu.Option{bleu.WithSmoothing(smoothing)},
	})
}

// Evaluate scores every row and, when a database path is configured,
// archives the run. The returned Result follows eval.Run: it is non-nil
// on cancellation, and a failed archive is reported alongside a complete
// Result.
func (c *Client) Evaluate(ctx context.Context, rows eval.Rows) (*eval.Result, error) {
	result, err := eval.Run(ctx, eval.Opts{
		Rows:        rows,
		Scorer:      c.scorer,
		Parallelism: c.config.Parallelism,
		Tracer:      c.Tracer(ovtrace.TracerName),
		Logger:      c.logger,
		Quiet:       c.config.Quiet,
	})
	if result == nil || c.config.DBPath == "" {
		return result, err
	}

	if archiveErr := c.archive(ctx, result); archiveErr != nil {
		c.logger.Error("failed to archive run", "run", result.ID(), "error", archiveErr)
		return result, errors.Join(err, archiveErr)
	}
	return result, err
}

func (c *Client) archive(ctx context.Context, result *eval.Result) error {
	db, err := store.Open(c.config.DBPath)
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	defer db.Close()

	// a canceled ctx must not lose the partial result
	if err := db.SaveRun(context.WithoutCancel(ctx), result); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	c.logger.Debug("archived run", "run", result.ID(), "db_path", c.config.DBPath)
	return nil
}

// Score scores a single pair with the client's policy.
func (c *Client) Score(reference, candidate string) score.Set {
	return c.scorer.Score(reference, candidate)
}

// Scorer returns the scorer built from the client's configuration.
func (c *Client) Scorer() *score.Scorer {
	return c.scorer
}

// String returns a string representation of the client
func (c *Client) String() string {
	archive := c.config.DBPath
	if archive == "" {
		archive = "<disabled>"
	}
	return fmt.Sprintf(`Overlap Client:
  Parallelism: %d
  ROUGE stemming: %t
  BLEU stemming: %t
  BLEU smoothing: %s
  Archive: %s`,
		c.config.Parallelism,
		c.config.ROUGEStem,
		c.config.BLEUStem,
		c.smoothing,
		archive,
	)
}

// TracerProvider returns the OpenTelemetry TracerProvider used by this client.
func (c *Client) TracerProvider() *trace.TracerProvider {
	return c.tracerProvider
}

// Tracer returns an OpenTelemetry Tracer with the given name.
// This is a convenience method equivalent to calling TracerProvider().Tracer(name, opts...).
func (c *Client) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	return c.tracerProvider.Tracer(name, opts...)
}
