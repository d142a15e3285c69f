package overlap

import (
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/braintrustdata/overlap-go/bleu"
	"github.com/braintrustdata/overlap-go/config"
	"github.com/braintrustdata/overlap-go/logger"
)

// Option is a functional option for configuring an overlap client
type Option func(*config.Config)

// WithParallelism sets the number of scoring workers (overrides OVERLAP_PARALLELISM)
func WithParallelism(n int) Option {
	return func(c *config.Config) {
		c.Parallelism = n
	}
}

// WithROUGEStemming toggles Porter stemming for ROUGE (overrides OVERLAP_ROUGE_STEM)
func WithROUGEStemming(enabled bool) Option {
	return func(c *config.Config) {
		c.ROUGEStem = enabled
	}
}

// WithBLEUStemming toggles Porter stemming for BLEU (overrides OVERLAP_BLEU_STEM)
func WithBLEUStemming(enabled bool) Option {
	return func(c *config.Config) {
		c.BLEUStem = enabled
	}
}

// WithBLEUSmoothing selects the BLEU smoothing method (overrides OVERLAP_BLEU_SMOOTHING)
func WithBLEUSmoothing(s bleu.Smoothing) Option {
	return func(c *config.Config) {
		c.BLEUSmoothing = s.String()
	}
}

// WithDBPath archives every run in the SQLite file at path (overrides OVERLAP_DB_PATH)
func WithDBPath(path string) Option {
	return func(c *config.Config) {
		c.DBPath = path
	}
}

// WithQuiet suppresses the summary printed after each run (overrides OVERLAP_QUIET)
func WithQuiet(enabled bool) Option {
	return func(c *config.Config) {
		c.Quiet = enabled
	}
}

// WithLogger sets a custom logger
// If not provided, a default logger will be used
func WithLogger(l logger.Logger) Option {
	return func(c *config.Config) {
		c.Logger = l
	}
}

// WithExporter injects a custom OpenTelemetry SpanExporter
// The exporter is registered on the client's TracerProvider with a synchronous processor
// This is primarily useful for testing with a memory exporter
func WithExporter(exporter trace.SpanExporter) Option {
	return func(c *config.Config) {
		c.Exporter = exporter
	}
}
