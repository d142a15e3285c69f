// Package trace sets up OpenTelemetry tracing for evaluation runs.
//
// Each scored row produces one "score" span. Spans can be printed to stdout,
// sent to an OTLP/HTTP collector, or captured by an injected exporter:
//
//	tp, err := trace.NewTracerProvider(ctx, trace.Config{Console: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tp.Shutdown(context.Background())
//
//	result, err := eval.Run(ctx, eval.Opts{Rows: rows, Tracer: tp.Tracer(trace.TracerName)})
package trace

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/braintrustdata/overlap-go/logger"
)

// TracerName is the instrumentation name used for evaluation spans.
const TracerName = "overlap.eval"

// DefaultURLPath is the OTLP/HTTP traces path.
const DefaultURLPath = "/v1/traces"

// Config holds configuration for tracing.
type Config struct {
	// Console pretty-prints spans to stdout.
	Console bool

	// OTLPURL is the collector URL including scheme, e.g. "http://localhost:4318".
	// A bare host:port is treated as https.
	OTLPURL string

	// Headers are added to every OTLP request.
	Headers map[string]string

	// Test override: provide custom exporter (e.g., memory exporter for tests)
	Exporter sdktrace.SpanExporter

	// Logger
	Logger logger.Logger
}

// Enabled reports whether any exporter is configured.
func (c Config) Enabled() bool {
	return c.Console || c.OTLPURL != "" || c.Exporter != nil
}

// NewTracerProvider creates a TracerProvider with the configured exporters.
// With no exporters configured the provider records nothing but is still
// safe to use. The caller must Shutdown the provider to flush spans.
func NewTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	var opts []sdktrace.TracerProviderOption

	if cfg.Exporter != nil {
		opts = append(opts, sdktrace.WithSyncer(cfg.Exporter))
		log.Debug("using provided exporter")
	}

	if cfg.Console {
		consoleExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(consoleExporter))
		log.Debug("registered console trace exporter")
	}

	if cfg.OTLPURL != "" {
		otelOpts, err := getHTTPOtelOpts(cfg.OTLPURL, cfg.Headers)
		if err != nil {
			return nil, err
		}
		exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(otelOpts...))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		log.Debug("created OTLP HTTP exporter", "endpoint", cfg.OTLPURL)
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// getHTTPOtelOpts parses the URL and creates OTLP HTTP options with proper security settings
func getHTTPOtelOpts(fullURL string, headers map[string]string) ([]otlptracehttp.Option, error) {
	protocol := "https"
	rest := fullURL
	if i := strings.Index(fullURL, "://"); i >= 0 {
		protocol = fullURL[:i]
		rest = fullURL[i+3:]
	}
	if protocol != "http" && protocol != "https" {
		return nil, fmt.Errorf("invalid url: %s", fullURL)
	}

	endpoint, path := rest, DefaultURLPath
	if i := strings.Index(rest, "/"); i >= 0 {
		endpoint, path = rest[:i], rest[i:]
	}
	if endpoint == "" {
		return nil, fmt.Errorf("invalid url: %s", fullURL)
	}

	otelOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithURLPath(path),
	}
	if len(headers) > 0 {
		otelOpts = append(otelOpts, otlptracehttp.WithHeaders(headers))
	}
	if protocol == "http" {
		otelOpts = append(otelOpts, otlptracehttp.WithInsecure())
	}

	return otelOpts, nil
}
