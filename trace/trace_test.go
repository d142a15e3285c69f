package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	intlogger "github.com/braintrustdata/overlap-go/internal/logger"
)

func TestNewTracerProvider_Exporter(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewTracerProvider(context.Background(), Config{
		Exporter: exporter,
		Logger:   intlogger.NewFailTestLogger(t),
	})
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer(TracerName).Start(context.Background(), "score")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "score", spans[0].Name)
	assert.Equal(t, TracerName, spans[0].InstrumentationScope.Name)
}

func TestNewTracerProvider_NoExporters(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	assert.False(t, cfg.Enabled())

	tp, err := NewTracerProvider(context.Background(), cfg)
	require.NoError(t, err)
	_, span := tp.Tracer(TracerName).Start(context.Background(), "score")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_OTLP(t *testing.T) {
	t.Parallel()

	cfg := Config{OTLPURL: "http://localhost:4318", Headers: map[string]string{"x-team": "eval"}}
	assert.True(t, cfg.Enabled())

	tp, err := NewTracerProvider(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewTracerProvider(context.Background(), Config{OTLPURL: "ftp://collector"})
	assert.ErrorContains(t, err, "invalid url")
}

func TestGetHTTPOtelOpts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		headers map[string]string
		want    int
		wantErr bool
	}{
		{"http adds insecure", "http://localhost:4318", nil, 3, false},
		{"https", "https://collector.example.com", nil, 2, false},
		{"bare host is https", "collector.example.com:4318", nil, 2, false},
		{"custom path and headers", "https://collector.example.com/otel/v1/traces", map[string]string{"a": "b"}, 3, false},
		{"unknown scheme", "grpc://collector", nil, 0, true},
		{"missing host", "http:///v1/traces", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, err := getHTTPOtelOpts(tt.url, tt.headers)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, opts, tt.want)
		})
	}
}
