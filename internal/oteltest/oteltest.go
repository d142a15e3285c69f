// Package oteltest provides testing utilities for OpenTelemetry tracing.
// It includes an in-memory span exporter and assertion helpers for verifying
// the per-row scoring spans in unit tests.
package oteltest

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	attr "go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Setup creates a synchronous tracer provider that stores spans in memory
// and returns a Tracer and an Exporter that can be used to flush the spans.
// Unlike a global setup it leaves otel's global provider untouched, so tests
// using it may run in parallel.
func Setup(t *testing.T) (oteltrace.Tracer, *Exporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)

	t.Cleanup(func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Errorf("Error shutting down tracer provider: %v", err)
		}
	})

	return tp.Tracer(t.Name()), &Exporter{exporter: exporter, t: t}
}

// Exporter is a wrapper around the OTel InMemoryExporter that provides some
// helper functions for testing.
type Exporter struct {
	exporter *tracetest.InMemoryExporter
	t        *testing.T
}

// InMemoryExporter returns the underlying OTel InMemoryExporter.
func (e *Exporter) InMemoryExporter() *tracetest.InMemoryExporter {
	return e.exporter
}

// Flush returns the spans buffered in memory, in completion order.
func (e *Exporter) Flush() []Span {
	stubs := e.exporter.GetSpans()
	e.exporter.Reset()

	spans := make([]Span, len(stubs))
	for i, span := range stubs {
		spans[i] = Span{t: e.t, Stub: span}
	}
	return spans
}

// FlushByRow returns the buffered spans sorted by their overlap.row attribute.
// Parallel runs finish rows out of order; this gives tests a stable view.
func (e *Exporter) FlushByRow() []Span {
	spans := e.Flush()
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Row() < spans[j].Row()
	})
	return spans
}

// FlushOne returns the first span buffered in memory and fails if there is not
// exactly one span.
func (e *Exporter) FlushOne() Span {
	e.t.Helper()
	spans := e.Flush()
	if len(spans) != 1 {
		e.t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	return spans[0]
}

// Span is a wrapper around the OTel SpanStub with some helpful
// testing functions.
type Span struct {
	t    *testing.T
	Stub tracetest.SpanStub
}

// Name returns the span's name.
func (s *Span) Name() string {
	return s.Stub.Name
}

// Status returns the span's status.
func (s *Span) Status() sdktrace.Status {
	return s.Stub.Status
}

// Events returns the span's events.
func (s *Span) Events() []sdktrace.Event {
	return s.Stub.Events
}

// Row returns the overlap.row attribute, or -1 if the span has none.
func (s *Span) Row() int64 {
	for _, kv := range s.Stub.Attributes {
		if string(kv.Key) == "overlap.row" {
			return kv.Value.AsInt64()
		}
	}
	return -1
}

// AssertNameIs asserts that the span's name equals the expected name.
func (s *Span) AssertNameIs(expected string) {
	s.t.Helper()
	assert.Equal(s.t, expected, s.Stub.Name)
}

// AssertAttrEquals asserts that the attribute is equal to the expected value.
func (s *Span) AssertAttrEquals(key string, expected any) {
	s.t.Helper()
	s.Attr(key).AssertEquals(expected)
}

// AssertJSONAttrEquals asserts that a JSON-encoded attribute equals the expected value.
// The attribute value is expected to be a JSON string that will be unmarshaled and compared.
func (s *Span) AssertJSONAttrEquals(key string, expected any) {
	s.t.Helper()
	attrStr := s.Attr(key).String()
	var actual any
	err := json.Unmarshal([]byte(attrStr), &actual)
	require.NoError(s.t, err, "failed to unmarshal JSON attribute %s", key)
	assert.Equal(s.t, expected, actual, "attribute %s value mismatch", key)
}

// Attrs returns all the span's attributes matching the key.
func (s *Span) Attrs(key string) []Attr {
	attrs := []Attr{}
	for _, kv := range s.Stub.Attributes {
		if string(kv.Key) == key {
			attrs = append(attrs, Attr{t: s.t, Key: string(kv.Key), Value: kv.Value})
		}
	}
	return attrs
}

// Attr return the attribute matching the key and fails if there isn't
// exactly one.
func (s *Span) Attr(key string) Attr {
	s.t.Helper()
	attrs := s.Attrs(key)
	require.Len(s.t, attrs, 1)
	return attrs[0]
}

// HasAttr returns true if the span has at least one attribute with the given key.
func (s *Span) HasAttr(key string) bool {
	return len(s.Attrs(key)) > 0
}

// Scores returns the JSON-encoded overlap.scores attribute.
func (s *Span) Scores() map[string]float64 {
	s.t.Helper()
	var scores map[string]float64
	err := json.Unmarshal([]byte(s.Attr("overlap.scores").String()), &scores)
	require.NoError(s.t, err)
	return scores
}

// Attr is a wrapper around the OTel Attribute with some helpful
// testing functions.
type Attr struct {
	t     *testing.T
	Key   string
	Value attr.Value
}

// String returns the attribute as a string and fails if the attribute is not a string.
func (a Attr) String() string {
	a.t.Helper()
	require.Equal(a.t, attr.STRING, a.Value.Type())
	return a.Value.AsString()
}

// AssertEquals asserts that the attribute is equal to the expected value.
func (a Attr) AssertEquals(expected any) {
	a.t.Helper()
	switch v := expected.(type) {
	case string:
		assert.Equal(a.t, v, a.String())
	case int64:
		assert.Equal(a.t, v, a.Value.AsInt64())
	case int:
		assert.Equal(a.t, int64(v), a.Value.AsInt64())
	case float64:
		assert.Equal(a.t, v, a.Value.AsFloat64())
	case bool:
		assert.Equal(a.t, v, a.Value.AsBool())
	default:
		assert.Failf(a.t, "unsupported type", "expected type %T is not supported", expected)
	}
}
