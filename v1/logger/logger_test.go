package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(tracing bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{Zap: zap.New(core), tracingEnabled: tracing}, logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{Debug, zap.DebugLevel},
		{Info, zap.InfoLevel},
		{Warning, zap.WarnLevel},
		{Error, zap.ErrorLevel},
		{"verbose", zap.InfoLevel},
		{"", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerFields(t *testing.T) {
	log, logs := newObservedLogger(false)

	log.Warn("stale snapshot kept", errors.New("boom"), map[string]interface{}{
		"source": "http://registry/a",
	}, map[string]interface{}{
		"attempts": 3,
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stale snapshot kept", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "http://registry/a", fields["source"])
	assert.EqualValues(t, 3, fields["attempts"])
}

func TestContextFieldsAddTraceIDs(t *testing.T) {
	log, logs := newObservedLogger(true)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	log.InfoWithContext(ctx, "fetched", nil)
	log.InfoWithContext(context.Background(), "no span", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, spanCtx.TraceID().String(), entries[0].ContextMap()["trace_id"])
	assert.Equal(t, spanCtx.SpanID().String(), entries[0].ContextMap()["span_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Error("ignored", errors.New("x"), nil)
	log.DebugWithContext(context.Background(), "ignored", nil)
}
