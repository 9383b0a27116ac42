package tracer

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/schemacache/v1/logger"
)

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{}) {}

func TestStartSpanPropagates(t *testing.T) {
	tr, err := NewClient(Config{ServiceName: "test", AppEnv: "test"}, nopLogger{})
	require.NoError(t, err)
	defer func() { _ = tr.Shutdown(context.Background()) }()

	ctx, span := tr.StartSpan(context.Background(), "fetch")
	tr.SetAttributes(span, map[string]interface{}{
		"source":   "http://registry/a",
		"attempts": 2,
		"other":    struct{}{},
	})
	tr.RecordErrorOnSpan(span, errors.New("boom"))
	span.End()

	require.True(t, span.SpanContext().IsValid())

	h := http.Header{}
	tr.InjectHTTPHeaders(ctx, h)
	assert.Contains(t, h.Get("traceparent"), span.SpanContext().TraceID().String())

	carrier := tr.GetCarrier(ctx)
	assert.Equal(t, h.Get("traceparent"), carrier["traceparent"])
}

func TestFXModule(t *testing.T) {
	var tr *Tracer
	app := fxtest.New(t,
		FXModule,
		fx.Provide(
			func() Config { return Config{ServiceName: "test"} },
			logger.NewNopLogger,
		),
		fx.Populate(&tr),
	)
	app.RequireStart()
	require.NotNil(t, tr)
	app.RequireStop()
}
