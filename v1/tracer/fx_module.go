package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/schemacache/v1/logger"
)

// FXModule provides *Tracer from a tracer.Config and the *logger.Logger in
// the container, and shuts the provider down when the application stops.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewTracerWithDI,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// NewTracerWithDI adapts NewClient to the types found in an FX container.
func NewTracerWithDI(cfg Config, log *logger.Logger) (*Tracer, error) {
	return NewClient(cfg, log)
}

// RegisterTracerLifecycle flushes and stops the tracer provider on shutdown.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
}
