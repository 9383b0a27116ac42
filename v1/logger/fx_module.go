package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Logger built from a logger.Config in the container and
// flushes it when the application stops.
//
//	app := fx.New(
//	    logger.FXModule,
//	    // other modules...
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle syncs the zap logger on shutdown so buffered
// entries are not lost.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// stderr sync returns EINVAL on some platforms; nothing to recover.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
