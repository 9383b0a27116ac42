// Package logger provides the structured logger used across schemacache.
//
// It wraps Uber's zap with a small call shape shared by every package in this
// module:
//
//	log.Info("schema snapshot loaded", nil, map[string]interface{}{
//		"source":  url,
//		"schemas": snapshot.Len(),
//	})
//
// The error argument is optional and is emitted as the "error" field when set.
// Several field maps may be passed; later maps override keys of earlier ones.
//
// # Direct Usage
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "schema-consumer",
//	})
//	defer log.Zap.Sync()
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Debug, ServiceName: "schema-consumer"}
//		}),
//	)
//
// # Tracing Integration
//
// When EnableTracing is set, the *WithContext methods add the OpenTelemetry
// trace_id and span_id of the active span found in the context.
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
