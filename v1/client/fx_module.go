package client

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/schemacache/v1/logger"
	"github.com/Aleph-Alpha/schemacache/v1/metrics"
	"github.com/Aleph-Alpha/schemacache/v1/tracer"
)

// FXModule provides a Client built from client.Config (using Config.URLs)
// and closes it when the application stops. A *logger.Logger,
// *metrics.Metrics and *tracer.Tracer are used when present in the container.
var FXModule = fx.Module("schemacache",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterClientLifecycle),
)

// ClientParams groups the dependencies of NewClientWithDI.
type ClientParams struct {
	fx.In

	Config  Config
	Logger  *logger.Logger   `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
	Tracer  *tracer.Tracer   `optional:"true"`
}

// NewClientWithDI builds the Client for the FX module. Collaborators set in
// Config take precedence over those found in the container.
func NewClientWithDI(params ClientParams) (Client, error) {
	cfg := params.Config
	if cfg.Logger == nil && params.Logger != nil {
		cfg.Logger = params.Logger
	}
	if cfg.Observer == nil && params.Metrics != nil {
		cfg.Observer = params.Metrics
	}
	if cfg.Tracer == nil && params.Tracer != nil {
		cfg.Tracer = params.Tracer
	}
	return New(cfg)
}

// ClientLifecycleParams groups the dependencies of RegisterClientLifecycle.
type ClientLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    Client
	Logger    *logger.Logger `optional:"true"`
}

type warmer interface {
	Warm(ctx context.Context) error
}

// RegisterClientLifecycle loads all sources on start, failing startup if one
// cannot be loaded, and closes the client on stop.
func RegisterClientLifecycle(params ClientLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w, ok := params.Client.(warmer)
			if !ok {
				return nil
			}
			if err := w.Warm(ctx); err != nil {
				if params.Logger != nil {
					params.Logger.Error("failed to load schema sources", err, nil)
				}
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("closing schema client", nil, nil)
			}
			return params.Client.Close()
		},
	})
}
