package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/schemacache/v1/logger"
)

// FXModule provides *Tracer and flushes it when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config { return tracer.Config{ServiceName: "orders"} }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerParams groups the dependencies needed to create a tracer.
type TracerParams struct {
	fx.In

	Config Config
}

// NewClientWithDI creates a tracer from injected configuration.
func NewClientWithDI(params TracerParams) (*Tracer, error) {
	return NewClient(params.Config)
}

// TracerLifecycleParams groups the dependencies of RegisterTracerLifecycle.
type TracerLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Tracer    *Tracer
	Logger    logger.Logger `optional:"true"`
}

// RegisterTracerLifecycle shuts the tracer provider down on stop so pending
// spans reach the exporter.
func RegisterTracerLifecycle(params TracerLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("Shutting down tracer", nil)
			}
			return params.Tracer.Shutdown(ctx)
		},
	})
}
