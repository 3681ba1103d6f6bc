package schema_registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/schemacache/v1/logger"
	"github.com/Aleph-Alpha/schemacache/v1/observability"
	"github.com/Aleph-Alpha/schemacache/v1/schemacache"
	"github.com/Aleph-Alpha/schemacache/v1/tracer"
)

// FXModule is an fx.Module that provides and configures the Schema Registry client.
//
// When schemacache.FXModule is part of the application the client uses the
// injected cache; otherwise it builds one from Config.Cache. A logger,
// observer and tracer are attached when available.
//
// Usage:
//
//	app := fx.New(
//	    schemacache.FXModule,
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() schemacache.Config { return schemacache.Config{} },
//	        func() schema_registry.Config {
//	            return schema_registry.Config{URL: "http://localhost:8081"}
//	        },
//	    ),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
		func(c *Client) Registry { return c },
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a Schema Registry client
type SchemaRegistryParams struct {
	fx.In

	Config   Config
	Cache    schemacache.Cache      `optional:"true"`
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewClientWithDI creates a new Schema Registry client using dependency injection.
func NewClientWithDI(params SchemaRegistryParams) (*Client, error) {
	cache := params.Cache
	if cache == nil {
		cache = schemacache.NewSchemaCache(params.Config.Cache)
	}

	client, err := NewClientWithCache(params.Config, cache)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		client.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		client.WithTracer(params.Tracer)
	}
	return client, nil
}

// SchemaRegistryLifecycleParams groups the dependencies for Schema Registry lifecycle management
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *Client
	Logger    logger.Logger `optional:"true"`
}

// RegisterSchemaRegistryLifecycle logs client start and closes idle
// registry connections on stop.
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("Schema Registry client initialized", nil, map[string]interface{}{
					"url": params.Client.url,
				})
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.httpClient.HTTPClient.CloseIdleConnections()
			if params.Logger != nil {
				params.Logger.Info("Schema Registry client shutdown", nil)
			}
			return nil
		},
	})
}
