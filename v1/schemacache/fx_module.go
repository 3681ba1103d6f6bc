package schemacache

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/schemacache/v1/logger"
	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

// FXModule is an fx.Module that provides the schema cache.
//
// Usage:
//
//	app := fx.New(
//	    schemacache.FXModule,
//	    fx.Provide(func() schemacache.Config {
//	        return schemacache.Config{Namespace: "com.example"}
//	    }),
//	)
//
// The cache is provided both as *SchemaCache and as the Cache interface.
var FXModule = fx.Module("schemacache",
	fx.Provide(
		NewSchemaCacheWithDI,
		func(c *SchemaCache) Cache { return c },
	),
	fx.Invoke(RegisterSchemaCacheLifecycle),
)

// SchemaCacheParams groups the dependencies needed to create a schema cache.
type SchemaCacheParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewSchemaCacheWithDI creates a schema cache from injected dependencies.
// Logger and Observer are attached when present in the container.
func NewSchemaCacheWithDI(params SchemaCacheParams) *SchemaCache {
	cache := NewSchemaCache(params.Config)
	if params.Logger != nil {
		cache.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		cache.WithObserver(params.Observer)
	}
	return cache
}

// RegisterSchemaCacheLifecycle drops the resettable cache state when the
// application stops. The cache holds no external resources.
func RegisterSchemaCacheLifecycle(lc fx.Lifecycle, cache *SchemaCache) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			cache.Clear()
			return nil
		},
	})
}
