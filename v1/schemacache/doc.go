// Package schemacache is the client-side metadata cache of a schema registry
// client.
//
// It keeps three independent mappings:
//
//   - subject → registry id last known to be the latest version
//   - (subject, version) → registry id
//   - registry id → compiled Avro schema
//
// Lookups never fail: a miss is reported as (zero, false). Only SetSchema can
// return an error, because it compiles the raw definition before storing it.
//
// Basic Usage:
//
//	cache := schemacache.NewSchemaCache(schemacache.Config{})
//
//	ref := schemacache.SchemaRef{Subject: "orders-value", Version: 3}
//	if id, ok := cache.GetBySchemaRef(ref); ok {
//	    // use id
//	}
//	cache.SetBySchemaRef(ref, 101)
//
//	schema, err := cache.SetSchema(101, `{"type":"record","name":"Order","fields":[
//	    {"name":"total","type":"Money"}
//	]}`, schemacache.LogicalTypes{
//	    "Money": `{"type":"bytes","logicalType":"decimal","precision":12,"scale":2}`,
//	})
//	if schemacache.IsCompilationError(err) {
//	    // malformed definition or unresolvable type name
//	}
//
// Logical Types:
//
// Every type-name reference in a definition is offered to a TypeHook before
// standard Avro resolution. The DefaultTypeHook looks the name up in the
// combined logical-types table (global Config.LogicalTypes overlaid with the
// per-call extras), first as written and then as "<namespace>.<name>" using
// the enclosing namespace. A custom Config.TypeHook replaces it entirely.
//
// Clearing:
//
// Clear resets the latest-id and compiled-schema mappings. The
// (subject, version) → id mapping is kept, since a pinned version always
// resolves to the same registry id.
//
// Using with FX:
//
//	app := fx.New(
//	    logger.FXModule,
//	    schemacache.FXModule,
//	    fx.Provide(func() schemacache.Config { return schemacache.Config{} }),
//	)
package schemacache
