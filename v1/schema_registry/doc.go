// Package schema_registry resolves schema identities against a Confluent
// Schema Registry and serializes Avro payloads in the Confluent wire format.
//
// Every lookup goes to the schema cache first; only a miss costs a network
// round-trip, after which the answer is recorded in the cache. Concurrent
// misses for the same key share a single request.
//
// Basic Usage:
//
//	client, err := schema_registry.NewClient(schema_registry.Config{
//	    URL:      "http://localhost:8081",
//	    Username: "user",     // Optional
//	    Password: "password", // Optional
//	    Cache: schemacache.Config{
//	        LogicalTypes: schemacache.LogicalTypes{
//	            "Money": `{"type":"bytes","logicalType":"decimal","precision":12,"scale":2}`,
//	        },
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// pinned version → id (kept across ClearCache)
//	id, err := client.GetRegistryIDBySchemaRef(ctx, schemacache.SchemaRef{Subject: "orders-value", Version: 3})
//
//	// latest id (re-resolved after ClearCache)
//	latest, err := client.GetLatestRegistryID(ctx, "orders-value")
//
//	// serialize / deserialize
//	encoded, err := client.Encode(ctx, id, order)
//	var decoded Order
//	err = client.Decode(ctx, encoded, &decoded)
//
// Wire Format:
//
//	[magic_byte (1 byte)] [schema_id (4 bytes, big-endian)] [payload]
//
// Transport:
//
// Requests go through hashicorp/go-retryablehttp: connection errors and
// 5xx/429 responses are retried with exponential backoff (Config.RetryMax,
// RetryWaitMin, RetryWaitMax). Non-200 answers surface as *RegistryError with
// the registry's error_code and message.
//
// Using with FX:
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule,
//	    schemacache.FXModule,
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() schemacache.Config { return schemacache.Config{} },
//	        func() schema_registry.Config {
//	            return schema_registry.Config{URL: os.Getenv("SCHEMA_REGISTRY_URL")}
//	        },
//	    ),
//	)
package schema_registry
