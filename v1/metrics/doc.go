// Package metrics exposes schema cache and registry activity to Prometheus.
//
// *Metrics implements observability.Observer. Attach it to the cache or the
// registry client and every reported operation is counted in
// schemacache_operations_total{component,operation,result} and timed in
// schemacache_operation_duration_seconds{component,operation}. The result
// label is "hit" or "miss" for lookups, "error" for failures and "success"
// otherwise.
//
// Direct Usage:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    EnableDefaultCollectors: true,
//	    ServiceName:             "orders",
//	})
//	go m.Server.ListenAndServe()
//
//	cache := schemacache.NewSchemaCache(schemacache.Config{}).WithObserver(m)
//
// Custom metrics live in the same registry and carry the same service label:
//
//	fetches := m.CreateCounter("registry_fetch_total", "Registry fetches", []string{"endpoint"})
//	fetches.WithLabelValues("/schemas/ids").Inc()
//
// Using with FX:
//
//	app := fx.New(
//	    logger.FXModule,  // optional, used for server lifecycle logs
//	    metrics.FXModule, // provides *Metrics, MetricsCollector and observability.Observer
//	    fx.Provide(func() metrics.Config { return metrics.Config{ServiceName: "orders"} }),
//	)
package metrics
