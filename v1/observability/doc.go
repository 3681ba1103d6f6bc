// Package observability defines the hook through which packages in this module
// report the operations they perform.
//
// Components call an Observer with an OperationContext after each operation.
// The metrics package ships an Observer backed by Prometheus; tests usually
// plug in a recording implementation.
//
//	cache := schemacache.NewSchemaCache(cfg).WithObserver(metricsInstance)
package observability
