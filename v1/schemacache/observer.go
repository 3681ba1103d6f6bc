package schemacache

import (
	"time"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: the subject, "subject:version" ref or registry id operated on
//   - metadata: lookups carry {"hit": bool}
func (c *SchemaCache) observeOperation(operation, resource string, duration time.Duration, err error, metadata map[string]interface{}) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component: "schemacache",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Metadata:  metadata,
	})
}
