package schema_registry

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

// observeOperation notifies the observer about a registry round-trip.
//
// Notes:
//   - resource: the subject, "subject:version" ref or registry id requested
//   - subResource: the registry path
func (c *Client) observeOperation(operation, resource, subResource string, duration time.Duration, err error) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   "schema_registry",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
	})
}

// startSpan starts a span for a registry round-trip when a tracer is
// attached. The returned func ends the span, recording err if non-nil.
func (c *Client) startSpan(ctx context.Context, operation, method, path, resource string) (context.Context, func(err error)) {
	if c.tracer == nil {
		return ctx, func(error) {}
	}

	ctx, span := c.tracer.StartSpan(ctx, "schema_registry."+operation)
	c.tracer.SetAttributes(span, map[string]interface{}{
		"http.method":              method,
		"schema_registry.path":     path,
		"schema_registry.resource": resource,
	})

	return ctx, func(err error) {
		if err != nil {
			c.tracer.RecordErrorOnSpan(span, err)
		}
		span.End()
	}
}
