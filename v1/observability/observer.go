package observability

import "time"

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component names the reporting package, e.g. "schemacache".
	Component string

	// Operation is the operation name, e.g. "get_schema".
	Operation string

	// Resource is the primary key the operation worked on
	// (a subject, a "subject:version" ref or a registry id).
	Resource string

	// SubResource carries secondary context, such as a registry endpoint.
	SubResource string

	// Duration is the wall time of the operation.
	Duration time.Duration

	// Error is the error the operation returned, if any.
	Error error

	// Size is a payload size in bytes where one applies.
	Size int64

	// Metadata holds operation specific values, e.g. {"hit": true}.
	Metadata map[string]interface{}
}

// Observer receives operation notifications.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Result maps an operation outcome to a short label value:
// "error" when the operation failed, "hit"/"miss" when Metadata carries
// a boolean "hit" entry, and "success" otherwise.
func (ctx OperationContext) Result() string {
	if ctx.Error != nil {
		return "error"
	}
	if hit, ok := ctx.Metadata["hit"].(bool); ok {
		if hit {
			return "hit"
		}
		return "miss"
	}
	return "success"
}
