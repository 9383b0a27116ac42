// Package observability defines the hook components use to report the
// operations they perform. Implementations turn these reports into metrics,
// traces or logs; metrics.Metrics is the Prometheus implementation.
package observability

import "time"

// OperationReloadSkipped is reported when a background reload could not be
// queued. Observers count it rather than timing it.
const OperationReloadSkipped = "reload_skipped"

// Observer receives one report per completed operation. Implementations must
// be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "transport" or "cache".
	Component string

	// Operation names what was done, e.g. "fetch", "cold_load", "reload".
	Operation string

	// Resource identifies the target, usually the source URL.
	Resource string

	// SubResource adds detail below Resource, e.g. a schema name.
	SubResource string

	Duration time.Duration

	// Error is nil on success.
	Error error

	// Size is the payload size in bytes, or a count where bytes make no sense.
	Size int64

	Metadata map[string]interface{}
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}
