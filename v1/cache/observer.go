package cache

import (
	"time"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

func (e *Engine) observeOperation(operation, source string, duration time.Duration, err error, size int64) {
	if e.cfg.Observer == nil {
		return
	}

	e.cfg.Observer.ObserveOperation(observability.OperationContext{
		Component: "cache",
		Operation: operation,
		Resource:  source,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
