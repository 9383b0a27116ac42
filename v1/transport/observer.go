package transport

import (
	"time"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

func (c *HTTPClient) observeOperation(operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if c == nil || c.cfg.Observer == nil {
		return
	}

	c.cfg.Observer.ObserveOperation(observability.OperationContext{
		Component: "transport",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}
