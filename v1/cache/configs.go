package cache

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
	"github.com/Aleph-Alpha/schemacache/v1/registry"
)

const (
	// DefaultWorkers is the size of the reload worker pool.
	DefaultWorkers = 2

	// DefaultQueueSize bounds the number of pending reloads.
	DefaultQueueSize = 64
)

// Logger is the logging surface used by the engine.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// UpdateListener is told about every snapshot that replaces an earlier one.
// It runs on a reload worker and should return quickly.
type UpdateListener interface {
	OnUpdate(source string, snapshot *registry.Snapshot)
}

// UpdateListenerFunc adapts a function to UpdateListener.
type UpdateListenerFunc func(source string, snapshot *registry.Snapshot)

// OnUpdate calls f(source, snapshot).
func (f UpdateListenerFunc) OnUpdate(source string, snapshot *registry.Snapshot) {
	f(source, snapshot)
}

// Config configures an Engine.
type Config struct {
	// TTL is the age after which a snapshot is reloaded. Ignored unless
	// AutoRefresh is set.
	TTL time.Duration

	// AutoRefresh enables TTL driven background reloads.
	AutoRefresh bool

	// Workers is the number of reload goroutines. Zero means DefaultWorkers.
	Workers int

	// QueueSize bounds pending reloads. Zero means DefaultQueueSize.
	QueueSize int

	// Clock measures snapshot age. Nil means the real clock.
	Clock clockwork.Clock

	Listener UpdateListener
	Logger   Logger
	Observer observability.Observer
}
