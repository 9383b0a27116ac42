package transport

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

const (
	// DefaultTimeout bounds one request, including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 4

	minDefaultBackoff = 2 * time.Second
	maxDefaultBackoff = 5 * time.Second

	// maxBackoffInterval caps a single wait.
	maxBackoffInterval = 5 * time.Minute
)

// Logger is the logging surface used by the transport. Entries carry the
// request context so they can be correlated with the fetch span.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Config configures an HTTPClient.
type Config struct {
	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is how many times a failed request is retried. Negative
	// values disable retries; zero means DefaultMaxRetries.
	MaxRetries int

	// InitialBackoff is the wait before the first retry; later waits double.
	// Zero picks a random value in [2s, 5s) per client.
	InitialBackoff time.Duration

	// Headers are sent with every request.
	Headers map[string]string

	// BearerToken, when set, is sent as "Authorization: Bearer <token>".
	BearerToken string

	// HTTPClient overrides the underlying client. Its Timeout is left untouched.
	HTTPClient *http.Client

	Logger   Logger
	Observer observability.Observer
	Tracer   Tracer
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = DefaultMaxRetries
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff()
	}
	return c
}

// DefaultInitialBackoff returns a random backoff in [2s, 5s) so that many
// clients restarted together do not retry in lockstep.
func DefaultInitialBackoff() time.Duration {
	return minDefaultBackoff + rand.N(maxDefaultBackoff-minDefaultBackoff)
}
