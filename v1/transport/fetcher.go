package transport

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Fetcher retrieves the raw bytes stored at a source URL.
type Fetcher interface {
	// Fetch returns the body stored at url. An empty body is returned as an
	// empty, non-nil slice.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Close releases pooled connections. Fetch must not be called afterwards.
	Close() error
}

// Tracer is the tracing surface the transport uses. *tracer.Tracer implements it.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
	InjectHTTPHeaders(ctx context.Context, h http.Header)
}

// FetcherFunc adapts a function to Fetcher. Close is a no-op.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Close does nothing.
func (f FetcherFunc) Close() error {
	return nil
}
