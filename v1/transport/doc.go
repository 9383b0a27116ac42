// Package transport fetches raw descriptor-set bytes from schema sources.
//
// Fetcher is the abstraction the rest of the module depends on. HTTPClient is
// the default implementation: a GET with static headers (optionally a bearer
// token), a per-request timeout and a bounded number of retries with
// exponential backoff.
//
// Retry policy:
//   - a response with status >= 400 is retried
//   - a 2xx response returns its body; an empty body yields an empty slice
//   - an I/O failure (connection refused, timeout, truncated body) is final
//   - the wait before retry n is InitialBackoff * 2^(n-1), without jitter
//
// With FetchRetries = 3 and responses 503, 503, 200, exactly three requests
// are made and the third body is returned. When every attempt fails the error
// is an *Error carrying the URL, the last status code and the cause.
//
// Example:
//
//	f := transport.NewHTTPClient(transport.Config{
//		Timeout:        10 * time.Second,
//		MaxRetries:     4,
//		InitialBackoff: 2 * time.Second,
//		BearerToken:    os.Getenv("SCHEMA_TOKEN"),
//	})
//	defer f.Close()
//
//	body, err := f.Fetch(ctx, "https://registry.internal/v1/namespaces/core/schemas/events")
package transport
