package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnexpectedStatus is the cause recorded for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Fetch GETs url, retrying responses with status >= 400 according to the
// configured backoff. I/O failures are not retried.
func (c *HTTPClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	var span trace.Span
	if c.cfg.Tracer != nil {
		ctx, span = c.cfg.Tracer.StartSpan(ctx, "schemacache.transport.fetch")
		defer span.End()
	}

	body, attempts, err := c.fetchWithRetry(ctx, url)

	if span != nil {
		c.cfg.Tracer.SetAttributes(span, map[string]interface{}{
			"schemacache.source":   url,
			"schemacache.attempts": attempts,
			"schemacache.size":     len(body),
		})
		if err != nil {
			c.cfg.Tracer.RecordErrorOnSpan(span, err)
		}
	}
	c.observeOperation("fetch", url, time.Since(start), err, int64(len(body)), map[string]interface{}{
		"attempts": attempts,
	})

	if err != nil {
		if c.cfg.Logger != nil {
			c.cfg.Logger.ErrorWithContext(ctx, "descriptor fetch failed", err, map[string]interface{}{
				"source":   url,
				"attempts": attempts,
			})
		}
		return nil, err
	}
	return body, nil
}

func (c *HTTPClient) fetchWithRetry(ctx context.Context, url string) ([]byte, int, error) {
	var (
		body       []byte
		attempts   int
		lastStatus int
	)

	operation := func() error {
		attempts++
		lastStatus = 0

		status, b, err := c.do(ctx, url)
		if err != nil {
			return backoff.Permanent(err)
		}
		lastStatus = status

		switch {
		case status >= 200 && status < 300:
			body = b
			return nil
		case status >= 400:
			return ErrUnexpectedStatus
		default:
			return backoff.Permanent(ErrUnexpectedStatus)
		}
	}

	notify := func(err error, wait time.Duration) {
		if c.cfg.Logger == nil {
			return
		}
		c.cfg.Logger.InfoWithContext(ctx, "retrying descriptor fetch", err, map[string]interface{}{
			"source":       url,
			"status":       lastStatus,
			"attempt":      attempts,
			"retries_left": c.cfg.MaxRetries - attempts + 1,
			"wait_ms":      wait.Milliseconds(),
		})
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), notify); err != nil {
		return nil, attempts, &Error{URL: url, StatusCode: lastStatus, Attempts: attempts, Err: err}
	}
	if body == nil {
		body = []byte{}
	}
	return body, attempts, nil
}

// do performs one request. A non-nil error means no usable response arrived.
func (c *HTTPClient) do(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	if c.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}
	if c.cfg.Tracer != nil {
		c.cfg.Tracer.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused for the retry.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return resp.StatusCode, nil, nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, b, nil
}

func (c *HTTPClient) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = max(maxBackoffInterval, c.cfg.InitialBackoff)
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)
}
