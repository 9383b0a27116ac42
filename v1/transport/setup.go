package transport

import (
	"net/http"
)

// HTTPClient is the retrying HTTP Fetcher.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	ownsClient bool
}

var _ Fetcher = (*HTTPClient)(nil)

// NewHTTPClient builds an HTTPClient from cfg, filling unset fields with their
// defaults.
func NewHTTPClient(cfg Config) *HTTPClient {
	cfg = cfg.withDefaults()

	c := &HTTPClient{cfg: cfg, httpClient: cfg.HTTPClient}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
		c.ownsClient = true
	}
	return c
}

// Close releases idle connections of the underlying client. A client passed
// in through Config.HTTPClient is left open.
func (c *HTTPClient) Close() error {
	if c.ownsClient {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
