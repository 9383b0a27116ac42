package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// registryServer serves descriptor sets by path and counts requests.
type registryServer struct {
	*httptest.Server

	mu     sync.Mutex
	bodies map[string][]byte
	status map[string]int
	hits   atomic.Int32
}

func newRegistryServer(t *testing.T) *registryServer {
	t.Helper()
	rs := &registryServer{bodies: map[string][]byte{}, status: map[string]int{}}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.hits.Add(1)
		rs.mu.Lock()
		body, ok := rs.bodies[r.URL.Path]
		status := rs.status[r.URL.Path]
		rs.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *registryServer) serve(path string, body []byte) string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.bodies[path] = body
	delete(rs.status, path)
	return rs.URL + path
}

func (rs *registryServer) fail(path string, status int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.status[path] = status
}

func testConfig() Config {
	return Config{
		FetchTimeout:    time.Second,
		FetchRetries:    -1,
		FetchBackoffMin: time.Millisecond,
	}
}
