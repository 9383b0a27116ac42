package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "transport",
		Operation: "fetch",
		Resource:  "http://registry/a",
		Duration:  20 * time.Millisecond,
		Size:      4096,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "transport",
		Operation: "fetch",
		Duration:  time.Second,
		Error:     errors.New("503"),
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "cache",
		Operation: observability.OperationReloadSkipped,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("transport", "fetch", statusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("transport", "fetch", statusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloadsSkipped.WithLabelValues("cache")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchSize))
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "schema-consumer"})
	m.ObserveOperation(observability.OperationContext{Component: "cache", Operation: "cold_load"})

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `schemacache_operations_total{component="cache",operation="cold_load",service="schema-consumer",status="success"} 1`), body)
}

func TestCreateCounterUsesNamespace(t *testing.T) {
	m := NewMetrics(Config{Namespace: "custom"})
	c := m.CreateCounter("decodes_total", "decodes", []string{"schema"})
	c.WithLabelValues("pkg.Outer").Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "custom_decodes_total" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
}
