package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/Aleph-Alpha/schemacache/internal/schematest"
	"github.com/Aleph-Alpha/schemacache/v1/cache"
	"github.com/Aleph-Alpha/schemacache/v1/registry"
	"github.com/Aleph-Alpha/schemacache/v1/transport"
)

func TestURLClientGet(t *testing.T) {
	rs := newRegistryServer(t)
	source := rs.serve("/schemas/events", schematest.Events())

	c, err := NewClient(source, testConfig())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()

	md, found, err := c.Get(ctx, "com.acme.events.Outer.Inner")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, protoreflect.FullName("acme.events.Outer.Inner"), md.FullName())

	_, found, err = c.Get(ctx, "acme.events.DoesNotExist")
	require.NoError(t, err)
	assert.False(t, found)

	all, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	names, err := c.GetTypeNameToPackageNameMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "com.acme.events.Outer", names[".acme.events.Outer"])

	assert.EqualValues(t, 1, rs.hits.Load())
	assert.Equal(t, source, c.URL())
}

func TestURLClientSourceUnavailable(t *testing.T) {
	rs := newRegistryServer(t)
	rs.fail("/schemas/events", http.StatusServiceUnavailable)

	c, err := NewClient(rs.URL+"/schemas/events", testConfig())
	require.NoError(t, err)
	defer c.Close()

	_, _, err = c.Get(context.Background(), "acme.events.Outer")
	require.Error(t, err)
	assert.True(t, transport.IsFetchError(err))
	assert.Equal(t, http.StatusServiceUnavailable, transport.StatusCode(err))
}

func TestURLClientRefreshWithoutAutoRefresh(t *testing.T) {
	rs := newRegistryServer(t)
	source := rs.serve("/schemas/events", schematest.Events())

	c, err := NewClient(source, testConfig())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	md, _, err := c.Get(ctx, "acme.events.Outer")
	require.NoError(t, err)
	assert.Nil(t, md.Fields().ByName("source"))

	rs.serve("/schemas/events", schematest.EventsV2())
	require.NoError(t, c.Refresh(ctx))

	md, _, err = c.Get(ctx, "acme.events.Outer")
	require.NoError(t, err)
	assert.NotNil(t, md.Fields().ByName("source"))

	// A failing refresh reports the error and keeps serving the last snapshot.
	rs.fail("/schemas/events", http.StatusInternalServerError)
	assert.Error(t, c.Refresh(ctx))
	_, found, err := c.Get(ctx, "acme.events.Outer")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestURLClientRefreshWithAutoRefresh(t *testing.T) {
	rs := newRegistryServer(t)
	source := rs.serve("/schemas/events", schematest.Events())

	updates := make(chan *registry.Snapshot, 1)
	cfg := testConfig()
	cfg.CacheAutoRefresh = true
	cfg.CacheTTL = time.Hour
	cfg.UpdateListener = cache.UpdateListenerFunc(func(_ string, snap *registry.Snapshot) {
		updates <- snap
	})

	c, err := NewClient(source, cfg)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	_, _, err = c.Get(ctx, "acme.events.Outer")
	require.NoError(t, err)

	rs.serve("/schemas/events", schematest.EventsV2())
	require.NoError(t, c.Refresh(ctx))

	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("background refresh did not complete")
	}

	md, _, err := c.Get(ctx, "acme.events.Outer")
	require.NoError(t, err)
	assert.NotNil(t, md.Fields().ByName("source"))
}

func TestURLClientVersionBased(t *testing.T) {
	rs := newRegistryServer(t)
	rs.serve("/schemas/events/versions", []byte(`{"versions":[1]}`))
	rs.serve("/schemas/events/versions/1", schematest.Events())

	cfg := testConfig()
	cfg.RefreshStrategy = "version_based"
	c, err := NewClient(rs.URL+"/schemas/events", cfg)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	_, found, err := c.Get(ctx, "RootField")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, c.Refresh(ctx))
	// versions + versions/1 for the load, versions only for the refresh.
	assert.EqualValues(t, 3, rs.hits.Load())
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = NewClient("http://registry/a", Config{RefreshStrategy: "push"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewClient("s3://schemas/a", Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	c, err := New(Config{URLs: []string{"http://registry/a"}})
	require.NoError(t, err)
	assert.IsType(t, &URLClient{}, c)
	require.NoError(t, c.Close())

	c, err = New(Config{URLs: []string{"http://registry/a", "http://registry/b"}})
	require.NoError(t, err)
	assert.IsType(t, &MultiURLClient{}, c)
	require.NoError(t, c.Close())
}

func TestCustomFetcher(t *testing.T) {
	cfg := testConfig()
	cfg.Fetcher = transport.FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		assert.Equal(t, "memory://events", url)
		return schematest.Events(), nil
	})

	c, err := NewClient("memory://events", cfg)
	require.NoError(t, err)
	defer c.Close()

	_, found, err := c.Get(context.Background(), ".RootField")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestURLClientRefreshSyncWithAutoRefresh(t *testing.T) {
	rs := newRegistryServer(t)
	source := rs.serve("/schemas/events", schematest.Events())

	cfg := testConfig()
	cfg.CacheAutoRefresh = true
	cfg.CacheTTL = time.Hour

	c, err := NewClient(source, cfg)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Warm(ctx))

	rs.serve("/schemas/events", schematest.EventsV2())
	require.NoError(t, c.RefreshSync(ctx))
	assert.EqualValues(t, 2, rs.hits.Load())

	md, _, err := c.Get(ctx, "acme.events.Outer")
	require.NoError(t, err)
	assert.NotNil(t, md.Fields().ByName("source"))

	rs.fail("/schemas/events", http.StatusInternalServerError)
	assert.Error(t, c.RefreshSync(ctx))
}

func TestURLClientTypeResolver(t *testing.T) {
	rs := newRegistryServer(t)
	source := rs.serve("/schemas/ext", schematest.Extensions())

	c, err := NewClient(source, testConfig())
	require.NoError(t, err)
	defer c.Close()

	r, err := c.GetTypeResolver(context.Background())
	require.NoError(t, err)
	_, err = r.FindExtensionByName("ext.tag")
	assert.NoError(t, err)
}
