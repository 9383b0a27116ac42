package client

import (
	"context"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/Aleph-Alpha/schemacache/v1/cache"
	"github.com/Aleph-Alpha/schemacache/v1/registry"
)

// Client resolves message descriptors by name.
type Client interface {
	// Get looks up name (canonical name, alias, dotted type name or
	// package-less path). found is false for unknown names; err is set only
	// when the underlying source could not be loaded.
	Get(ctx context.Context, name string) (md protoreflect.MessageDescriptor, found bool, err error)

	// GetAll returns every known name with its descriptor.
	GetAll(ctx context.Context) (map[string]protoreflect.MessageDescriptor, error)

	// GetTypeNameToPackageNameMap maps dotted proto type names (".pkg.Outer")
	// to their preferred lookup key.
	GetTypeNameToPackageNameMap(ctx context.Context) (map[string]string, error)

	// GetTypeResolver resolves the extension and message types declared by
	// the sources, for use as the Resolver of proto and protojson unmarshal
	// options.
	GetTypeResolver(ctx context.Context) (registry.TypeResolver, error)

	// Refresh forces the sources to be reloaded.
	Refresh(ctx context.Context) error

	// Close releases the client. It must not be used afterwards.
	Close() error
}

// SyncRefresher is implemented by clients that can reload their sources on
// the calling goroutine even when background auto-refresh is enabled.
type SyncRefresher interface {
	// RefreshSync reloads every source before returning. On failure the
	// previous snapshots stay in place and the error is returned.
	RefreshSync(ctx context.Context) error
}

// URLClient serves a single source URL.
type URLClient struct {
	url    string
	engine *cache.Engine
}

var (
	_ Client        = (*URLClient)(nil)
	_ SyncRefresher = (*URLClient)(nil)
)

// URL returns the source this client serves.
func (c *URLClient) URL() string {
	return c.url
}

// Get implements Client.
func (c *URLClient) Get(ctx context.Context, name string) (protoreflect.MessageDescriptor, bool, error) {
	snap, err := c.engine.Get(ctx, c.url)
	if err != nil {
		return nil, false, err
	}
	md, ok := snap.Get(name)
	return md, ok, nil
}

// GetAll implements Client.
func (c *URLClient) GetAll(ctx context.Context) (map[string]protoreflect.MessageDescriptor, error) {
	snap, err := c.engine.Get(ctx, c.url)
	if err != nil {
		return nil, err
	}
	return snap.All(), nil
}

// GetTypeNameToPackageNameMap implements Client.
func (c *URLClient) GetTypeNameToPackageNameMap(ctx context.Context) (map[string]string, error) {
	snap, err := c.engine.Get(ctx, c.url)
	if err != nil {
		return nil, err
	}
	return snap.TypeNames(), nil
}

// GetTypeResolver implements Client.
func (c *URLClient) GetTypeResolver(ctx context.Context) (registry.TypeResolver, error) {
	snap, err := c.engine.Get(ctx, c.url)
	if err != nil {
		return nil, err
	}
	return snap.Types(), nil
}

// Refresh reloads the source. With auto-refresh enabled the reload is queued
// for the background workers and Refresh returns at once; otherwise it runs
// here and its error is returned, the previous snapshot staying in place.
func (c *URLClient) Refresh(ctx context.Context) error {
	if c.engine.AutoRefresh() {
		c.engine.Reload(c.url)
		return nil
	}
	return c.RefreshSync(ctx)
}

// RefreshSync implements SyncRefresher.
func (c *URLClient) RefreshSync(ctx context.Context) error {
	_, err := c.engine.Refresh(ctx, c.url)
	return err
}

// Warm loads the source if it is not cached yet.
func (c *URLClient) Warm(ctx context.Context) error {
	_, err := c.engine.Get(ctx, c.url)
	return err
}

// Close stops the engine behind this client.
func (c *URLClient) Close() error {
	return c.engine.Close()
}
