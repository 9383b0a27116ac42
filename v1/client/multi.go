package client

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/Aleph-Alpha/schemacache/v1/cache"
	"github.com/Aleph-Alpha/schemacache/v1/registry"
)

// MultiURLClient serves several sources sharing one engine. Sources are
// consulted in the order they were given; the first that defines a name wins.
type MultiURLClient struct {
	clients []*URLClient
	engine  *cache.Engine
	logger  Logger
}

var (
	_ Client        = (*MultiURLClient)(nil)
	_ SyncRefresher = (*MultiURLClient)(nil)
)

// Get implements Client. A source that fails to load fails the lookup, even
// if a later source would have found the name.
func (m *MultiURLClient) Get(ctx context.Context, name string) (protoreflect.MessageDescriptor, bool, error) {
	for _, c := range m.clients {
		md, ok, err := c.Get(ctx, name)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return md, true, nil
		}
	}
	return nil, false, nil
}

// GetAll implements Client, merging with first-source-wins precedence.
func (m *MultiURLClient) GetAll(ctx context.Context) (map[string]protoreflect.MessageDescriptor, error) {
	merged := make(map[string]protoreflect.MessageDescriptor)
	for _, c := range m.clients {
		all, err := c.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		for name, md := range all {
			if _, ok := merged[name]; !ok {
				merged[name] = md
			}
		}
	}
	return merged, nil
}

// GetTypeNameToPackageNameMap implements Client, merging with
// first-source-wins precedence.
func (m *MultiURLClient) GetTypeNameToPackageNameMap(ctx context.Context) (map[string]string, error) {
	merged := make(map[string]string)
	for _, c := range m.clients {
		names, err := c.GetTypeNameToPackageNameMap(ctx)
		if err != nil {
			return nil, err
		}
		for typeName, key := range names {
			if _, ok := merged[typeName]; !ok {
				merged[typeName] = key
			}
		}
	}
	return merged, nil
}

// GetTypeResolver implements Client. Types are looked up source by source,
// in precedence order.
func (m *MultiURLClient) GetTypeResolver(ctx context.Context) (registry.TypeResolver, error) {
	chain := make(registry.ResolverChain, 0, len(m.clients))
	for _, c := range m.clients {
		r, err := c.GetTypeResolver(ctx)
		if err != nil {
			return nil, err
		}
		chain = append(chain, r)
	}
	return chain, nil
}

// Refresh refreshes every source and joins their errors.
func (m *MultiURLClient) Refresh(ctx context.Context) error {
	var errs []error
	for _, c := range m.clients {
		if err := c.Refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RefreshSync implements SyncRefresher and joins the errors of all sources.
func (m *MultiURLClient) RefreshSync(ctx context.Context) error {
	var errs []error
	for _, c := range m.clients {
		if err := c.RefreshSync(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Warm loads all sources concurrently and returns the first error.
func (m *MultiURLClient) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range m.clients {
		g.Go(func() error {
			return c.Warm(ctx)
		})
	}
	return g.Wait()
}

// URLs returns the sources in precedence order.
func (m *MultiURLClient) URLs() []string {
	urls := make([]string, 0, len(m.clients))
	for _, c := range m.clients {
		urls = append(urls, c.URL())
	}
	return urls
}

// Close stops the engine shared by all sources. Failures are logged, never
// returned.
func (m *MultiURLClient) Close() error {
	if err := m.engine.Close(); err != nil {
		m.logger.Error("failed to close schema sources", err, map[string]interface{}{
			"sources": m.URLs(),
		})
	}
	return nil
}
