// Package refresh decides how a cached snapshot is brought up to date.
//
// LongPolling refetches and reparses the source every time. VersionBased
// first asks the source which versions exist and only downloads and parses
// the newest one when it differs from the one it saw last; otherwise it hands
// back the previous snapshot unchanged (the same pointer), which the cache
// treats as "nothing changed".
package refresh

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/schemacache/v1/registry"
	"github.com/Aleph-Alpha/schemacache/v1/transport"
)

const (
	// NameLongPolling selects LongPolling in configuration.
	NameLongPolling = "long_polling"

	// NameVersionBased selects VersionBased in configuration.
	NameVersionBased = "version_based"
)

// Strategy produces the next snapshot for source. prev is nil on a cold load.
// Returning prev itself signals that nothing changed.
type Strategy interface {
	Refresh(ctx context.Context, source string, fetcher transport.Fetcher, prev *registry.Snapshot) (*registry.Snapshot, error)
}

// ByName returns a new strategy for a configuration value. The empty string
// selects LongPolling.
func ByName(name string) (Strategy, error) {
	switch name {
	case "", NameLongPolling:
		return LongPolling(), nil
	case NameVersionBased:
		return NewVersionBased(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

type longPolling struct{}

// LongPolling returns the strategy that always refetches the source.
func LongPolling() Strategy {
	return longPolling{}
}

func (longPolling) Refresh(ctx context.Context, source string, fetcher transport.Fetcher, _ *registry.Snapshot) (*registry.Snapshot, error) {
	data, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return registry.Build(data)
}
