package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Aleph-Alpha/schemacache/v1/registry"
	"github.com/Aleph-Alpha/schemacache/v1/transport"
)

// VersionBased fetches "{source}/versions", a JSON document of the form
// {"versions": [1, 2, 3]}, and downloads "{source}/versions/{max}" only when
// max is positive and differs from the last version it loaded for source.
//
// Version 0 means "no version published"; it never triggers a download.
// The last loaded version is tracked per source and lives as long as the
// VersionBased value, so two clients never share it unless they share the
// strategy.
type VersionBased struct {
	mu   sync.Mutex
	last map[string]int64
}

var _ Strategy = (*VersionBased)(nil)

type versionsDocument struct {
	Versions []int64 `json:"versions"`
}

// NewVersionBased returns a VersionBased strategy with no versions seen.
func NewVersionBased() *VersionBased {
	return &VersionBased{last: make(map[string]int64)}
}

// Refresh implements Strategy.
func (v *VersionBased) Refresh(ctx context.Context, source string, fetcher transport.Fetcher, prev *registry.Snapshot) (*registry.Snapshot, error) {
	base := strings.TrimSuffix(source, "/") + "/versions"

	data, err := fetcher.Fetch(ctx, base)
	if err != nil {
		return nil, err
	}

	var doc versionsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVersions, base, err)
	}

	var latest int64
	for _, version := range doc.Versions {
		latest = max(latest, version)
	}

	if latest == 0 || (prev != nil && latest == v.lastVersion(source)) {
		return prev, nil
	}

	data, err = fetcher.Fetch(ctx, base+"/"+strconv.FormatInt(latest, 10))
	if err != nil {
		return nil, err
	}
	snapshot, err := registry.Build(data)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.last[source] = latest
	v.mu.Unlock()

	return snapshot, nil
}

// LastVersion reports the version most recently loaded for source, or 0.
func (v *VersionBased) LastVersion(source string) int64 {
	return v.lastVersion(source)
}

func (v *VersionBased) lastVersion(source string) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last[source]
}
