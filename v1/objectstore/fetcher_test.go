package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		defBucket  string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"bucket and key", "s3://schemas/core/events.bin", "", "schemas", "core/events.bin", false},
		{"versions path", "s3://schemas/core/events/versions/3", "", "schemas", "core/events/versions/3", false},
		{"default bucket", "s3:///core/events.bin", "fallback", "fallback", "core/events.bin", false},
		{"no bucket at all", "s3:///core/events.bin", "", "", "", true},
		{"no key", "s3://schemas", "", "", "", true},
		{"wrong scheme", "https://schemas/core", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseSource(tt.source, tt.defBucket)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestNewFetcherRequiresEndpoint(t *testing.T) {
	_, err := NewFetcher(Config{})
	assert.Error(t, err)

	f, err := NewFetcher(Config{Endpoint: "localhost:9000"})
	require.NoError(t, err)
	assert.NoError(t, f.Close())
}
