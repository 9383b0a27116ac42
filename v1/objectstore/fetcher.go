// Package objectstore fetches descriptor sets stored in an S3 compatible
// object store such as MinIO.
//
// Sources are URLs of the form "s3://bucket/path/to/descriptor.bin". The
// version-gated refresh strategy works unchanged: it reads the objects
// "<key>/versions" and "<key>/versions/<n>".
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
	"github.com/Aleph-Alpha/schemacache/v1/transport"
)

// ErrInvalidSource is returned for URLs that do not name an object.
var ErrInvalidSource = errors.New("objectstore: invalid source")

// Fetcher implements transport.Fetcher on top of a MinIO client.
type Fetcher struct {
	client *minio.Client
	cfg    Config
}

var _ transport.Fetcher = (*Fetcher)(nil)

// NewFetcher creates a MinIO client for cfg. No request is made until the
// first Fetch.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("objectstore: endpoint is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create client: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("object store fetcher ready", nil, map[string]interface{}{
			"endpoint": cfg.Endpoint,
			"ssl":      cfg.UseSSL,
		})
	}
	return &Fetcher{client: client, cfg: cfg}, nil
}

// Fetch reads the whole object named by source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	start := time.Now()

	data, err := f.fetch(ctx, source)

	f.observeOperation(source, time.Since(start), err, int64(len(data)))
	if err != nil {
		if f.cfg.Logger != nil {
			f.cfg.Logger.ErrorWithContext(ctx, "object store fetch failed", err, map[string]interface{}{
				"source": source,
			})
		}
		return nil, err
	}
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, source string) ([]byte, error) {
	bucket, key, err := ParseSource(source, f.cfg.Bucket)
	if err != nil {
		return nil, &transport.Error{URL: source, Err: err}
	}

	obj, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, toTransportError(source, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, toTransportError(source, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Close is a no-op; the MinIO client holds no resources needing release.
func (f *Fetcher) Close() error {
	return nil
}

// ParseSource splits "s3://bucket/key" into bucket and key. An empty bucket
// ("s3:///key") falls back to defaultBucket.
func ParseSource(source, defaultBucket string) (string, string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if u.Scheme != Scheme {
		return "", "", fmt.Errorf("%w: scheme %q", ErrInvalidSource, u.Scheme)
	}

	bucket := u.Host
	if bucket == "" {
		bucket = defaultBucket
	}
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidSource, source)
	}
	return bucket, key, nil
}

func toTransportError(source string, err error) error {
	return &transport.Error{
		URL:        source,
		StatusCode: minio.ToErrorResponse(err).StatusCode,
		Attempts:   1,
		Err:        err,
	}
}

func (f *Fetcher) observeOperation(resource string, duration time.Duration, err error, size int64) {
	if f.cfg.Observer == nil {
		return
	}

	f.cfg.Observer.ObserveOperation(observability.OperationContext{
		Component: "objectstore",
		Operation: "fetch",
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
