package objectstore

import (
	"context"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

// Scheme is the URL scheme routed to the object store.
const Scheme = "s3"

// Logger is the logging surface used by the fetcher.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Config holds the object store connection settings.
type Config struct {
	// Endpoint is host[:port] of the S3 compatible server, without scheme.
	Endpoint string `yaml:"endpoint" envconfig:"SCHEMA_CACHE_S3_ENDPOINT"`

	AccessKeyID     string `yaml:"access_key_id" envconfig:"SCHEMA_CACHE_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"SCHEMA_CACHE_S3_SECRET_ACCESS_KEY"`

	// Region is optional for MinIO.
	Region string `yaml:"region" envconfig:"SCHEMA_CACHE_S3_REGION"`

	UseSSL bool `yaml:"use_ssl" envconfig:"SCHEMA_CACHE_S3_USE_SSL"`

	// Bucket is used for sources of the form "s3:///key".
	Bucket string `yaml:"bucket" envconfig:"SCHEMA_CACHE_S3_BUCKET"`

	Logger   Logger                 `yaml:"-"`
	Observer observability.Observer `yaml:"-"`
}
