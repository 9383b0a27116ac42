package client

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/schemacache/v1/cache"
	"github.com/Aleph-Alpha/schemacache/v1/objectstore"
	"github.com/Aleph-Alpha/schemacache/v1/observability"
	"github.com/Aleph-Alpha/schemacache/v1/refresh"
	"github.com/Aleph-Alpha/schemacache/v1/transport"
)

const (
	// DefaultFetchTimeout bounds a single descriptor request.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultFetchRetries is the number of retries after a failed request.
	DefaultFetchRetries = 4

	// DefaultRefreshWorkers is the size of the background reload pool.
	DefaultRefreshWorkers = cache.DefaultWorkers

	minDefaultTTL = 30 * time.Minute
	maxDefaultTTL = 60 * time.Minute

	envPrefix = "SCHEMA_CACHE_"
)

// Logger is the logging surface used by the clients. *logger.Logger
// implements it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Config holds everything needed to build a remote client.
type Config struct {
	// URLs lists the sources, in precedence order. Used by New and the FX
	// module; NewClient and NewMultiURLClient take their URLs explicitly.
	URLs []string `yaml:"urls"`

	// FetchTimeout bounds a single request. Default: 10s.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// FetchRetries is the number of retries after a failed request.
	// Negative disables retries. Default: 4.
	FetchRetries int `yaml:"fetch_retries"`

	// FetchBackoffMin is the wait before the first retry; later waits double.
	// Default: random in [2s, 5s).
	FetchBackoffMin time.Duration `yaml:"fetch_backoff_min"`

	// FetchHeaders are sent with every HTTP request.
	FetchHeaders map[string]string `yaml:"fetch_headers"`

	// FetchAuthBearerToken is sent as "Authorization: Bearer <token>".
	FetchAuthBearerToken string `yaml:"fetch_auth_bearer_token"`

	// CacheAutoRefresh enables background reloads of snapshots older than
	// CacheTTL. Default: false.
	CacheAutoRefresh bool `yaml:"cache_auto_refresh"`

	// CacheTTL is the snapshot age that triggers a reload. Default: random
	// in [30m, 60m).
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// RefreshStrategy is refresh.NameLongPolling (default) or
	// refresh.NameVersionBased.
	RefreshStrategy string `yaml:"refresh_strategy"`

	// RefreshWorkers is the size of the reload pool. Default: 2.
	RefreshWorkers int `yaml:"refresh_workers"`

	// RefreshQueueSize bounds pending reloads. Default: 64.
	RefreshQueueSize int `yaml:"refresh_queue_size"`

	// ObjectStore enables "s3://" sources.
	ObjectStore *objectstore.Config `yaml:"object_store"`

	Logger         Logger                 `yaml:"-"`
	Observer       observability.Observer `yaml:"-"`
	Tracer         transport.Tracer       `yaml:"-"`
	UpdateListener cache.UpdateListener   `yaml:"-"`
	Clock          clockwork.Clock        `yaml:"-"`

	// Fetcher replaces the built-in HTTP and object store fetchers.
	Fetcher transport.Fetcher `yaml:"-"`

	// HTTPClient replaces the HTTP client of the built-in fetcher.
	HTTPClient *http.Client `yaml:"-"`
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if c.FetchTimeout < 0 {
		return fmt.Errorf("%w: fetch_timeout must not be negative", ErrInvalidConfig)
	}
	if c.FetchBackoffMin < 0 {
		return fmt.Errorf("%w: fetch_backoff_min must not be negative", ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must not be negative", ErrInvalidConfig)
	}
	if c.RefreshWorkers < 0 || c.RefreshQueueSize < 0 {
		return fmt.Errorf("%w: refresh pool sizes must not be negative", ErrInvalidConfig)
	}
	if _, err := refresh.ByName(c.RefreshStrategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, u := range c.URLs {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("%w: empty source URL", ErrInvalidConfig)
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.FetchRetries == 0 {
		c.FetchRetries = DefaultFetchRetries
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL()
	}
	if c.RefreshWorkers == 0 {
		c.RefreshWorkers = DefaultRefreshWorkers
	}
	return c
}

// DefaultCacheTTL returns a random TTL in [30m, 60m) so that clients started
// together do not refresh together.
func DefaultCacheTTL() time.Duration {
	return minDefaultTTL + rand.N(maxDefaultTTL-minDefaultTTL)
}

// NewConfigFromEnv builds a Config from SCHEMA_CACHE_* environment variables.
//
//	SCHEMA_CACHE_URLS=https://a/schemas/x,https://b/schemas/y
//	SCHEMA_CACHE_FETCH_TIMEOUT=10s
//	SCHEMA_CACHE_FETCH_RETRIES=4
//	SCHEMA_CACHE_FETCH_BACKOFF_MIN=2s
//	SCHEMA_CACHE_FETCH_AUTH_BEARER_TOKEN=...
//	SCHEMA_CACHE_CACHE_AUTO_REFRESH=true
//	SCHEMA_CACHE_CACHE_TTL=30m
//	SCHEMA_CACHE_REFRESH_STRATEGY=version_based
//	SCHEMA_CACHE_REFRESH_WORKERS=2
//	SCHEMA_CACHE_S3_ENDPOINT=minio:9000
//	SCHEMA_CACHE_S3_BUCKET=schemas
func NewConfigFromEnv() (Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadConfigFile reads a YAML config file and applies environment overrides.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("client: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("client: parse config %s: %w", path, err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupEnv("URLS"); ok {
		cfg.URLs = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.URLs = append(cfg.URLs, u)
			}
		}
	}
	if v, ok := lookupEnv("FETCH_AUTH_BEARER_TOKEN"); ok {
		cfg.FetchAuthBearerToken = v
	}
	if v, ok := lookupEnv("REFRESH_STRATEGY"); ok {
		cfg.RefreshStrategy = v
	}

	durations := map[string]*time.Duration{
		"FETCH_TIMEOUT":     &cfg.FetchTimeout,
		"FETCH_BACKOFF_MIN": &cfg.FetchBackoffMin,
		"CACHE_TTL":         &cfg.CacheTTL,
	}
	for key, dst := range durations {
		if v, ok := lookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, envPrefix, key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"FETCH_RETRIES":      &cfg.FetchRetries,
		"REFRESH_WORKERS":    &cfg.RefreshWorkers,
		"REFRESH_QUEUE_SIZE": &cfg.RefreshQueueSize,
	}
	for key, dst := range ints {
		if v, ok := lookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, envPrefix, key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookupEnv("CACHE_AUTO_REFRESH"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_AUTO_REFRESH: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.CacheAutoRefresh = b
	}
	return applyObjectStoreEnv(cfg)
}

// applyObjectStoreEnv reads SCHEMA_CACHE_S3_*; any of them enables object
// store sources.
func applyObjectStoreEnv(cfg *Config) error {
	strs := map[string]func(*objectstore.Config, string){
		"S3_ENDPOINT":          func(c *objectstore.Config, v string) { c.Endpoint = v },
		"S3_ACCESS_KEY_ID":     func(c *objectstore.Config, v string) { c.AccessKeyID = v },
		"S3_SECRET_ACCESS_KEY": func(c *objectstore.Config, v string) { c.SecretAccessKey = v },
		"S3_REGION":            func(c *objectstore.Config, v string) { c.Region = v },
		"S3_BUCKET":            func(c *objectstore.Config, v string) { c.Bucket = v },
	}
	for key, set := range strs {
		if v, ok := lookupEnv(key); ok {
			if cfg.ObjectStore == nil {
				cfg.ObjectStore = &objectstore.Config{}
			}
			set(cfg.ObjectStore, v)
		}
	}

	if v, ok := lookupEnv("S3_USE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sS3_USE_SSL: %v", ErrInvalidConfig, envPrefix, err)
		}
		if cfg.ObjectStore == nil {
			cfg.ObjectStore = &objectstore.Config{}
		}
		cfg.ObjectStore.UseSSL = b
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
