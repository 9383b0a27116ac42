package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Aleph-Alpha/schemacache/v1/cache"
	"github.com/Aleph-Alpha/schemacache/v1/logger"
	"github.com/Aleph-Alpha/schemacache/v1/objectstore"
	"github.com/Aleph-Alpha/schemacache/v1/refresh"
	"github.com/Aleph-Alpha/schemacache/v1/transport"
)

// New builds a client for cfg.URLs: a URLClient for one source, a
// MultiURLClient for several.
func New(cfg Config) (Client, error) {
	switch len(cfg.URLs) {
	case 0:
		return nil, ErrNoSources
	case 1:
		return NewClient(cfg.URLs[0], cfg)
	default:
		return NewMultiURLClient(cfg.URLs, cfg)
	}
}

// NewClient builds a URLClient for source with its own engine and fetcher.
func NewClient(source string, cfg Config) (*URLClient, error) {
	cfg.URLs = []string{source}
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &URLClient{url: source, engine: engine}, nil
}

// NewMultiURLClient builds a MultiURLClient whose sources share one engine,
// and with it one fetcher and one reload worker pool.
func NewMultiURLClient(sources []string, cfg Config) (*MultiURLClient, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	cfg.URLs = sources
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	m := &MultiURLClient{engine: engine, logger: cfg.Logger}
	if m.logger == nil {
		m.logger = logger.NewNopLogger()
	}
	for _, source := range sources {
		m.clients = append(m.clients, &URLClient{url: source, engine: engine})
	}
	return m, nil
}

func newEngine(cfg Config) (*cache.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	strategy, err := refresh.ByName(cfg.RefreshStrategy)
	if err != nil {
		return nil, err
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		if fetcher, err = newFetcher(cfg); err != nil {
			return nil, err
		}
	}

	var log cache.Logger
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	return cache.New(fetcher, strategy, cache.Config{
		TTL:         cfg.CacheTTL,
		AutoRefresh: cfg.CacheAutoRefresh,
		Workers:     cfg.RefreshWorkers,
		QueueSize:   cfg.RefreshQueueSize,
		Clock:       cfg.Clock,
		Listener:    cfg.UpdateListener,
		Logger:      log,
		Observer:    cfg.Observer,
	}), nil
}

func newFetcher(cfg Config) (transport.Fetcher, error) {
	var log transport.Logger
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	httpFetcher := transport.NewHTTPClient(transport.Config{
		Timeout:        cfg.FetchTimeout,
		MaxRetries:     cfg.FetchRetries,
		InitialBackoff: cfg.FetchBackoffMin,
		Headers:        cfg.FetchHeaders,
		BearerToken:    cfg.FetchAuthBearerToken,
		HTTPClient:     cfg.HTTPClient,
		Logger:         log,
		Observer:       cfg.Observer,
		Tracer:         cfg.Tracer,
	})

	if cfg.ObjectStore == nil {
		for _, source := range cfg.URLs {
			if isObjectStoreSource(source) {
				return nil, fmt.Errorf("%w: %s needs object_store settings", ErrInvalidConfig, source)
			}
		}
		return httpFetcher, nil
	}

	osCfg := *cfg.ObjectStore
	if osCfg.Logger == nil && cfg.Logger != nil {
		osCfg.Logger = cfg.Logger
	}
	if osCfg.Observer == nil {
		osCfg.Observer = cfg.Observer
	}
	objectFetcher, err := objectstore.NewFetcher(osCfg)
	if err != nil {
		return nil, err
	}
	return &routingFetcher{http: httpFetcher, object: objectFetcher}, nil
}

func isObjectStoreSource(source string) bool {
	u, err := url.Parse(source)
	return err == nil && u.Scheme == objectstore.Scheme
}

// routingFetcher sends "s3://" sources to the object store and everything
// else over HTTP.
type routingFetcher struct {
	http   transport.Fetcher
	object transport.Fetcher
}

func (r *routingFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if isObjectStoreSource(source) {
		return r.object.Fetch(ctx, source)
	}
	return r.http.Fetch(ctx, source)
}

func (r *routingFetcher) Close() error {
	return errors.Join(r.http.Close(), r.object.Close())
}
