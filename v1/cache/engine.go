package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Aleph-Alpha/schemacache/v1/logger"
	"github.com/Aleph-Alpha/schemacache/v1/observability"
	"github.com/Aleph-Alpha/schemacache/v1/refresh"
	"github.com/Aleph-Alpha/schemacache/v1/registry"
	"github.com/Aleph-Alpha/schemacache/v1/transport"
)

// Engine caches snapshots per source and reloads them in the background.
// All methods are safe for concurrent use.
type Engine struct {
	fetcher  transport.Fetcher
	strategy refresh.Strategy
	cfg      Config
	clock    clockwork.Clock
	logger   Logger

	mu      sync.Mutex
	entries map[string]*entry

	loads singleflight.Group
	jobs  chan string

	ctx     context.Context
	cancel  context.CancelFunc
	workers errgroup.Group

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

type entry struct {
	snapshot  atomic.Pointer[registry.Snapshot]
	writtenAt atomic.Int64
	reloading atomic.Bool
}

func (en *entry) store(s *registry.Snapshot, now time.Time) {
	en.snapshot.Store(s)
	en.writtenAt.Store(now.UnixNano())
}

// New starts an Engine with its reload workers. The engine owns fetcher and
// closes it in Close.
func New(fetcher transport.Fetcher, strategy refresh.Strategy, cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	e := &Engine{
		fetcher:  fetcher,
		strategy: strategy,
		cfg:      cfg,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		entries:  make(map[string]*entry),
		jobs:     make(chan string, cfg.QueueSize),
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.logger == nil {
		e.logger = logger.NewNopLogger()
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	for i := 0; i < cfg.Workers; i++ {
		e.workers.Go(e.work)
	}
	return e
}

// Get returns the snapshot for source, loading it on the calling goroutine
// if none is cached yet. Load errors are returned; nothing is cached then.
func (e *Engine) Get(ctx context.Context, source string) (*registry.Snapshot, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	en := e.entry(source)
	if snap := en.snapshot.Load(); snap != nil {
		if e.cfg.AutoRefresh && e.expired(en) {
			e.schedule(source, en)
		}
		return snap, nil
	}
	return e.load(ctx, source, en)
}

// Reload queues a background reload of source regardless of its age.
func (e *Engine) Reload(source string) {
	if e.closed.Load() {
		return
	}
	e.schedule(source, e.entry(source))
}

// Refresh reloads source on the calling goroutine regardless of its age and
// returns the resulting snapshot. On failure the previous snapshot is kept
// and returned along with the error.
func (e *Engine) Refresh(ctx context.Context, source string) (*registry.Snapshot, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	en := e.entry(source)
	if en.snapshot.Load() == nil {
		return e.load(ctx, source, en)
	}
	snap, err := e.reload(ctx, source, en)
	if err != nil {
		return snap, fmt.Errorf("cache: refresh %s: %w", source, err)
	}
	return snap, nil
}

// Close stops the workers and closes the fetcher. Reloads already running
// see a cancelled context. Close is idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.cancel()
		_ = e.workers.Wait()
		e.closeErr = e.fetcher.Close()
	})
	return e.closeErr
}

// AutoRefresh reports whether TTL driven reloads are enabled.
func (e *Engine) AutoRefresh() bool {
	return e.cfg.AutoRefresh
}

func (e *Engine) entry(source string) *entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.entries[source]
	if !ok {
		en = &entry{}
		e.entries[source] = en
	}
	return en
}

func (e *Engine) expired(en *entry) bool {
	return e.clock.Since(time.Unix(0, en.writtenAt.Load())) > e.cfg.TTL
}

// load runs the cold load for source once for all concurrent callers. The
// shared load is detached from the caller's cancellation and bound to the
// engine lifetime instead; a cancelled caller stops waiting but the load
// keeps going for the others.
func (e *Engine) load(ctx context.Context, source string, en *entry) (*registry.Snapshot, error) {
	ch := e.loads.DoChan("load:"+source, func() (interface{}, error) {
		if snap := en.snapshot.Load(); snap != nil {
			return snap, nil
		}

		lctx, stop := context.WithCancel(context.WithoutCancel(ctx))
		defer stop()
		stopAfter := context.AfterFunc(e.ctx, stop)
		defer stopAfter()

		start := time.Now()
		snap, err := e.strategy.Refresh(lctx, source, e.fetcher, nil)
		if err == nil && snap == nil {
			err = ErrNoSnapshot
		}
		e.observeOperation("cold_load", source, time.Since(start), err, int64(snap.Len()))
		if err != nil {
			e.logger.ErrorWithContext(lctx, "schema cold load failed", err, map[string]interface{}{
				"source": source,
			})
			return nil, err
		}

		en.store(snap, e.clock.Now())
		e.logger.InfoWithContext(lctx, "schema snapshot loaded", nil, map[string]interface{}{
			"source":  source,
			"schemas": snap.Len(),
		})
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("cache: load %s: %w", source, res.Err)
		}
		return res.Val.(*registry.Snapshot), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("cache: load %s: %w", source, ctx.Err())
	}
}

func (e *Engine) schedule(source string, en *entry) {
	if !en.reloading.CompareAndSwap(false, true) {
		return
	}

	select {
	case e.jobs <- source:
		e.logger.Debug("schema reload queued", nil, map[string]interface{}{
			"source": source,
		})
	default:
		en.reloading.Store(false)
		e.logger.Warn("schema reload queue full, skipping reload", nil, map[string]interface{}{
			"source":     source,
			"queue_size": e.cfg.QueueSize,
		})
		e.observeOperation(observability.OperationReloadSkipped, source, 0, nil, 0)
	}
}

func (e *Engine) work() error {
	for {
		select {
		case <-e.ctx.Done():
			return nil
		case source := <-e.jobs:
			en := e.entry(source)
			_, _ = e.reload(e.ctx, source, en)
			en.reloading.Store(false)
		}
	}
}

// reload runs the strategy against the current snapshot of source. Failures
// keep the current snapshot, which is returned alongside the error.
func (e *Engine) reload(ctx context.Context, source string, en *entry) (*registry.Snapshot, error) {
	v, err, _ := e.loads.Do("reload:"+source, func() (interface{}, error) {
		prev := en.snapshot.Load()

		start := time.Now()
		next, err := e.strategy.Refresh(ctx, source, e.fetcher, prev)
		if err == nil && next == nil {
			next = prev
			if prev == nil {
				err = ErrNoSnapshot
			}
		}
		e.observeOperation("reload", source, time.Since(start), err, int64(next.Len()))

		if err != nil {
			if prev != nil {
				en.writtenAt.Store(e.clock.Now().UnixNano())
			}
			e.logger.WarnWithContext(ctx, "schema reload failed, keeping previous snapshot", err, map[string]interface{}{
				"source": source,
			})
			return prev, err
		}

		en.store(next, e.clock.Now())
		if next != prev && prev != nil {
			e.logger.InfoWithContext(ctx, "schema snapshot updated", nil, map[string]interface{}{
				"source":  source,
				"schemas": next.Len(),
			})
			e.notify(source, next)
		}
		return next, nil
	})

	snap, _ := v.(*registry.Snapshot)
	return snap, err
}

func (e *Engine) notify(source string, snap *registry.Snapshot) {
	if e.cfg.Listener == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("schema update listener panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"source": source,
			})
		}
	}()
	e.cfg.Listener.OnUpdate(source, snap)
}
