// Package cache keeps one registry.Snapshot per source URL and refreshes it
// in the background.
//
// The first Get for a source loads it on the calling goroutine; concurrent
// first Gets for the same source share that single load. Later Gets return
// the cached snapshot immediately. When auto-refresh is enabled and the
// snapshot is older than the TTL, Get still returns it but also queues a
// reload for a small pool of worker goroutines. At most one reload per source
// is queued or running at any time, and Get never waits for the queue: if the
// queue is full the reload is dropped and tried again on the next expired Get.
//
// A failed reload keeps the previous snapshot and restarts its TTL. A reload
// that produces a different snapshot replaces it atomically and, if an
// UpdateListener is configured, notifies it from the worker goroutine.
//
//	engine := cache.New(fetcher, refresh.LongPolling(), cache.Config{
//		TTL:         45 * time.Minute,
//		AutoRefresh: true,
//	})
//	defer engine.Close()
//
//	snap, err := engine.Get(ctx, "https://registry.internal/v1/namespaces/core/schemas/events")
package cache
