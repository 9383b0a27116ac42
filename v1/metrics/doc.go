// Package metrics exposes schemacache activity to Prometheus.
//
// Metrics owns an isolated Prometheus registry whose series all carry a
// constant "service" label, and an HTTP server serving it on /metrics.
// *Metrics implements observability.Observer, so it can be handed to the
// transport, cache and client packages directly:
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:     ":9090",
//		ServiceName: "schema-consumer",
//	})
//	go m.Server.ListenAndServe()
//
//	c, err := client.NewClient(url, client.Config{Observer: m})
//
// Every observed operation increments schemacache_operations_total and feeds
// schemacache_operation_duration_seconds, labelled by component, operation and
// status. Fetch sizes land in schemacache_fetch_size_bytes and dropped reload
// requests in schemacache_reloads_skipped_total.
//
// The FXModule starts and stops the HTTP server with the application.
package metrics
