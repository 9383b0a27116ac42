// Package client is the public entry point of schemacache: it resolves
// protobuf message descriptors by name from one or more remote descriptor
// sets, or from descriptors compiled into the binary.
//
// Three implementations of Client exist:
//   - URLClient serves one source URL through a cache.Engine
//   - MultiURLClient serves several source URLs; for any name the first
//     source (in the order given) that defines it wins
//   - LocalClient serves descriptors linked into the program and supports
//     lookups only
//
// # Direct Usage
//
//	c, err := client.NewClient("https://registry.internal/v1/namespaces/core/schemas/events",
//		client.Config{
//			FetchAuthBearerToken: os.Getenv("SCHEMA_TOKEN"),
//			CacheAutoRefresh:     true,
//			CacheTTL:             30 * time.Minute,
//			RefreshStrategy:      refresh.NameVersionBased,
//		})
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	md, found, err := c.Get(ctx, "com.acme.events.Outer")
//
// A name that is not defined is reported with found == false; err is only
// set when the source itself could not be loaded.
//
// Sources starting with "s3://" are read from the object store configured in
// Config.ObjectStore; every other source is fetched over HTTP.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		client.FXModule,
//		fx.Provide(func() (client.Config, error) {
//			return client.NewConfigFromEnv()
//		}),
//	)
package client
