// Package cache provides the partitioned response cache behind the
// storefront client.
//
// Every cached response belongs to a partition named after the logical
// resource it came from:
//
//   - products      listing pages, one entry per query descriptor
//   - product:<id>  a single product
//   - categories    the category list
//   - brands        the brand list
//   - cart          the signed-in user's cart
//   - orders        the signed-in user's orders
//
// Entries do not expire on their own. A successful mutation elsewhere in
// the client invalidates exactly the partitions it affects, and the next
// read refetches. Browsing never invalidates anything.
//
// # Basic Usage
//
//	loader := cache.NewLoader(cache.NewMemoryStore(), logger)
//
//	key := cache.Key{Partition: cache.PartitionProducts, ID: desc.Key()}
//	data, err := loader.Load(ctx, key, func(ctx context.Context) ([]byte, error) {
//		return fetchFromBackend(ctx, desc)
//	})
//
//	// After adding an item to the cart:
//	loader.Invalidate(ctx, cache.PartitionCart)
//
// Concurrent Load calls for the same key share a single fetch.
//
// Callers that decode the body use LoadDecoded, so a 2xx body that does not
// decode (a proxy error page, a truncated response) is never stored:
//
//	page, err := cache.LoadDecoded(ctx, loader, key, fetch, decodePage)
//
// # Backends
//
// MemoryStore keeps entries for the life of the process. RedisStore keeps
// them in Redis so that several CLI invocations share one cache; partition
// invalidation there scans the partition's key prefix.
//
// # Metrics
//
//   - storefront_cache_hits_total{partition}
//   - storefront_cache_misses_total{partition}
//   - storefront_cache_shared_loads_total{partition}
//   - storefront_cache_invalidations_total{partition}
//   - storefront_cache_errors_total{operation}
package cache
