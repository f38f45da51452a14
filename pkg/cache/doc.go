// Package cache provides the TTL cache used by the user service.
//
// Two backends implement [Cache]:
//
//   - [Memory]: in-process map guarded by a mutex (default)
//   - [Redis]: go-redis backed, shared between processes
//
// Values are opaque byte slices. Callers encode their own payloads, which also
// means a cached value can never be mutated through a returned reference.
//
// # Basic Usage
//
//	c := cache.NewMemory()
//	if data, ok, err := c.TryGet(ctx, cache.UserKey(2)); err == nil && ok {
//		// hit
//	}
//	_ = c.Set(ctx, cache.UserKey(2), payload, 5*time.Minute)
//
// # Expiry
//
// An entry whose TTL has elapsed is never returned; both backends re-check
// the stored expiry on read and evict stale entries.
//
// # Concurrency
//
// Both backends are safe for concurrent use. There is no request coalescing:
// concurrent misses on the same key are reported independently.
//
// # Metrics
//
//   - reqres_cache_hits_total{backend}
//   - reqres_cache_misses_total{backend}
//   - reqres_cache_errors_total{backend,operation}
package cache
