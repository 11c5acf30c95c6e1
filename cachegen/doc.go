// Package cachegen namespaces derived catalog data in a shared cache under a
// single generation counter.
//
// Every cache key built through a Gate starts with the current generation.
// Bumping the generation makes every previously written key unreachable in
// one step, without enumerating or deleting keys; stale entries simply age
// out through their TTL.
//
// Typical use:
//
//	key := gate.Key(gate.CurrentVersion(ctx), "category_products", slug)
//	products, err := cachegen.GetOrBuild(ctx, gate, key, 5*time.Minute, loadProducts)
//
// and, after any catalog write:
//
//	gate.Bump(ctx)
//
// Concurrent misses on the same key are not de-duplicated: each caller runs
// its builder and the last write wins. Builders must be free of side effects.
package cachegen
