// Package cache stores computed layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: sharded JSON entries under the user cache directory (CLI default)
//   - [RedisCache]: shared cache for servers, via go-redis
//   - [MongoCache]: document cache with a TTL index, via the MongoDB driver
//   - [NullCache]: caching disabled
//
// All backends implement [Cache]. Network backends retry transient
// failures with [RetryWithBackoff]; only errors wrapped by [Retryable] are
// retried.
//
// # Keys
//
// A [Keyer] derives content-addressed keys: [Keyer.LayoutKey] from the
// document hash and the layout options, [Keyer.ArtifactKey] from the
// layout hash and the drawing options. [NewScopedKeyer] namespaces keys
// for shared backends.
//
//	key := keyer.LayoutKey(cache.Hash(doc), cache.LayoutKeyOpts{Width: 700, Height: 600})
//	data, ok, err := c.Get(ctx, key)
package cache
