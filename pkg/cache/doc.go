// Package cache holds rendered source objects between requests.
//
// [Memory] is an LRU bounded by entry count and by bytes; values that
// implement [Sizer] are charged their Size against [WithMaxBytes]. [Redis]
// shares entries between replicas and encodes them with msgpack by default.
//
// [Loader] puts singleflight in front of either backend so a burst of misses
// for one key loads it once:
//
//	objects := cache.NewMemory[source.Object](cache.WithMaxBytes(64 << 20))
//	l := cache.NewLoader[source.Object](objects, func(hit bool) {
//		m.CacheLookup("s3", hit)
//	})
//	obj, err := l.GetOrSet(ctx, key, func(ctx context.Context) (source.Object, time.Duration, error) {
//		o, err := fetch(ctx, key)
//		return o, 5 * time.Minute, err
//	})
package cache
