package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces a value on a cache miss together with its ttl.
type LoadFunc[V any] func(ctx context.Context) (V, time.Duration, error)

// Loader fronts a Cache with miss deduplication: concurrent GetOrSet calls
// for the same key run the load function once.
type Loader[V any] struct {
	cache   Cache[V]
	group   singleflight.Group
	observe func(hit bool)
}

// NewLoader returns a Loader over c. observe, when not nil, is told whether
// each lookup was served from the cache.
func NewLoader[V any](c Cache[V], observe func(hit bool)) *Loader[V] {
	return &Loader[V]{cache: c, observe: observe}
}

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or loads and stores it.
// Load errors are returned as is and nothing is cached. Backend errors
// other than ErrNotFound are treated as a miss.
func (l *Loader[V]) GetOrSet(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		l.report(true)
		return v, nil
	}
	l.report(false)

	res, err, _ := l.group.Do(key, func() (any, error) {
		v, ttl, err := load(ctx)
		if err != nil {
			return nil, err
		}
		// Best effort: a value the backend refuses is still served.
		_ = l.cache.Set(ctx, key, v, ttl)
		return loaded[V]{val: v, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(loaded[V]).val, nil
}

func (l *Loader[V]) report(hit bool) {
	if l.observe != nil {
		l.observe(hit)
	}
}
