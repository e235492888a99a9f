package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/cache"
)

type blob []byte

func (b blob) Size() int64 { return int64(len(b)) }

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stores and returns values", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		defer c.Close()

		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)

		require.NoError(t, c.Set(ctx, "k", 42, time.Minute))
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, 42, v)

		require.NoError(t, c.Delete(ctx, "k"))
		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
		time.Sleep(5 * time.Millisecond)
		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("zero ttl uses the default and negative never expires", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithDefaultTTL(time.Millisecond), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "short", "v", 0))
		require.NoError(t, c.Set(ctx, "forever", "v", -1))
		time.Sleep(5 * time.Millisecond)

		_, err := c.Get(ctx, "short")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "forever")
		require.NoError(t, err)
	})

	t.Run("evicts the least recently used entry", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithMaxEntries(2))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
		require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
		_, err := c.Get(ctx, "a")
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, "c", "3", time.Minute))

		_, err = c.Get(ctx, "b")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, 2, c.Len())
	})

	t.Run("enforces the byte budget", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[blob](cache.WithMaxBytes(10))
		defer c.Close()

		var evicted []string
		c.OnEvict(func(key string, _ blob) { evicted = append(evicted, key) })

		require.NoError(t, c.Set(ctx, "a", blob("xxxx"), time.Minute))
		require.NoError(t, c.Set(ctx, "b", blob("xxxx"), time.Minute))
		require.EqualValues(t, 8, c.Bytes())

		require.NoError(t, c.Set(ctx, "c", blob("xxxx"), time.Minute))
		require.Equal(t, []string{"a"}, evicted)
		require.EqualValues(t, 8, c.Bytes())

		require.NoError(t, c.Set(ctx, "b", blob("x"), time.Minute))
		require.EqualValues(t, 5, c.Bytes())

		require.ErrorIs(t, c.Set(ctx, "huge", blob("xxxxxxxxxxx"), time.Minute), cache.ErrTooLarge)
		require.Equal(t, 2, c.Len())
	})

	t.Run("janitor sweeps expired entries", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[blob](cache.WithCleanupInterval(5 * time.Millisecond))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", blob("abc"), time.Millisecond))
		require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
		require.Zero(t, c.Bytes())
	})

	t.Run("rejects use after close", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
		require.ErrorIs(t, c.Set(ctx, "k", 1, 0), cache.ErrClosed)
		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrClosed)
	})
}

func TestLoader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads once and then hits", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		var hits, misses atomic.Int32
		l := cache.NewLoader[string](c, func(hit bool) {
			if hit {
				hits.Add(1)
			} else {
				misses.Add(1)
			}
		})

		load := func(context.Context) (string, time.Duration, error) { return "v", time.Minute, nil }
		for range 3 {
			v, err := l.GetOrSet(ctx, "k", load)
			require.NoError(t, err)
			require.Equal(t, "v", v)
		}
		require.EqualValues(t, 2, hits.Load())
		require.EqualValues(t, 1, misses.Load())
	})

	t.Run("concurrent misses share one load", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		defer c.Close()
		l := cache.NewLoader[int](c, nil)

		var calls atomic.Int32
		release := make(chan struct{})
		load := func(context.Context) (int, time.Duration, error) {
			calls.Add(1)
			<-release
			return 7, time.Minute, nil
		}

		var wg sync.WaitGroup
		results := make([]int, 8)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = l.GetOrSet(ctx, "k", load)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.EqualValues(t, 1, calls.Load())
		for _, v := range results {
			require.Equal(t, 7, v)
		}
	})

	t.Run("load errors are not cached", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		defer c.Close()
		l := cache.NewLoader[int](c, nil)

		boom := errors.New("boom")
		_, err := l.GetOrSet(ctx, "k", func(context.Context) (int, time.Duration, error) { return 0, 0, boom })
		require.ErrorIs(t, err, boom)
		require.Zero(t, c.Len())
	})

	t.Run("values over budget are served uncached", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[blob](cache.WithMaxBytes(2))
		defer c.Close()
		l := cache.NewLoader[blob](c, nil)

		v, err := l.GetOrSet(ctx, "k", func(context.Context) (blob, time.Duration, error) {
			return blob("large"), time.Minute, nil
		})
		require.NoError(t, err)
		require.Equal(t, "large", string(v))
		require.Zero(t, c.Len())
	})
}

func TestMarshalers(t *testing.T) {
	t.Parallel()

	type object struct {
		ContentType string
		Body        []byte
	}
	in := object{ContentType: "text/html", Body: []byte("<p>x</p>")}

	for name, m := range map[string]cache.Marshaler[object]{
		"msgpack": cache.MsgpackMarshaler[object]{},
		"json":    cache.JSONMarshaler[object]{},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			data, err := m.Marshal(in)
			require.NoError(t, err)
			out, err := m.Unmarshal(data)
			require.NoError(t, err)
			require.Equal(t, in, out)

			_, err = m.Unmarshal([]byte{0xc1})
			require.ErrorIs(t, err, cache.ErrUnmarshal)
		})
	}
}
