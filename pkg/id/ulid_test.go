package id_test

import (
	"bytes"
	"regexp"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/id"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("uses the crockford alphabet", func(t *testing.T) {
		t.Parallel()

		v := id.NewULID()
		require.Len(t, v, 26)
		require.Regexp(t, regexp.MustCompile(`^[0-9A-HJ-KM-NP-TV-Z]{26}$`), v)
	})

	t.Run("is sortable by creation order", func(t *testing.T) {
		t.Parallel()

		ids := make([]string, 200)
		for i := range ids {
			ids[i] = id.NewULID()
		}
		require.True(t, slices.IsSorted(ids))
	})

	t.Run("is unique across goroutines", func(t *testing.T) {
		t.Parallel()

		const workers, perWorker = 8, 250
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{}, workers*perWorker)
			wg   sync.WaitGroup
		)
		for range workers {
			wg.Go(func() {
				for range perWorker {
					v := id.NewULID()
					mu.Lock()
					seen[v] = struct{}{}
					mu.Unlock()
				}
			})
		}
		wg.Wait()
		require.Len(t, seen, workers*perWorker)
	})
}

func TestGenerator(t *testing.T) {
	t.Parallel()

	t.Run("reports entropy failures", func(t *testing.T) {
		t.Parallel()

		g := id.NewGenerator(bytes.NewReader(nil))
		_, err := g.New()
		require.Error(t, err)
	})
}
