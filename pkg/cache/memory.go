package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	key       string
	value     V
	size      int64
	expiresAt time.Time // zero: never
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process LRU cache with ttl expiry. It can be bounded by
// entry count, by total bytes of Sizer values, or both.
type Memory[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	lru     *list.List // front is most recent
	bytes   int64
	opts    memoryOptions
	onEvict func(key string, value V)
	done    chan struct{}
	closed  bool
}

// NewMemory starts a janitor goroutine unless the cleanup interval is zero;
// call Close to stop it.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := memoryOptions{defaultTTL: time.Hour, cleanupInterval: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

// OnEvict registers fn to run for every entry that leaves the cache.
// fn runs with the cache lock held and must not call back into it.
func (m *Memory[V]) OnEvict(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	if m.closed {
		return zero, ErrClosed
	}
	elem, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := elem.Value.(*entry[V])
	if e.expired(time.Now()) {
		m.remove(elem)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(elem)
	return e.value, nil
}

// Set returns ErrTooLarge when a single value is bigger than the byte budget.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var size int64
	if s, ok := any(value).(Sizer); ok {
		size = s.Size()
	}
	if m.opts.maxBytes > 0 && size > m.opts.maxBytes {
		return ErrTooLarge
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry[V])
		m.bytes += size - e.size
		e.value, e.size, e.expiresAt = value, size, expiresAt
		m.lru.MoveToFront(elem)
	} else {
		m.items[key] = m.lru.PushFront(&entry[V]{key: key, value: value, size: size, expiresAt: expiresAt})
		m.bytes += size
	}
	m.shrink()
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Len reports the number of entries, expired ones included until swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Bytes reports the summed size of Sizer values held.
func (m *Memory[V]) Bytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytes
}

// Close stops the janitor. It is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Memory[V]) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).expired(now) {
			m.remove(elem)
		}
		elem = prev
	}
}

// shrink evicts from the back until both limits hold. Caller holds mu.
func (m *Memory[V]) shrink() {
	for m.lru.Len() > 0 {
		overCount := m.opts.maxEntries > 0 && m.lru.Len() > m.opts.maxEntries
		overBytes := m.opts.maxBytes > 0 && m.bytes > m.opts.maxBytes
		if !overCount && !overBytes {
			return
		}
		m.remove(m.lru.Back())
	}
}

// remove drops elem and fires the eviction callback. Caller holds mu.
func (m *Memory[V]) remove(elem *list.Element) {
	e := m.lru.Remove(elem).(*entry[V])
	delete(m.items, e.key)
	m.bytes -= e.size
	if m.onEvict != nil {
		m.onEvict(e.key, e.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
