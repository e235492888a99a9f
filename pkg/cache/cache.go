package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores values of type V under string keys.
//
// A zero ttl passed to Set means the backend default; a negative ttl means
// the entry never expires.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Sizer is implemented by values that know their footprint in bytes.
// The in-memory cache uses it to enforce WithMaxBytes.
type Sizer interface {
	Size() int64
}

// Marshaler converts values to and from bytes for remote backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// MsgpackMarshaler encodes values with msgpack. It is the Redis default.
type MsgpackMarshaler[V any] struct{}

func (MsgpackMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return data, nil
}

func (MsgpackMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}
	return v, nil
}

// JSONMarshaler encodes values as JSON.
type JSONMarshaler[V any] struct{}

func (JSONMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return data, nil
}

func (JSONMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}
	return v, nil
}
