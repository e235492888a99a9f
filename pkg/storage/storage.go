package storage

import (
	"context"
	"io"
	"time"
)

// ObjectGetter reads objects by key. S3Storage implements it; tests and
// other backends can supply their own.
type ObjectGetter interface {
	// Get returns the object body. The caller closes Object.Body.
	Get(ctx context.Context, key string) (*Object, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
}

// ObjectInfo is object metadata without the body.
type ObjectInfo struct {
	Key          string
	ContentType  string
	Size         int64 // -1 when unknown
	ETag         string
	LastModified time.Time
}

// Object is an open object body with its metadata.
type Object struct {
	ObjectInfo
	Body io.ReadCloser
}

// Config holds S3-compatible storage settings.
type Config struct {
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	// Endpoint points at MinIO or another S3-compatible service.
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	PathStyle bool   `yaml:"path_style"`
	// Prefix is prepended to every key as "prefix/key".
	Prefix string `yaml:"prefix"`
	// MaxObjectSize caps bodies read through ReadAll. Default: 8 MiB.
	MaxObjectSize int64 `yaml:"max_object_size"`
}

const (
	DefaultRegion        = "us-east-1"
	DefaultMaxObjectSize = 8 << 20
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxObjectSize <= 0 {
		c.MaxObjectSize = DefaultMaxObjectSize
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// ReadAll reads and closes obj.Body, failing with ErrObjectTooLarge past limit bytes.
func ReadAll(obj *Object, limit int64) ([]byte, error) {
	defer obj.Body.Close()

	if limit > 0 && obj.Size > limit {
		return nil, ErrObjectTooLarge
	}
	r := obj.Body
	if limit > 0 {
		r = io.NopCloser(io.LimitReader(obj.Body, limit+1))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrObjectTooLarge
	}
	return data, nil
}
