package storage

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage reads objects from one bucket.
type S3Storage struct {
	client *s3.Client
	cfg    Config
}

// Option adjusts the SDK client built by New.
type Option func(*s3.Options)

// WithHTTPClient replaces the SDK transport.
func WithHTTPClient(c aws.HTTPClient) Option {
	return func(o *s3.Options) { o.HTTPClient = c }
}

// WithRetryMaxAttempts sets SDK retries. One disables retrying.
func WithRetryMaxAttempts(n int) Option {
	return func(o *s3.Options) { o.RetryMaxAttempts = n }
}

func New(cfg Config, opts ...Option) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.PathStyle
	}
	fns := make([]func(*s3.Options), 0, len(opts))
	for _, opt := range opts {
		fns = append(fns, opt)
	}

	return &S3Storage{client: s3.New(o, fns...), cfg: cfg}, nil
}

// MaxObjectSize is the configured body limit for ReadAll.
func (s *S3Storage) MaxObjectSize() int64 { return s.cfg.MaxObjectSize }

func (s *S3Storage) Get(ctx context.Context, key string) (*Object, error) {
	full, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		return nil, wrapS3Error(err)
	}
	return &Object{
		ObjectInfo: ObjectInfo{
			Key:          key,
			ContentType:  ContentType(key, aws.ToString(out.ContentType), nil),
			Size:         sizeOf(out.ContentLength),
			ETag:         aws.ToString(out.ETag),
			LastModified: aws.ToTime(out.LastModified),
		},
		Body: out.Body,
	}, nil
}

func (s *S3Storage) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	full, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		return nil, wrapS3Error(err)
	}
	return &ObjectInfo{
		Key:          key,
		ContentType:  ContentType(key, aws.ToString(out.ContentType), nil),
		Size:         sizeOf(out.ContentLength),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// objectKey cleans key and applies the prefix. Keys that escape the
// prefix are rejected.
func (s *S3Storage) objectKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", ErrInvalidKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidKey
		}
	}
	if s.cfg.Prefix == "" {
		return key, nil
	}
	return path.Join(s.cfg.Prefix, key), nil
}

func sizeOf(n *int64) int64 {
	if n == nil {
		return -1
	}
	return *n
}

var _ ObjectGetter = (*S3Storage)(nil)
