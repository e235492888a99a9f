// Package storage reads fragment objects from S3-compatible buckets.
//
// Access is read-only: [S3Storage] implements [ObjectGetter] with Get and
// Head over aws-sdk-go-v2. SDK failures are mapped to [ErrNotFound],
// [ErrAccessDenied] and [ErrReadFailed], so callers can branch with
// errors.Is without importing SDK types.
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "fragments",
//		AccessKey: os.Getenv("S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("S3_SECRET_KEY"),
//		Endpoint:  "http://localhost:9000",
//		PathStyle: true,
//	})
//
// Objects stored without a useful Content-Type get one from [ContentType],
// which falls back to the key extension.
package storage
