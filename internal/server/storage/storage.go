// Package storage talks to the S3-compatible object store holding the
// uploaded bytes. The API only ever hands out presigned URLs for reads;
// downloads never stream through the server.
package storage

import (
	"context"
	"time"
)

// ObjectStore is the bucket+key contract the file service needs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	SignedGetURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
