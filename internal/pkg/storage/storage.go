// Package storage stores generated artifacts, such as audit exports, in an
// object store and hands out time limited download links.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrMissingSigner = errors.New("storage: signed url signer not configured")
	ErrNotFound      = errors.New("storage: object not found")
)

type Storage interface {
	io.Closer
	Put(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
	// PresignGet returns a URL that downloads the object until expiry passes.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

type PutOptions struct {
	// Size is -1 when unknown.
	Size        int64
	ContentType string
	Metadata    map[string]string
}

type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}
