package storage

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // etag only
	"encoding/hex"
	"io"
	"net/url"
	"sync"
	"time"
)

// Memory keeps objects in process. Its presigned URLs use the memory://
// scheme and are only meaningful to tests and local runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, bucket, key string, r io.Reader, _ PutOptions) (ObjectInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, err
	}

	m.mu.Lock()
	m.objects[bucket+"/"+key] = b
	m.mu.Unlock()

	sum := md5.Sum(b) //nolint:gosec // etag only
	return ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(b)), ETag: hex.EncodeToString(sum[:])}, nil
}

func (m *Memory) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	b, ok := m.objects[bucket+"/"+key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *Memory) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	delete(m.objects, bucket+"/"+key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[bucket+"/"+key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}

	u := url.URL{Scheme: "memory", Host: bucket, Path: "/" + key}
	u.RawQuery = url.Values{"expires": {time.Now().Add(expiry).UTC().Format(time.RFC3339)}}.Encode()
	return u.String(), nil
}

func (*Memory) Close() error { return nil }
