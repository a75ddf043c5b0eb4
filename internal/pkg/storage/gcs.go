package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type GCSOptions struct {
	// CredentialsJSON is a service account key; empty uses ambient credentials.
	CredentialsJSON []byte
	Endpoint        string
	WithoutAuth     bool
	// GoogleAccessID and PrivateKey sign download URLs.
	GoogleAccessID string
	PrivateKey     []byte
}

type GCS struct {
	client *gcs.Client
	opts   GCSOptions
}

func NewGCS(ctx context.Context, opts GCSOptions) (*GCS, error) {
	var copts []option.ClientOption
	if opts.WithoutAuth {
		copts = append(copts, option.WithoutAuthentication())
	}
	if len(opts.CredentialsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, opts.CredentialsJSON, gcs.ScopeReadWrite)
		if err != nil {
			return nil, err
		}
		copts = append(copts, option.WithCredentials(creds))
	}
	if opts.Endpoint != "" {
		copts = append(copts, option.WithEndpoint(opts.Endpoint))
	}

	client, err := gcs.NewClient(ctx, copts...)
	if err != nil {
		return nil, err
	}
	return &GCS{client: client, opts: opts}, nil
}

func (g *GCS) Put(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata

	n, err := io.Copy(w, r)
	if err != nil {
		return ObjectInfo{}, errors.Join(err, w.Close())
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Bucket: bucket, Key: key, Size: n, ETag: w.Attrs().Etag}, nil
}

func (g *GCS) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return r, err
}

func (g *GCS) Delete(ctx context.Context, bucket, key string) error {
	return g.client.Bucket(bucket).Object(key).Delete(ctx)
}

func (g *GCS) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if g.opts.GoogleAccessID == "" || len(g.opts.PrivateKey) == 0 {
		return "", ErrMissingSigner
	}
	return gcs.SignedURL(bucket, key, &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(expiry),
		GoogleAccessID: g.opts.GoogleAccessID,
		PrivateKey:     g.opts.PrivateKey,
	})
}

func (g *GCS) Close() error {
	return g.client.Close()
}
