// Package storage opens storage backends from their specification.
package storage

import (
	"context"
	"path/filepath"

	"go.trai.ch/cogni/internal/adapters/cas"
	"go.trai.ch/cogni/internal/adapters/memory"
	"go.trai.ch/cogni/internal/adapters/s3store"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StorageFactory = (*Factory)(nil)

// S3ClientFunc builds the S3 client of an s3 storage.
type S3ClientFunc func(ctx context.Context, region, endpoint string) (s3store.Client, error)

// Factory implements ports.StorageFactory for the memory, file and s3 backends.
type Factory struct {
	hasher   ports.Hasher
	s3Client S3ClientFunc
}

// Option configures a Factory.
type Option func(*Factory)

// WithS3Client replaces the S3 client constructor.
func WithS3Client(fn S3ClientFunc) Option {
	return func(f *Factory) {
		f.s3Client = fn
	}
}

// NewFactory creates a Factory naming file and object entries with hasher.
func NewFactory(hasher ports.Hasher, opts ...Option) *Factory {
	f := &Factory{
		hasher: hasher,
		s3Client: func(ctx context.Context, region, endpoint string) (s3store.Client, error) {
			client, err := s3store.NewClient(ctx, region, endpoint)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open creates the backend described by spec. Relative file paths are resolved against root.
func (f *Factory) Open(ctx context.Context, root string, spec domain.StorageSpec) (ports.Storage, error) {
	switch spec.Type {
	case domain.StorageMemory:
		return memory.New(spec.TTL), nil

	case domain.StorageFile:
		dir := spec.Path
		if dir == "" {
			dir = domain.DefaultStorePath()
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		store, err := cas.NewStore(dir, f.hasher)
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.StorageS3:
		if spec.Bucket == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidStorageSpec, "s3 storage requires a bucket"), "type", spec.Type)
		}
		client, err := f.s3Client(ctx, spec.Region, spec.Endpoint)
		if err != nil {
			return nil, err
		}
		store, err := s3store.New(client, spec.Bucket, spec.Prefix, f.hasher)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownStorageType, "cannot open storage"), "type", spec.Type)
	}
}
