// Package memory implements an in-process storage backend.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Storage = (*Store)(nil)

// Store keeps values in process memory. Entries expire after the configured TTL.
type Store struct {
	items *gocache.Cache
	ttl   time.Duration
}

// New creates a Store. A ttl of zero or less keeps entries for the lifetime of the process.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		return &Store{items: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Store{items: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// Name identifies the backend in metrics.
func (s *Store) Name() string {
	return domain.StorageMemory
}

// TTL returns the entry lifetime, zero if entries never expire.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Has reports whether an unexpired value is stored under key.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.items.Get(key)
	return ok, nil
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (any, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "memory store"), "key", key)
	}
	return v, nil
}

// Set stores value under key using the default TTL.
func (s *Store) Set(_ context.Context, key string, value any) error {
	s.items.Set(key, value, gocache.DefaultExpiration)
	return nil
}

// Len returns the number of stored entries, expired entries not yet evicted included.
func (s *Store) Len() int {
	return s.items.ItemCount()
}
