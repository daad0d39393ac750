// Package cachestore implements a read-through, write-through cache in front of an evaluator.
package cachestore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/bool64/stats"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// MetricHit counts lookups answered by a storage.
	MetricHit = "cogni_cache_hit"
	// MetricMiss counts lookups no storage could answer.
	MetricMiss = "cogni_cache_miss"
	// MetricWrite counts values written to a storage.
	MetricWrite = "cogni_cache_write"
)

// DefaultName labels the metrics of a Store created without WithName.
const DefaultName = "default"

// Store resolves values through its storages and falls back to the evaluator on a miss.
type Store struct {
	evaluator  ports.Evaluator
	cacheKeys  []string
	defaults   domain.Params
	stat       stats.Tracker
	name       string
	scopeByKey bool

	mu       sync.RWMutex
	storages []ports.Storage
}

// Option configures a Store.
type Option func(*Store)

// WithDefaults sets parameters merged under the caller parameters before evaluation.
func WithDefaults(defaults domain.Params) Option {
	return func(s *Store) {
		s.defaults = defaults.Clone()
	}
}

// WithStats sets the metrics tracker.
func WithStats(tracker stats.Tracker) Option {
	return func(s *Store) {
		if tracker != nil {
			s.stat = tracker
		}
	}
}

// WithName sets the name the store reports in metrics.
func WithName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithResultKeyScope prefixes every cache key with the requested result key,
// so that different results for the same parameters do not share an entry.
func WithResultKeyScope() Option {
	return func(s *Store) {
		s.scopeByKey = true
	}
}

// New creates a Store over ev. cacheKeys names the parameters that identify a cache entry.
func New(ev ports.Evaluator, cacheKeys []string, opts ...Option) (*Store, error) {
	if len(cacheKeys) == 0 {
		return nil, zerr.Wrap(domain.ErrInvalidCacheConfig, "at least one cache key is required")
	}

	var schema []string
	if ps, ok := ev.(ports.ParamSchema); ok {
		schema = ps.Params()
	}

	keys := make([]string, 0, len(cacheKeys))
	for _, k := range cacheKeys {
		if k == "" {
			return nil, zerr.Wrap(domain.ErrInvalidCacheConfig, "cache key names must not be empty")
		}
		if len(schema) > 0 && !slices.Contains(schema, k) {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrInvalidCacheConfig, "cache key is not a declared parameter"),
				"cache_key", k,
			)
		}
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	s := &Store{
		evaluator: ev,
		cacheKeys: keys,
		stat:      stats.NoOp{},
		name:      DefaultName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CacheKeys returns the parameter names that identify a cache entry.
func (s *Store) CacheKeys() []string {
	return slices.Clone(s.cacheKeys)
}

// GenerateCacheKey derives the cache key of params.
// Only cache key parameters present in params take part; they are sorted by name
// and rendered as name_value joined by "-".
func (s *Store) GenerateCacheKey(params domain.Params) string {
	names := make([]string, 0, len(s.cacheKeys))
	for _, name := range s.cacheKeys {
		if _, ok := params[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "_" + fmt.Sprint(params[name])
	}
	return strings.Join(parts, "-")
}

// Get returns the value of key for params.
// The first storage holding the cache key answers. Otherwise the evaluator computes the
// value, which is then written to every storage in order. Storage errors are returned as is.
func (s *Store) Get(ctx context.Context, key string, params domain.Params) (any, error) {
	cacheKey := s.entryKey(key, params)
	storages := s.Storages()

	for _, st := range storages {
		ok, err := st.Has(ctx, cacheKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		value, err := st.Get(ctx, cacheKey)
		if err != nil {
			return nil, err
		}
		s.stat.Add(ctx, MetricHit, 1, "name", s.name, "storage", storageName(st))
		return value, nil
	}
	s.stat.Add(ctx, MetricMiss, 1, "name", s.name)

	value, err := s.evaluator.Get(key, domain.MergeParams(s.defaults, params))
	if err != nil {
		return nil, err
	}

	for _, st := range storages {
		if err := st.Set(ctx, cacheKey, value); err != nil {
			return nil, err
		}
		s.stat.Add(ctx, MetricWrite, 1, "name", s.name, "storage", storageName(st))
	}
	return value, nil
}

// AddStorage appends st to the storages. Earlier storages take priority on reads.
func (s *Store) AddStorage(st ports.Storage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storages = append(s.storages, st)
}

// RemoveStorage removes the first occurrence of st. Removing an absent storage is a no-op.
func (s *Store) RemoveStorage(st ports.Storage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.storages, st); i >= 0 {
		s.storages = slices.Delete(slices.Clone(s.storages), i, i+1)
	}
}

// Storages returns a snapshot of the storages in priority order.
func (s *Store) Storages() []ports.Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.storages)
}

func (s *Store) entryKey(key string, params domain.Params) string {
	cacheKey := s.GenerateCacheKey(params)
	if !s.scopeByKey {
		return cacheKey
	}
	if cacheKey == "" {
		return key
	}
	return key + ":" + cacheKey
}

type namer interface {
	Name() string
}

func storageName(st ports.Storage) string {
	if n, ok := st.(namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", st)
}
