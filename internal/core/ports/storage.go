package ports

import (
	"context"
	"time"

	"go.trai.ch/cogni/internal/core/domain"
)

// Storage is a backend persisting computed values across evaluations.
// Get is only called after Has reported the key present.
//
//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks
type Storage interface {
	// Has reports whether a value is stored under key.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (any, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value any) error
}

// StorageMaintainer is implemented by backends that can enumerate and expire their entries.
type StorageMaintainer interface {
	// List returns the persisted entries.
	List(ctx context.Context) ([]domain.EntryInfo, error)

	// Purge removes entries stored longer than olderThan ago and reports how many were removed.
	Purge(ctx context.Context, olderThan time.Duration) (int, error)
}

// StorageFactory opens storage backends from their specification.
type StorageFactory interface {
	// Open creates the backend described by spec. root anchors relative paths.
	Open(ctx context.Context, root string, spec domain.StorageSpec) (Storage, error)
}
