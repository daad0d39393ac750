// Package hasher implements cache key hashing using xxhash.
package hasher

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cogni/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher hashes cache keys with XXHash64.
type Hasher struct{}

// New creates a new Hasher.
func New() *Hasher {
	return &Hasher{}
}

// Key returns the hex encoded XXHash64 of key.
func (h *Hasher) Key(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}
