package domain

import "time"

// ComputeDef describes one compute function of a loaded definition.
type ComputeDef struct {
	Key          string
	Fn           ComputeFunc
	Dependencies []string
	// Source is the expression the function was compiled from, if any.
	Source string
}

// CacheDef configures the cache store of a definition.
type CacheDef struct {
	Keys          []string
	Defaults      Params
	ScopeByResult bool
}

// StorageSpec selects and configures one storage backend.
type StorageSpec struct {
	Type     string
	Path     string
	TTL      time.Duration
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// Storage backend types understood by the storage factory.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageS3     = "s3"
)

// Definition is a fully loaded set of compute functions with its caching setup.
// Compute is in registration order.
type Definition struct {
	Params   []string
	Compute  []ComputeDef
	Cache    *CacheDef
	Storages []StorageSpec
	Runs     []Params
}
