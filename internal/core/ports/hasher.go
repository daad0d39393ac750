package ports

// Hasher derives storage object names from cache keys.
type Hasher interface {
	// Key returns a fixed-length, filesystem and URL safe name for key.
	Key(key string) string
}
