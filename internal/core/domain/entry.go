package domain

import "time"

// Entry is the persisted form of a cached value.
type Entry struct {
	Key      string    `json:"key,omitzero"`
	Value    any       `json:"value"`
	StoredAt time.Time `json:"stored_at,omitzero"`
}

// EntryInfo describes a persisted entry without its value.
type EntryInfo struct {
	Key      string
	Path     string
	Size     int64
	StoredAt time.Time
}
