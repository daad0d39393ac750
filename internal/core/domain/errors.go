package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidKey is returned when a compute function is defined under an empty key.
	ErrInvalidKey = zerr.New("invalid compute key")

	// ErrKeyAlreadyDefined is returned when a compute function is defined twice under the same key.
	ErrKeyAlreadyDefined = zerr.New("compute function is already defined")

	// ErrUnresolvedDependency is returned when a compute function names a dependency
	// that has not been defined yet.
	ErrUnresolvedDependency = zerr.New("dependency has not been defined yet")

	// ErrKeyNotDefined is returned when a value is requested for a key that was never defined.
	ErrKeyNotDefined = zerr.New("compute function is not defined")

	// ErrCycleDetected is returned when a key is reached again while it is still being resolved.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrComputeFailed is returned when a compute function reports an error.
	ErrComputeFailed = zerr.New("compute function failed")

	// ErrInvalidCacheConfig is returned when a cache store is constructed with unusable cache keys.
	ErrInvalidCacheConfig = zerr.New("invalid cache store configuration")

	// ErrParamMissing is returned when a typed accessor does not find the requested value.
	ErrParamMissing = zerr.New("value not present")

	// ErrValueTypeMismatch is returned when a typed accessor finds a value of another type.
	ErrValueTypeMismatch = zerr.New("value has unexpected type")

	// ErrCacheMiss is returned by a storage backend asked for a key it does not hold.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrEntryKeyMismatch is returned when a persisted entry belongs to another cache key.
	ErrEntryKeyMismatch = zerr.New("stored entry belongs to another cache key")

	// ErrStoreCreateFailed is returned when the entry store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create entry store directory")

	// ErrStoreReadFailed is returned when an entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache entry")

	// ErrStoreWriteFailed is returned when an entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrStoreMarshalFailed is returned when an entry cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal cache entry")

	// ErrStoreUnmarshalFailed is returned when an entry cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal cache entry")

	// ErrStorePurgeFailed is returned when expired entries cannot be removed.
	ErrStorePurgeFailed = zerr.New("failed to purge cache entries")

	// ErrUnknownStorageType is returned when a storage spec names an unsupported backend.
	ErrUnknownStorageType = zerr.New("unknown storage type")

	// ErrInvalidStorageSpec is returned when a storage spec misses a required field.
	ErrInvalidStorageSpec = zerr.New("invalid storage specification")

	// ErrStorageOpenFailed is returned when a storage backend cannot be initialized.
	ErrStorageOpenFailed = zerr.New("failed to open storage backend")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrExpressionParseFailed is returned when a compute expression has invalid syntax.
	ErrExpressionParseFailed = zerr.New("failed to parse compute expression")

	// ErrExpressionEvalFailed is returned when a compute expression cannot be evaluated.
	ErrExpressionEvalFailed = zerr.New("failed to evaluate compute expression")

	// ErrUnsupportedValue is returned when a value cannot be converted to or from an expression value.
	ErrUnsupportedValue = zerr.New("unsupported value")

	// ErrUndeclaredDependency is returned when an expression reads a parent value
	// that is not listed among its dependencies.
	ErrUndeclaredDependency = zerr.New("expression references undeclared dependency")

	// ErrUnknownParam is returned when an expression references a parameter outside the declared schema.
	ErrUnknownParam = zerr.New("expression references unknown parameter")

	// ErrInvalidParamFlag is returned when a command line parameter is not in name=value form.
	ErrInvalidParamFlag = zerr.New("invalid parameter, expected name=value")

	// ErrNoRunsConfigured is returned when a batch run is requested but the config declares no runs.
	ErrNoRunsConfigured = zerr.New("no runs configured")

	// ErrCachingDisabled is returned when a cache operation is requested on a session without a cache store.
	ErrCachingDisabled = zerr.New("caching is not configured")
)
