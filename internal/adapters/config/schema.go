package config

// Cognifile represents the structure of the cogni.yaml configuration file.
type Cognifile struct {
	Version  string           `yaml:"version"`
	Params   []string         `yaml:"params"`
	Cache    *CacheDTO        `yaml:"cache"`
	Storages []StorageDTO     `yaml:"storages"`
	Compute  []ComputeDTO     `yaml:"compute"`
	Runs     []map[string]any `yaml:"runs"`
}

// CacheDTO represents the cache section in the configuration.
type CacheDTO struct {
	Keys          []string       `yaml:"keys"`
	Defaults      map[string]any `yaml:"defaults"`
	ScopeByResult bool           `yaml:"scope_by_result"`
}

// StorageDTO represents one storage backend in the configuration.
type StorageDTO struct {
	Type     string `yaml:"type"`
	TTL      string `yaml:"ttl"`
	Path     string `yaml:"path"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// ComputeDTO represents a compute definition in the configuration.
// A nil DependsOn means the dependencies are inferred from the expression.
type ComputeDTO struct {
	Key       string    `yaml:"key"`
	Expr      string    `yaml:"expr"`
	DependsOn *[]string `yaml:"depends_on"`
}
