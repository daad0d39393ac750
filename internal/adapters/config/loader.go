// Package config provides the configuration loader for cogni.
package config

import (
	"errors"
	"os"
	"time"

	"go.trai.ch/cogni/internal/adapters/hclexpr"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader for cogni.yaml files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the definition file at path and compiles its compute expressions.
func (l *Loader) Load(path string) (*domain.Definition, error) {
	var file Cognifile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	def := &domain.Definition{
		Params: file.Params,
	}

	for i, dto := range file.Compute {
		cd, err := compileCompute(dto, file.Params)
		if err != nil {
			return nil, zerr.With(err, "index", i)
		}
		def.Compute = append(def.Compute, cd)
	}

	if file.Cache != nil {
		def.Cache = &domain.CacheDef{
			Keys:          file.Cache.Keys,
			Defaults:      domain.Params(file.Cache.Defaults),
			ScopeByResult: file.Cache.ScopeByResult,
		}
		if len(file.Storages) == 0 && l.Logger != nil {
			l.Logger.Warn("cache is configured without storages, values will not be kept")
		}
	}

	for i, dto := range file.Storages {
		spec, err := buildStorageSpec(dto)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "index", i), "path", path)
		}
		def.Storages = append(def.Storages, spec)
	}

	for _, run := range file.Runs {
		def.Runs = append(def.Runs, domain.Params(run))
	}

	return def, nil
}

func compileCompute(dto ComputeDTO, schema []string) (domain.ComputeDef, error) {
	if dto.Key == "" {
		return domain.ComputeDef{}, zerr.Wrap(domain.ErrInvalidKey, "compute entry requires a key")
	}

	var dependsOn []string
	if dto.DependsOn != nil {
		dependsOn = *dto.DependsOn
		if dependsOn == nil {
			dependsOn = []string{}
		}
	}

	fn, deps, err := hclexpr.Compile(dto.Expr, dependsOn, schema)
	if err != nil {
		return domain.ComputeDef{}, zerr.With(err, "key", dto.Key)
	}

	return domain.ComputeDef{
		Key:          dto.Key,
		Fn:           fn,
		Dependencies: deps,
		Source:       dto.Expr,
	}, nil
}

func buildStorageSpec(dto StorageDTO) (domain.StorageSpec, error) {
	spec := domain.StorageSpec{
		Type:     dto.Type,
		Path:     dto.Path,
		Bucket:   dto.Bucket,
		Prefix:   dto.Prefix,
		Region:   dto.Region,
		Endpoint: dto.Endpoint,
	}
	if dto.TTL != "" {
		ttl, err := time.ParseDuration(dto.TTL)
		if err != nil {
			return domain.StorageSpec{}, zerr.With(
				zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, err), "invalid storage ttl"),
				"ttl", dto.TTL,
			)
		}
		spec.TTL = ttl
	}
	return spec, nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is provided by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "cannot load config")
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, parseErr), "cannot load config")
	}

	return nil
}
