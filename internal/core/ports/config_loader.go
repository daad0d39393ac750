package ports

import "go.trai.ch/cogni/internal/core/domain"

// ConfigLoader defines the interface for loading definitions.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the definition file at path.
	Load(path string) (*domain.Definition, error)
}
