// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cogni/internal/adapters/config"
	_ "go.trai.ch/cogni/internal/adapters/hasher"
	_ "go.trai.ch/cogni/internal/adapters/logger"
	_ "go.trai.ch/cogni/internal/adapters/metrics"
	_ "go.trai.ch/cogni/internal/adapters/storage"
	// Register app nodes.
	_ "go.trai.ch/cogni/internal/app"
)
