package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cogni/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/cogni/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/cogni/internal/adapters/metrics" //nolint:depguard // Wired in app layer
	"go.trai.ch/cogni/internal/adapters/storage" //nolint:depguard // Wired in app layer
	"go.trai.ch/cogni/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			storage.NodeID,
			logger.NodeID,
			metrics.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			factory, err := graft.Dep[ports.StorageFactory](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			counter, err := graft.Dep[*metrics.Counter](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, factory, log, counter), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			metrics.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	counter, err := graft.Dep[*metrics.Counter](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:     app,
		Logger:  log,
		Metrics: counter,
	}, nil
}
