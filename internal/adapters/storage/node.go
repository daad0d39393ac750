package storage

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cogni/internal/adapters/hasher"
	"go.trai.ch/cogni/internal/core/ports"
)

// NodeID is the unique identifier for the storage factory Graft node.
const NodeID graft.ID = "adapter.storage_factory"

func init() {
	graft.Register(graft.Node[ports.StorageFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{hasher.NodeID},
		Run: func(ctx context.Context) (ports.StorageFactory, error) {
			h, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(h), nil
		},
	})
}
