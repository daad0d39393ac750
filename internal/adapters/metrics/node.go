package metrics

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the metrics counter Graft node.
const NodeID graft.ID = "adapter.metrics"

func init() {
	graft.Register(graft.Node[*Counter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Counter, error) {
			return NewCounter(), nil
		},
	})
}
