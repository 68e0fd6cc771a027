package graph

import (
	"github.com/google/uuid"
	"time"
)

// Edge describes an undirected, weighted graph edge connecting Src and Dst.
type Edge struct {
	// A unique identifier for the edge.
	ID uuid.UUID

	// The endpoints of the edge. The order of the endpoints carries no
	// meaning; the edge is visible from both of them.
	Src uuid.UUID
	Dst uuid.UUID

	// The weight of the edge. Weights must be positive.
	Weight float64

	// The timestamp when the edge was last updated.
	UpdatedAt time.Time
}

// EdgeIterator is implemented by objects that can iterate the graph edges.
type EdgeIterator interface {
	Iterator

	// Edge returns the currently fetched edge objects.
	Edge() *Edge
}

// Neighbor pairs a node adjacent to another node with the weight of the
// connecting edge.
type Neighbor struct {
	ID     uuid.UUID
	Weight float64
}

// NeighborIterator is implemented by objects that can iterate the neighbors
// of a single node.
type NeighborIterator interface {
	Iterator

	// Neighbor returns the currently fetched neighbor.
	Neighbor() Neighbor
}
