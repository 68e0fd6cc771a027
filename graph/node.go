package graph

import (
	"github.com/google/uuid"
	"time"
)

// Node encapsulates all information about a vertex of the graph.
type Node struct {
	// A unique identifier for the node.
	ID uuid.UUID

	// A human readable name. Names are expected to be unique.
	Name string

	// The timestamp when the node was last updated.
	UpdatedAt time.Time
}

// NodeIterator is implemented by objects that can iterate the graph nodes.
type NodeIterator interface {
	Iterator

	// Node returns the currently fetched node object.
	Node() *Node
}
