// Package graph defines the weighted, undirected graph model that the local
// clustering engines read from.
package graph

import (
	"github.com/google/uuid"
	"time"
)

// Graph is implemented by objects that can mutate or query a weighted graph.
type Graph interface {
	// UpsertNode creates a new node or updates an existing node.
	UpsertNode(node *Node) error

	// FindNode looks up a node by its ID.
	FindNode(id uuid.UUID) (*Node, error)

	// FindNodeByName looks up a node by its unique name.
	FindNodeByName(name string) (*Node, error)

	// Nodes returns an iterator for the set of nodes whose IDs belong to
	// the [fromID, toID) range.
	Nodes(fromID, toID uuid.UUID) (NodeIterator, error)

	// UpsertEdge creates a new edge or updates the weight of the existing
	// edge connecting the same pair of nodes.
	UpsertEdge(edge *Edge) error

	// Edges returns an iterator for the set of edges whose source vertex IDs
	// belong to the [fromID, toID) range and were updated before the provided
	// timestamp.
	Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (EdgeIterator, error)

	// Neighbors returns an iterator for the nodes adjacent to the node with
	// the given ID together with the weight of each connecting edge.
	Neighbors(id uuid.UUID) (NeighborIterator, error)
}

// Iterator is implemented by graph objects that can be iterated.
type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error
}
