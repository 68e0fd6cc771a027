package cdb

import (
	"database/sql"
	"fmt"
	"github.com/ejacobg/localclustering/graph"
)

// edgeIterator is a graph.EdgeIterator implementation for the cdb graph.
type edgeIterator struct {
	rows        *sql.Rows
	lastErr     error
	latchedEdge *graph.Edge
}

// Next implements graph.EdgeIterator.
func (i *edgeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	e := new(graph.Edge)
	i.lastErr = i.rows.Scan(&e.ID, &e.Src, &e.Dst, &e.Weight, &e.UpdatedAt)
	if i.lastErr != nil {
		return false
	}
	e.UpdatedAt = e.UpdatedAt.UTC()

	i.latchedEdge = e
	return true
}

// Error implements graph.EdgeIterator.
func (i *edgeIterator) Error() error {
	return i.lastErr
}

// Close implements graph.EdgeIterator.
func (i *edgeIterator) Close() error {
	err := i.rows.Close()
	if err != nil {
		return fmt.Errorf("edge iterator: %w", err)
	}
	return nil
}

// Edge implements graph.EdgeIterator.
func (i *edgeIterator) Edge() *graph.Edge {
	return i.latchedEdge
}

// neighborIterator is a graph.NeighborIterator implementation for the cdb
// graph.
type neighborIterator struct {
	rows            *sql.Rows
	lastErr         error
	latchedNeighbor graph.Neighbor
}

// Next implements graph.NeighborIterator.
func (i *neighborIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	var n graph.Neighbor
	if i.lastErr = i.rows.Scan(&n.ID, &n.Weight); i.lastErr != nil {
		return false
	}

	i.latchedNeighbor = n
	return true
}

// Error implements graph.NeighborIterator.
func (i *neighborIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

// Close implements graph.NeighborIterator.
func (i *neighborIterator) Close() error {
	err := i.rows.Close()
	if err != nil {
		return fmt.Errorf("neighbor iterator: %w", err)
	}
	return nil
}

// Neighbor implements graph.NeighborIterator.
func (i *neighborIterator) Neighbor() graph.Neighbor {
	return i.latchedNeighbor
}
