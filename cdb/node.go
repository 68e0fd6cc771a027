package cdb

import (
	"database/sql"
	"fmt"
	"github.com/ejacobg/localclustering/graph"
)

// nodeIterator is a graph.NodeIterator implementation for the cdb graph.
type nodeIterator struct {
	rows        *sql.Rows
	lastErr     error
	latchedNode *graph.Node
}

// Next implements graph.NodeIterator.
func (i *nodeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	n := new(graph.Node)
	i.lastErr = i.rows.Scan(&n.ID, &n.Name, &n.UpdatedAt)
	if i.lastErr != nil {
		return false
	}
	n.UpdatedAt = n.UpdatedAt.UTC()

	i.latchedNode = n
	return true
}

// Error implements graph.NodeIterator.
func (i *nodeIterator) Error() error {
	return i.lastErr
}

// Close implements graph.NodeIterator.
func (i *nodeIterator) Close() error {
	err := i.rows.Close()
	if err != nil {
		return fmt.Errorf("node iterator: %w", err)
	}
	return nil
}

// Node implements graph.NodeIterator.
func (i *nodeIterator) Node() *graph.Node {
	return i.latchedNode
}
