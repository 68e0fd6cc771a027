// Package cdb provides a graph implementation backed by CockroachDB (or any
// database that speaks the PostgreSQL wire protocol).
package cdb

import (
	"bytes"
	"database/sql"
	"github.com/ejacobg/localclustering/graph"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/xerrors"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id UUID NOT NULL DEFAULT gen_random_uuid() PRIMARY KEY,
	name STRING NOT NULL UNIQUE,
	updated_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS edges (
	id UUID NOT NULL DEFAULT gen_random_uuid() PRIMARY KEY,
	src UUID NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	dst UUID NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	weight FLOAT NOT NULL CHECK (weight > 0),
	updated_at TIMESTAMP,
	CONSTRAINT edge_endpoints UNIQUE (src, dst),
	INDEX edges_by_dst (dst)
);
`

var (
	upsertNodeQuery = `
INSERT INTO nodes (name, updated_at) VALUES ($1, NOW())
ON CONFLICT (name) DO UPDATE SET updated_at=NOW()
RETURNING id, updated_at
`

	findNodeQuery = "SELECT name, updated_at FROM nodes WHERE id=$1"

	findNodeByNameQuery = "SELECT id, updated_at FROM nodes WHERE name=$1"

	nodesInPartitionQuery = "SELECT id, name, updated_at FROM nodes WHERE id >= $1 AND id < $2"

	// Edges are stored once, with src < dst, so that both directions of
	// an undirected edge share a single row.
	upsertEdgeQuery = `
INSERT INTO edges (src, dst, weight, updated_at) VALUES ($1, $2, $3, NOW())
ON CONFLICT (src,dst) DO UPDATE SET weight=$3, updated_at=NOW()
RETURNING id, updated_at
`

	edgesInPartitionQuery = "SELECT id, src, dst, weight, updated_at FROM edges WHERE src >= $1 AND src < $2 AND updated_at < $3"

	neighborsQuery = `
SELECT dst, weight FROM edges WHERE src=$1
UNION ALL
SELECT src, weight FROM edges WHERE dst=$1
ORDER BY 1
`

	nodeExistsQuery = "SELECT EXISTS(SELECT 1 FROM nodes WHERE id=$1)"

	// Compile-time check for ensuring CockroachDBGraph implements Graph.
	_ graph.Graph = (*CockroachDBGraph)(nil)
)

// CockroachDBGraph implements a graph that persists its nodes and edges to a
// cockroachdb instance.
type CockroachDBGraph struct {
	db *sql.DB
}

// NewGraph returns a CockroachDBGraph instance that connects to the cockroachdb
// instance specified by dsn and makes sure the graph tables exist.
func NewGraph(dsn string) (*CockroachDBGraph, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, xerrors.Errorf("create schema: %w", err)
	}

	return &CockroachDBGraph{db: db}, nil
}

// Close terminates the connection to the backing cockroachdb instance.
func (c *CockroachDBGraph) Close() error {
	return c.db.Close()
}

// UpsertNode creates a new node or updates an existing node.
func (c *CockroachDBGraph) UpsertNode(node *graph.Node) error {
	row := c.db.QueryRow(upsertNodeQuery, node.Name)
	if err := row.Scan(&node.ID, &node.UpdatedAt); err != nil {
		return xerrors.Errorf("upsert node: %w", err)
	}

	node.UpdatedAt = node.UpdatedAt.UTC()
	return nil
}

// FindNode looks up a node by its ID.
func (c *CockroachDBGraph) FindNode(id uuid.UUID) (*graph.Node, error) {
	row := c.db.QueryRow(findNodeQuery, id)
	node := &graph.Node{ID: id}
	if err := row.Scan(&node.Name, &node.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.Errorf("find node: %w", graph.ErrNotFound)
		}

		return nil, xerrors.Errorf("find node: %w", err)
	}

	node.UpdatedAt = node.UpdatedAt.UTC()
	return node, nil
}

// FindNodeByName looks up a node by its name.
func (c *CockroachDBGraph) FindNodeByName(name string) (*graph.Node, error) {
	row := c.db.QueryRow(findNodeByNameQuery, name)
	node := &graph.Node{Name: name}
	if err := row.Scan(&node.ID, &node.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.Errorf("find node %q: %w", name, graph.ErrNotFound)
		}

		return nil, xerrors.Errorf("find node %q: %w", name, err)
	}

	node.UpdatedAt = node.UpdatedAt.UTC()
	return node, nil
}

// Nodes returns an iterator for the set of nodes whose IDs belong to the
// [fromID, toID) range.
func (c *CockroachDBGraph) Nodes(fromID, toID uuid.UUID) (graph.NodeIterator, error) {
	rows, err := c.db.Query(nodesInPartitionQuery, fromID, toID)
	if err != nil {
		return nil, xerrors.Errorf("nodes: %w", err)
	}

	return &nodeIterator{rows: rows}, nil
}

// UpsertEdge creates a new edge or updates the weight of an existing edge.
func (c *CockroachDBGraph) UpsertEdge(edge *graph.Edge) error {
	if edge.Src == edge.Dst {
		return xerrors.Errorf("upsert edge: %w", graph.ErrSelfLoop)
	}
	if !(edge.Weight > 0) {
		return xerrors.Errorf("upsert edge: %w", graph.ErrInvalidWeight)
	}

	src, dst := edge.Src, edge.Dst
	if bytes.Compare(src[:], dst[:]) > 0 {
		src, dst = dst, src
	}

	row := c.db.QueryRow(upsertEdgeQuery, src, dst, edge.Weight)
	if err := row.Scan(&edge.ID, &edge.UpdatedAt); err != nil {
		if isForeignKeyViolationError(err) {
			err = graph.ErrUnknownEdgeNodes
		}
		return xerrors.Errorf("upsert edge: %w", err)
	}

	edge.UpdatedAt = edge.UpdatedAt.UTC()
	return nil
}

// Edges returns an iterator for the set of edges whose source vertex IDs
// belong to the [fromID, toID) range and were updated before the provided
// timestamp.
func (c *CockroachDBGraph) Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.EdgeIterator, error) {
	rows, err := c.db.Query(edgesInPartitionQuery, fromID, toID, updatedBefore.UTC())
	if err != nil {
		return nil, xerrors.Errorf("edges: %w", err)
	}

	return &edgeIterator{rows: rows}, nil
}

// Neighbors returns an iterator for the nodes adjacent to the node with the
// given ID. Neighbors are reported in ascending ID order.
func (c *CockroachDBGraph) Neighbors(id uuid.UUID) (graph.NeighborIterator, error) {
	var exists bool
	if err := c.db.QueryRow(nodeExistsQuery, id).Scan(&exists); err != nil {
		return nil, xerrors.Errorf("neighbors: %w", err)
	} else if !exists {
		return nil, xerrors.Errorf("neighbors: %w", graph.ErrNotFound)
	}

	rows, err := c.db.Query(neighborsQuery, id)
	if err != nil {
		return nil, xerrors.Errorf("neighbors: %w", err)
	}

	return &neighborIterator{rows: rows}, nil
}

// isForeignKeyViolationError returns true if err indicates a foreign key
// constraint violation.
func isForeignKeyViolationError(err error) bool {
	pqErr, valid := err.(*pq.Error)
	if !valid {
		return false
	}

	return pqErr.Code.Name() == "foreign_key_violation"
}
