// Package inmem provides an in-memory graph implementation.
package inmem

import (
	"fmt"
	"github.com/ejacobg/localclustering/graph"
	"github.com/google/uuid"
	"sort"
	"sync"
	"time"
)

// Compile-time check for ensuring InMemoryGraph implements Graph.
var _ graph.Graph = (*InMemoryGraph)(nil)

// edgeList represents all the edges incident to a node.
type edgeList []uuid.UUID

// InMemoryGraph implements an in-memory weighted graph that can be
// concurrently accessed by multiple clients.
type InMemoryGraph struct {
	// Unlike sync.Mutex, sync.RWMutex supports multiple-reader semantics, good for read-heavy workloads.
	mu sync.RWMutex

	nodes map[uuid.UUID]*graph.Node
	edges map[uuid.UUID]*graph.Edge

	// Node names are expected to be unique. Use this to check for uniqueness.
	nodeFromName map[string]*graph.Node

	// Used to easily obtain the edges incident to a node. Every edge is
	// listed under both of its endpoints.
	nodeEdges map[uuid.UUID]edgeList
}

// NewInMemoryGraph creates a new in-memory graph.
func NewInMemoryGraph() *InMemoryGraph {
	return &InMemoryGraph{
		nodes:        make(map[uuid.UUID]*graph.Node),
		edges:        make(map[uuid.UUID]*graph.Edge),
		nodeFromName: make(map[string]*graph.Node),
		nodeEdges:    make(map[uuid.UUID]edgeList),
	}
}

// UpsertNode creates a new node or updates an existing node.
func (im *InMemoryGraph) UpsertNode(node *graph.Node) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	// Check if a node with the same name already exists. If so, convert
	// this into an update and point the node ID to the existing node.
	if existing := im.nodeFromName[node.Name]; existing != nil {
		node.ID = existing.ID
		existing.UpdatedAt = time.Now()
		*node = *existing
		return nil
	}

	// Assign new ID and insert node.
	for {
		node.ID = uuid.New()
		if im.nodes[node.ID] == nil {
			break
		}
	}
	node.UpdatedAt = time.Now()

	nCopy := new(graph.Node)
	*nCopy = *node
	im.nodeFromName[nCopy.Name] = nCopy
	im.nodes[nCopy.ID] = nCopy
	return nil
}

// FindNode looks up a copy of a node by its ID.
func (im *InMemoryGraph) FindNode(id uuid.UUID) (*graph.Node, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	node := im.nodes[id]
	if node == nil {
		return nil, fmt.Errorf("find node: %w", graph.ErrNotFound)
	}

	nCopy := new(graph.Node)
	*nCopy = *node
	return nCopy, nil
}

// FindNodeByName looks up a copy of a node by its name.
func (im *InMemoryGraph) FindNodeByName(name string) (*graph.Node, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	node := im.nodeFromName[name]
	if node == nil {
		return nil, fmt.Errorf("find node %q: %w", name, graph.ErrNotFound)
	}

	nCopy := new(graph.Node)
	*nCopy = *node
	return nCopy, nil
}

// Nodes returns an iterator for the set of nodes whose IDs belong to the
// [fromID, toID) range.
func (im *InMemoryGraph) Nodes(fromID, toID uuid.UUID) (graph.NodeIterator, error) {
	from, to := fromID.String(), toID.String()

	im.mu.RLock()
	var list []*graph.Node
	for nodeID, node := range im.nodes {
		if id := nodeID.String(); id >= from && id < to {
			list = append(list, node)
		}
	}
	im.mu.RUnlock()

	return &nodeIterator{im: im, nodes: list}, nil
}

// UpsertEdge creates a new edge or updates the weight of the existing edge
// that connects the same pair of nodes in either direction.
func (im *InMemoryGraph) UpsertEdge(edge *graph.Edge) error {
	if edge.Src == edge.Dst {
		return fmt.Errorf("upsert edge: %w", graph.ErrSelfLoop)
	}
	if !(edge.Weight > 0) {
		return fmt.Errorf("upsert edge: %w", graph.ErrInvalidWeight)
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	_, srcExists := im.nodes[edge.Src]
	_, dstExists := im.nodes[edge.Dst]
	if !srcExists || !dstExists {
		return fmt.Errorf("upsert edge: %w", graph.ErrUnknownEdgeNodes)
	}

	// Scan the source's edge list to see if this edge has been recorded before.
	for _, edgeID := range im.nodeEdges[edge.Src] {
		existing := im.edges[edgeID]
		if (existing.Src == edge.Src && existing.Dst == edge.Dst) ||
			(existing.Src == edge.Dst && existing.Dst == edge.Src) {
			existing.Weight = edge.Weight
			existing.UpdatedAt = time.Now()
			*edge = *existing
			return nil
		}
	}

	// Assign new ID and insert edge.
	for {
		edge.ID = uuid.New()
		if im.edges[edge.ID] == nil {
			break
		}
	}

	edge.UpdatedAt = time.Now()
	eCopy := new(graph.Edge)
	*eCopy = *edge
	im.edges[eCopy.ID] = eCopy

	im.nodeEdges[edge.Src] = append(im.nodeEdges[edge.Src], eCopy.ID)
	im.nodeEdges[edge.Dst] = append(im.nodeEdges[edge.Dst], eCopy.ID)
	return nil
}

// Edges returns an iterator for the set of edges whose source vertex IDs
// belong to the [fromID, toID) range and were updated before the provided
// timestamp.
func (im *InMemoryGraph) Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.EdgeIterator, error) {
	from, to := fromID.String(), toID.String()

	im.mu.RLock()
	var list []*graph.Edge
	for nodeID := range im.nodes {
		// If a node does not fall within our range, then we can ignore all the edges originating from it.
		if id := nodeID.String(); id < from || id >= to {
			continue
		}

		for _, edgeID := range im.nodeEdges[nodeID] {
			// Incident edges are listed under both endpoints; only report
			// them once, from their source.
			if edge := im.edges[edgeID]; edge.Src == nodeID && edge.UpdatedAt.Before(updatedBefore) {
				list = append(list, edge)
			}
		}
	}
	im.mu.RUnlock()

	return &edgeIterator{im: im, edges: list}, nil
}

// Neighbors returns an iterator for the nodes adjacent to the node with the
// given ID. Neighbors are reported in ascending ID order.
func (im *InMemoryGraph) Neighbors(id uuid.UUID) (graph.NeighborIterator, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	if im.nodes[id] == nil {
		return nil, fmt.Errorf("neighbors: %w", graph.ErrNotFound)
	}

	list := make([]graph.Neighbor, 0, len(im.nodeEdges[id]))
	for _, edgeID := range im.nodeEdges[id] {
		edge := im.edges[edgeID]
		other := edge.Dst
		if other == id {
			other = edge.Src
		}
		list = append(list, graph.Neighbor{ID: other, Weight: edge.Weight})
	}
	sort.Slice(list, func(l, r int) bool { return list[l].ID.String() < list[r].ID.String() })

	return &neighborIterator{neighbors: list}, nil
}
