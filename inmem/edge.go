package inmem

import "github.com/ejacobg/localclustering/graph"

// edgeIterator is a graph.EdgeIterator implementation for the in-memory graph.
type edgeIterator struct {
	im *InMemoryGraph

	edges []*graph.Edge
	curr  int
}

// Next implements graph.EdgeIterator.
func (i *edgeIterator) Next() bool {
	if i.curr >= len(i.edges) {
		return false
	}
	i.curr++
	return true
}

// Error implements graph.EdgeIterator.
func (i *edgeIterator) Error() error {
	return nil
}

// Close implements graph.EdgeIterator.
func (i *edgeIterator) Close() error {
	return nil
}

// Edge implements graph.EdgeIterator.
func (i *edgeIterator) Edge() *graph.Edge {
	// The edge pointer contents may be overwritten by a graph update; to
	// avoid data-races we acquire the read lock first and clone the edge
	i.im.mu.RLock()
	edge := new(graph.Edge)
	*edge = *i.edges[i.curr-1]
	i.im.mu.RUnlock()
	return edge
}

// neighborIterator is a graph.NeighborIterator implementation for the
// in-memory graph. Neighbors are copied out under the read lock when the
// iterator is created.
type neighborIterator struct {
	neighbors []graph.Neighbor
	curr      int
}

// Next implements graph.NeighborIterator.
func (i *neighborIterator) Next() bool {
	if i.curr >= len(i.neighbors) {
		return false
	}
	i.curr++
	return true
}

// Error implements graph.NeighborIterator.
func (i *neighborIterator) Error() error {
	return nil
}

// Close implements graph.NeighborIterator.
func (i *neighborIterator) Close() error {
	return nil
}

// Neighbor implements graph.NeighborIterator.
func (i *neighborIterator) Neighbor() graph.Neighbor {
	return i.neighbors[i.curr-1]
}
