package inmem

import "github.com/ejacobg/localclustering/graph"

// nodeIterator is a graph.NodeIterator implementation for the in-memory graph.
type nodeIterator struct {
	im *InMemoryGraph

	nodes []*graph.Node
	curr  int
}

// Next implements graph.NodeIterator.
func (i *nodeIterator) Next() bool {
	if i.curr >= len(i.nodes) {
		return false
	}
	i.curr++
	return true
}

// Error implements graph.NodeIterator.
func (i *nodeIterator) Error() error {
	return nil
}

// Close implements graph.NodeIterator.
func (i *nodeIterator) Close() error {
	return nil
}

// Node implements graph.NodeIterator.
func (i *nodeIterator) Node() *graph.Node {
	// The node pointer contents may be overwritten by a graph update; to
	// avoid data-races we acquire the read lock first and clone the node
	i.im.mu.RLock()
	node := new(graph.Node)
	*node = *i.nodes[i.curr-1]
	i.im.mu.RUnlock()
	return node
}
