package cluster

import (
	"github.com/ejacobg/localclustering/graph"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"sync"
)

//go:generate mockgen -package mocks -destination mocks/neighbor_source.go github.com/ejacobg/localclustering/cluster NeighborSource
//go:generate mockgen -package mocks -destination mocks/neighbor_iterator.go github.com/ejacobg/localclustering/graph NeighborIterator

// NeighborSource is implemented by graph collaborators that can list the
// neighbors of a node. graph.Graph satisfies it.
type NeighborSource interface {
	// Neighbors returns an iterator for the nodes adjacent to id together
	// with the weight of each connecting edge.
	Neighbors(id uuid.UUID) (graph.NeighborIterator, error)
}

// adjacency memoizes neighbor lists for the duration of a clustering run.
// Weights are treated as static while the run lasts.
type adjacency struct {
	src NeighborSource

	// Concurrent misses for the same node share a single fetch.
	group singleflight.Group

	mu    sync.RWMutex
	lists map[uuid.UUID][]graph.Neighbor
}

func newAdjacency(src NeighborSource) *adjacency {
	return &adjacency{
		src:   src,
		lists: make(map[uuid.UUID][]graph.Neighbor),
	}
}

// neighbors returns the neighbor list of id, fetching it from the source on
// first use. Errors reported by the source are returned as-is.
func (a *adjacency) neighbors(id uuid.UUID) ([]graph.Neighbor, error) {
	a.mu.RLock()
	list, found := a.lists[id]
	a.mu.RUnlock()
	if found {
		return list, nil
	}

	v, err, _ := a.group.Do(id.String(), func() (interface{}, error) {
		list, err := a.fetch(id)
		if err != nil {
			return nil, err
		}

		a.mu.Lock()
		a.lists[id] = list
		a.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]graph.Neighbor), nil
}

func (a *adjacency) fetch(id uuid.UUID) ([]graph.Neighbor, error) {
	it, err := a.src.Neighbors(id)
	if err != nil {
		return nil, err
	}

	list := make([]graph.Neighbor, 0)
	for it.Next() {
		n := it.Neighbor()
		if n.ID == id {
			continue
		}
		list = append(list, n)
	}
	if err = it.Error(); err != nil {
		_ = it.Close()
		return nil, err
	}
	if err = it.Close(); err != nil {
		return nil, err
	}

	return list, nil
}

// cached returns the neighbor list of id if it has already been fetched.
func (a *adjacency) cached(id uuid.UUID) []graph.Neighbor {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lists[id]
}
