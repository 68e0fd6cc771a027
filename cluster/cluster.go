// Package cluster provides the editable node set that the local clustering
// engines grow and shrink.
package cluster

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ejacobg/localclustering/graph"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"sort"
)

// ErrNoSources is returned when a cluster is created without source nodes.
var ErrNoSources = errors.New("at least one source node is required")

// Cluster is a duplicate-free set of member nodes together with its
// neighborhood: the nodes adjacent to at least one member that are not
// members themselves.
//
// Source nodes may be protected, in which case Remove never drops them.
//
// Membership only changes through the Add and Remove batch operations and
// the neighborhood is brought up to date before either returns. Reads are
// safe for concurrent use as long as no batch operation is in progress.
type Cluster struct {
	adj *adjacency

	sources      map[uuid.UUID]struct{}
	members      map[uuid.UUID]struct{}
	neighborhood map[uuid.UUID]struct{}

	// The sum of the degrees of the members.
	degree int
}

// New creates a cluster containing exactly the given source nodes. When
// protectSources is set the sources can never be removed from the cluster.
func New(src NeighborSource, sources []uuid.UUID, protectSources bool) (*Cluster, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	c := &Cluster{
		adj:          newAdjacency(src),
		sources:      make(map[uuid.UUID]struct{}),
		members:      make(map[uuid.UUID]struct{}),
		neighborhood: make(map[uuid.UUID]struct{}),
	}
	if err := c.Add(sources); err != nil {
		return nil, err
	}

	if protectSources {
		for _, id := range sources {
			c.sources[id] = struct{}{}
		}
	}

	return c, nil
}

// Len returns the number of members.
func (c *Cluster) Len() int {
	return len(c.members)
}

// Degree returns the sum of the degrees of the members.
func (c *Cluster) Degree() int {
	return c.degree
}

// Contains returns whether id is a member of the cluster.
func (c *Cluster) Contains(id uuid.UUID) bool {
	_, found := c.members[id]
	return found
}

// IsNeighbor returns whether id is in the neighborhood of the cluster.
func (c *Cluster) IsNeighbor(id uuid.UUID) bool {
	_, found := c.neighborhood[id]
	return found
}

// IsSource returns whether id is a protected source node.
func (c *Cluster) IsSource(id uuid.UUID) bool {
	_, found := c.sources[id]
	return found
}

// Members returns the members of the cluster in ascending ID order.
func (c *Cluster) Members() []uuid.UUID {
	return sortedKeys(c.members)
}

// Neighborhood returns the neighborhood of the cluster in ascending ID order.
func (c *Cluster) Neighborhood() []uuid.UUID {
	return sortedKeys(c.neighborhood)
}

// NeighborhoodSize returns the number of nodes in the neighborhood.
func (c *Cluster) NeighborhoodSize() int {
	return len(c.neighborhood)
}

// Sources returns the protected source nodes in ascending ID order.
func (c *Cluster) Sources() []uuid.UUID {
	return sortedKeys(c.sources)
}

// Neighbors returns the neighbors of id. The returned slice is shared and
// must not be modified.
func (c *Cluster) Neighbors(id uuid.UUID) ([]graph.Neighbor, error) {
	return c.adj.neighbors(id)
}

// NodeDegree returns the number of neighbors of id.
func (c *Cluster) NodeDegree(id uuid.UUID) (int, error) {
	list, err := c.adj.neighbors(id)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Add inserts the given nodes into the cluster in one batch. The neighbor
// lists of all new members are fetched before anything changes, so a failed
// lookup leaves the cluster untouched.
func (c *Cluster) Add(ids []uuid.UUID) error {
	lists := make(map[uuid.UUID][]graph.Neighbor, len(ids))
	for _, id := range ids {
		if c.Contains(id) {
			continue
		}
		if _, seen := lists[id]; seen {
			continue
		}
		list, err := c.adj.neighbors(id)
		if err != nil {
			return err
		}
		lists[id] = list
	}

	for id, list := range lists {
		c.members[id] = struct{}{}
		delete(c.neighborhood, id)
		c.degree += len(list)
	}
	for _, list := range lists {
		for _, n := range list {
			if !c.Contains(n.ID) {
				c.neighborhood[n.ID] = struct{}{}
			}
		}
	}

	return nil
}

// Remove drops the given nodes from the cluster in one batch and returns the
// number of nodes that were actually removed. Protected sources and nodes
// that are not members are skipped.
func (c *Cluster) Remove(ids []uuid.UUID) int {
	var removed int
	for _, id := range ids {
		if !c.Contains(id) || c.IsSource(id) {
			continue
		}
		delete(c.members, id)
		c.degree -= len(c.adj.cached(id))
		removed++
	}

	if removed > 0 {
		c.rebuildNeighborhood()
	}
	return removed
}

// rebuildNeighborhood recomputes the neighborhood from the members'
// neighbor lists, all of which are cached by the time a node is a member.
func (c *Cluster) rebuildNeighborhood() {
	c.neighborhood = make(map[uuid.UUID]struct{}, len(c.neighborhood))
	for id := range c.members {
		for _, n := range c.adj.cached(id) {
			if !c.Contains(n.ID) {
				c.neighborhood[n.ID] = struct{}{}
			}
		}
	}
}

// Validate checks the internal consistency of the cluster and returns an
// error describing every problem it found.
func (c *Cluster) Validate() error {
	var err error

	for id := range c.sources {
		if !c.Contains(id) {
			err = multierror.Append(err, fmt.Errorf("source node %s is not in the cluster", id))
		}
	}

	var degree int
	frontier := make(map[uuid.UUID]struct{})
	for id := range c.members {
		if c.IsNeighbor(id) {
			err = multierror.Append(err, fmt.Errorf("node %s is both a member and a neighbor", id))
		}
		list := c.adj.cached(id)
		degree += len(list)
		for _, n := range list {
			if c.Contains(n.ID) {
				continue
			}
			frontier[n.ID] = struct{}{}
			if !c.IsNeighbor(n.ID) {
				err = multierror.Append(err, fmt.Errorf("neighbor %s of node %s is neither in the cluster nor in its neighborhood", n.ID, id))
			}
		}
	}

	for id := range c.neighborhood {
		if _, found := frontier[id]; !found {
			err = multierror.Append(err, fmt.Errorf("node %s in the neighborhood is not a neighbor of the cluster", id))
		}
	}

	if degree != c.degree {
		err = multierror.Append(err, fmt.Errorf("incorrect cluster degree, %d instead of %d", c.degree, degree))
	}

	return err
}

// SortIDs sorts ids in ascending byte order in place and returns the slice.
func SortIDs(ids []uuid.UUID) []uuid.UUID {
	sort.Slice(ids, func(l, r int) bool { return bytes.Compare(ids[l][:], ids[r][:]) < 0 })
	return ids
}

func sortedKeys(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return SortIDs(ids)
}
