package graphtest

import (
	"fmt"
	"github.com/ejacobg/localclustering/graph"
	"github.com/google/uuid"
	"sort"
)

// WeightedEdge describes a named edge used to build test fixtures. An edge
// with an empty B only declares the node A.
type WeightedEdge struct {
	A, B   string
	Weight float64
}

// Fixture maps the node names of a populated test graph to their IDs.
type Fixture struct {
	ids   map[string]uuid.UUID
	names map[uuid.UUID]string
}

// Populate inserts the nodes and edges described by edges into g. Edges with
// a zero weight are inserted with unit weight.
func Populate(g graph.Graph, edges ...WeightedEdge) (*Fixture, error) {
	f := &Fixture{
		ids:   make(map[string]uuid.UUID),
		names: make(map[uuid.UUID]string),
	}

	for _, e := range edges {
		for _, name := range []string{e.A, e.B} {
			if name == "" {
				continue
			}
			if _, exists := f.ids[name]; exists {
				continue
			}
			node := &graph.Node{Name: name}
			if err := g.UpsertNode(node); err != nil {
				return nil, fmt.Errorf("populate: %w", err)
			}
			f.ids[name] = node.ID
			f.names[node.ID] = name
		}

		if e.B == "" {
			continue
		}
		weight := e.Weight
		if weight == 0 {
			weight = 1
		}
		if err := g.UpsertEdge(&graph.Edge{Src: f.ids[e.A], Dst: f.ids[e.B], Weight: weight}); err != nil {
			return nil, fmt.Errorf("populate: %w", err)
		}
	}

	return f, nil
}

// ID returns the ID of the named node or uuid.Nil if it is unknown.
func (f *Fixture) ID(name string) uuid.UUID {
	return f.ids[name]
}

// IDs returns the IDs of the named nodes.
func (f *Fixture) IDs(names ...string) []uuid.UUID {
	ids := make([]uuid.UUID, len(names))
	for i, name := range names {
		ids[i] = f.ids[name]
	}
	return ids
}

// Name returns the name of the node with the given ID.
func (f *Fixture) Name(id uuid.UUID) string {
	return f.names[id]
}

// Names returns the sorted names of the nodes with the given IDs.
func (f *Fixture) Names(ids []uuid.UUID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, f.names[id])
	}
	sort.Strings(names)
	return names
}
