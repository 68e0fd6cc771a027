// Package definition contains the cluster definitions that decide whether
// adding a node to, or removing a node from, a cluster improves its quality.
package definition

import (
	"github.com/ejacobg/localclustering/cluster"
	"github.com/google/uuid"
)

// Gain describes the outcome of evaluating a single node against a cluster.
type Gain struct {
	// The node the gain was calculated for.
	Node uuid.UUID

	// Whether the inclusion (or exclusion) of the node improves the
	// quality of the cluster.
	Result bool

	// The score of the node's connection to the cluster and the score it
	// had to reach.
	QualityDifference float64
	Threshold         float64

	// The weighting coefficient in effect when the gain was calculated.
	WeightingCoefficient float64

	// The factor the weighting coefficient has to be multiplied with for
	// the quality difference to reach the threshold. Zero when the node
	// has no connection to the cluster.
	CoefficientMultiplier float64
}

// Definition is implemented by objects that can decide whether a node should
// join or leave a cluster. Implementations must not modify the cluster and
// their answers must depend only on the node and the current cluster state.
type Definition interface {
	// ShouldAdd evaluates a node from the neighborhood of the cluster.
	ShouldAdd(id uuid.UUID, c *cluster.Cluster) (Gain, error)

	// ShouldRemove evaluates a member of the cluster.
	ShouldRemove(id uuid.UUID, c *cluster.Cluster) (Gain, error)
}

// Hierarchical is implemented by definitions whose parameters can be relaxed
// to build a hierarchy of increasingly permissive clusters.
type Hierarchical interface {
	Definition

	// Relax adjusts the parameters of the definition so that at least one
	// node of the cluster's neighborhood that is rejected now would be
	// accepted by ShouldAdd. It returns false if no such adjustment exists.
	Relax(c *cluster.Cluster) (bool, error)

	// Clone returns an independent copy of the definition with its current
	// parameters.
	Clone() Hierarchical
}

// Ranker is implemented by definitions that can turn a gain into a node rank.
type Ranker interface {
	Rank(g Gain) float64
}

// Rank scores g with def if def implements Ranker; otherwise the quality
// difference is used as the rank.
func Rank(def Definition, g Gain) float64 {
	if r, ok := def.(Ranker); ok {
		return r.Rank(g)
	}
	return g.QualityDifference
}
