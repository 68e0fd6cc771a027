package definition

import (
	"errors"
	"fmt"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/google/uuid"
	"math"
)

// DefaultRelaxEpsilon is the relative amount by which Relax overshoots the
// smallest multiplier that makes a rejected neighbor acceptable. Without it
// rounding could leave the quality difference just below the threshold.
const DefaultRelaxEpsilon = 1e-9

// ErrInvalidParameter is returned when a definition is configured with an
// out-of-range parameter.
var ErrInvalidParameter = errors.New("invalid cluster definition parameter")

// ConnectivityConfig holds the parameters of a Connectivity definition.
type ConnectivityConfig struct {
	// The factor applied to the summed weight of a node's edges into the
	// cluster. Must be positive.
	WeightingCoefficient float64

	// The factor applied to the structural threshold. Must be positive.
	ThresholdModifier float64

	// The relative overshoot applied by Relax. Defaults to
	// DefaultRelaxEpsilon.
	RelaxEpsilon float64

	// If positive, the smallest multiplier Relax ever applies to the
	// weighting coefficient.
	MinRelaxMultiplier float64
}

// DefaultConnectivityConfig returns the parameters the connectivity
// definition is usually run with.
func DefaultConnectivityConfig() ConnectivityConfig {
	return ConnectivityConfig{
		WeightingCoefficient: 2,
		ThresholdModifier:    0.85,
	}
}

// Compile-time checks.
var (
	_ Hierarchical = (*Connectivity)(nil)
	_ Ranker       = (*Connectivity)(nil)
)

// Connectivity is a Hierarchical definition based on how strongly a node is
// connected to the cluster.
//
// The quality difference of node n is w times the summed weight of the edges
// between n and the other members of the cluster C. The threshold is
//
//	t * min((|C|-1)/2, degree(n)/2, degree(C)/(2|C|))
//
// where degree(C) is the summed degree of the members. A neighbor is added
// if its quality difference is at least the threshold; a member is removed
// if its quality difference is below it.
type Connectivity struct {
	w   float64
	cfg ConnectivityConfig
}

// NewConnectivity validates cfg and returns a new Connectivity definition.
func NewConnectivity(cfg ConnectivityConfig) (*Connectivity, error) {
	if !(cfg.WeightingCoefficient > 0) || math.IsInf(cfg.WeightingCoefficient, 0) {
		return nil, fmt.Errorf("weighting coefficient %v: %w", cfg.WeightingCoefficient, ErrInvalidParameter)
	}
	if !(cfg.ThresholdModifier > 0) || math.IsInf(cfg.ThresholdModifier, 0) {
		return nil, fmt.Errorf("threshold modifier %v: %w", cfg.ThresholdModifier, ErrInvalidParameter)
	}
	if cfg.RelaxEpsilon < 0 || cfg.MinRelaxMultiplier < 0 {
		return nil, fmt.Errorf("relaxation parameters: %w", ErrInvalidParameter)
	}
	if cfg.RelaxEpsilon == 0 {
		cfg.RelaxEpsilon = DefaultRelaxEpsilon
	}

	return &Connectivity{w: cfg.WeightingCoefficient, cfg: cfg}, nil
}

// WeightingCoefficient returns the weighting coefficient currently in effect.
func (d *Connectivity) WeightingCoefficient() float64 { return d.w }

// ThresholdModifier returns the threshold modifier.
func (d *Connectivity) ThresholdModifier() float64 { return d.cfg.ThresholdModifier }

// ShouldAdd implements Definition.
func (d *Connectivity) ShouldAdd(id uuid.UUID, c *cluster.Cluster) (Gain, error) {
	g, err := d.gain(id, c)
	if err != nil {
		return g, err
	}
	g.Result = g.QualityDifference > 0 && g.QualityDifference >= g.Threshold
	return g, nil
}

// ShouldRemove implements Definition.
func (d *Connectivity) ShouldRemove(id uuid.UUID, c *cluster.Cluster) (Gain, error) {
	g, err := d.gain(id, c)
	if err != nil {
		return g, err
	}
	g.Result = g.QualityDifference < g.Threshold
	return g, nil
}

// Relax implements Hierarchical. It scales the weighting coefficient by the
// smallest multiplier above one that lets a neighborhood node reach its
// threshold.
func (d *Connectivity) Relax(c *cluster.Cluster) (bool, error) {
	var (
		best  float64
		found bool
	)
	for _, id := range c.Neighborhood() {
		raw, threshold, err := d.measure(id, c)
		if err != nil {
			return false, err
		}
		if raw <= 0 {
			continue
		}

		m := threshold / (d.w * raw)
		if m > 1 && (!found || m < best) {
			best, found = m, true
		}
	}
	if !found {
		return false, nil
	}

	m := best * (1 + d.cfg.RelaxEpsilon)
	if m < d.cfg.MinRelaxMultiplier {
		m = d.cfg.MinRelaxMultiplier
	}
	d.w *= m
	return true, nil
}

// Clone implements Hierarchical.
func (d *Connectivity) Clone() Hierarchical {
	clone := *d
	return &clone
}

// Rank implements Ranker. The rank is the weighting coefficient divided by
// the coefficient multiplier, i.e. how far above its threshold the node was.
// Gains measured against a zero threshold have no multiplier and rank 0.
func (d *Connectivity) Rank(g Gain) float64 {
	if g.CoefficientMultiplier == 0 {
		return 0
	}
	return g.WeightingCoefficient / g.CoefficientMultiplier
}

func (d *Connectivity) gain(id uuid.UUID, c *cluster.Cluster) (Gain, error) {
	raw, threshold, err := d.measure(id, c)
	if err != nil {
		return Gain{Node: id}, err
	}

	g := Gain{
		Node:                 id,
		QualityDifference:    d.w * raw,
		Threshold:            threshold,
		WeightingCoefficient: d.w,
	}
	if g.QualityDifference > 0 {
		g.CoefficientMultiplier = threshold / g.QualityDifference
	}
	return g, nil
}

// measure returns the summed weight of the edges between id and the other
// members of c together with the threshold of id.
func (d *Connectivity) measure(id uuid.UUID, c *cluster.Cluster) (float64, float64, error) {
	list, err := c.Neighbors(id)
	if err != nil {
		return 0, 0, err
	}

	var raw float64
	for _, n := range list {
		if n.ID != id && c.Contains(n.ID) {
			raw += n.Weight
		}
	}

	size := float64(c.Len())
	var avgDegree float64
	if size > 0 {
		avgDegree = float64(c.Degree()) / (2 * size)
	}
	threshold := d.cfg.ThresholdModifier * math.Min(
		math.Min(math.Max(size-1, 0)/2, float64(len(list))/2),
		avgDegree,
	)

	return raw, threshold, nil
}
