package definition_test

import (
	"errors"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/graph/graphtest"
	"github.com/ejacobg/localclustering/inmem"
	"github.com/google/uuid"
	gc "gopkg.in/check.v1"
	"math"
	"testing"
)

var _ = gc.Suite(new(ConnectivityTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type ConnectivityTestSuite struct {
	g  *inmem.InMemoryGraph
	fx *graphtest.Fixture
}

func (s *ConnectivityTestSuite) SetUpTest(c *gc.C) {
	// A path a - b - c - d and two 4-cliques joined by the bridge x4 - y1.
	s.g = inmem.NewInMemoryGraph()
	fx, err := graphtest.Populate(s.g, append(
		[]graphtest.WeightedEdge{{A: "a", B: "b"}, {A: "b", B: "c"}, {A: "c", B: "d"}, {A: "x4", B: "y1"}},
		append(clique("x"), clique("y")...)...,
	)...)
	c.Assert(err, gc.IsNil)
	s.fx = fx
}

func (s *ConnectivityTestSuite) TestDefaultConfig(c *gc.C) {
	def, err := definition.NewConnectivity(definition.DefaultConnectivityConfig())
	c.Assert(err, gc.IsNil)
	c.Assert(def.WeightingCoefficient(), gc.Equals, 2.0)
	c.Assert(def.ThresholdModifier(), gc.Equals, 0.85)
}

func (s *ConnectivityTestSuite) TestInvalidConfig(c *gc.C) {
	specs := []definition.ConnectivityConfig{
		{WeightingCoefficient: 0, ThresholdModifier: 1},
		{WeightingCoefficient: -1, ThresholdModifier: 1},
		{WeightingCoefficient: 1, ThresholdModifier: 0},
		{WeightingCoefficient: math.NaN(), ThresholdModifier: 1},
		{WeightingCoefficient: 1, ThresholdModifier: math.Inf(1)},
		{WeightingCoefficient: 1, ThresholdModifier: 1, RelaxEpsilon: -1},
	}
	for specIndex, spec := range specs {
		c.Logf("config %d: %+v", specIndex, spec)
		_, err := definition.NewConnectivity(spec)
		c.Assert(errors.Is(err, definition.ErrInvalidParameter), gc.Equals, true)
	}
}

func (s *ConnectivityTestSuite) TestPathGains(c *gc.C) {
	def := s.unitDefinition(c, 0)
	cl, err := cluster.New(s.g, s.fx.IDs("b"), true)
	c.Assert(err, gc.IsNil)

	// A single member cluster accepts every neighbor.
	for _, name := range []string{"a", "c"} {
		g, err := def.ShouldAdd(s.fx.ID(name), cl)
		c.Assert(err, gc.IsNil)
		c.Assert(g.Node, gc.Equals, s.fx.ID(name))
		c.Assert(g.Result, gc.Equals, true)
		assertApprox(c, g.QualityDifference, 1)
		assertApprox(c, g.Threshold, 0)
		c.Assert(def.Rank(g), gc.Equals, 0.0)
	}

	c.Assert(cl.Add(s.fx.IDs("a", "c")), gc.IsNil)
	g, err := def.ShouldRemove(s.fx.ID("a"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, false)
	assertApprox(c, g.Threshold, 0.5)
	assertApprox(c, g.CoefficientMultiplier, 0.5)

	g, err = def.ShouldRemove(s.fx.ID("c"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, false)
	assertApprox(c, g.Threshold, 5.0/6.0)

	g, err = def.ShouldAdd(s.fx.ID("d"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, true)
	assertApprox(c, g.QualityDifference, 1)
	assertApprox(c, g.Threshold, 0.5)

	c.Assert(cl.Add(s.fx.IDs("d")), gc.IsNil)
	g, err = def.ShouldRemove(s.fx.ID("c"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, false)
	assertApprox(c, g.QualityDifference, 2)
	assertApprox(c, g.Threshold, 0.75)
}

func (s *ConnectivityTestSuite) TestRemoveWeakMember(c *gc.C) {
	def := s.unitDefinition(c, 0)
	cl, err := cluster.New(s.g, s.fx.IDs("x1", "x2", "x3", "x4", "y1"), false)
	c.Assert(err, gc.IsNil)

	g, err := def.ShouldRemove(s.fx.ID("y1"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, true)
	assertApprox(c, g.QualityDifference, 1)
	// degree(C) = 3 + 3 + 3 + 4 + 4 = 17
	assertApprox(c, g.Threshold, 17.0/10.0)

	g, err = def.ShouldRemove(s.fx.ID("x1"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, false)
}

func (s *ConnectivityTestSuite) TestWeightingCoefficientScalesQualityDifference(c *gc.C) {
	def, err := definition.NewConnectivity(definition.ConnectivityConfig{WeightingCoefficient: 3, ThresholdModifier: 2})
	c.Assert(err, gc.IsNil)
	cl, err := cluster.New(s.g, s.fx.IDs("a", "b", "c"), true)
	c.Assert(err, gc.IsNil)

	g, err := def.ShouldAdd(s.fx.ID("d"), cl)
	c.Assert(err, gc.IsNil)
	assertApprox(c, g.QualityDifference, 3)
	assertApprox(c, g.Threshold, 1)
	assertApprox(c, g.WeightingCoefficient, 3)
	c.Assert(g.Result, gc.Equals, true)
}

func (s *ConnectivityTestSuite) TestRelax(c *gc.C) {
	def := s.unitDefinition(c, 0)
	cl, err := cluster.New(s.g, s.fx.IDs("x1", "x2", "x3", "x4"), true)
	c.Assert(err, gc.IsNil)

	g, err := def.ShouldAdd(s.fx.ID("y1"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, false)
	assertApprox(c, g.Threshold, 1.5)
	assertApprox(c, g.CoefficientMultiplier, 1.5)

	relaxed, err := def.Relax(cl)
	c.Assert(err, gc.IsNil)
	c.Assert(relaxed, gc.Equals, true)
	c.Assert(def.WeightingCoefficient() > 1.5, gc.Equals, true)
	assertApprox(c, def.WeightingCoefficient(), 1.5)

	g, err = def.ShouldAdd(s.fx.ID("y1"), cl)
	c.Assert(err, gc.IsNil)
	c.Assert(g.Result, gc.Equals, true)

	// Every neighbor is already accepted so there is nothing left to relax.
	relaxed, err = def.Relax(cl)
	c.Assert(err, gc.IsNil)
	c.Assert(relaxed, gc.Equals, false)
	assertApprox(c, def.WeightingCoefficient(), 1.5)
}

func (s *ConnectivityTestSuite) TestRelaxMinMultiplier(c *gc.C) {
	def := s.unitDefinition(c, 2)
	cl, err := cluster.New(s.g, s.fx.IDs("x1", "x2", "x3", "x4"), true)
	c.Assert(err, gc.IsNil)

	relaxed, err := def.Relax(cl)
	c.Assert(err, gc.IsNil)
	c.Assert(relaxed, gc.Equals, true)
	c.Assert(def.WeightingCoefficient(), gc.Equals, 2.0)
}

func (s *ConnectivityTestSuite) TestRelaxWithoutNeighborhood(c *gc.C) {
	def := s.unitDefinition(c, 0)
	cl, err := cluster.New(s.g, s.fx.IDs("a", "b", "c", "d"), true)
	c.Assert(err, gc.IsNil)

	relaxed, err := def.Relax(cl)
	c.Assert(err, gc.IsNil)
	c.Assert(relaxed, gc.Equals, false)
	c.Assert(def.WeightingCoefficient(), gc.Equals, 1.0)
}

func (s *ConnectivityTestSuite) TestRelaxIsMonotonic(c *gc.C) {
	def := s.unitDefinition(c, 0)
	cl, err := cluster.New(s.g, s.fx.IDs("x1", "x2", "x3", "x4"), true)
	c.Assert(err, gc.IsNil)

	prev := def.WeightingCoefficient()
	for i := 0; i < 3; i++ {
		relaxed, err := def.Relax(cl)
		c.Assert(err, gc.IsNil)
		if !relaxed {
			break
		}
		c.Assert(def.WeightingCoefficient() > prev, gc.Equals, true)
		prev = def.WeightingCoefficient()
	}
}

func (s *ConnectivityTestSuite) TestClone(c *gc.C) {
	def := s.unitDefinition(c, 0)
	cl, err := cluster.New(s.g, s.fx.IDs("x1", "x2", "x3", "x4"), true)
	c.Assert(err, gc.IsNil)

	clone := def.Clone()
	relaxed, err := clone.Relax(cl)
	c.Assert(err, gc.IsNil)
	c.Assert(relaxed, gc.Equals, true)

	c.Assert(def.WeightingCoefficient(), gc.Equals, 1.0)
	assertApprox(c, clone.(*definition.Connectivity).WeightingCoefficient(), 1.5)
}

func (s *ConnectivityTestSuite) TestUnknownNode(c *gc.C) {
	def := s.unitDefinition(c, 0)
	cl, err := cluster.New(s.g, s.fx.IDs("a"), true)
	c.Assert(err, gc.IsNil)

	_, err = def.ShouldAdd(uuid.New(), cl)
	c.Assert(err, gc.NotNil)
}

func (s *ConnectivityTestSuite) TestRank(c *gc.C) {
	def := s.unitDefinition(c, 0)

	c.Assert(def.Rank(definition.Gain{WeightingCoefficient: 2, CoefficientMultiplier: 0.5, QualityDifference: 3}), gc.Equals, 4.0)
	c.Assert(def.Rank(definition.Gain{WeightingCoefficient: 2, QualityDifference: 3}), gc.Equals, 0.0)
	c.Assert(definition.Rank(def, definition.Gain{WeightingCoefficient: 2, CoefficientMultiplier: 0.5}), gc.Equals, 4.0)
	c.Assert(definition.Rank(plainDefinition{}, definition.Gain{WeightingCoefficient: 2, CoefficientMultiplier: 0.5, QualityDifference: 7}), gc.Equals, 7.0)
}

func (s *ConnectivityTestSuite) unitDefinition(c *gc.C, minMultiplier float64) *definition.Connectivity {
	def, err := definition.NewConnectivity(definition.ConnectivityConfig{
		WeightingCoefficient: 1,
		ThresholdModifier:    1,
		MinRelaxMultiplier:   minMultiplier,
	})
	c.Assert(err, gc.IsNil)
	return def
}

type plainDefinition struct{}

func (plainDefinition) ShouldAdd(id uuid.UUID, _ *cluster.Cluster) (definition.Gain, error) {
	return definition.Gain{Node: id}, nil
}

func (plainDefinition) ShouldRemove(id uuid.UUID, _ *cluster.Cluster) (definition.Gain, error) {
	return definition.Gain{Node: id}, nil
}

func clique(prefix string) []graphtest.WeightedEdge {
	var edges []graphtest.WeightedEdge
	for i := 1; i <= 4; i++ {
		for j := i + 1; j <= 4; j++ {
			edges = append(edges, graphtest.WeightedEdge{
				A: prefix + string(rune('0'+i)),
				B: prefix + string(rune('0'+j)),
			})
		}
	}
	return edges
}

func assertApprox(c *gc.C, got, exp float64) {
	c.Assert(math.Abs(got-exp) < 1e-6, gc.Equals, true, gc.Commentf("got %v, expected %v", got, exp))
}
