package engine_test

import (
	"errors"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/engine"
	gc "gopkg.in/check.v1"
)

func (s *EngineTestSuite) TestHierarchicalRelaxationFails(c *gc.C) {
	def := s.hierarchicalDefinition(c, 0)
	e := s.hierarchical(c, engine.HierarchicalConfig{Definition: def, MinClusterSize: 8})

	res, err := e.Cluster(s.fx.IDs("x1"))
	c.Assert(err, gc.IsNil)

	// Level 0 stops at the x-clique. After relaxing, y1 is added and
	// immediately removed again, and no further relaxation exists.
	c.Assert(res.Reason, gc.Equals, engine.RelaxationFailed)
	c.Assert(res.Levels, gc.Equals, 2)
	c.Assert(res.History.Len(), gc.Equals, 3)
	c.Assert(res.History.Record(2).IsDeadlock(), gc.Equals, true)
	c.Assert(s.fx.Names(res.Cluster.Members()), gc.DeepEquals, []string{"x1", "x2", "x3", "x4"})
	c.Assert(res.Cluster.Validate(), gc.IsNil)

	// The configured definition is never relaxed.
	c.Assert(def.WeightingCoefficient(), gc.Equals, 1.0)
	assertApprox(c, res.Definition.(*definition.Connectivity).WeightingCoefficient(), 1.5)
}

func (s *EngineTestSuite) TestHierarchicalTargetSize(c *gc.C) {
	e := s.hierarchical(c, engine.HierarchicalConfig{Definition: s.hierarchicalDefinition(c, 2), MinClusterSize: 8})

	res, err := e.Cluster(s.fx.IDs("x1"))
	c.Assert(err, gc.IsNil)
	c.Assert(res.Reason, gc.Equals, engine.TargetSize)
	c.Assert(res.Levels, gc.Equals, 2)
	c.Assert(res.Cluster.Len(), gc.Equals, 8)
	c.Assert(res.Definition.(*definition.Connectivity).WeightingCoefficient(), gc.Equals, 2.0)

	// Level 1 adds y1 first and the rest of the y-clique afterwards.
	s.assertRecord(c, res.History.Record(2), []string{"y1"}, nil)
	s.assertRecord(c, res.History.Record(3), []string{"y2", "y3", "y4"}, nil)
	c.Assert(res.History.LevelOf(1), gc.Equals, 0)
	c.Assert(res.History.LevelOf(2), gc.Equals, 1)
}

func (s *EngineTestSuite) TestHierarchicalExhausted(c *gc.C) {
	e := s.hierarchical(c, engine.HierarchicalConfig{Definition: s.hierarchicalDefinition(c, 2), MinClusterSize: 20})

	res, err := e.Cluster(s.fx.IDs("x1"))
	c.Assert(err, gc.IsNil)
	c.Assert(res.Reason, gc.Equals, engine.Exhausted)
	c.Assert(res.Cluster.Len(), gc.Equals, 8)
	c.Assert(res.Cluster.NeighborhoodSize(), gc.Equals, 0)
}

func (s *EngineTestSuite) TestHierarchicalMaxSize(c *gc.C) {
	e := s.hierarchical(c, engine.HierarchicalConfig{
		Definition:     s.hierarchicalDefinition(c, 2),
		MinClusterSize: 8,
		MaxClusterSize: 5,
	})

	res, err := e.Cluster(s.fx.IDs("x1"))
	c.Assert(err, gc.IsNil)
	c.Assert(res.Reason, gc.Equals, engine.MaxSize)
	c.Assert(s.fx.Names(res.Cluster.Members()), gc.DeepEquals, []string{"x1", "x2", "x3", "x4", "y1"})
}

func (s *EngineTestSuite) TestHierarchicalTargetReachedWithoutRelaxing(c *gc.C) {
	e := s.hierarchical(c, engine.HierarchicalConfig{Definition: s.hierarchicalDefinition(c, 0), MinClusterSize: 4})

	res, err := e.Cluster(s.fx.IDs("b"))
	c.Assert(err, gc.IsNil)
	c.Assert(res.Reason, gc.Equals, engine.TargetSize)
	c.Assert(res.Levels, gc.Equals, 1)
	c.Assert(res.Definition.(*definition.Connectivity).WeightingCoefficient(), gc.Equals, 1.0)
}

func (s *EngineTestSuite) TestHierarchicalDefaults(c *gc.C) {
	// The default target of 15 nodes cannot be reached on the path.
	e := s.hierarchical(c, engine.HierarchicalConfig{Definition: s.hierarchicalDefinition(c, 0)})

	res, err := e.Cluster(s.fx.IDs("b"))
	c.Assert(err, gc.IsNil)
	c.Assert(res.Reason, gc.Equals, engine.Exhausted)
	c.Assert(res.Cluster.Len(), gc.Equals, 4)
}

func (s *EngineTestSuite) TestHierarchicalExecuteOnGrownCluster(c *gc.C) {
	local := s.local(c, engine.Config{Definition: s.connectivity(c, 1, 1), SourcesInResult: true})
	grown, err := local.Cluster(s.fx.IDs("x1"))
	c.Assert(err, gc.IsNil)
	c.Assert(grown.Reason, gc.Equals, engine.FixedPoint)
	c.Assert(grown.History.Len(), gc.Equals, 2)

	def := s.hierarchicalDefinition(c, 2)
	e := s.hierarchical(c, engine.HierarchicalConfig{Definition: def, MinClusterSize: 8})
	res, err := e.ExecuteOn(grown.Cluster, grown.History)
	c.Assert(err, gc.IsNil)
	c.Assert(res.Cluster, gc.Equals, grown.Cluster)
	c.Assert(res.History, gc.Equals, grown.History)

	// The first new level finds nothing to add at the original coefficient;
	// the relaxed level then pulls in the y-clique.
	c.Assert(res.Reason, gc.Equals, engine.TargetSize)
	c.Assert(res.Levels, gc.Equals, 3)
	c.Assert(res.Cluster.Len(), gc.Equals, 8)
	c.Assert(res.Cluster.Validate(), gc.IsNil)
	s.assertRecord(c, res.History.Record(0), []string{"x2", "x3", "x4"}, nil)
	s.assertRecord(c, res.History.Record(2), nil, nil)
	s.assertRecord(c, res.History.Record(3), []string{"y1"}, nil)
	c.Assert(res.History.LevelOf(2), gc.Equals, 1)
	c.Assert(res.History.LevelOf(3), gc.Equals, 2)
	c.Assert(def.WeightingCoefficient(), gc.Equals, 1.0)
}

func (s *EngineTestSuite) TestHierarchicalNoSources(c *gc.C) {
	e := s.hierarchical(c, engine.HierarchicalConfig{Definition: s.hierarchicalDefinition(c, 0)})
	_, err := e.Cluster(nil)
	c.Assert(err, gc.NotNil)
	c.Assert(errors.Is(err, engine.ErrInvalidConfig), gc.Equals, true)
	c.Assert(errors.Is(err, cluster.ErrNoSources), gc.Equals, true)
}

func (s *EngineTestSuite) hierarchical(c *gc.C, cfg engine.HierarchicalConfig) *engine.Hierarchical {
	if cfg.Graph == nil {
		cfg.Graph = s.g
	}
	cfg.SourcesInResult = true
	e, err := engine.NewHierarchical(cfg)
	c.Assert(err, gc.IsNil)
	return e
}

func (s *EngineTestSuite) hierarchicalDefinition(c *gc.C, minMultiplier float64) *definition.Connectivity {
	def, err := definition.NewConnectivity(definition.ConnectivityConfig{
		WeightingCoefficient: 1,
		ThresholdModifier:    1,
		MinRelaxMultiplier:   minMultiplier,
	})
	c.Assert(err, gc.IsNil)
	return def
}
