package ranking_test

import (
	"errors"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/history"
	"github.com/ejacobg/localclustering/ranking"
	"github.com/google/uuid"
	gc "gopkg.in/check.v1"
	"testing"
)

var _ = gc.Suite(new(RankingTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type RankingTestSuite struct {
	ids []uuid.UUID
	h   *history.History
}

func (s *RankingTestSuite) SetUpTest(c *gc.C) {
	s.ids = make([]uuid.UUID, 4)
	for i := range s.ids {
		s.ids[i] = uuid.New()
	}
	cluster.SortIDs(s.ids)

	// ids[0] is the source and never evaluated. ids[1] is evaluated twice.
	s.h = history.New(s.ids[:1], true)
	s.h.Append(history.NewRecord([]history.Evaluation{
		gain(history.Expansion, s.ids[1], 1),
		gain(history.Expansion, s.ids[2], 3),
	}))
	s.h.Append(history.NewRecord([]history.Evaluation{
		gain(history.Reduction, s.ids[1], 2),
		gain(history.Expansion, s.ids[3], 2),
	}))
}

func (s *RankingTestSuite) TestPolicyLast(c *gc.C) {
	p := ranking.NewHistoryRankProvider(s.h, plainDefinition{}, ranking.PolicyLast)

	ranks, err := p.NodeRanks(s.ids[1:])
	c.Assert(err, gc.IsNil)
	c.Assert(ranks, gc.DeepEquals, []float64{2, 3, 2})
}

func (s *RankingTestSuite) TestPolicySum(c *gc.C) {
	p := ranking.NewHistoryRankProvider(s.h, plainDefinition{}, ranking.PolicySum)

	rank, err := p.NodeRank(s.ids[1])
	c.Assert(err, gc.IsNil)
	c.Assert(rank, gc.Equals, 3.0)
}

func (s *RankingTestSuite) TestPolicyRecency(c *gc.C) {
	p := ranking.NewHistoryRankProvider(s.h, plainDefinition{}, ranking.PolicyRecency)

	ranks, err := p.NodeRanks(s.ids[1:])
	c.Assert(err, gc.IsNil)
	c.Assert(ranks, gc.DeepEquals, []float64{1.0/2 + 2, 3.0 / 2, 2})
}

func (s *RankingTestSuite) TestUsesDefinitionRanker(c *gc.C) {
	def, err := definition.NewConnectivity(definition.DefaultConnectivityConfig())
	c.Assert(err, gc.IsNil)

	h := history.New(s.ids[:1], true)
	h.Append(history.NewRecord([]history.Evaluation{{
		Phase: history.Expansion,
		Gain: definition.Gain{
			Node:                  s.ids[1],
			QualityDifference:     4,
			Threshold:             2,
			WeightingCoefficient:  2,
			CoefficientMultiplier: 0.5,
		},
	}}))

	rank, err := ranking.NewHistoryRankProvider(h, def, ranking.PolicyLast).NodeRank(s.ids[1])
	c.Assert(err, gc.IsNil)
	c.Assert(rank, gc.Equals, 4.0)
}

func (s *RankingTestSuite) TestNoRank(c *gc.C) {
	p := ranking.NewHistoryRankProvider(s.h, plainDefinition{}, ranking.PolicyLast)

	_, err := p.NodeRank(s.ids[0])
	c.Assert(errors.Is(err, ranking.ErrNoRank), gc.Equals, true)

	_, err = p.NodeRanks(s.ids)
	c.Assert(errors.Is(err, ranking.ErrNoRank), gc.Equals, true)

	_, err = p.SortByRank(s.ids, true)
	c.Assert(errors.Is(err, ranking.ErrNoRank), gc.Equals, true)
}

func (s *RankingTestSuite) TestSortByRank(c *gc.C) {
	p := ranking.NewHistoryRankProvider(s.h, plainDefinition{}, ranking.PolicyLast)

	// ids[1] and ids[3] tie on 2 and are ordered by ID.
	sorted, err := p.SortByRank(s.ids[1:], true)
	c.Assert(err, gc.IsNil)
	c.Assert(sorted, gc.DeepEquals, []uuid.UUID{s.ids[2], s.ids[1], s.ids[3]})

	sorted, err = p.SortByRank([]uuid.UUID{s.ids[3], s.ids[2], s.ids[1]}, false)
	c.Assert(err, gc.IsNil)
	c.Assert(sorted, gc.DeepEquals, []uuid.UUID{s.ids[1], s.ids[3], s.ids[2]})
}

func (s *RankingTestSuite) TestRanksFollowHistory(c *gc.C) {
	p := ranking.NewHistoryRankProvider(s.h, plainDefinition{}, ranking.PolicyLast)
	_, err := p.NodeRank(s.ids[0])
	c.Assert(err, gc.NotNil)

	s.h.Append(history.NewRecord([]history.Evaluation{gain(history.Reduction, s.ids[0], 5)}))
	rank, err := p.NodeRank(s.ids[0])
	c.Assert(err, gc.IsNil)
	c.Assert(rank, gc.Equals, 5.0)
}

func (s *RankingTestSuite) TestParsePolicy(c *gc.C) {
	for _, exp := range []ranking.Policy{ranking.PolicyLast, ranking.PolicySum, ranking.PolicyRecency} {
		got, err := ranking.ParsePolicy(exp.String())
		c.Assert(err, gc.IsNil)
		c.Assert(got, gc.Equals, exp)
	}
	_, err := ranking.ParsePolicy("bogus")
	c.Assert(err, gc.NotNil)
}

type plainDefinition struct{}

func (plainDefinition) ShouldAdd(id uuid.UUID, _ *cluster.Cluster) (definition.Gain, error) {
	return definition.Gain{Node: id}, nil
}

func (plainDefinition) ShouldRemove(id uuid.UUID, _ *cluster.Cluster) (definition.Gain, error) {
	return definition.Gain{Node: id}, nil
}

func gain(phase history.Phase, id uuid.UUID, qd float64) history.Evaluation {
	return history.Evaluation{
		Phase: phase,
		Gain:  definition.Gain{Node: id, QualityDifference: qd},
	}
}
