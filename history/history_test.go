package history_test

import (
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/history"
	"github.com/google/uuid"
	gc "gopkg.in/check.v1"
	"strings"
	"testing"
)

var _ = gc.Suite(new(HistoryTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type HistoryTestSuite struct {
	ids []uuid.UUID
}

func (s *HistoryTestSuite) SetUpTest(c *gc.C) {
	s.ids = make([]uuid.UUID, 4)
	for i := range s.ids {
		s.ids[i] = uuid.New()
	}
	cluster.SortIDs(s.ids)
}

func (s *HistoryTestSuite) TestNewRecord(c *gc.C) {
	r := history.NewRecord([]history.Evaluation{
		eval(history.Expansion, s.ids[2], true),
		eval(history.Expansion, s.ids[0], true),
		eval(history.Expansion, s.ids[1], false),
		eval(history.Reduction, s.ids[3], true),
		eval(history.Reduction, s.ids[2], false),
	})

	c.Assert(r.Added, gc.DeepEquals, []uuid.UUID{s.ids[0], s.ids[2]})
	c.Assert(r.Removed, gc.DeepEquals, []uuid.UUID{s.ids[3]})
	c.Assert(r.IsEmpty(), gc.Equals, false)
	c.Assert(r.IsDeadlock(), gc.Equals, false)
	c.Assert(r.Select(history.Expansion, false), gc.HasLen, 1)
	c.Assert(r.Select(history.Reduction, false)[0].Node, gc.Equals, s.ids[2])
}

func (s *HistoryTestSuite) TestRecordEquality(c *gc.C) {
	a := history.NewRecord([]history.Evaluation{
		eval(history.Expansion, s.ids[0], true),
		eval(history.Expansion, s.ids[1], true),
	})
	// Same sets, different order and extra rejected evaluations.
	b := history.NewRecord([]history.Evaluation{
		eval(history.Expansion, s.ids[1], true),
		eval(history.Expansion, s.ids[3], false),
		eval(history.Expansion, s.ids[0], true),
	})
	// Same nodes, but removed instead of added.
	d := history.NewRecord([]history.Evaluation{
		eval(history.Reduction, s.ids[0], true),
		eval(history.Reduction, s.ids[1], true),
	})

	c.Assert(a.Equal(b), gc.Equals, true)
	c.Assert(b.Equal(a), gc.Equals, true)
	c.Assert(a.Equal(d), gc.Equals, false)
	c.Assert(history.NewRecord(nil).Equal(history.NewRecord(nil)), gc.Equals, true)
	c.Assert(history.NewRecord(nil).IsEmpty(), gc.Equals, true)
}

func (s *HistoryTestSuite) TestDeadlock(c *gc.C) {
	r := history.NewRecord([]history.Evaluation{
		eval(history.Expansion, s.ids[1], true),
		eval(history.Reduction, s.ids[1], true),
	})
	c.Assert(r.IsDeadlock(), gc.Equals, true)
	c.Assert(history.NewRecord(nil).IsDeadlock(), gc.Equals, false)
}

func (s *HistoryTestSuite) TestAccessors(c *gc.C) {
	h := history.New([]uuid.UUID{s.ids[3], s.ids[1]}, true)
	c.Assert(h.Len(), gc.Equals, 0)
	_, ok := h.Last()
	c.Assert(ok, gc.Equals, false)
	c.Assert(h.Sources(), gc.DeepEquals, []uuid.UUID{s.ids[1], s.ids[3]})
	c.Assert(h.SourcesInResult(), gc.Equals, true)

	first := history.NewRecord([]history.Evaluation{eval(history.Expansion, s.ids[0], true)})
	h.Append(first)
	h.Append(history.NewRecord(nil))

	c.Assert(h.Len(), gc.Equals, 2)
	c.Assert(h.Record(0).Equal(first), gc.Equals, true)
	last, ok := h.Last()
	c.Assert(ok, gc.Equals, true)
	c.Assert(last.IsEmpty(), gc.Equals, true)

	// Mutating the returned slice does not affect the history.
	records := h.Records()
	records[0] = history.Record{}
	c.Assert(h.Record(0).Added, gc.DeepEquals, []uuid.UUID{s.ids[0]})
}

func (s *HistoryTestSuite) TestFindCycle(c *gc.C) {
	h := history.New(s.ids[:1], true)
	add := history.NewRecord([]history.Evaluation{eval(history.Expansion, s.ids[1], true)})
	rem := history.NewRecord([]history.Evaluation{eval(history.Reduction, s.ids[1], true)})

	h.Append(add)
	_, found := h.FindCycle()
	c.Assert(found, gc.Equals, false)

	h.Append(rem)
	_, found = h.FindCycle()
	c.Assert(found, gc.Equals, false)

	h.Append(add)
	index, found := h.FindCycle()
	c.Assert(found, gc.Equals, true)
	c.Assert(index, gc.Equals, 0)
}

func (s *HistoryTestSuite) TestLevelsScopeCycleDetection(c *gc.C) {
	h := history.New(s.ids[:1], true)
	add := history.NewRecord([]history.Evaluation{eval(history.Expansion, s.ids[1], true)})

	h.BeginLevel() // no-op on an empty level
	c.Assert(h.Levels(), gc.Equals, 1)

	h.Append(add)
	h.BeginLevel()
	h.Append(add)
	c.Assert(h.Levels(), gc.Equals, 2)
	_, found := h.FindCycle()
	c.Assert(found, gc.Equals, false)

	h.Append(add)
	index, found := h.FindCycle()
	c.Assert(found, gc.Equals, true)
	c.Assert(index, gc.Equals, 1)

	c.Assert(h.LevelOf(0), gc.Equals, 0)
	c.Assert(h.LevelOf(1), gc.Equals, 1)
	c.Assert(h.LevelOf(2), gc.Equals, 1)
}

func (s *HistoryTestSuite) TestTrace(c *gc.C) {
	names := map[uuid.UUID]string{s.ids[0]: "b", s.ids[1]: "a", s.ids[2]: "c", s.ids[3]: "d"}
	h := history.New(s.ids[:1], true)
	h.Append(history.NewRecord([]history.Evaluation{
		eval(history.Expansion, s.ids[2], true),
		eval(history.Expansion, s.ids[1], true),
		eval(history.Reduction, s.ids[1], false),
	}))
	h.Append(history.NewRecord([]history.Evaluation{
		eval(history.Expansion, s.ids[3], false),
		eval(history.Reduction, s.ids[2], true),
	}))

	exp := strings.Join([]string{
		"STEP 0",
		"Added: a",
		"Added: c",
		"Not removed: a",
		"STEP 1",
		"Not added: d",
		"Removed: c",
	}, "\n")
	c.Assert(h.Trace(func(id uuid.UUID) string { return names[id] }), gc.Equals, exp)
	c.Assert(strings.HasPrefix(h.String(), "STEP 0\nAdded: "), gc.Equals, true)
}

func eval(phase history.Phase, id uuid.UUID, result bool) history.Evaluation {
	return history.Evaluation{
		Phase: phase,
		Gain:  definition.Gain{Node: id, Result: result},
	}
}
