package engine

import (
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/history"
	"github.com/ejacobg/localclustering/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// runner implements the expansion/reduction loop shared by all engines.
type runner struct {
	def            definition.Definition
	maxSize        int
	expansionSteps int
	reductionSteps int
	workers        int
	logger         *logrus.Entry
}

// run iterates on c until a stop condition is met, appending a record to h
// for every iteration. A collaborator error aborts the run; c keeps the
// state of its last committed batch.
func (r *runner) run(c *cluster.Cluster, h *history.History) (StopReason, error) {
	for {
		var evals []history.Evaluation

		for step := 0; step < r.expansionSteps; step++ {
			gains, err := r.evaluate(c, c.Neighborhood(), history.Expansion)
			if err != nil {
				return 0, err
			}
			evals = appendEvaluations(evals, history.Expansion, gains)

			added := accepted(gains)
			if len(added) == 0 {
				break
			}
			if err = c.Add(added); err != nil {
				return 0, err
			}
		}

		for step := 0; step < r.reductionSteps; step++ {
			gains, err := r.evaluate(c, removable(c), history.Reduction)
			if err != nil {
				return 0, err
			}
			evals = appendEvaluations(evals, history.Reduction, gains)

			removed := accepted(gains)
			if len(removed) == 0 {
				break
			}
			c.Remove(removed)
		}

		rec := history.NewRecord(evals)
		h.Append(rec)
		r.logger.WithFields(logrus.Fields{
			"iteration": h.Len() - 1,
			"added":     len(rec.Added),
			"removed":   len(rec.Removed),
			"size":      c.Len(),
		}).Debug("completed iteration")

		if rec.IsEmpty() {
			return FixedPoint, nil
		}
		if rec.IsDeadlock() {
			return Cycle, nil
		}
		if _, found := h.FindCycle(); found {
			return Cycle, nil
		}
		if r.maxSize > 0 && c.Len() >= r.maxSize {
			return MaxSize, nil
		}
	}
}

// evaluate runs the definition against every node in ids. All evaluations
// see the same cluster state; the returned gains follow the order of ids.
func (r *runner) evaluate(c *cluster.Cluster, ids []uuid.UUID, phase history.Phase) ([]definition.Gain, error) {
	eval := r.def.ShouldAdd
	if phase == history.Reduction {
		eval = r.def.ShouldRemove
	}
	metrics.EvaluationsTotal.WithLabelValues(phase.String()).Add(float64(len(ids)))

	gains := make([]definition.Gain, len(ids))
	if r.workers < 2 || len(ids) < 2 {
		for i, id := range ids {
			g, err := eval(id, c)
			if err != nil {
				return nil, err
			}
			gains[i] = g
		}
		return gains, nil
	}

	var group errgroup.Group
	group.SetLimit(r.workers)
	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			g, err := eval(id, c)
			if err != nil {
				return err
			}
			gains[i] = g
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return gains, nil
}

// removable returns the members that the reduction step may evaluate.
func removable(c *cluster.Cluster) []uuid.UUID {
	members := c.Members()
	ids := members[:0]
	for _, id := range members {
		if !c.IsSource(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func accepted(gains []definition.Gain) []uuid.UUID {
	var ids []uuid.UUID
	for _, g := range gains {
		if g.Result {
			ids = append(ids, g.Node)
		}
	}
	return ids
}

func appendEvaluations(evals []history.Evaluation, phase history.Phase, gains []definition.Gain) []history.Evaluation {
	for _, g := range gains {
		evals = append(evals, history.Evaluation{Phase: phase, Gain: g})
	}
	return evals
}
