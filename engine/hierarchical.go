package engine

import (
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/history"
	"github.com/ejacobg/localclustering/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Hierarchical is a cluster engine that grows the cluster level by level. At
// every level an inner multi-step engine extends the current cluster; if the
// result is still below the target size the definition is relaxed and the
// next level starts from where the previous one ended.
type Hierarchical struct {
	cfg HierarchicalConfig
}

// NewHierarchical returns a new Hierarchical engine instance.
func NewHierarchical(cfg HierarchicalConfig) (*Hierarchical, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("hierarchical engine: config validation failed: %w", err)
	}
	return &Hierarchical{cfg: cfg}, nil
}

// Cluster computes the hierarchical local cluster of sources.
func (e *Hierarchical) Cluster(sources []uuid.UUID) (*Result, error) {
	c, err := newCluster(e.cfg.Graph, sources, e.cfg.SourcesInResult)
	if err != nil {
		metrics.RunErrorsTotal.WithLabelValues("hierarchical").Inc()
		return nil, err
	}
	return e.ExecuteOn(c, history.New(sources, e.cfg.SourcesInResult))
}

// ExecuteOn continues a hierarchical run from the current state of c,
// appending to h. Relaxations are applied to a clone of the configured
// definition.
func (e *Hierarchical) ExecuteOn(c *cluster.Cluster, h *history.History) (*Result, error) {
	start := e.cfg.Clock.Now()
	logger := e.cfg.Logger.WithField("engine", "hierarchical")

	def := e.cfg.Definition.Clone()
	inner := &runner{
		def:            def,
		maxSize:        e.cfg.MaxClusterSize,
		expansionSteps: e.cfg.ExpansionSteps,
		reductionSteps: e.cfg.ReductionSteps,
		workers:        e.cfg.Workers,
		logger:         logger,
	}

	var reason StopReason
	for reason == 0 {
		h.BeginLevel()
		levelReason, err := inner.run(c, h)
		if err != nil {
			metrics.RunErrorsTotal.WithLabelValues("hierarchical").Inc()
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"level":  h.Levels() - 1,
			"reason": levelReason.String(),
			"size":   c.Len(),
		}).Debug("completed level")

		switch {
		case levelReason == MaxSize:
			reason = MaxSize
		case c.Len() >= e.cfg.MinClusterSize:
			reason = TargetSize
		case c.NeighborhoodSize() == 0:
			reason = Exhausted
		default:
			relaxed, err := def.Relax(c)
			if err != nil {
				metrics.RunErrorsTotal.WithLabelValues("hierarchical").Inc()
				return nil, err
			}
			if !relaxed {
				reason = RelaxationFailed
				break
			}
			metrics.RelaxationsTotal.Inc()
		}
	}

	observeRun("hierarchical", reason, c, h)
	logger.WithFields(logrus.Fields{
		"reason":     reason.String(),
		"size":       c.Len(),
		"levels":     h.Levels(),
		"iterations": h.Len(),
	}).Info("clustering completed")

	return &Result{
		Cluster:    c,
		History:    h,
		Definition: def,
		Reason:     reason,
		Levels:     h.Levels(),
		Duration:   e.cfg.Clock.Now().Sub(start),
	}, nil
}
