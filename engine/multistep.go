// Package engine implements the cluster engines that grow a local cluster
// around a set of source nodes.
package engine

import (
	"errors"
	"fmt"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/history"
	"github.com/ejacobg/localclustering/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// MultiStep is a cluster engine whose iterations consist of a configurable
// number of expansion rounds followed by a configurable number of reduction
// rounds. A phase ends early when one of its rounds changes nothing.
type MultiStep struct {
	name string
	cfg  Config
}

// NewLocal returns the local cluster engine: a MultiStep engine that runs a
// single expansion and a single reduction round per iteration.
func NewLocal(cfg Config) (*MultiStep, error) {
	cfg.ExpansionSteps, cfg.ReductionSteps = 1, 1
	return newMultiStep("local", cfg)
}

// NewMultiStep returns a new MultiStep engine instance.
func NewMultiStep(cfg Config) (*MultiStep, error) {
	return newMultiStep("multi-step", cfg)
}

func newMultiStep(name string, cfg Config) (*MultiStep, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("%s engine: config validation failed: %w", name, err)
	}
	return &MultiStep{name: name, cfg: cfg}, nil
}

// Cluster computes the local cluster of sources.
func (e *MultiStep) Cluster(sources []uuid.UUID) (*Result, error) {
	c, err := newCluster(e.cfg.Graph, sources, e.cfg.SourcesInResult)
	if err != nil {
		metrics.RunErrorsTotal.WithLabelValues(e.name).Inc()
		return nil, err
	}
	return e.ExecuteOn(c, history.New(sources, e.cfg.SourcesInResult))
}

// ExecuteOn continues clustering from the current state of c, appending to h.
func (e *MultiStep) ExecuteOn(c *cluster.Cluster, h *history.History) (*Result, error) {
	start := e.cfg.Clock.Now()
	logger := e.cfg.Logger.WithField("engine", e.name)

	reason, err := e.runner(logger).run(c, h)
	if err != nil {
		metrics.RunErrorsTotal.WithLabelValues(e.name).Inc()
		return nil, err
	}

	observeRun(e.name, reason, c, h)
	logger.WithFields(logrus.Fields{
		"reason":     reason.String(),
		"size":       c.Len(),
		"iterations": h.Len(),
	}).Info("clustering completed")

	return &Result{
		Cluster:    c,
		History:    h,
		Definition: e.cfg.Definition,
		Reason:     reason,
		Levels:     h.Levels(),
		Duration:   e.cfg.Clock.Now().Sub(start),
	}, nil
}

func (e *MultiStep) runner(logger *logrus.Entry) *runner {
	return &runner{
		def:            e.cfg.Definition,
		maxSize:        e.cfg.MaxClusterSize,
		expansionSteps: e.cfg.ExpansionSteps,
		reductionSteps: e.cfg.ReductionSteps,
		workers:        e.cfg.Workers,
		logger:         logger,
	}
}

func observeRun(name string, reason StopReason, c *cluster.Cluster, h *history.History) {
	metrics.RunsTotal.WithLabelValues(name, reason.String()).Inc()
	metrics.IterationsPerRun.WithLabelValues(name).Observe(float64(h.Len()))
	metrics.ClusterSize.WithLabelValues(name).Observe(float64(c.Len()))
}

// newCluster creates the starting cluster of a run. An empty source set is
// reported as a configuration error; collaborator errors are returned as is.
func newCluster(src cluster.NeighborSource, sources []uuid.UUID, protect bool) (*cluster.Cluster, error) {
	c, err := cluster.New(src, sources, protect)
	if errors.Is(err, cluster.ErrNoSources) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, err
}
