package engine

import (
	"errors"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	"io/ioutil"
)

// DefaultMinClusterSize is the target size used by the hierarchical engine
// when none is configured.
const DefaultMinClusterSize = 15

// ErrInvalidConfig is returned by the engine constructors when their
// configuration is rejected.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Config encapsulates the settings for configuring the local and multi-step
// cluster engines.
type Config struct {
	// An API for listing the neighbors of a node.
	Graph cluster.NeighborSource

	// The definition that decides which nodes join or leave the cluster.
	Definition definition.Definition

	// If true, source nodes are never removed from the cluster.
	SourcesInResult bool

	// Stop once the cluster has at least this many members. Zero means
	// unbounded.
	MaxClusterSize int

	// The number of expansion and reduction rounds per iteration. Both
	// default to 1 and are forced to 1 by NewLocal.
	ExpansionSteps int
	ReductionSteps int

	// The number of workers evaluating nodes in parallel. Values below 2
	// evaluate nodes on the calling goroutine.
	Workers int

	// A clock instance for measuring run duration. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Graph == nil {
		err = multierror.Append(err, xerrors.Errorf("graph API has not been provided: %w", ErrInvalidConfig))
	}
	if cfg.Definition == nil {
		err = multierror.Append(err, xerrors.Errorf("cluster definition has not been provided: %w", ErrInvalidConfig))
	}
	err = validateCommon(err, &cfg.MaxClusterSize, &cfg.ExpansionSteps, &cfg.ReductionSteps, &cfg.Workers)
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// HierarchicalConfig encapsulates the settings for configuring the
// hierarchical cluster engine.
type HierarchicalConfig struct {
	// An API for listing the neighbors of a node.
	Graph cluster.NeighborSource

	// The definition to relax between levels. Each run works on its own
	// clone; the configured instance is never modified.
	Definition definition.Hierarchical

	// If true, source nodes are never removed from the cluster.
	SourcesInResult bool

	// Stop as soon as a level ends with at least this many members.
	// Defaults to DefaultMinClusterSize.
	MinClusterSize int

	// Passed on to the inner engine. Zero means unbounded.
	MaxClusterSize int

	// Settings of the inner engine that grows the cluster at each level.
	ExpansionSteps int
	ReductionSteps int
	Workers        int

	// A clock instance for measuring run duration. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *HierarchicalConfig) validate() error {
	var err error
	if cfg.Graph == nil {
		err = multierror.Append(err, xerrors.Errorf("graph API has not been provided: %w", ErrInvalidConfig))
	}
	if cfg.Definition == nil {
		err = multierror.Append(err, xerrors.Errorf("hierarchical cluster definition has not been provided: %w", ErrInvalidConfig))
	}
	if cfg.MinClusterSize < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for min cluster size: %w", ErrInvalidConfig))
	} else if cfg.MinClusterSize == 0 {
		cfg.MinClusterSize = DefaultMinClusterSize
	}
	err = validateCommon(err, &cfg.MaxClusterSize, &cfg.ExpansionSteps, &cfg.ReductionSteps, &cfg.Workers)
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

func validateCommon(err error, maxSize, expansionSteps, reductionSteps, workers *int) error {
	if *maxSize < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for max cluster size: %w", ErrInvalidConfig))
	}
	if *expansionSteps < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for expansion steps: %w", ErrInvalidConfig))
	} else if *expansionSteps == 0 {
		*expansionSteps = 1
	}
	if *reductionSteps < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for reduction steps: %w", ErrInvalidConfig))
	} else if *reductionSteps == 0 {
		*reductionSteps = 1
	}
	if *workers < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for workers: %w", ErrInvalidConfig))
	}
	return err
}
