package engine

import (
	"fmt"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/history"
	"github.com/ejacobg/localclustering/ranking"
	"time"
)

// StopReason describes why an engine run ended. None of the reasons signal a
// failure.
type StopReason uint8

// The supported stop reasons.
const (
	// Neither nodes were added nor removed during the last iteration.
	FixedPoint StopReason = iota + 1

	// The last iteration repeated an earlier one of the same level.
	Cycle

	// The cluster reached the configured maximum size.
	MaxSize

	// The hierarchical engine reached its target size.
	TargetSize

	// The cluster has no neighborhood left to grow into.
	Exhausted

	// The hierarchical definition could not be relaxed any further.
	RelaxationFailed
)

// String implements fmt.Stringer.
func (r StopReason) String() string {
	switch r {
	case FixedPoint:
		return "fixed-point"
	case Cycle:
		return "cycle"
	case MaxSize:
		return "max-size"
	case TargetSize:
		return "target-size"
	case Exhausted:
		return "exhausted"
	case RelaxationFailed:
		return "relaxation-failed"
	default:
		return fmt.Sprintf("StopReason(%d)", r)
	}
}

// Result is returned by a successful engine run.
type Result struct {
	// The final cluster.
	Cluster *cluster.Cluster

	// Every iteration of the run.
	History *history.History

	// The definition the run ended with. For hierarchical runs this is the
	// relaxed clone used by the run.
	Definition definition.Definition

	Reason StopReason

	// The number of hierarchy levels. Always 1 for non-hierarchical runs.
	Levels int

	Duration time.Duration
}

// RankProvider returns a rank provider bound to the history of the run.
func (r *Result) RankProvider(policy ranking.Policy) *ranking.HistoryRankProvider {
	return ranking.NewHistoryRankProvider(r.History, r.Definition, policy)
}
