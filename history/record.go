package history

import (
	"bytes"
	"github.com/cespare/xxhash/v2"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/google/uuid"
)

// Phase identifies the part of an iteration a node was evaluated in.
type Phase uint8

const (
	// Expansion evaluations decide about neighborhood nodes.
	Expansion Phase = iota

	// Reduction evaluations decide about cluster members.
	Reduction
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	if p == Reduction {
		return "reduction"
	}
	return "expansion"
}

// Evaluation is a single gain computed during an iteration.
type Evaluation struct {
	Phase Phase
	definition.Gain
}

// Record describes one iteration of a cluster engine. Two records are equal
// if they added and removed the same nodes; the evaluations are ignored.
type Record struct {
	// The nodes added and removed during the iteration, sorted by ID.
	Added   []uuid.UUID
	Removed []uuid.UUID

	// Every gain computed during the iteration in evaluation order.
	Evaluations []Evaluation

	signature uint64
}

// NewRecord builds a record from the evaluations of an iteration. Nodes
// whose expansion gain was positive are treated as added and nodes whose
// reduction gain was positive as removed.
func NewRecord(evaluations []Evaluation) Record {
	r := Record{Evaluations: evaluations}
	for _, e := range evaluations {
		if !e.Result {
			continue
		}
		switch e.Phase {
		case Expansion:
			r.Added = append(r.Added, e.Node)
		case Reduction:
			r.Removed = append(r.Removed, e.Node)
		}
	}

	r.Added = cluster.SortIDs(dedup(r.Added))
	r.Removed = cluster.SortIDs(dedup(r.Removed))
	r.signature = signature(r.Added, r.Removed)
	return r
}

// IsEmpty returns true if the iteration did not change the cluster.
func (r Record) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}

// IsDeadlock returns true if the iteration removed exactly the nodes it added,
// leaving the membership of a non-empty change set unchanged.
func (r Record) IsDeadlock() bool {
	return !r.IsEmpty() && equalIDs(r.Added, r.Removed)
}

// Equal compares the added and removed node sets of two records.
func (r Record) Equal(other Record) bool {
	if r.signature != other.signature {
		return false
	}
	return equalIDs(r.Added, other.Added) && equalIDs(r.Removed, other.Removed)
}

// Select returns the evaluations of the given phase whose result matches
// result.
func (r Record) Select(phase Phase, result bool) []definition.Gain {
	var gains []definition.Gain
	for _, e := range r.Evaluations {
		if e.Phase == phase && e.Result == result {
			gains = append(gains, e.Gain)
		}
	}
	return gains
}

func signature(added, removed []uuid.UUID) uint64 {
	d := xxhash.New()
	for _, id := range added {
		_, _ = d.Write(id[:])
	}
	// Separator between the two sets.
	_, _ = d.Write([]byte{0xff})
	for _, id := range removed {
		_, _ = d.Write(id[:])
	}
	return d.Sum64()
}

func dedup(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, found := seen[id]; found {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func equalIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i][:], b[i][:]) {
			return false
		}
	}
	return true
}
