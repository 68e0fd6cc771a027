// Package ranking scores nodes based on the evaluations recorded during a
// cluster engine run.
package ranking

import (
	"errors"
	"fmt"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/history"
	"github.com/google/uuid"
	"sort"
	"sync"
)

// ErrNoRank is returned for nodes that were never evaluated during a run.
var ErrNoRank = errors.New("node has no rank")

// Provider is implemented by objects that can rank nodes.
type Provider interface {
	// NodeRank returns the rank of a single node.
	NodeRank(id uuid.UUID) (float64, error)

	// NodeRanks returns the ranks of ids in the same order.
	NodeRanks(ids []uuid.UUID) ([]float64, error)

	// SortByRank returns a sorted copy of ids.
	SortByRank(ids []uuid.UUID, descending bool) ([]uuid.UUID, error)
}

// Policy selects how the gains recorded for a node are combined into a rank.
type Policy uint8

const (
	// PolicyLast uses the most recent evaluation of the node.
	PolicyLast Policy = iota

	// PolicySum adds up the ranks of every evaluation of the node.
	PolicySum

	// PolicyRecency adds up the ranks of every evaluation of the node
	// weighted by 1/(age+1), where age is the number of iterations that
	// happened after the evaluation.
	PolicyRecency
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case PolicyLast:
		return "last"
	case PolicySum:
		return "sum"
	case PolicyRecency:
		return "recency"
	default:
		return fmt.Sprintf("Policy(%d)", p)
	}
}

// ParsePolicy converts the output of Policy.String back to a Policy.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range []Policy{PolicyLast, PolicySum, PolicyRecency} {
		if p.String() == s {
			return p, nil
		}
	}
	return PolicyLast, fmt.Errorf("unknown rank policy %q", s)
}

// Compile-time check.
var _ Provider = (*HistoryRankProvider)(nil)

// HistoryRankProvider ranks nodes using the gains stored in a History. Ranks
// are recomputed whenever the history has grown since the last query.
type HistoryRankProvider struct {
	h      *history.History
	def    definition.Definition
	policy Policy

	mu    sync.Mutex
	seen  int
	ranks map[uuid.UUID]float64
}

// NewHistoryRankProvider returns a provider bound to h. Gains are turned into
// ranks by def (see definition.Rank).
func NewHistoryRankProvider(h *history.History, def definition.Definition, policy Policy) *HistoryRankProvider {
	return &HistoryRankProvider{
		h:      h,
		def:    def,
		policy: policy,
		seen:   -1,
	}
}

// NodeRank implements Provider.
func (p *HistoryRankProvider) NodeRank(id uuid.UUID) (float64, error) {
	ranks := p.snapshot()
	rank, found := ranks[id]
	if !found {
		return 0, fmt.Errorf("node %s: %w", id, ErrNoRank)
	}
	return rank, nil
}

// NodeRanks implements Provider.
func (p *HistoryRankProvider) NodeRanks(ids []uuid.UUID) ([]float64, error) {
	ranks := p.snapshot()
	out := make([]float64, len(ids))
	for i, id := range ids {
		rank, found := ranks[id]
		if !found {
			return nil, fmt.Errorf("node %s: %w", id, ErrNoRank)
		}
		out[i] = rank
	}
	return out, nil
}

// SortByRank implements Provider. Nodes with equal ranks are ordered by their
// string form so the result is deterministic.
func (p *HistoryRankProvider) SortByRank(ids []uuid.UUID, descending bool) ([]uuid.UUID, error) {
	ranks, err := p.NodeRanks(ids)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		id   uuid.UUID
		key  string
		rank float64
	}
	list := make([]ranked, len(ids))
	for i, id := range ids {
		list[i] = ranked{id: id, key: id.String(), rank: ranks[i]}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].rank != list[j].rank {
			if descending {
				return list[i].rank > list[j].rank
			}
			return list[i].rank < list[j].rank
		}
		return list[i].key < list[j].key
	})

	out := make([]uuid.UUID, len(list))
	for i, r := range list {
		out[i] = r.id
	}
	return out, nil
}

func (p *HistoryRankProvider) snapshot() map[uuid.UUID]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen == p.h.Len() {
		return p.ranks
	}

	p.seen = p.h.Len()
	p.ranks = make(map[uuid.UUID]float64)
	for i := 0; i < p.seen; i++ {
		age := float64(p.seen - 1 - i)
		for _, e := range p.h.Record(i).Evaluations {
			rank := definition.Rank(p.def, e.Gain)
			switch p.policy {
			case PolicySum:
				p.ranks[e.Node] += rank
			case PolicyRecency:
				p.ranks[e.Node] += rank / (age + 1)
			default:
				p.ranks[e.Node] = rank
			}
		}
	}
	return p.ranks
}
