// Package history records the iterations a cluster engine went through.
package history

import (
	"fmt"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/google/uuid"
	"sort"
	"strings"
)

// History is the ordered list of records produced by a single engine run.
// Runs of the hierarchical engine split their history into levels; cycles
// are only searched for within the current level.
//
// History is not safe for concurrent writes. Engines append to it while they
// run and hand it out read-only afterwards.
type History struct {
	sources         []uuid.UUID
	sourcesInResult bool

	records []Record
	levels  []int
}

// New returns an empty history for a run started from sources.
func New(sources []uuid.UUID, sourcesInResult bool) *History {
	return &History{
		sources:         cluster.SortIDs(append([]uuid.UUID(nil), sources...)),
		sourcesInResult: sourcesInResult,
		levels:          []int{0},
	}
}

// Append adds r to the end of the history.
func (h *History) Append(r Record) {
	h.records = append(h.records, r)
}

// Len returns the number of records in the history.
func (h *History) Len() int {
	return len(h.records)
}

// Record returns the record at index i. It panics if i is out of range.
func (h *History) Record(i int) Record {
	return h.records[i]
}

// Last returns the most recent record. The second return value is false if
// the history is empty.
func (h *History) Last() (Record, bool) {
	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

// Records returns a copy of the recorded iterations.
func (h *History) Records() []Record {
	return append([]Record(nil), h.records...)
}

// FindCycle compares the last record against every earlier record of the
// current level and returns the index of the first match.
func (h *History) FindCycle() (int, bool) {
	last, ok := h.Last()
	if !ok {
		return -1, false
	}
	for i := h.levels[len(h.levels)-1]; i < len(h.records)-1; i++ {
		if h.records[i].Equal(last) {
			return i, true
		}
	}
	return -1, false
}

// BeginLevel starts a new level. Records appended from now on are not
// compared with the ones of earlier levels. Calling BeginLevel on an empty
// level is a no-op.
func (h *History) BeginLevel() {
	if h.levels[len(h.levels)-1] == len(h.records) {
		return
	}
	h.levels = append(h.levels, len(h.records))
}

// Levels returns the number of levels in the history.
func (h *History) Levels() int {
	return len(h.levels)
}

// LevelOf returns the level the record at index i belongs to.
func (h *History) LevelOf(i int) int {
	return sort.SearchInts(h.levels, i+1) - 1
}

// Sources returns the nodes the run was started from.
func (h *History) Sources() []uuid.UUID {
	return append([]uuid.UUID(nil), h.sources...)
}

// SourcesInResult reports whether the sources were protected from removal.
func (h *History) SourcesInResult() bool {
	return h.sourcesInResult
}

// String implements fmt.Stringer using node IDs.
func (h *History) String() string {
	return h.Trace(func(id uuid.UUID) string { return id.String() })
}

// Trace renders the history step by step, labelling nodes with name.
func (h *History) Trace(name func(uuid.UUID) string) string {
	var lines []string
	for i, r := range h.records {
		lines = append(lines, fmt.Sprintf("STEP %d", i))
		lines = appendGains(lines, "Added", r.Select(Expansion, true), name)
		lines = appendGains(lines, "Not added", r.Select(Expansion, false), name)
		lines = appendGains(lines, "Removed", r.Select(Reduction, true), name)
		lines = appendGains(lines, "Not removed", r.Select(Reduction, false), name)
	}
	return strings.Join(lines, "\n")
}

func appendGains(lines []string, label string, gains []definition.Gain, name func(uuid.UUID) string) []string {
	names := make([]string, 0, len(gains))
	for _, g := range gains {
		names = append(names, name(g.Node))
	}
	sort.Strings(names)
	for _, n := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", label, n))
	}
	return lines
}
