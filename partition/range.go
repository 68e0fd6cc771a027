// Package partition splits the node ID space into contiguous ranges so that
// batch clustering runs can be spread across processes.
package partition

import (
	"bytes"
	"fmt"
	"github.com/google/uuid"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

var maxUUID = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

// Range represents a contiguous node ID region which is split into a number
// of partitions.
type Range struct {
	// The lower bound for the range (inclusive).
	start uuid.UUID

	// splits[i] holds the upper bound (exclusive) of partition i. The lower
	// bound of partition i is splits[i-1], or start for the first one.
	splits []uuid.UUID
}

// NewRange creates a new range [start, end) and splits it into the
// provided number of partitions.
func NewRange(start, end uuid.UUID, numPartitions int) (Range, error) {
	if bytes.Compare(start[:], end[:]) >= 0 {
		return Range{}, fmt.Errorf("range start ID must be less than the end ID")
	} else if numPartitions <= 0 {
		return Range{}, fmt.Errorf("number of partitions must be at least equal to 1")
	}

	// Each partition spans (end - start) / numPartitions IDs.
	first := new(big.Int).SetBytes(start[:])
	size := new(big.Int).Sub(new(big.Int).SetBytes(end[:]), first)
	size.Div(size, big.NewInt(int64(numPartitions)))

	splits := make([]uuid.UUID, numPartitions)
	bound := new(big.Int)
	for i := 0; i < numPartitions-1; i++ {
		bound.Mul(size, big.NewInt(int64(i+1)))
		bound.Add(bound, first)

		id, err := uuid.FromBytes(leftPad(bound.Bytes()))
		if err != nil {
			return Range{}, fmt.Errorf("partition range: %w", err)
		}
		splits[i] = id
	}
	splits[numPartitions-1] = end

	return Range{start: start, splits: splits}, nil
}

// NewFullRange creates a new range that uses the full node ID space and
// splits it into the provided number of partitions.
func NewFullRange(numPartitions int) (Range, error) {
	return NewRange(uuid.Nil, maxUUID, numPartitions)
}

// NumPartitions returns the number of partitions in the range.
func (r Range) NumPartitions() int {
	return len(r.splits)
}

// Extents returns the full [start, end) range this object represents.
func (r Range) Extents() (uuid.UUID, uuid.UUID) {
	return r.start, r.splits[len(r.splits)-1]
}

// PartitionExtents returns the [start, end) range for the requested partition.
func (r Range) PartitionExtents(partition int) (uuid.UUID, uuid.UUID, error) {
	if partition < 0 || partition >= len(r.splits) {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid partition index %d", partition)
	}

	if partition == 0 {
		return r.start, r.splits[0], nil
	}
	return r.splits[partition-1], r.splits[partition], nil
}

// PartitionOf returns the index of the partition that contains id.
func (r Range) PartitionOf(id uuid.UUID) (int, error) {
	if bytes.Compare(id[:], r.start[:]) < 0 {
		return -1, fmt.Errorf("node %s is outside the range", id)
	}
	i := sort.Search(len(r.splits), func(i int) bool {
		return bytes.Compare(id[:], r.splits[i][:]) < 0
	})
	if i == len(r.splits) {
		return -1, fmt.Errorf("node %s is outside the range", id)
	}
	return i, nil
}

// Parse reads a partition assignment of the form "index/count", e.g. "0/4",
// and returns the full range split into count partitions together with the
// assigned index.
func Parse(spec string) (Range, int, error) {
	tokens := strings.Split(spec, "/")
	if len(tokens) != 2 {
		return Range{}, 0, fmt.Errorf("malformed partition assignment %q", spec)
	}

	index, err := strconv.Atoi(tokens[0])
	if err != nil {
		return Range{}, 0, fmt.Errorf("partition index: %w", err)
	}
	count, err := strconv.Atoi(tokens[1])
	if err != nil {
		return Range{}, 0, fmt.Errorf("partition count: %w", err)
	}

	r, err := NewFullRange(count)
	if err != nil {
		return Range{}, 0, err
	}
	if index < 0 || index >= count {
		return Range{}, 0, fmt.Errorf("partition index %d out of range [0, %d)", index, count)
	}
	return r, index, nil
}

// leftPad widens a big-endian integer to the 16 bytes an ID needs.
func leftPad(b []byte) []byte {
	if len(b) >= 16 {
		return b
	}
	out := make([]byte, 16)
	copy(out[16-len(b):], b)
	return out
}
