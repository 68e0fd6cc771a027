package partition

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestFullRangeIsContiguous(t *testing.T) {
	r, err := NewFullRange(7)
	require.NoError(t, err)
	require.Equal(t, 7, r.NumPartitions())

	start, end := r.Extents()
	assert.Equal(t, uuid.Nil, start)
	assert.Equal(t, maxUUID, end)

	var prevEnd uuid.UUID
	for p := 0; p < r.NumPartitions(); p++ {
		from, to, err := r.PartitionExtents(p)
		require.NoError(t, err)
		assert.Equal(t, prevEnd, from, "partition %d", p)
		prevEnd = to
	}
	assert.Equal(t, maxUUID, prevEnd)

	_, _, err = r.PartitionExtents(7)
	assert.Error(t, err)
}

func TestSmallSubRange(t *testing.T) {
	// Bounds with leading zero bytes must still produce 16-byte IDs.
	start := uuid.MustParse("00000000-0000-0000-0000-000000000000")
	end := uuid.MustParse("00000000-0000-0000-0000-000000000400")
	r, err := NewRange(start, end, 4)
	require.NoError(t, err)

	_, to, err := r.PartitionExtents(0)
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("00000000-0000-0000-0000-000000000100"), to)
}

func TestPartitionOf(t *testing.T) {
	r, err := NewFullRange(4)
	require.NoError(t, err)

	for p := 0; p < 4; p++ {
		from, _, err := r.PartitionExtents(p)
		require.NoError(t, err)

		got, err := r.PartitionOf(from)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := r.PartitionOf(uuid.MustParse("50000000-0000-0000-0000-000000000000"))
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	// The end of the range is exclusive.
	_, err = r.PartitionOf(maxUUID)
	assert.Error(t, err)
}

func TestInvalidRanges(t *testing.T) {
	_, err := NewRange(maxUUID, uuid.Nil, 1)
	assert.Error(t, err)
	_, err = NewFullRange(0)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	r, index, err := Parse("2/5")
	require.NoError(t, err)
	assert.Equal(t, 2, index)
	assert.Equal(t, 5, r.NumPartitions())

	for _, spec := range []string{"", "1", "a/2", "1/b", "2/2", "-1/2", "0/0"} {
		_, _, err := Parse(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}
