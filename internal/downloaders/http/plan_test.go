package pargethttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mveld/parget/internal/utils"
)

func TestPlanRemainderGoesToLastRange(t *testing.T) {
	specs, err := Plan(17, 4)
	require.NoError(t, err)
	require.Len(t, specs, 4)

	expected := []utils.RangeSpec{
		{Index: 0, Start: 0, End: 3},
		{Index: 1, Start: 4, End: 7},
		{Index: 2, Start: 8, End: 11},
		{Index: 3, Start: 12, End: 16},
	}
	assert.Equal(t, expected, specs)
	assert.Equal(t, int64(5), specs[3].Size())
}

func TestPlanPartitionProperties(t *testing.T) {
	sizes := []int64{0, 1, 2, 3, 7, 16, 17, 100, 4095, 4096, 4097, 1<<20 + 13}
	connections := []int{1, 2, 3, 4, 5, 8, 64}

	for _, totalSize := range sizes {
		for _, conns := range connections {
			specs, err := Plan(totalSize, conns)
			require.NoError(t, err)

			var covered int64
			var next int64
			for i, spec := range specs {
				assert.Equal(t, i, spec.Index, "indices must be dense and ordered")
				assert.Equal(t, next, spec.Start, "size=%d conns=%d: ranges must be contiguous", totalSize, conns)
				assert.LessOrEqual(t, spec.Start, spec.End)
				covered += spec.Size()
				next = spec.End + 1
			}
			assert.Equal(t, totalSize, covered, "size=%d conns=%d: union must cover the full span", totalSize, conns)
			if len(specs) > 0 {
				assert.Equal(t, totalSize-1, specs[len(specs)-1].End)
			}
		}
	}
}

func TestPlanZeroSize(t *testing.T) {
	specs, err := Plan(0, 4)
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestPlanIdempotent(t *testing.T) {
	first, err := Plan(12345, 7)
	require.NoError(t, err)
	second, err := Plan(12345, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPlanInvalidConfiguration(t *testing.T) {
	_, err := Plan(100, 0)
	assert.ErrorIs(t, err, utils.ErrInvalidConfig)

	_, err = Plan(100, -3)
	assert.ErrorIs(t, err, utils.ErrInvalidConfig)

	_, err = Plan(-1, 4)
	assert.ErrorIs(t, err, utils.ErrInvalidConfig)
}
