package dtw

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/swish/internal/gesture"
)

func TestDistanceEmptyInput(t *testing.T) {
	_, _, err := Distance(nil, gesture.Timeseries{{1}}, 0)
	assert.ErrorIs(t, err, ErrEmptySequence)

	_, _, err = Distance(gesture.Timeseries{{1}}, nil, 0)
	assert.ErrorIs(t, err, ErrEmptySequence)
}

func TestDistanceIdenticalSeriesIsZero(t *testing.T) {
	series := gesture.Timeseries{{0, 0}, {1, 1}, {2, 0}, {3, 2}}
	cost, matrix, err := Distance(series, series, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, cost, 1e-12)
	require.Len(t, matrix, len(series)+1)
	require.Len(t, matrix[0], len(series)+1)
}

func TestDistanceKnownValue(t *testing.T) {
	a := gesture.Timeseries{{0}, {0}}
	b := gesture.Timeseries{{1}, {1}}
	// Every pairwise cost is 1 and the cheapest path takes the diagonal,
	// giving a total of 2 normalized by the longer length.
	cost, _, err := Distance(a, b, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, cost, 1e-12)
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := gesture.Timeseries{{0, 0}, {1, 2}, {3, 1}, {4, 4}}
	b := gesture.Timeseries{{0, 1}, {2, 2}, {4, 3}}
	ab, _, err := Distance(a, b, 0)
	require.NoError(t, err)
	ba, _, err := Distance(b, a, 0)
	require.NoError(t, err)
	assert.InDelta(t, ab, ba, 1e-12)
}

func TestDistanceConstrainedMatchesUnequalLengths(t *testing.T) {
	a := gesture.Timeseries{{0}, {1}, {2}}
	b := gesture.Timeseries{{0}, {0.25}, {0.5}, {0.75}, {1}, {1.25}, {1.5}, {1.75}, {2}}
	cost, _, err := Distance(a, b, 0.1)
	require.NoError(t, err)
	assert.False(t, math.IsInf(cost, 1), "cost must be finite even with a narrow band")
	assert.GreaterOrEqual(t, cost, 0.0)
}

func TestDistanceBandPrunesMatrix(t *testing.T) {
	a := gesture.Timeseries{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}}
	b := gesture.Timeseries{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}}
	_, matrix, err := Distance(a, b, 0.2)
	require.NoError(t, err)
	// Cells far off the diagonal stay unreached under the band constraint.
	assert.True(t, math.IsInf(matrix[1][8], 1))
	assert.True(t, math.IsInf(matrix[8][1], 1))
	assert.False(t, math.IsInf(matrix[8][8], 1))
}
