package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	orig := Timeseries{{1, 2}, {3, 4}}
	clone := orig.Clone()
	clone[0][0] = 99
	assert.Equal(t, 1.0, orig[0][0], "clone must not share backing arrays")
}

func TestOffsetByFirstSample(t *testing.T) {
	series := Timeseries{{10, 20}, {12, 23}, {15, 25}}
	shifted := series.Offset()
	require.Len(t, shifted, 3)
	assert.Equal(t, Sample{0, 0}, shifted[0])
	assert.Equal(t, Sample{2, 3}, shifted[1])
	assert.Equal(t, Sample{5, 5}, shifted[2])
	assert.Equal(t, Sample{10, 20}, series[0], "input must stay untouched")
}

func TestOffsetEmpty(t *testing.T) {
	assert.Empty(t, Timeseries{}.Offset())
}

func TestTrimStripsStaticEnds(t *testing.T) {
	series := Timeseries{
		{0, 0}, {0, 0}, {0, 0},
		{10, 0}, {20, 0}, {30, 0},
		{30, 0}, {30, 0},
	}
	trimmed := series.Trim(0.1, 90)
	assert.Less(t, len(trimmed), len(series))
	assert.GreaterOrEqual(t, len(trimmed), 2)
	// The moving segment must survive.
	assert.Contains(t, trimmed, Sample{10, 0})
	assert.Contains(t, trimmed, Sample{20, 0})
}

func TestTrimRespectsMaxPercent(t *testing.T) {
	// Nearly the whole series is static; trimming it would exceed the cap,
	// so the series comes back unchanged.
	series := Timeseries{
		{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0},
		{0, 0}, {0, 0}, {0, 0}, {0, 0}, {10, 0},
	}
	trimmed := series.Trim(0.1, 50)
	assert.Equal(t, len(series), len(trimmed))
}

func TestTrimStaticSeriesUnchanged(t *testing.T) {
	series := Timeseries{{5, 5}, {5, 5}, {5, 5}, {5, 5}}
	trimmed := series.Trim(0.1, 90)
	assert.Equal(t, len(series), len(trimmed))
}

func TestResampleLengths(t *testing.T) {
	series := Timeseries{{0, 0}, {1, 2}, {2, 4}, {3, 6}}

	up := Resample(series, 7)
	require.Len(t, up, 7)
	assert.Equal(t, series[0], up[0])
	assert.Equal(t, series[3], up[6])

	down := Resample(series, 2)
	require.Len(t, down, 2)
	assert.Equal(t, series[0], down[0])
	assert.Equal(t, series[3], down[1])
}

func TestResampleInterpolates(t *testing.T) {
	series := Timeseries{{0, 0}, {10, 20}}
	out := Resample(series, 3)
	require.Len(t, out, 3)
	assert.InDelta(t, 5, out[1][0], 1e-9)
	assert.InDelta(t, 10, out[1][1], 1e-9)
}

func TestResampleEmpty(t *testing.T) {
	assert.Nil(t, Resample(nil, 5))
	assert.Nil(t, Resample(Timeseries{{1}}, 0))
}
