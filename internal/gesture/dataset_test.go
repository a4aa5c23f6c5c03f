package gesture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetAddValidation(t *testing.T) {
	ds := NewDataset(2)

	err := ds.Add(0, Timeseries{{1, 2}})
	assert.Error(t, err, "label below 1 must be rejected")

	err = ds.Add(1, nil)
	assert.Error(t, err, "empty series must be rejected")

	err = ds.Add(1, Timeseries{{1, 2, 3}})
	assert.Error(t, err, "dimension mismatch must be rejected")

	err = ds.Add(1, Timeseries{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.NumExamples())
}

func TestDatasetAddClonesSeries(t *testing.T) {
	ds := NewDataset(2)
	series := Timeseries{{1, 2}}
	require.NoError(t, ds.Add(1, series))
	series[0][0] = 99
	assert.Equal(t, 1.0, ds.Examples()[0].Series[0][0])
}

func TestDatasetLabelsAndCounts(t *testing.T) {
	ds := NewDataset(1)
	require.NoError(t, ds.Add(3, Timeseries{{1}}))
	require.NoError(t, ds.Add(1, Timeseries{{2}}))
	require.NoError(t, ds.Add(3, Timeseries{{3}}))

	assert.Equal(t, []int{1, 3}, ds.Labels())
	assert.Equal(t, 2, ds.CountForLabel(3))
	assert.Equal(t, 0, ds.CountForLabel(2))

	ds.Clear()
	assert.Equal(t, 0, ds.NumExamples())
}

func TestDatasetSaveLoadRoundTrip(t *testing.T) {
	ds := NewDataset(2)
	require.NoError(t, ds.Add(1, Timeseries{{0, 0}, {1.5, -2.25}, {3.14159, 100}}))
	require.NoError(t, ds.Add(2, Timeseries{{-0.001, 42}}))

	path := filepath.Join(t.TempDir(), "training-data.txt")
	require.NoError(t, ds.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ds.NumDimensions(), loaded.NumDimensions())
	require.Equal(t, ds.NumExamples(), loaded.NumExamples())
	for i, ex := range ds.Examples() {
		got := loaded.Examples()[i]
		assert.Equal(t, ex.Label, got.Label)
		assert.Equal(t, ex.Series, got.Series)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a dataset\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "not a gesture dataset file")
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	ds := NewDataset(2)
	require.NoError(t, ds.Add(1, Timeseries{{1, 2}, {3, 4}}))
	path := filepath.Join(t.TempDir(), "truncated.txt")
	require.NoError(t, ds.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-8], 0o644))

	_, err = Load(path)
	assert.Error(t, err)
}
