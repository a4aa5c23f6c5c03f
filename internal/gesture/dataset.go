package gesture

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const datasetHeader = "SWISH_GESTURE_DATASET_V1"

// Example is one labeled training gesture.
type Example struct {
	Label  int
	Series Timeseries
}

// Dataset is a collection of labeled training gestures with a fixed
// number of dimensions per sample.
type Dataset struct {
	dims     int
	examples []Example
}

// NewDataset creates an empty dataset for samples of the given dimension.
func NewDataset(dims int) *Dataset {
	return &Dataset{dims: dims}
}

// NumDimensions returns the per-sample dimension count.
func (d *Dataset) NumDimensions() int { return d.dims }

// NumExamples returns the number of stored examples.
func (d *Dataset) NumExamples() int { return len(d.examples) }

// Examples returns the stored examples in insertion order.
func (d *Dataset) Examples() []Example { return d.examples }

// Add appends a labeled series to the dataset. The label must be a real
// class (>= 1) and every sample must match the dataset's dimensions.
func (d *Dataset) Add(label int, series Timeseries) error {
	if label < 1 {
		return fmt.Errorf("label must be >= 1, got %d", label)
	}
	if len(series) == 0 {
		return fmt.Errorf("series is empty")
	}
	for i, s := range series {
		if len(s) != d.dims {
			return fmt.Errorf("sample %d has %d dimensions, expected %d", i, len(s), d.dims)
		}
	}
	d.examples = append(d.examples, Example{Label: label, Series: series.Clone()})
	return nil
}

// Clear removes every example.
func (d *Dataset) Clear() {
	d.examples = nil
}

// Labels returns the distinct class labels in ascending order.
func (d *Dataset) Labels() []int {
	seen := map[int]struct{}{}
	for _, ex := range d.examples {
		seen[ex.Label] = struct{}{}
	}
	labels := make([]int, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}

// CountForLabel returns how many examples carry the given label.
func (d *Dataset) CountForLabel(label int) int {
	count := 0
	for _, ex := range d.examples {
		if ex.Label == label {
			count++
		}
	}
	return count
}

// Save writes the dataset to a delimited text file. The write is atomic:
// a temp file in the target directory is renamed over the destination.
func (d *Dataset) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dataset dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "dataset-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp dataset: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	lines := []string{
		datasetHeader,
		fmt.Sprintf("Dimensions: %d", d.dims),
		fmt.Sprintf("Examples: %d", len(d.examples)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return fmt.Errorf("failed to write dataset: %w", err)
		}
	}
	for _, ex := range d.examples {
		if _, err := fmt.Fprintf(writer, "\nLabel: %d\nLength: %d\n", ex.Label, len(ex.Series)); err != nil {
			return fmt.Errorf("failed to write dataset: %w", err)
		}
		for _, s := range ex.Series {
			fields := make([]string, len(s))
			for i, v := range s {
				fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
			if _, err := fmt.Fprintln(writer, strings.Join(fields, " ")); err != nil {
				return fmt.Errorf("failed to write dataset: %w", err)
			}
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close dataset: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// Load reads a dataset from the delimited text format written by Save.
// On any error the returned dataset is nil, so callers keep their
// current in-memory dataset.
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if line, ok := nextLine(scanner); !ok || line != datasetHeader {
		return nil, fmt.Errorf("not a gesture dataset file: %s", path)
	}
	dims, err := intField(scanner, "Dimensions")
	if err != nil {
		return nil, err
	}
	if dims < 1 {
		return nil, fmt.Errorf("invalid dimension count %d", dims)
	}
	count, err := intField(scanner, "Examples")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("invalid example count %d", count)
	}

	ds := NewDataset(dims)
	for i := 0; i < count; i++ {
		label, err := intField(scanner, "Label")
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		length, err := intField(scanner, "Length")
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		if length < 1 {
			return nil, fmt.Errorf("example %d: invalid length %d", i, length)
		}
		series := make(Timeseries, 0, length)
		for j := 0; j < length; j++ {
			line, ok := nextLine(scanner)
			if !ok {
				return nil, fmt.Errorf("example %d: unexpected end of file", i)
			}
			fields := strings.Fields(line)
			if len(fields) != dims {
				return nil, fmt.Errorf("example %d sample %d: got %d values, expected %d", i, j, len(fields), dims)
			}
			sample := make(Sample, dims)
			for k, field := range fields {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, fmt.Errorf("example %d sample %d: %w", i, j, err)
				}
				sample[k] = v
			}
			series = append(series, sample)
		}
		if err := ds.Add(label, series); err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

// nextLine advances past blank lines and returns the next content line.
func nextLine(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return line, true
	}
	return "", false
}

func intField(scanner *bufio.Scanner, name string) (int, error) {
	line, ok := nextLine(scanner)
	if !ok {
		return 0, fmt.Errorf("missing %s field", name)
	}
	prefix := name + ": "
	if !strings.HasPrefix(line, prefix) {
		return 0, fmt.Errorf("expected %s field, got %q", name, line)
	}
	v, err := strconv.Atoi(strings.TrimPrefix(line, prefix))
	if err != nil {
		return 0, fmt.Errorf("invalid %s field: %w", name, err)
	}
	return v, nil
}
