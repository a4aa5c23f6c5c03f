// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// HeatmapLines renders a cost matrix as rows of density characters,
// downsampled to width x height. Unreachable cells (+Inf) render as
// blanks. Used to visualize per-class DTW distance matrices.
func HeatmapLines(matrix [][]float64, width, height int) []string {
	if len(matrix) == 0 || len(matrix[0]) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, row := range matrix {
		for _, v := range row {
			if math.IsInf(v, 1) {
				continue
			}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if math.IsInf(minVal, 1) {
		return nil
	}
	span := maxVal - minVal
	if span < 1e-12 {
		span = 1
	}

	rows := len(matrix)
	cols := len(matrix[0])
	lines := make([]string, height)
	for y := 0; y < height; y++ {
		var b strings.Builder
		for x := 0; x < width; x++ {
			v, ok := cellMean(matrix, rows, cols, x, y, width, height)
			if !ok {
				b.WriteByte(' ')
				continue
			}
			pos := (v - minVal) / span
			idx := int(math.Round(pos * float64(len(sparkChars)-1)))
			if idx < 0 {
				idx = 0
			}
			if idx >= len(sparkChars) {
				idx = len(sparkChars) - 1
			}
			b.WriteByte(sparkChars[idx])
		}
		lines[y] = b.String()
	}
	return lines
}

// cellMean averages the finite matrix entries mapped onto one output cell.
func cellMean(matrix [][]float64, rows, cols, x, y, width, height int) (float64, bool) {
	rowStart := y * rows / height
	rowEnd := (y + 1) * rows / height
	if rowEnd <= rowStart {
		rowEnd = rowStart + 1
	}
	colStart := x * cols / width
	colEnd := (x + 1) * cols / width
	if colEnd <= colStart {
		colEnd = colStart + 1
	}
	var sum float64
	count := 0
	for r := rowStart; r < rowEnd && r < rows; r++ {
		for c := colStart; c < colEnd && c < cols; c++ {
			v := matrix[r][c]
			if math.IsInf(v, 1) {
				continue
			}
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// RenderHeatmap prints a titled cost-matrix heatmap.
func RenderHeatmap(w io.Writer, title string, matrix [][]float64, width, height int) error {
	lines := HeatmapLines(matrix, width, height)
	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, "No matrix data.")
		return err
	}
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
