package stats

import (
	"math"
	"strings"
	"testing"
)

func TestHeatmapLinesShape(t *testing.T) {
	matrix := [][]float64{
		{0, 1, 2, 3},
		{1, 2, 3, 4},
		{2, 3, 4, 5},
		{3, 4, 5, 6},
	}
	lines := HeatmapLines(matrix, 4, 4)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if len(line) != 4 {
			t.Fatalf("line %d: expected width 4, got %d", i, len(line))
		}
	}
	if lines[0][0] != sparkChars[0] {
		t.Fatalf("expected min cell to use lowest density char, got %q", lines[0][0])
	}
	if lines[3][3] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("expected max cell to use highest density char, got %q", lines[3][3])
	}
}

func TestHeatmapLinesInfCellsBlank(t *testing.T) {
	inf := math.Inf(1)
	matrix := [][]float64{
		{0, inf},
		{inf, 4},
	}
	lines := HeatmapLines(matrix, 2, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0][1] != ' ' || lines[1][0] != ' ' {
		t.Fatalf("expected unreachable cells to be blank: %q", strings.Join(lines, "|"))
	}
}

func TestHeatmapLinesAllInf(t *testing.T) {
	inf := math.Inf(1)
	matrix := [][]float64{{inf, inf}, {inf, inf}}
	if lines := HeatmapLines(matrix, 2, 2); lines != nil {
		t.Fatalf("expected nil for all-Inf matrix, got %v", lines)
	}
}
