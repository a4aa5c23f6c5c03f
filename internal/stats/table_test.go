package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Class", "Predictions", "Avg Cost"}
	rows := [][]string{
		{"1", "120", "0.315"},
		{"12", "7", "12.480"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Class Predictions Avg Cost" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "1             120    0.315" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "12              7   12.480" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
