package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Likelihoods", []Series{
		{Name: "class 1", Values: []float64{0.2, 0.5, 0.9, 0.5, 0.2}},
		{Name: "class 2", Values: []float64{0.1, 0.1, 0.3, 0.6, 0.8}},
	}, 5, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Likelihoods") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Scaled per series") {
		t.Fatalf("expected scale note in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 1 + 2 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d for 80 columns, got %d", 80-axisWidth, got)
	}
	// Narrow and degenerate terminals clamp to the minimum.
	if got := PlotWidthFor(axisWidth + 1); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d for no terminal, got %d", minPlotWidth, got)
	}
}

func TestPlotWidthForFitsChartRows(t *testing.T) {
	total := 40
	var buf bytes.Buffer
	err := PlotSeries(&buf, "", []Series{
		{Name: "predicted", Values: []float64{1, 1, 2, 2, 1}},
	}, PlotWidthFor(total), 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, axisSeparator) {
			continue
		}
		if got := utf8.RuneCountInString(line); got != total {
			t.Fatalf("expected chart row of %d columns, got %d: %q", total, got, line)
		}
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", nil, 5, 4); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series, got %q", buf.String())
	}
}
