package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/swish/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	perMin, nullRate, acceptRate := SessionMetrics(120, 30, 60000)
	if perMin != 120 {
		t.Fatalf("expected 120 predictions/min, got %f", perMin)
	}
	if nullRate != 0.25 {
		t.Fatalf("expected null rate 0.25, got %f", nullRate)
	}
	if acceptRate != 0.75 {
		t.Fatalf("expected accept rate 0.75, got %f", acceptRate)
	}

	perMin, nullRate, acceptRate = SessionMetrics(0, 0, 60000)
	if perMin != 0 || nullRate != 0 || acceptRate != 0 {
		t.Fatalf("expected zero metrics for empty session")
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := MovingAverage(values, 2)
	expected := []float64{1, 1.5, 2.5, 3.5, 4.5}
	for i := range expected {
		if out[i] != expected[i] {
			t.Fatalf("index %d: expected %f, got %f", i, expected[i], out[i])
		}
	}

	same := MovingAverage(values, 1)
	for i := range values {
		if same[i] != values[i] {
			t.Fatalf("window 1 must return input unchanged")
		}
	}
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 5, 10})
	if len(out) != 3 {
		t.Fatalf("expected 3 chars, got %d", len(out))
	}
	if out[0] != sparkChars[0] || out[2] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("expected min/max density chars, got %q", out)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline for no values")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.SessionAggregate{
		{SessionID: 1, Predictions: 100, Rejected: 20, DurationMs: 60000},
		{SessionID: 2, Predictions: 200, Rejected: 10, DurationMs: 120000},
	}
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Predictions: 300", "Avg Predictions/min", "Avg Accept Rate"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary output: %s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("expected empty-state message, got %q", buf.String())
	}
}

func TestRenderClassTable(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.ClassAggregate{
		{Label: 1, Predictions: 10, CostSum: 5, LikelihoodSum: 8},
		{Label: 2, Predictions: 0},
	}
	if err := RenderClassTable(&buf, aggs); err != nil {
		t.Fatalf("RenderClassTable failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Per-Class", "Class", "Predictions", "Avg Cost", "Avg Likelihood", "0.500", "0.800"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in class table output: %s", want, out)
		}
	}
}
