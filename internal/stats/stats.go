// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/swish/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes predictions per minute, the null-rejection
// rate, and the acceptance rate for a recognition session.
func SessionMetrics(predictions, rejected int, durationMs int64) (perMin, nullRate, acceptRate float64) {
	if durationMs <= 0 || predictions <= 0 {
		return 0, 0, 0
	}
	minutes := float64(durationMs) / 60000.0
	if minutes <= 0 {
		return 0, 0, 0
	}
	perMin = float64(predictions) / minutes
	nullRate = float64(rejected) / float64(predictions)
	acceptRate = 1 - nullRate
	return perMin, nullRate, acceptRate
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary table for recognition sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalPerMin, totalAccept float64
	totalPredictions := 0
	for _, s := range sessions {
		perMin, _, accept := SessionMetrics(s.Predictions, s.Rejected, s.DurationMs)
		totalPerMin += perMin
		totalAccept += accept
		totalPredictions += s.Predictions
	}
	count := float64(len(sessions))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(sessions)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Predictions: %d\n", totalPredictions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Predictions/min: %.2f\n", totalPerMin/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accept Rate: %.2f%%\n", (totalAccept/count)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCurves prints recognition curves for accept rate and volume.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, 10, false)
}

// RenderCurvesWithSize prints recognition curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accepts := make([]float64, len(sessions))
	volumes := make([]float64, len(sessions))
	for i, s := range sessions {
		_, _, accept := SessionMetrics(s.Predictions, s.Rejected, s.DurationMs)
		accepts[i] = accept * 100
		volumes[i] = float64(s.Predictions)
	}
	accepts = MovingAverage(accepts, window)
	volumes = MovingAverage(volumes, window)

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Recognition Curves", []Series{
		{Name: "Accept %", Values: accepts},
		{Name: "Predictions", Values: volumes},
	}, width, height, useColor)
}

// RenderClassTable prints per-class aggregates.
func RenderClassTable(w io.Writer, aggs []model.ClassAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No class stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Class"); err != nil {
		return err
	}
	headers := []string{"Class", "Predictions", "Avg Cost", "Avg Likelihood"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, classTableRow(agg))
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	lines := formatTable(headers, rows, rightAlign)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func classTableRow(agg model.ClassAggregate) []string {
	cost := 0.0
	likelihood := 0.0
	if agg.Predictions > 0 {
		cost = agg.CostSum / float64(agg.Predictions)
		likelihood = agg.LikelihoodSum / float64(agg.Predictions)
	}
	return []string{
		fmt.Sprintf("%d", agg.Label),
		fmt.Sprintf("%d", agg.Predictions),
		fmt.Sprintf("%.3f", cost),
		fmt.Sprintf("%.3f", likelihood),
	}
}

// RenderClassCurves prints per-class prediction-share curves.
func RenderClassCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[int]model.ClassAggregate, labels []int, window int) error {
	return RenderClassCurvesWithSize(w, sessions, perSession, labels, window, 0, 10, false)
}

// RenderClassCurvesWithSize prints per-class curves sized to a given total width.
func RenderClassCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[int]model.ClassAggregate, labels []int, window, totalWidth, height int, useColor bool) error {
	if len(labels) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Class Curves"); err != nil {
		return err
	}
	for _, label := range labels {
		shareSeries := make([]float64, len(sessions))
		likelihoodSeries := make([]float64, len(sessions))
		for i, s := range sessions {
			if data, ok := perSession[s.SessionID]; ok {
				if agg, ok := data[label]; ok {
					if s.Predictions > 0 {
						shareSeries[i] = float64(agg.Predictions) / float64(s.Predictions) * 100
					}
					if agg.Predictions > 0 {
						likelihoodSeries[i] = agg.LikelihoodSum / float64(agg.Predictions)
					}
				}
			}
		}
		shareSeries = MovingAverage(shareSeries, window)
		likelihoodSeries = MovingAverage(likelihoodSeries, window)
		width := 0
		if totalWidth > 0 {
			width = PlotWidthFor(totalWidth)
		}
		if err := PlotSeriesWithColor(w, fmt.Sprintf("Class %d", label), []Series{
			{Name: "Share %", Values: shareSeries},
			{Name: "Likelihood", Values: likelihoodSeries},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}
