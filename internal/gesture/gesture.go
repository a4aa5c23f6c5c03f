// Package gesture defines the gesture data model shared by recording,
// training, and classification.
package gesture

import "math"

// Sample is one multi-dimensional measurement captured at a single tick.
type Sample []float64

// Clone returns an independent copy of the sample.
func (s Sample) Clone() Sample {
	out := make(Sample, len(s))
	copy(out, s)
	return out
}

// Timeseries is an ordered sequence of samples forming one gesture.
type Timeseries []Sample

// Clone returns a deep copy of the series.
func (t Timeseries) Clone() Timeseries {
	out := make(Timeseries, len(t))
	for i, s := range t {
		out[i] = s.Clone()
	}
	return out
}

// Offset subtracts the first sample from every sample, making the series
// invariant to where the gesture was performed.
func (t Timeseries) Offset() Timeseries {
	if len(t) == 0 {
		return Timeseries{}
	}
	first := t[0]
	out := make(Timeseries, len(t))
	for i, s := range t {
		shifted := make(Sample, len(s))
		for d := range s {
			shifted[d] = s[d] - first[d]
		}
		out[i] = shifted
	}
	return out
}

// Trim strips near-static segments from the start and end of the series.
// A step counts as static when its movement magnitude is below threshold
// times the series' maximum step magnitude. At most maxTrimPercent percent
// of the samples are removed; if trimming would exceed that, the series is
// returned unchanged.
func (t Timeseries) Trim(threshold, maxTrimPercent float64) Timeseries {
	if len(t) < 3 || threshold <= 0 {
		return t.Clone()
	}
	deltas := stepMagnitudes(t)
	maxDelta := 0.0
	for _, d := range deltas {
		if d > maxDelta {
			maxDelta = d
		}
	}
	if maxDelta == 0 {
		return t.Clone()
	}
	cutoff := threshold * maxDelta

	start := 0
	for start < len(deltas) && deltas[start] < cutoff {
		start++
	}
	end := len(t)
	for end-2 >= start && deltas[end-2] < cutoff {
		end--
	}
	if end-start < 2 {
		return t.Clone()
	}
	trimmed := len(t) - (end - start)
	if float64(trimmed)/float64(len(t))*100 > maxTrimPercent {
		return t.Clone()
	}
	return t[start:end].Clone()
}

// stepMagnitudes returns the Euclidean movement magnitude of each step,
// one entry per sample transition.
func stepMagnitudes(t Timeseries) []float64 {
	out := make([]float64, len(t)-1)
	for i := 1; i < len(t); i++ {
		var sum float64
		for d := range t[i] {
			diff := t[i][d] - t[i-1][d]
			sum += diff * diff
		}
		out[i-1] = math.Sqrt(sum)
	}
	return out
}

// Resample interpolates the series to exactly length samples.
func Resample(t Timeseries, length int) Timeseries {
	if len(t) == 0 || length <= 0 {
		return nil
	}
	if len(t) == 1 || length == 1 {
		return Timeseries{t[0].Clone()}
	}
	out := make(Timeseries, length)
	for i := 0; i < length; i++ {
		pos := float64(i) * float64(len(t)-1) / float64(length-1)
		idx := int(pos)
		if idx >= len(t)-1 {
			out[i] = t[len(t)-1].Clone()
			continue
		}
		frac := pos - float64(idx)
		p1, p2 := t[idx], t[idx+1]
		s := make(Sample, len(p1))
		for d := range p1 {
			s[d] = p1[d] + frac*(p2[d]-p1[d])
		}
		out[i] = s
	}
	return out
}

// Prediction is the outcome of classifying one timeseries. Labels, Costs,
// and Likelihoods are parallel slices ordered by ascending label.
type Prediction struct {
	// Label is the winning class, or NullLabel when the match was rejected.
	Label int
	// Likelihood is the winning class's likelihood.
	Likelihood float64
	// Labels holds the trained class labels in ascending order.
	Labels []int
	// Costs holds the DTW alignment cost against each class template.
	Costs []float64
	// Likelihoods holds the normalized per-class likelihoods (sum to 1).
	Likelihoods []float64
}

// NullLabel is the reserved label reported when no class matches
// confidently enough.
const NullLabel = 0

// Classifier trains on a labeled dataset and classifies timeseries.
// Implementations keep the previous trained state when Train fails.
type Classifier interface {
	Train(ds *Dataset) error
	Predict(series Timeseries) (Prediction, error)
	Trained() bool
}
