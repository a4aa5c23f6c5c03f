package dtw

import (
	"fmt"
	"math"

	"github.com/verte-zerg/swish/internal/gesture"
)

// Options configure the DTW classifier.
type Options struct {
	// NullRejection reports gesture.NullLabel when the best match's cost
	// exceeds that class's fitted threshold.
	NullRejection bool
	// NullRejectionCoeff scales the threshold: mean + coeff * stddev of
	// training costs. Higher values accept more, lower values reject more.
	NullRejectionCoeff float64
	// ConstrainWarpingPath limits alignments to a band around the diagonal.
	ConstrainWarpingPath bool
	// WarpingRadius is the band width as a fraction of the longer series.
	WarpingRadius float64
	// TrimTrainingData strips near-static segments from the ends of each
	// training series before building templates.
	TrimTrainingData bool
	// TrimThreshold is the static-movement cutoff as a fraction of the
	// series' maximum step magnitude.
	TrimThreshold float64
	// TrimPercent caps how much of a series may be trimmed away.
	TrimPercent float64
	// OffsetByFirstSample subtracts the first sample from every series,
	// making matching translation-invariant.
	OffsetByFirstSample bool
}

// DefaultOptions mirrors the classic DTW gesture recognizer setup.
func DefaultOptions() Options {
	return Options{
		NullRejection:        true,
		NullRejectionCoeff:   3,
		ConstrainWarpingPath: true,
		WarpingRadius:        0.2,
		TrimTrainingData:     true,
		TrimThreshold:        0.1,
		TrimPercent:          90,
		OffsetByFirstSample:  true,
	}
}

// Template is one class's trained prototype series with its fitted
// null-rejection statistics.
type Template struct {
	Label     int
	Series    gesture.Timeseries
	Threshold float64
	Mu        float64
	Sigma     float64
}

// Model is a trained set of templates. It is immutable once built;
// retraining replaces it wholesale.
type Model struct {
	// Templates are ordered by ascending label.
	Templates []Template
	// BufferLen is the rolling input buffer capacity for streaming
	// prediction, the mean template length.
	BufferLen int
}

// Classifier matches timeseries against per-class DTW templates.
// It implements gesture.Classifier.
type Classifier struct {
	opts  Options
	model *Model

	buffer   gesture.Timeseries
	matrices [][][]float64
}

var _ gesture.Classifier = (*Classifier)(nil)

// New creates an untrained classifier with the given options.
func New(opts Options) *Classifier {
	return &Classifier{opts: opts}
}

// Options returns the classifier's configuration.
func (c *Classifier) Options() Options { return c.opts }

// Trained reports whether a model has been fitted.
func (c *Classifier) Trained() bool { return c.model != nil }

// Model returns the current trained model, or nil.
func (c *Classifier) Model() *Model { return c.model }

// InputBuffer returns the rolling buffer retained for visualization.
func (c *Classifier) InputBuffer() gesture.Timeseries { return c.buffer }

// DistanceMatrices returns the per-class cost matrices of the latest
// prediction, ordered like Model().Templates. Diagnostic only.
func (c *Classifier) DistanceMatrices() [][][]float64 { return c.matrices }

// Train fits one template per class and its null-rejection threshold.
// On failure the previous model, if any, is left untouched.
func (c *Classifier) Train(ds *gesture.Dataset) error {
	if ds == nil || ds.NumExamples() == 0 {
		return ErrEmptyDataset
	}

	byLabel := map[int][]gesture.Timeseries{}
	for i, ex := range ds.Examples() {
		series := c.prepare(ex.Series, true)
		if len(series) == 0 {
			return fmt.Errorf("example %d (label %d): %w", i, ex.Label, ErrEmptySequence)
		}
		byLabel[ex.Label] = append(byLabel[ex.Label], series)
	}

	labels := ds.Labels()
	templates := make([]Template, 0, len(labels))
	totalLen := 0
	for _, label := range labels {
		tpl, err := c.fitTemplate(label, byLabel[label])
		if err != nil {
			return fmt.Errorf("class %d: %w", label, err)
		}
		templates = append(templates, tpl)
		totalLen += len(tpl.Series)
	}

	bufferLen := totalLen / len(templates)
	if bufferLen < 1 {
		bufferLen = 1
	}
	c.model = &Model{Templates: templates, BufferLen: bufferLen}
	c.buffer = nil
	c.matrices = nil
	return nil
}

// fitTemplate picks the medoid of the class's series as the template and
// fits the rejection threshold from the class's cost distribution.
func (c *Classifier) fitTemplate(label int, series []gesture.Timeseries) (Template, error) {
	medoid := 0
	if len(series) > 1 {
		bestMean := math.Inf(1)
		for i := range series {
			var sum float64
			for j := range series {
				if i == j {
					continue
				}
				cost, _, err := c.distance(series[i], series[j])
				if err != nil {
					return Template{}, err
				}
				sum += cost
			}
			mean := sum / float64(len(series)-1)
			if mean < bestMean {
				bestMean = mean
				medoid = i
			}
		}
	}

	template := series[medoid]
	costs := make([]float64, len(series))
	for i := range series {
		cost, _, err := c.distance(series[i], template)
		if err != nil {
			return Template{}, err
		}
		costs[i] = cost
	}
	mu, sigma := meanStddev(costs)
	return Template{
		Label:     label,
		Series:    template,
		Threshold: mu + c.opts.NullRejectionCoeff*sigma,
		Mu:        mu,
		Sigma:     sigma,
	}, nil
}

// Predict classifies a complete timeseries against every template.
// The per-class cost matrices are retained for visualization.
func (c *Classifier) Predict(series gesture.Timeseries) (gesture.Prediction, error) {
	if c.model == nil {
		return gesture.Prediction{}, ErrNotTrained
	}
	if len(series) == 0 {
		return gesture.Prediction{}, ErrEmptySequence
	}
	input := c.prepare(series, false)

	templates := c.model.Templates
	pred := gesture.Prediction{
		Labels:      make([]int, len(templates)),
		Costs:       make([]float64, len(templates)),
		Likelihoods: make([]float64, len(templates)),
	}
	matrices := make([][][]float64, len(templates))

	bestIdx := 0
	var weightSum float64
	for i, tpl := range templates {
		cost, matrix, err := c.distance(input, tpl.Series)
		if err != nil {
			return gesture.Prediction{}, err
		}
		pred.Labels[i] = tpl.Label
		pred.Costs[i] = cost
		pred.Likelihoods[i] = 1 / (1 + cost)
		weightSum += pred.Likelihoods[i]
		matrices[i] = matrix
		if cost < pred.Costs[bestIdx] {
			bestIdx = i
		}
	}
	for i := range pred.Likelihoods {
		pred.Likelihoods[i] /= weightSum
	}

	pred.Label = templates[bestIdx].Label
	pred.Likelihood = pred.Likelihoods[bestIdx]
	if c.opts.NullRejection && pred.Costs[bestIdx] > templates[bestIdx].Threshold {
		pred.Label = gesture.NullLabel
	}
	c.matrices = matrices
	return pred, nil
}

// PredictSample appends one sample to the rolling input buffer and
// classifies the buffered window. The buffer capacity is the trained
// model's mean template length.
func (c *Classifier) PredictSample(sample gesture.Sample) (gesture.Prediction, error) {
	if c.model == nil {
		return gesture.Prediction{}, ErrNotTrained
	}
	c.buffer = append(c.buffer, sample.Clone())
	if overflow := len(c.buffer) - c.model.BufferLen; overflow > 0 {
		c.buffer = c.buffer[overflow:]
	}
	return c.Predict(c.buffer)
}

// Reset clears the rolling buffer and the retained cost matrices.
func (c *Classifier) Reset() {
	c.buffer = nil
	c.matrices = nil
}

// prepare applies the configured preprocessing. Trimming only applies to
// training series; live input is offset but never trimmed.
func (c *Classifier) prepare(series gesture.Timeseries, training bool) gesture.Timeseries {
	out := series
	if training && c.opts.TrimTrainingData {
		out = out.Trim(c.opts.TrimThreshold, c.opts.TrimPercent)
	}
	if c.opts.OffsetByFirstSample {
		out = out.Offset()
	} else if training {
		out = out.Clone()
	}
	return out
}

func (c *Classifier) distance(a, b gesture.Timeseries) (float64, [][]float64, error) {
	radius := 0.0
	if c.opts.ConstrainWarpingPath {
		radius = c.opts.WarpingRadius
	}
	return Distance(a, b, radius)
}

func meanStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mu := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mu) * (v - mu)
	}
	return mu, math.Sqrt(sq / float64(len(values)))
}
