// Package dtw implements Dynamic Time Warping template matching for
// gesture classification.
package dtw

import (
	"errors"
	"math"

	"github.com/verte-zerg/swish/internal/gesture"
)

var (
	// ErrEmptySequence indicates one or both input series are empty.
	ErrEmptySequence = errors.New("dtw: input series must be non-empty")

	// ErrNotTrained indicates prediction was attempted before training.
	ErrNotTrained = errors.New("dtw: classifier is not trained")

	// ErrEmptyDataset indicates training was attempted with no examples.
	ErrEmptyDataset = errors.New("dtw: training dataset is empty")
)

// Distance computes the DTW alignment cost between two series under a
// pointwise Euclidean cost. The cumulative cost matrix is (n+1)x(m+1)
// with the edges initialized to +Inf and the origin to zero, so every
// alignment is monotonic and boundary-respecting.
//
// radius > 0 constrains the warping path to a band around the diagonal.
// The band is scaled by the length ratio of the two series, so the final
// corner stays reachable for unequal lengths. radius is a fraction of
// the longer series; radius <= 0 searches the full matrix.
//
// The returned cost is the cumulative cost normalized by max(n, m). The
// matrix is the raw (n+1)x(m+1) cumulative cost matrix, retained for
// visualization.
func Distance(a, b gesture.Timeseries, radius float64) (float64, [][]float64, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0, nil, ErrEmptySequence
	}

	inf := math.Inf(1)
	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, m+1)
		for j := range dp[i] {
			dp[i][j] = inf
		}
	}
	dp[0][0] = 0

	band := inf
	if radius > 0 {
		longest := n
		if m > longest {
			longest = m
		}
		band = math.Ceil(radius * float64(longest))
		if band < 1 {
			band = 1
		}
	}
	slope := float64(m) / float64(n)

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if math.Abs(float64(j)-float64(i)*slope) > band {
				continue
			}
			cost := pointCost(a[i-1], b[j-1])
			best := min3(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
			if math.IsInf(best, 1) {
				continue
			}
			dp[i][j] = cost + best
		}
	}

	total := dp[n][m]
	if math.IsInf(total, 1) {
		// Band too narrow for these lengths; fall back to the full matrix.
		return Distance(a, b, 0)
	}
	longest := n
	if m > longest {
		longest = m
	}
	return total / float64(longest), dp, nil
}

// pointCost is the Euclidean distance between two samples.
func pointCost(a, b gesture.Sample) float64 {
	var sum float64
	for d := range a {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func min3(a, b, c float64) float64 {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
