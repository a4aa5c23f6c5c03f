// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"sort"

	"github.com/verte-zerg/swish/internal/model"
	"github.com/verte-zerg/swish/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	ClassAggsAll     []model.ClassAggregate
	ClassAggsWindow  []model.ClassAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	classAggsAll, err := st.ListClassAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	classAggsWindow, err := st.ListClassAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		ClassAggsAll:     classAggsAll,
		ClassAggsWindow:  classAggsWindow,
	}, nil
}

// TopClassesByPredictions returns the top N class labels by prediction count.
func TopClassesByPredictions(aggs []model.ClassAggregate, n int) []int {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := append([]model.ClassAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Predictions == sorted[j].Predictions {
			return sorted[i].Label < sorted[j].Label
		}
		return sorted[i].Predictions > sorted[j].Predictions
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sorted[i].Label)
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
