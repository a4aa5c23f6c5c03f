package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/swish/internal/model"
	"github.com/verte-zerg/swish/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "swish.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		stats := model.SessionStats{
			StartedAt:   start,
			EndedAt:     end,
			DatasetPath: "dummy",
			NumClasses:  2,
			NumExamples: 6,
			Predictions: 100,
			Rejected:    10,
			DurationMs:  end.Sub(start).Milliseconds(),
		}
		classStats := []model.ClassStats{
			{Label: 1, Predictions: 50, CostSum: 12.5, LikelihoodSum: 40},
			{Label: 2, Predictions: 40, CostSum: 20, LikelihoodSum: 30},
		}
		id, err := st.InsertSession(ctx, stats, classStats)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Last:        2,
		CurveWindow: 2,
		Labels:      "1,2",
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 2 {
		t.Fatalf("expected 2 window session ids, got %d", len(report.WindowSessionIDs))
	}
	if len(report.ClassAggsAll) != 2 {
		t.Fatalf("expected class aggregates for all sessions, got %d", len(report.ClassAggsAll))
	}
	if len(report.ClassAggsWindow) != 2 {
		t.Fatalf("expected class aggregates for window sessions, got %d", len(report.ClassAggsWindow))
	}
	if report.ClassAggsAll[0].Label != 1 || report.ClassAggsAll[0].Predictions != 100 {
		t.Fatalf("unexpected class 1 aggregate: %+v", report.ClassAggsAll[0])
	}
}

func TestTopClassesByPredictions(t *testing.T) {
	aggs := []model.ClassAggregate{
		{Label: 1, Predictions: 10},
		{Label: 2, Predictions: 40},
		{Label: 3, Predictions: 40},
		{Label: 4, Predictions: 5},
	}
	top := TopClassesByPredictions(aggs, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(top))
	}
	if top[0] != 2 || top[1] != 3 || top[2] != 1 {
		t.Fatalf("unexpected top labels: %v", top)
	}
	if got := TopClassesByPredictions(aggs, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}
