package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/swish/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "swish.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertTestSession(t *testing.T, st *Store, endedAt time.Time, predictions, rejected int) int64 {
	t.Helper()
	stats := model.SessionStats{
		StartedAt:   endedAt.Add(-time.Minute),
		EndedAt:     endedAt,
		DatasetPath: "dummy",
		NumClasses:  2,
		NumExamples: 4,
		Predictions: predictions,
		Rejected:    rejected,
		DurationMs:  60000,
	}
	classStats := []model.ClassStats{
		{Label: 1, Predictions: predictions / 2, CostSum: 3, LikelihoodSum: 2},
		{Label: 2, Predictions: predictions / 4, CostSum: 9, LikelihoodSum: 1},
	}
	id, err := st.InsertSession(context.Background(), stats, classStats)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	id1 := insertTestSession(t, st, base, 100, 10)
	id2 := insertTestSession(t, st, base.Add(time.Hour), 200, 20)

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != id1 || sessions[1].SessionID != id2 {
		t.Fatalf("expected sessions ordered by ended_at, got %+v", sessions)
	}
	if sessions[1].Predictions != 200 || sessions[1].Rejected != 20 {
		t.Fatalf("unexpected session data: %+v", sessions[1])
	}

	since := base.Add(30 * time.Minute)
	filtered, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions since: %v", err)
	}
	if len(filtered) != 1 || filtered[0].SessionID != id2 {
		t.Fatalf("expected only the later session, got %+v", filtered)
	}
}

func TestListClassAggregatesForSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	id1 := insertTestSession(t, st, base, 100, 10)
	id2 := insertTestSession(t, st, base.Add(time.Hour), 100, 10)

	aggs, err := st.ListClassAggregatesForSessions(ctx, []int64{id1, id2})
	if err != nil {
		t.Fatalf("list aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 class aggregates, got %d", len(aggs))
	}
	if aggs[0].Label != 1 || aggs[0].Predictions != 100 || aggs[0].CostSum != 6 {
		t.Fatalf("unexpected class 1 aggregate: %+v", aggs[0])
	}
	if aggs[1].Label != 2 || aggs[1].Predictions != 50 {
		t.Fatalf("unexpected class 2 aggregate: %+v", aggs[1])
	}

	empty, err := st.ListClassAggregatesForSessions(ctx, nil)
	if err != nil {
		t.Fatalf("list aggregates with no ids: %v", err)
	}
	if empty != nil {
		t.Fatalf("expected nil aggregates for no sessions, got %+v", empty)
	}
}

func TestListClassStatsForSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	id := insertTestSession(t, st, base, 100, 10)

	perSession, err := st.ListClassStatsForSessions(ctx, []int64{id}, []int{1})
	if err != nil {
		t.Fatalf("list class stats: %v", err)
	}
	session, ok := perSession[id]
	if !ok {
		t.Fatalf("expected stats for session %d", id)
	}
	if _, ok := session[2]; ok {
		t.Fatalf("label 2 was not requested but is present")
	}
	agg, ok := session[1]
	if !ok {
		t.Fatalf("expected stats for label 1")
	}
	if agg.Predictions != 50 || agg.CostSum != 3 {
		t.Fatalf("unexpected label 1 stats: %+v", agg)
	}
}
