// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/swish/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for recognition session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			dataset_path TEXT NOT NULL,
			num_classes INTEGER NOT NULL,
			num_examples INTEGER NOT NULL,
			predictions INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_class_stats (
			session_id INTEGER NOT NULL,
			label INTEGER NOT NULL,
			predictions INTEGER NOT NULL,
			cost_sum REAL NOT NULL,
			likelihood_sum REAL NOT NULL,
			PRIMARY KEY (session_id, label)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_class_stats_label ON session_class_stats(label);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed recognition session and its per-class stats.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, classes []model.ClassStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, dataset_path, num_classes, num_examples, predictions, rejected, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.DatasetPath,
		stats.NumClasses,
		stats.NumExamples,
		stats.Predictions,
		stats.Rejected,
		stats.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(classes) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_class_stats (session_id, label, predictions, cost_sum, likelihood_sum)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range classes {
			if _, err := stmt.ExecContext(ctx, id, cs.Label, cs.Predictions, cs.CostSum, cs.LikelihoodSum); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, predictions, rejected, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Predictions, &agg.Rejected, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListClassAggregatesForSessions aggregates per-class stats across sessions.
func (s *Store) ListClassAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.ClassAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT label, SUM(predictions) AS predictions,
		SUM(cost_sum) AS cost_sum, SUM(likelihood_sum) AS likelihood_sum
		FROM session_class_stats
		WHERE session_id IN (%s)
		GROUP BY label
		ORDER BY label ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ClassAggregate
	for rows.Next() {
		var agg model.ClassAggregate
		if err := rows.Scan(&agg.Label, &agg.Predictions, &agg.CostSum, &agg.LikelihoodSum); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListClassStatsForSessions returns per-session stats for selected class labels.
func (s *Store) ListClassStatsForSessions(ctx context.Context, sessionIDs []int64, labels []int) (map[int64]map[int]model.ClassAggregate, error) {
	if len(sessionIDs) == 0 || len(labels) == 0 {
		return map[int64]map[int]model.ClassAggregate{}, nil
	}
	idPlaceholders := make([]string, len(sessionIDs))
	args := make([]any, 0, len(sessionIDs)+len(labels))
	for i, id := range sessionIDs {
		idPlaceholders[i] = "?"
		args = append(args, id)
	}
	labelPlaceholders := make([]string, len(labels))
	for i, label := range labels {
		labelPlaceholders[i] = "?"
		args = append(args, label)
	}

	query := fmt.Sprintf(`SELECT session_id, label, predictions, cost_sum, likelihood_sum
		FROM session_class_stats
		WHERE session_id IN (%s) AND label IN (%s)`, strings.Join(idPlaceholders, ","), strings.Join(labelPlaceholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64]map[int]model.ClassAggregate{}
	for rows.Next() {
		var sessionID int64
		var agg model.ClassAggregate
		if err := rows.Scan(&sessionID, &agg.Label, &agg.Predictions, &agg.CostSum, &agg.LikelihoodSum); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[int]model.ClassAggregate{}
		}
		result[sessionID][agg.Label] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
