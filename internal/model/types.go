// Package model defines shared data structures.
package model

import "time"

// Config defines trainer settings.
type Config struct {
	DatasetPath          string
	SampleRate           int
	NullRejection        bool
	NullRejectionCoeff   float64
	ConstrainWarpingPath bool
	WarpingRadius        float64
	TrimTrainingData     bool
	TrimThreshold        float64
	TrimPercent          float64
	OffsetByFirstSample  bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	Labels      string
}

// SessionStats captures one recognition run, from a successful training
// until quit or retrain.
type SessionStats struct {
	StartedAt   time.Time
	EndedAt     time.Time
	DatasetPath string
	NumClasses  int
	NumExamples int
	Predictions int
	Rejected    int
	DurationMs  int64
}

// ClassStats stores per-class prediction stats for a session.
type ClassStats struct {
	Label         int
	Predictions   int
	CostSum       float64
	LikelihoodSum float64
}

// ClassAggregate aggregates class stats across sessions.
type ClassAggregate struct {
	Label         int
	Predictions   int
	CostSum       float64
	LikelihoodSum float64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID   int64
	EndedAt     time.Time
	Predictions int
	Rejected    int
	DurationMs  int64
}
