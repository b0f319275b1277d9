// Package stats tracks process-wide processing counters. Counters are
// monotonic appends read lock-free by the health surface; no transactional
// semantics are needed.
package stats

import (
	"sync/atomic"
	"time"
)

// Stats accumulates session outcomes for the lifetime of the process.
type Stats struct {
	processed    atomic.Int64
	errors       atomic.Int64
	lastActivity atomic.Int64 // unix nanos, zero until the first session
	startTime    time.Time
}

// New creates a Stats anchored at the current time.
func New() *Stats {
	return &Stats{startTime: time.Now().UTC()}
}

// RecordSuccess counts one successfully processed session.
func (s *Stats) RecordSuccess() {
	s.processed.Add(1)
	s.touch()
}

// RecordFailure counts one failed session.
func (s *Stats) RecordFailure() {
	s.errors.Add(1)
	s.touch()
}

func (s *Stats) touch() {
	s.lastActivity.Store(time.Now().UTC().UnixNano())
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	ProcessedCount int64     `json:"processed_count"`
	ErrorCount     int64     `json:"error_count"`
	StartTime      time.Time `json:"start_time"`
	LastActivity   time.Time `json:"last_activity"`
	Uptime         time.Duration
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		ProcessedCount: s.processed.Load(),
		ErrorCount:     s.errors.Load(),
		StartTime:      s.startTime,
		Uptime:         time.Since(s.startTime),
	}
	if nanos := s.lastActivity.Load(); nanos > 0 {
		snap.LastActivity = time.Unix(0, nanos).UTC()
	}
	return snap
}
