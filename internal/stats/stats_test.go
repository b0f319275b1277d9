package stats_test

import (
	"sync"
	"testing"
	"time"

	"fitforge/internal/stats"
)

func TestCountersIncrement(t *testing.T) {
	s := stats.New()

	s.RecordSuccess()
	s.RecordSuccess()
	s.RecordFailure()

	snap := s.Snapshot()
	if snap.ProcessedCount != 2 {
		t.Fatalf("processed = %d, want 2", snap.ProcessedCount)
	}
	if snap.ErrorCount != 1 {
		t.Fatalf("errors = %d, want 1", snap.ErrorCount)
	}
	if snap.LastActivity.IsZero() {
		t.Fatal("last activity should be set after recording")
	}
	if snap.Uptime < 0 {
		t.Fatalf("uptime = %v", snap.Uptime)
	}
}

func TestLastActivityUpdatesOnBothOutcomes(t *testing.T) {
	s := stats.New()

	s.RecordSuccess()
	first := s.Snapshot().LastActivity
	time.Sleep(5 * time.Millisecond)
	s.RecordFailure()
	second := s.Snapshot().LastActivity

	if !second.After(first) {
		t.Fatalf("last activity did not advance: %v -> %v", first, second)
	}
}

func TestConcurrentRecording(t *testing.T) {
	s := stats.New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				s.RecordSuccess()
			} else {
				s.RecordFailure()
			}
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.ProcessedCount+snap.ErrorCount != 32 {
		t.Fatalf("total outcomes = %d, want 32", snap.ProcessedCount+snap.ErrorCount)
	}
}
