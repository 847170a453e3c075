package search

import (
	"sync"
	"sync/atomic"

	"github.com/harrison/seeker/internal/models"
)

// resultSink accumulates match records from every worker. Add is safe under
// arbitrary concurrent callers; record order carries no meaning. count
// mirrors len(records) for lock-free progress reads.
type resultSink struct {
	mu      sync.Mutex
	records []models.MatchRecord
	count   atomic.Int64
}

func (s *resultSink) Add(rec models.MatchRecord) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.count.Add(1)
	s.mu.Unlock()
}

// Count reports the number of accumulated records without taking the lock.
func (s *resultSink) Count() int {
	return int(s.count.Load())
}

// Drain hands back every accumulated record. Call once, after all workers
// have stopped; no Add may follow.
func (s *resultSink) Drain() []models.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records
	s.records = nil
	return records
}

// metricSink accumulates per-directory timings with the same discipline as
// resultSink. Metrics feed post-run statistics only.
type metricSink struct {
	mu      sync.Mutex
	metrics []models.DirectoryMetric
}

func (s *metricSink) Add(m models.DirectoryMetric) {
	s.mu.Lock()
	s.metrics = append(s.metrics, m)
	s.mu.Unlock()
}

// Drain hands back every accumulated metric. Call once, after all workers
// have stopped.
func (s *metricSink) Drain() []models.DirectoryMetric {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics := s.metrics
	s.metrics = nil
	return metrics
}
