package models

import "time"

// RunResult represents the aggregate outcome of one search session.
type RunResult struct {
	RunID       string            // UUID assigned to this run
	Root        string            // Root directory that was searched
	Mode        string            // "locate" or "content"
	Records     []MatchRecord     // Every match found (unordered)
	Metrics     []DirectoryMetric // Per-directory timing, one entry per directory processed
	StartedAt   time.Time         // When the session began
	Elapsed     time.Duration     // Total wall-clock time for the run
	Directories int64             // Directories processed
	Files       int64             // Files evaluated against the matcher
	Bytes       int64             // Bytes read while scanning content
	Faults      int64             // Filesystem faults suppressed during traversal
	Canceled    bool              // True when the run was cut short by cancellation
}

// RunRecord is the persisted subset of a RunResult stored in the history
// database, one row per run.
type RunRecord struct {
	ID          string        // Run UUID (primary key)
	Root        string        // Search root
	Mode        string        // "locate" or "content"
	Pattern     string        // File-name glob
	Keyword     string        // Single keyword, if any
	Terms       string        // Comma-joined term list, if any
	Fraction    float64       // Effective required-match fraction
	Months      int           // Recency cutoff in months (0 = disabled)
	Workers     int           // Worker count used
	StartedAt   time.Time     // When the session began
	Duration    time.Duration // Total wall-clock time
	Directories int64         // Directories processed
	Matches     int64         // Records produced
	Canceled    bool          // Whether the run was canceled
}

// MetricSummary aggregates per-directory timings for the end-of-run report.
type MetricSummary struct {
	Count   int           // Directories measured
	Min     time.Duration // Fastest directory
	Max     time.Duration // Slowest directory
	Average time.Duration // Mean elapsed across directories
}

// SummarizeMetrics computes min/max/average over a metric sequence.
// An empty sequence yields a zero summary.
func SummarizeMetrics(metrics []DirectoryMetric) MetricSummary {
	if len(metrics) == 0 {
		return MetricSummary{}
	}

	summary := MetricSummary{
		Count: len(metrics),
		Min:   metrics[0].Elapsed,
		Max:   metrics[0].Elapsed,
	}

	var total time.Duration
	for _, m := range metrics {
		total += m.Elapsed
		if m.Elapsed < summary.Min {
			summary.Min = m.Elapsed
		}
		if m.Elapsed > summary.Max {
			summary.Max = m.Elapsed
		}
	}
	summary.Average = total / time.Duration(len(metrics))

	return summary
}
