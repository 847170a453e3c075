// Package search implements the parallel traversal-and-match engine: a
// shared queue of pending directories drained by a fixed pool of workers
// that re-enqueue discovered subdirectories, match file names or content,
// and accumulate results in thread-safe sinks. A session owns one run end
// to end; everything it shares across workers synchronizes internally.
package search

import (
	"strings"
	"time"

	"github.com/harrison/seeker/internal/models"
)

// Defaults applied by Normalize when a field is unset or out of range.
const (
	DefaultWorkers          = 4
	DefaultPattern          = "*"
	DefaultResultsLog       = "Results.log"
	DefaultInitialDelay     = 2 * time.Second
	DefaultProgressInterval = 500 * time.Millisecond

	minFraction = 0.1
	maxFraction = 1.0
)

// Logger receives diagnostic output from the engine. A nil logger disables
// diagnostics; nothing correctness-bearing is ever logged. Implementations
// must be safe for concurrent use.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

// Options is the configuration snapshot for one search session. Normalize
// clamps it once before the session starts; after that it is never mutated,
// which is what lets every worker read it without synchronization.
type Options struct {
	Pattern      string                 // File-name glob, e.g. "*.config"
	Months       int                    // Recency cutoff in months, 0 = disabled
	Keyword      string                 // Single-keyword content strategy
	Terms        []string               // Multi-term content strategy (takes precedence over Keyword)
	Fraction     float64                // Required fraction of terms on one line
	Workers      int                    // Worker pool size (0 = default, negatives clamp to 1)
	RearmIdle    bool                   // Keep idle workers re-checking while peers are mid-directory
	ResultsLog   string                 // Base name of the results log, excluded from matching
	InitialDelay time.Duration          // Delay before the first progress snapshot
	Interval     time.Duration          // Cadence of subsequent snapshots
	OnSnapshot   func(models.Snapshot)  // Progress consumer; nil disables the monitor
	Logger       Logger                 // Diagnostic sink; nil discards
}

// Normalize returns a copy with every out-of-range value clamped to its
// valid bound. Anomalies are corrected, never rejected: a session built
// from any Options is runnable.
func (o Options) Normalize() Options {
	if o.Pattern == "" {
		o.Pattern = DefaultPattern
	}
	if o.ResultsLog == "" {
		o.ResultsLog = DefaultResultsLog
	}
	if o.Months < 0 {
		o.Months = 0
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	o.Fraction = ClampFraction(o.Fraction)
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.Interval <= 0 {
		o.Interval = DefaultProgressInterval
	}

	terms := make([]string, 0, len(o.Terms))
	for _, t := range o.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	o.Terms = terms

	return o
}

// ContentMode reports whether any content strategy is configured.
func (o Options) ContentMode() bool {
	return len(o.Terms) > 0 || o.Keyword != ""
}

// Mode reports which search variant the options select.
func (o Options) Mode() string {
	if o.ContentMode() {
		return models.ModeContent
	}
	return models.ModeLocate
}

// ClampFraction bounds a required-match fraction to [0.1, 1.0]. Values
// above 1.0 demand every term on one line; values at or below zero would
// match any line trivially and collapse to the low bound instead.
func ClampFraction(f float64) float64 {
	if f > maxFraction {
		return maxFraction
	}
	if f < minFraction {
		return minFraction
	}
	return f
}
