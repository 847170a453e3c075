package models

import (
	"fmt"
	"time"
)

// Search mode constants
const (
	ModeLocate  = "locate"  // Match file names and metadata only
	ModeContent = "content" // Open matching files and scan lines
)

// MatchRecord represents a single search hit. In locate mode only Path is
// set. In content mode Line carries the 1-based line number of the first
// satisfying line and Text its raw content; at most one record exists per
// file per run.
type MatchRecord struct {
	Path string // Absolute path of the matched file
	Line int    // 1-based line number (0 in locate mode)
	Text string // Raw line text (empty in locate mode)
}

// IsContent returns true if the record carries a content match.
func (r MatchRecord) IsContent() bool {
	return r.Line > 0
}

// String renders the record the way the reporting layer prints it.
func (r MatchRecord) String() string {
	if r.IsContent() {
		return fmt.Sprintf("%s(line %d): %s", r.Path, r.Line, r.Text)
	}
	return r.Path
}

// DirectoryMetric records how long one directory took to list and fan out.
// Metrics feed post-run statistics only, never control flow.
type DirectoryMetric struct {
	Path    string        // Directory that was processed
	Elapsed time.Duration // Wall-clock time to list entries and enqueue subdirectories
}

// Snapshot is one periodic progress observation. Values are read from
// atomic counters, so fields may be mid-update relative to each other.
type Snapshot struct {
	ActiveWorkers int // Workers currently running (not yet stopped)
	QueueDepth    int // Directories waiting in the queue
	Results       int // Match records accumulated so far
}
