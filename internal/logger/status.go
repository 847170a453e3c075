package logger

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/harrison/seeker/internal/models"
)

// StatusLine renders a one-line view of a running search with color support.
// Unlike a progress bar there is no known total: traversal discovers work as
// it goes, so the line shows live counters instead of a percentage.
type StatusLine struct {
	snap        models.Snapshot
	enableColor bool
	prefix      string
	mu          sync.RWMutex
}

// NewStatusLine creates a new status line
func NewStatusLine(enableColor bool) *StatusLine {
	return &StatusLine{
		enableColor: enableColor,
		prefix:      "",
	}
}

// Update sets the snapshot to render
func (sl *StatusLine) Update(snap models.Snapshot) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.snap = snap
}

// Snapshot returns the last snapshot set via Update
func (sl *StatusLine) Snapshot() models.Snapshot {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.snap
}

// SetPrefix sets a custom prefix for the status line
func (sl *StatusLine) SetPrefix(prefix string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.prefix = prefix
}

// Render generates the status line string
func (sl *StatusLine) Render() string {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	snap := sl.snap

	result := fmt.Sprintf("%sworkers %d | queued %s | matches %s",
		sl.prefix,
		snap.ActiveWorkers,
		humanize.Comma(int64(snap.QueueDepth)),
		humanize.Comma(int64(snap.Results)),
	)

	// Apply color if enabled
	if sl.enableColor && snap.ActiveWorkers > 0 {
		result = fmt.Sprintf("\033[36m%s\033[0m", result) // Cyan while workers are busy
	} else if sl.enableColor {
		result = fmt.Sprintf("\033[32m%s\033[0m", result) // Green once drained
	}

	return result
}
