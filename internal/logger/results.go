package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harrison/seeker/internal/filelock"
	"github.com/harrison/seeker/internal/models"
	"gopkg.in/natefinch/lumberjack.v2"
)

// resultsLockTimeout bounds how long a run waits for another run to release
// the results log before giving up.
const resultsLockTimeout = 2 * time.Second

// ResultsWriter persists match records to the results log file.
// Rotation is delegated to lumberjack so long-running scans cannot grow the
// log without bound, and a sibling ".lock" file keeps concurrent seeker
// processes from interleaving records in the same log.
// It is thread-safe.
type ResultsWriter struct {
	path string
	out  *lumberjack.Logger
	lock *filelock.FileLock
	mu   sync.Mutex
}

// NewResultsWriter creates a ResultsWriter for the given results log path.
// It acquires the cross-process lock before returning; if another run holds
// the log, it waits up to resultsLockTimeout and then fails.
// maxSizeMB, maxBackups and maxAgeDays configure rotation; a maxSizeMB below
// 1 falls back to 10.
func NewResultsWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) (*ResultsWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	lock := filelock.NewFileLock(path + ".lock")
	if err := lock.LockWithTimeout(resultsLockTimeout); err != nil {
		return nil, fmt.Errorf("results log %s is in use by another run: %w", path, err)
	}

	if maxSizeMB < 1 {
		maxSizeMB = 10
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}

	return &ResultsWriter{
		path: path,
		out:  out,
		lock: lock,
	}, nil
}

// Path returns the results log path.
func (rw *ResultsWriter) Path() string {
	return rw.path
}

// WriteHeader writes the run banner that precedes the match records.
func (rw *ResultsWriter) WriteHeader(runID, root, mode, pattern string) error {
	header := "=== Seeker Results ===\n"
	header += fmt.Sprintf("Run ID:  %s\n", runID)
	header += fmt.Sprintf("Root:    %s\n", root)
	header += fmt.Sprintf("Mode:    %s\n", mode)
	header += fmt.Sprintf("Pattern: %s\n", pattern)
	header += fmt.Sprintf("Started: %s\n\n", time.Now().Format(time.RFC3339))

	return rw.write(header)
}

// WriteMatch appends a single match record.
func (rw *ResultsWriter) WriteMatch(record models.MatchRecord) error {
	return rw.write(record.String() + "\n")
}

// WriteSummary writes the final run statistics after the match records.
func (rw *ResultsWriter) WriteSummary(result models.RunResult) error {
	status := "COMPLETE"
	if result.Canceled {
		status = "PARTIAL"
	}

	summary := fmt.Sprintf(
		"\n=== RUN SUMMARY ===\n"+
			"Matches:      %s\n"+
			"Directories:  %s\n"+
			"Files:        %s\n"+
			"Data:         %s\n"+
			"Faults:       %d\n"+
			"Total time:   %.1fs\n"+
			"Status:       %s\n"+
			"Completed at: %s\n",
		humanize.Comma(int64(len(result.Records))),
		humanize.Comma(result.Directories),
		humanize.Comma(result.Files),
		humanize.IBytes(uint64(result.Bytes)),
		result.Faults,
		result.Elapsed.Seconds(),
		status,
		time.Now().Format(time.RFC3339),
	)

	return rw.write(summary)
}

// Close flushes the log, releases the cross-process lock, and removes the
// lock file. It should be called when the writer is no longer needed.
func (rw *ResultsWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	var firstErr error

	if rw.out != nil {
		if err := rw.out.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close results log: %w", err)
		}
		rw.out = nil
	}

	if rw.lock != nil {
		if err := rw.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
		os.Remove(rw.lock.Path())
		rw.lock = nil
	}

	return firstErr
}

// write is a thread-safe helper to append to the results log.
func (rw *ResultsWriter) write(message string) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.out == nil {
		return fmt.Errorf("results writer is closed")
	}

	if _, err := rw.out.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write results log: %w", err)
	}

	return nil
}
