package search

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/seeker/internal/models"
)

const (
	// workerStagger spaces out worker launches so the observed
	// active-worker count reflects reality between starts. Diagnostic
	// cosmetics only; nothing correctness-bearing reads the counter.
	workerStagger = 10 * time.Millisecond

	// idleNap is how long a re-armed worker sleeps before re-checking an
	// empty queue while peers are still mid-directory.
	idleNap = 5 * time.Millisecond

	// Line scanning starts at 64 KiB and grows to maxLineBytes; a line
	// beyond that faults the file, which is then skipped like any other
	// unreadable entry.
	initialLineBytes = 64 * 1024
	maxLineBytes     = 1024 * 1024
)

// Session runs one end-to-end search: seed the queue with the root, drain
// it with a fixed pool of workers, and hand back everything the sinks
// collected. A Session is single-use; construct a new one per run.
type Session struct {
	opts    Options
	name    *NameMatcher
	content *ContentMatcher

	queue   *directoryQueue
	results *resultSink
	metrics *metricSink

	// Live counters. active and the queue depth and result count feed
	// progress snapshots; inflight drives re-arm termination; the rest are
	// roll-up statistics for the final report. All observational.
	active   atomic.Int32
	inflight atomic.Int32
	dirs     atomic.Int64
	files    atomic.Int64
	bytes    atomic.Int64
	faults   atomic.Int64
}

// NewSession builds a session from options, normalizing them first.
func NewSession(opts Options) *Session {
	opts = opts.Normalize()
	return &Session{
		opts:    opts,
		name:    NewNameMatcher(opts.Pattern, opts.Months),
		content: NewContentMatcher(opts.Terms, opts.Keyword, opts.Fraction),
		queue:   newDirectoryQueue(),
		results: &resultSink{},
		metrics: &metricSink{},
	}
}

// Run performs the search rooted at root. The only error it ever returns
// wraps ErrRootNotFound, detected before any worker starts. Cancellation
// mid-run is not an error: workers drain gracefully and Run returns the
// partial results collected so far with Canceled set.
func (s *Session) Run(ctx context.Context, root string) (*models.RunResult, error) {
	started := time.Now()

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", root, ErrRootNotFound)
	}

	s.queue.Enqueue(root)

	var monitor *progressMonitor
	if s.opts.OnSnapshot != nil {
		monitor = newProgressMonitor(s.opts.InitialDelay, s.opts.Interval, s.Snapshot, s.opts.OnSnapshot)
		monitor.Start()
	}

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		if i > 0 {
			time.Sleep(workerStagger)
		}
		wg.Add(1)
		s.active.Add(1)
		go func(id int) {
			defer wg.Done()
			defer s.active.Add(-1)
			s.debugf("worker %d started", id)
			s.drain(ctx)
			s.debugf("worker %d stopped", id)
		}(i)
	}

	wg.Wait()
	if monitor != nil {
		monitor.Stop()
	}

	return &models.RunResult{
		RunID:       uuid.New().String(),
		Root:        root,
		Mode:        s.opts.Mode(),
		Records:     s.results.Drain(),
		Metrics:     s.metrics.Drain(),
		StartedAt:   started,
		Elapsed:     time.Since(started),
		Directories: s.dirs.Load(),
		Files:       s.files.Load(),
		Bytes:       s.bytes.Load(),
		Faults:      s.faults.Load(),
		Canceled:    ctx.Err() != nil,
	}, nil
}

// Snapshot reads the live counters without taking any lock, so the values
// may be mid-update relative to each other.
func (s *Session) Snapshot() models.Snapshot {
	return models.Snapshot{
		ActiveWorkers: int(s.active.Load()),
		QueueDepth:    s.queue.Depth(),
		Results:       s.results.Count(),
	}
}

/// drain is one worker's life: pull directories until the queue looks empty
// or the run is canceled, then stop for good. The pool never re-arms a
// stopped worker by default, so effective parallelism can only shrink over a
// run. With RearmIdle set, a worker finding the queue empty naps and
// re-checks as long as some peer is mid-directory and may still fan out;
// it exits only when the queue is empty and no peer can produce more work.
//
// inflight covers the window from the dequeue attempt through the last
// subdirectory enqueue, so a zero reading together with an empty queue
// really does mean no work can appear.
func (s *Session) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		s.inflight.Add(1)
		dir, ok := s.queue.TryDequeue()
		if !ok {
			s.inflight.Add(-1)
			if s.opts.RearmIdle && s.inflight.Load() > 0 {
				time.Sleep(idleNap)
				continue
			}
			return
		}

		s.processDirectory(ctx, dir)
		s.inflight.Add(-1)
	}
}

// processDirectory handles one unit of traversal work: list the directory,
// evaluate its files against the matchers, enqueue its subdirectories, and
// record how long that took. A file fault never suppresses the enqueue of
// sibling subdirectories and vice versa; a listing fault skips the whole
// directory and the run moves on.
func (s *Session) processDirectory(ctx context.Context, dir string) {
	start := time.Now()
	defer func() {
		s.dirs.Add(1)
		s.metrics.Add(models.DirectoryMetric{Path: dir, Elapsed: time.Since(start)})
	}()

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.fault(dir, err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			// Symlinked directories report IsDir false here, so the
			// traversal stays cycle-free without a visited set.
			s.queue.Enqueue(filepath.Join(dir, entry.Name()))
			continue
		}
		if IsResultsArtifact(entry.Name(), s.opts.ResultsLog) {
			continue
		}
		s.evaluateFile(ctx, filepath.Join(dir, entry.Name()), entry)
	}
}

// evaluateFile applies the name matcher and, in content mode, scans the
// file for its first satisfying line. Locate mode records the path as soon
// as name and recency pass.
func (s *Session) evaluateFile(ctx context.Context, path string, entry os.DirEntry) {
	if !s.name.MatchName(entry.Name()) {
		return
	}
	if s.name.HasCutoff() {
		info, err := entry.Info()
		if err != nil {
			s.fault(path, err)
			return
		}
		if !s.name.MatchModTime(info.ModTime()) {
			return
		}
	}

	s.files.Add(1)

	if !s.content.Active() {
		s.results.Add(models.MatchRecord{Path: path})
		return
	}
	s.scanFile(ctx, path)
}

// scanFile reads one file line by line until the first satisfying line,
// EOF, a read fault, or cancellation. At most one record per file; once a
// line matches, the rest of the file is not read.
func (s *Session) scanFile(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		s.fault(path, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, initialLineBytes), maxLineBytes)

	line := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line++
		text := scanner.Text()
		s.bytes.Add(int64(len(text)))

		if s.content.MatchLine(text) {
			s.results.Add(models.MatchRecord{Path: path, Line: line, Text: text})
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.fault(path, err)
	}
}

// fault swallows one per-entry filesystem error: counted and debug-logged,
// never propagated. One inaccessible entry must not abort the traversal.
func (s *Session) fault(path string, err error) {
	s.faults.Add(1)
	if s.opts.Logger != nil {
		s.opts.Logger.LogDebug(fmt.Sprintf("skipping %s: %v", path, err))
	}
}

func (s *Session) debugf(format string, args ...interface{}) {
	if s.opts.Logger != nil {
		s.opts.Logger.LogDebug(fmt.Sprintf(format, args...))
	}
}
