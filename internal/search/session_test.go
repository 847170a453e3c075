package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/harrison/seeker/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func recordPaths(records []models.MatchRecord) []string {
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.Path)
	}
	sort.Strings(paths)
	return paths
}

func TestSession_LocateByPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1.config"), "x")
	writeFile(t, filepath.Join(root, "b", "2.config"), "x")
	writeFile(t, filepath.Join(root, "Results.log"), "old results")
	writeFile(t, filepath.Join(root, "c", "notes.txt"), "x")

	session := NewSession(Options{Pattern: "*.config", Workers: 2})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{
		filepath.Join(root, "1.config"),
		filepath.Join(root, "b", "2.config"),
	}
	if got := recordPaths(result.Records); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected records %v, got %v", want, got)
	}
	if result.Mode != models.ModeLocate {
		t.Errorf("expected locate mode, got %q", result.Mode)
	}
	if result.Canceled {
		t.Error("expected an uninterrupted run to not be canceled")
	}
}

func TestSession_ExcludesOwnResultsLog(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Results.log"), "results from a previous run")
	writeFile(t, filepath.Join(root, "Results-2026-08-01T10-00-00.000.log"), "rotated")
	writeFile(t, filepath.Join(root, "data.csv"), "x")

	session := NewSession(Options{Pattern: "*.*", Workers: 1})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{filepath.Join(root, "data.csv")}
	if got := recordPaths(result.Records); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected only %v, got %v", want, got)
	}
}

func TestSession_ContentThresholdFirstSatisfyingLine(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x.log"), "foo\nfoo bar baz\n")

	session := NewSession(Options{
		Pattern:  "*.log",
		Terms:    []string{"foo", "bar", "baz"},
		Fraction: 0.5,
		Workers:  1,
	})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(result.Records))
	}
	rec := result.Records[0]
	if rec.Line != 2 {
		t.Errorf("expected the match at line 2 (2/3 terms), got line %d", rec.Line)
	}
	if rec.Text != "foo bar baz" {
		t.Errorf("expected the raw line text, got %q", rec.Text)
	}
	if result.Mode != models.ModeContent {
		t.Errorf("expected content mode, got %q", result.Mode)
	}
}

func TestSession_KeywordFirstMatchingLineWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.log"),
		"starting up\nall fine\nERROR: disk full\nrecovered\nerror again\n")

	session := NewSession(Options{Pattern: "*.log", Keyword: "error", Workers: 1})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("expected one record per file, got %d", len(result.Records))
	}
	if got := result.Records[0].Line; got != 3 {
		t.Fatalf("expected the first matching line (3), got %d", got)
	}
}

func TestSession_RootNotFound(t *testing.T) {
	session := NewSession(Options{Workers: 1})

	_, err := session.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected an error for a missing root")
	}
	if !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("expected ErrRootNotFound, got %v", err)
	}
}

func TestSession_RootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, file, "x")

	session := NewSession(Options{Workers: 1})
	if _, err := session.Run(context.Background(), file); !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("expected ErrRootNotFound for a file root, got %v", err)
	}
}

func TestSession_CancellationReturnsPartialResultsWithoutError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.config"), "x")
	writeFile(t, filepath.Join(root, "sub", "b.config"), "x")

	full := NewSession(Options{Pattern: "*.config", Workers: 2})
	fullResult, err := full.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("uncanceled Run returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	canceled := NewSession(Options{Pattern: "*.config", Workers: 2})
	partial, err := canceled.Run(ctx, root)
	if err != nil {
		t.Fatalf("canceled Run must not return an error, got %v", err)
	}
	if !partial.Canceled {
		t.Error("expected Canceled to be set")
	}

	// Monotonicity: the canceled run's records are a subset of the full
	// run's.
	fullSet := make(map[string]bool)
	for _, p := range recordPaths(fullResult.Records) {
		fullSet[p] = true
	}
	for _, p := range recordPaths(partial.Records) {
		if !fullSet[p] {
			t.Fatalf("canceled run produced %q, absent from the full run", p)
		}
	}
}

func TestSession_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.config"), "x")
	writeFile(t, filepath.Join(root, "d1", "two.config"), "x")
	writeFile(t, filepath.Join(root, "d1", "d2", "three.config"), "x")
	writeFile(t, filepath.Join(root, "d3", "skip.txt"), "x")

	opts := Options{Pattern: "*.config", Workers: 3}

	first, err := NewSession(opts).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	second, err := NewSession(opts).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	if !reflect.DeepEqual(recordPaths(first.Records), recordPaths(second.Records)) {
		t.Fatalf("expected identical result sets, got %v vs %v",
			recordPaths(first.Records), recordPaths(second.Records))
	}
	if len(first.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(first.Records))
	}
}

func TestSession_RecencyCutoffExcludesOldFiles(t *testing.T) {
	root := t.TempDir()
	fresh := filepath.Join(root, "fresh.log")
	stale := filepath.Join(root, "stale.log")
	writeFile(t, fresh, "x")
	writeFile(t, stale, "x")

	old := time.Now().AddDate(-1, 0, 0)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	session := NewSession(Options{Pattern: "*.log", Months: 6, Workers: 1})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{fresh}
	if got := recordPaths(result.Records); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Without a cutoff the stale file comes back.
	all, err := NewSession(Options{Pattern: "*.log", Workers: 1}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(all.Records) != 2 {
		t.Fatalf("expected 2 records with no cutoff, got %d", len(all.Records))
	}
}

func TestSession_OneMetricPerDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "f.txt"), "x")
	writeFile(t, filepath.Join(root, "a", "b", "g.txt"), "x")
	writeFile(t, filepath.Join(root, "c", "h.txt"), "x")

	session := NewSession(Options{Pattern: "*.txt", Workers: 2})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// root, a, a/b, c
	if len(result.Metrics) != 4 {
		t.Fatalf("expected 4 directory metrics, got %d", len(result.Metrics))
	}
	if result.Directories != 4 {
		t.Fatalf("expected 4 directories processed, got %d", result.Directories)
	}

	seen := make(map[string]bool)
	for _, m := range result.Metrics {
		if seen[m.Path] {
			t.Fatalf("directory %q measured twice", m.Path)
		}
		seen[m.Path] = true
		if m.Elapsed < 0 {
			t.Fatalf("negative elapsed for %q", m.Path)
		}
	}
}

func TestSession_FaultedEntryIsSkippedNotFatal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.log"), "needle here\n")
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken.log")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	session := NewSession(Options{Pattern: "*.log", Keyword: "needle", Workers: 2})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{filepath.Join(root, "good.log")}
	if got := recordPaths(result.Records); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if result.Faults == 0 {
		t.Error("expected the broken entry to be counted as a suppressed fault")
	}
}

func TestSession_WideTreeFullyTraversed(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 6; i++ {
		for j := 0; j < 5; j++ {
			writeFile(t, filepath.Join(root, string(rune('a'+i)), string(rune('a'+j)), "f.dat"), "x")
		}
	}

	session := NewSession(Options{Pattern: "*.dat", Workers: 8})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Records) != 30 {
		t.Fatalf("expected 30 records, got %d", len(result.Records))
	}
	// root + 6 branches + 30 leaves
	if result.Directories != 37 {
		t.Fatalf("expected 37 directories processed, got %d", result.Directories)
	}
}

func TestSession_RearmDrainsDeepTree(t *testing.T) {
	root := t.TempDir()
	dir := root
	for i := 0; i < 25; i++ {
		dir = filepath.Join(dir, "d")
		writeFile(t, filepath.Join(dir, "leaf.cfg"), "x")
	}

	session := NewSession(Options{Pattern: "*.cfg", Workers: 4, RearmIdle: true})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Records) != 25 {
		t.Fatalf("expected 25 records, got %d", len(result.Records))
	}
	if result.Directories != 26 {
		t.Fatalf("expected 26 directories processed, got %d", result.Directories)
	}
}

func TestSession_DeepChainCompletesWithoutRearm(t *testing.T) {
	root := t.TempDir()
	dir := root
	for i := 0; i < 25; i++ {
		dir = filepath.Join(dir, "d")
		writeFile(t, filepath.Join(dir, "leaf.cfg"), "x")
	}

	// A chain offers one directory at a time, so most of the pool finds the
	// queue empty and exits early. The worker holding the current link
	// enqueues the child before finishing, so it alone drains the chain.
	session := NewSession(Options{Pattern: "*.cfg", Workers: 8})
	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Records) != 25 {
		t.Fatalf("expected 25 records, got %d", len(result.Records))
	}
	if result.Directories != 26 {
		t.Fatalf("expected 26 directories processed, got %d", result.Directories)
	}
	if final := session.Snapshot(); final.ActiveWorkers != 0 {
		t.Fatalf("expected 0 active workers after Run, got %d", final.ActiveWorkers)
	}
}

func TestSession_SnapshotObservesRun(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 4; i++ {
		writeFile(t, filepath.Join(root, string(rune('a'+i)), "f.txt"), "x")
	}

	// The monitor goroutine is the only writer and Run stops it before
	// returning, so the slice needs no lock.
	var snapshots []models.Snapshot
	session := NewSession(Options{
		Pattern:      "*.txt",
		Workers:      2,
		InitialDelay: time.Millisecond,
		Interval:     time.Millisecond,
		OnSnapshot: func(s models.Snapshot) {
			snapshots = append(snapshots, s)
		},
	})

	result, err := session.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, s := range snapshots {
		if s.ActiveWorkers < 0 || s.ActiveWorkers > 2 {
			t.Fatalf("implausible active worker count %d", s.ActiveWorkers)
		}
		if s.Results < 0 || s.Results > len(result.Records) {
			t.Fatalf("implausible result count %d", s.Results)
		}
	}

	final := session.Snapshot()
	if final.ActiveWorkers != 0 {
		t.Fatalf("expected 0 active workers after Run, got %d", final.ActiveWorkers)
	}
}
