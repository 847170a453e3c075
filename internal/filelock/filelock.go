// Package filelock provides advisory file locking and atomic writes so
// concurrent seeker processes can share result logs and config files safely.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout reports that a lock could not be acquired before the deadline.
var ErrLockTimeout = errors.New("timed out waiting for file lock")

// lockRetryInterval is the pause between acquisition attempts in LockWithTimeout.
const lockRetryInterval = 10 * time.Millisecond

// LockMetrics records how a blocking lock acquisition went.
type LockMetrics struct {
	Attempts int
	Wait     time.Duration
	TimedOut bool
}

// MonitorFunc receives the metrics of each completed acquisition attempt.
type MonitorFunc func(path string, metrics LockMetrics)

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock   *flock.Flock
	path    string
	mu      sync.Mutex
	monitor MonitorFunc
	last    LockMetrics
}

// NewFileLock creates a file lock backed by the file at path.
// The lock file is created on first acquisition if it does not exist.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	start := time.Now()
	err := fl.flock.Lock()
	fl.record(LockMetrics{Attempts: 1, Wait: time.Since(start)})
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// LockWithTimeout acquires an exclusive lock, retrying until timeout elapses.
// Returns an error wrapping ErrLockTimeout if the lock stays held elsewhere.
func (fl *FileLock) LockWithTimeout(timeout time.Duration) error {
	start := time.Now()
	deadline := start.Add(timeout)
	metrics := LockMetrics{}

	for {
		metrics.Attempts++
		acquired, err := fl.flock.TryLock()
		if err != nil {
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
		}
		if acquired {
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return nil
		}
		if time.Now().After(deadline) {
			metrics.Wait = time.Since(start)
			metrics.TimedOut = true
			fl.record(metrics)
			return fmt.Errorf("failed to acquire lock on %s within %s: %w", fl.path, timeout, ErrLockTimeout)
		}
		time.Sleep(lockRetryInterval)
	}
}

// TryLock attempts to acquire an exclusive lock without blocking.
// Returns true if the lock was acquired, false if another process holds it.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// SetMonitor installs a callback invoked after each blocking acquisition.
// Pass nil to remove the current monitor.
func (fl *FileLock) SetMonitor(monitor MonitorFunc) {
	fl.mu.Lock()
	fl.monitor = monitor
	fl.mu.Unlock()
}

// LastMetrics returns the metrics of the most recent blocking acquisition.
func (fl *FileLock) LastMetrics() LockMetrics {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.last
}

func (fl *FileLock) record(metrics LockMetrics) {
	fl.mu.Lock()
	fl.last = metrics
	monitor := fl.monitor
	fl.mu.Unlock()

	if monitor != nil {
		monitor(fl.path, metrics)
	}
}

// AtomicWrite writes data to path through a temp file and rename, so readers
// never observe a partial write. The temp file lives in the target directory,
// which keeps the final rename on one filesystem where it is atomic. On
// failure the original file, if any, is left untouched.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Rename succeeded, so the deferred cleanup must not remove the target.
	tempFile = nil

	return nil
}

// LockAndWrite acquires a lock, performs an atomic write, releases the lock,
// and removes the lock file. The lock path is the target path with ".lock"
// appended, so writing "config.yaml" locks "config.yaml.lock".
func LockAndWrite(path string, data []byte) error {
	lockPath := path + ".lock"
	lock := NewFileLock(lockPath)

	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() {
		lock.Unlock()
		// Racing removals may see the file already gone.
		os.Remove(lockPath)
	}()

	return AtomicWrite(path, data)
}
