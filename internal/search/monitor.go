package search

import (
	"sync"
	"time"

	"github.com/harrison/seeker/internal/models"
)

// progressMonitor periodically delivers counter snapshots to a callback.
// Observations read atomics only, so workers are never blocked by the
// monitor. The first tick fires after an initial delay (quick runs finish
// without progress noise), subsequent ticks on a shorter regular interval.
type progressMonitor struct {
	initial  time.Duration
	interval time.Duration
	snapshot func() models.Snapshot
	callback func(models.Snapshot)

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newProgressMonitor(initial, interval time.Duration, snapshot func() models.Snapshot, callback func(models.Snapshot)) *progressMonitor {
	return &progressMonitor{
		initial:  initial,
		interval: interval,
		snapshot: snapshot,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start launches the observation loop.
func (p *progressMonitor) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		timer := time.NewTimer(p.initial)
		defer timer.Stop()

		select {
		case <-p.done:
			return
		case <-timer.C:
		}
		p.callback(p.snapshot())

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				p.callback(p.snapshot())
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit. Once Stop returns, no
// further callback fires. Safe to call more than once.
func (p *progressMonitor) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}
