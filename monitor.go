package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor runs the analyze cycle on a fixed interval until stopped. One
// monitor exists per process, shared by the watch command, the tray toggle
// and the /api/monitor endpoints.
type Monitor struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	tick   func(ctx context.Context)
}

var monitor = &Monitor{tick: monitorTick}

// monitorTick analyzes the screen once, going through the task manager so a
// tick shares the single in-flight slot with the tray and the HTTP API. The
// tick's task inherits ctx, stopping the monitor cancels a run in progress.
// Failures are logged by the task and the loop keeps going.
func monitorTick(ctx context.Context) {
	task := taskManager.StartTask(ctx, analyzeOptions{})
	report, err := task.Wait()
	if err != nil {
		return
	}
	log.Printf("Screen: %s\n", report.Headline())
}

// Start launches the watch loop in the background. The first cycle runs
// immediately, later ones follow the interval.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("Watch interval must be positive, got %s", interval)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		select {
		case <-m.done:
			// previous loop already exited
		default:
			return fmt.Errorf("Monitoring is already running")
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(ctx, interval, m.done)
	return nil
}

func (m *Monitor) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	m.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// Stop halts the watch loop and waits for the current cycle to finish. It
// reports whether an active loop was stopped.
func (m *Monitor) Stop() bool {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return false
	}

	wasRunning := true
	select {
	case <-done:
		wasRunning = false
	default:
	}

	cancel()
	<-done
	return wasRunning
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the loop exits, e.g. when the parent context is
// cancelled by a signal.
func (m *Monitor) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if done != nil {
		<-done
	}
}
