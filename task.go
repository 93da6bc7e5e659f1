package main

import (
	"context"
	"log"
	"sync"
)

// NOTE: all methods for this type should be thread safe
type AnalyzeTask struct {
	ctx               context.Context
	cancel            context.CancelFunc
	opts              analyzeOptions
	waitForCompletion chan struct{}
	result            *Report
	err               error
	mu                sync.Mutex
}

// NewAnalyzeTask prepares one capture-analyze run. The parent context ties
// the task to its owner (a watch loop, an HTTP request), Abort cancels it
// directly.
func NewAnalyzeTask(parent context.Context, opts analyzeOptions) *AnalyzeTask {
	ctx, cancel := context.WithCancel(parent)
	return &AnalyzeTask{
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
	}
}

// Abort cancels the task, regardless of state.
func (t *AnalyzeTask) Abort() {
	t.cancel()
}

func (t *AnalyzeTask) GetResult() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

func (t *AnalyzeTask) setOutcome(result *Report, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = result
	t.err = err
}

// Wait blocks until the task has finished and returns its outcome. Only
// valid after Start.
func (t *AnalyzeTask) Wait() (*Report, error) {
	<-t.waitForCompletion
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Start runs the capture-analyze cycle in the background. The returned
// channel carries state transitions and is closed when the task is done.
func (t *AnalyzeTask) Start() chan TaskState {
	t.waitForCompletion = make(chan struct{})
	stateCh := make(chan TaskState)

	go func() {
		defer close(t.waitForCompletion)
		defer close(stateCh)

		report, err := runAnalysis(t.ctx, t.opts, func(state TaskState) {
			stateCh <- state
		})
		if err != nil {
			log.Printf("Error analyzing screen: %v\n", err)
		}
		t.setOutcome(report, err)
	}()

	return stateCh
}
