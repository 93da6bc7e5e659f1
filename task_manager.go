package main

import (
	"context"
	"sync/atomic"
)

type TaskState int

const (
	TaskStateIdle TaskState = iota
	TaskStateCapturing
	TaskStateAnalyzing
)

const maxHistoryLength = 100

// TaskManager is a thread safe manager for global task state. It ensures
// only one analysis is running at a time, cancels the current task when a
// new one is started, and keeps the bounded history behind the dashboard.
type TaskManager struct {
	currentTask atomic.Pointer[AnalyzeTask]
	reportRes   chan *Report
	stateCh     chan TaskState
	history     atomic.Pointer[[]*Report]

	totalReports  atomic.Int64
	failedReports atomic.Int64
	totalActions  atomic.Int64
}

func newTaskManager() *TaskManager {
	return &TaskManager{
		reportRes: make(chan *Report, 1),
		stateCh:   make(chan TaskState, 10),
	}
}

var taskManager = newTaskManager()

func (tm *TaskManager) StartNewTask(intent string) *AnalyzeTask {
	return tm.StartTask(context.Background(), analyzeOptions{intent: intent})
}

// StartTask swaps a new task in as the only analysis in flight, aborting
// whatever was running. Every front end that can run concurrently with
// another (tray, watch loop, HTTP handlers) starts its analyses here.
func (tm *TaskManager) StartTask(parent context.Context, opts analyzeOptions) *AnalyzeTask {
	newTask := NewAnalyzeTask(parent, opts)

	oldTask := tm.currentTask.Swap(newTask)
	if oldTask != nil {
		oldTask.Abort()
	}

	stateCh := newTask.Start()

	go func() {
		// forward states until the task closes its channel
		for state := range stateCh {
			tm.publishState(state)
		}
		tm.publishState(TaskStateIdle)

		if tm.currentTask.CompareAndSwap(newTask, nil) {
			if result := newTask.GetResult(); result != nil {
				select {
				case tm.reportRes <- result:
				default:
				}
			}
		}
	}()

	return newTask
}

// publishState drops states when nobody is listening so that headless modes
// never block the pipeline.
func (tm *TaskManager) publishState(state TaskState) {
	select {
	case tm.stateCh <- state:
	default:
	}
}

func (tm *TaskManager) Abort() {
	if currentTask := tm.currentTask.Load(); currentTask != nil {
		currentTask.Abort()
	}
}

// RecordReport counts a successful analysis and stores it in the history.
func (tm *TaskManager) RecordReport(report *Report) {
	tm.totalReports.Add(1)
	if report.Analysis != nil {
		tm.totalActions.Add(int64(len(report.Analysis.SuggestedActions)))
	}
	tm.AppendToHistory(report)
}

func (tm *TaskManager) RecordFailure() {
	tm.failedReports.Add(1)
}

// DashboardStats is the JSON shape served by /api/dashboard/stats.
type DashboardStats struct {
	TotalAnalyses    int64   `json:"total_analyses"`
	FailedAnalyses   int64   `json:"failed_analyses"`
	SuggestedActions int64   `json:"suggested_actions"`
	SuccessRate      float64 `json:"success_rate"`
	HistorySize      int     `json:"history_size"`
}

func (tm *TaskManager) Stats() DashboardStats {
	total := tm.totalReports.Load()
	failed := tm.failedReports.Load()

	stats := DashboardStats{
		TotalAnalyses:    total,
		FailedAnalyses:   failed,
		SuggestedActions: tm.totalActions.Load(),
		HistorySize:      len(tm.GetHistory()),
	}
	if total+failed > 0 {
		stats.SuccessRate = float64(total) / float64(total+failed)
	}
	return stats
}

func (tm *TaskManager) AppendToHistory(entry *Report) {
	for {
		oldHistory := tm.history.Load()
		if oldHistory == nil {
			newHistory := []*Report{entry}
			if tm.history.CompareAndSwap(nil, &newHistory) {
				break
			}
		} else {
			newHistory := append(append([]*Report(nil), *oldHistory...), entry)
			if len(newHistory) > maxHistoryLength {
				newHistory = newHistory[len(newHistory)-maxHistoryLength:]
			}
			if tm.history.CompareAndSwap(oldHistory, &newHistory) {
				break
			}
		}
	}
}

// GetHistory returns a copy of the current history, oldest first.
func (tm *TaskManager) GetHistory() []*Report {
	history := tm.history.Load()
	if history == nil {
		return []*Report{}
	}
	return append([]*Report(nil), *history...)
}
