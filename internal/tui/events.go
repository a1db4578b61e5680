package tui

import "time"

// TaskID identifies a step of a scoring run.
type TaskID int

const (
	TaskAuth    TaskID = iota // resolve the token's user
	TaskFetch                 // pull request, commit list, reviews and threads
	TaskCommits               // per-commit file and line stats
	TaskScore                 // signal extraction and aggregation
	TaskPost                  // report comment
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is anything the scoring run reports to the display.
type Event interface {
	isEvent()
}

// TaskEvent updates one task. Zero-valued fields leave the task unchanged.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string
	Count    int
	Progress float64 // 0.0 to 1.0
	Error    error
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports that GitHub's primary rate limit was exhausted.
type RateLimitEvent struct {
	Limited bool
	ResetAt time.Time
}

func (RateLimitEvent) isEvent() {}

// ResultEvent carries the headline score once scoring finished.
type ResultEvent struct {
	Maturity float64
	Stale    bool
}

func (ResultEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
