package tui

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrCancelled is returned by Run when the user quit before the work finished.
var ErrCancelled = errors.New("cancelled by user")

// Run starts the TUI and blocks until the event channel is closed or a
// DoneEvent arrives.
func Run(events <-chan Event, opts ...ModelOption) error {
	// Inline rendering keeps the final task list in the scrollback.
	p := tea.NewProgram(NewModel(events, opts...), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && !m.done {
		return ErrCancelled
	}
	return nil
}

// ciEnvVars mark environments where nobody watches the progress display.
var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
	"GITLAB_CI",
	"BUILDKITE",
}

// ShouldUseTUI reports whether stderr, where the display renders, is an
// interactive terminal outside CI.
func ShouldUseTUI() bool {
	return detectTUI(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv)
}

func detectTUI(isTerminal bool, getenv func(string) string) bool {
	if !isTerminal || getenv("TERM") == "dumb" {
		return false
	}
	for _, v := range ciEnvVars {
		if getenv(v) != "" {
			return false
		}
	}
	return true
}

// SendEvent sends an event to the channel in a non-blocking manner.
func SendEvent(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
		// Non-blocking send - drop event if channel is full
	}
}

// SendTaskEvent is a convenience function for sending task events.
func SendTaskEvent(ch chan<- Event, task TaskID, status TaskStatus, opts ...TaskEventOption) {
	e := TaskEvent{
		Task:   task,
		Status: status,
	}
	for _, opt := range opts {
		opt(&e)
	}
	SendEvent(ch, e)
}

// TaskEventOption is a functional option for TaskEvent.
type TaskEventOption func(*TaskEvent)

// WithMessage sets the message on a TaskEvent.
func WithMessage(msg string) TaskEventOption {
	return func(e *TaskEvent) {
		e.Message = msg
	}
}

// WithCount sets the count on a TaskEvent.
func WithCount(count int) TaskEventOption {
	return func(e *TaskEvent) {
		e.Count = count
	}
}

// WithProgress sets the progress on a TaskEvent.
func WithProgress(progress float64) TaskEventOption {
	return func(e *TaskEvent) {
		e.Progress = progress
	}
}

// WithError sets the error on a TaskEvent.
func WithError(err error) TaskEventOption {
	return func(e *TaskEvent) {
		e.Error = err
	}
}
