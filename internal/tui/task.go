package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// Task is one line of the progress display.
type Task struct {
	ID       TaskID
	Name     string
	DoneName string // replaces Name once complete, e.g. "Authenticated as"
	Unit     string // noun shown after Count, e.g. "commits"
	Status   TaskStatus
	Message  string
	Count    int
	Progress float64
	Error    error

	started time.Time
	elapsed time.Duration
}

// NewTask creates a pending task.
func NewTask(id TaskID, name string) Task {
	return Task{
		ID:     id,
		Name:   name,
		Status: StatusPending,
	}
}

// WithUnit returns a copy of the task that labels its count with unit.
func (t Task) WithUnit(unit string) Task {
	t.Unit = unit
	return t
}

// WithDoneName returns a copy of the task that reads name once complete.
func (t Task) WithDoneName(name string) Task {
	t.DoneName = name
	return t
}

// apply folds an event into the task. now stamps the first running event and
// the transition to a final status.
func (t *Task) apply(e TaskEvent, now time.Time) {
	if e.Status == StatusRunning && t.started.IsZero() {
		t.started = now
	}
	if t.Status == StatusRunning && e.Status != StatusRunning && !t.started.IsZero() {
		t.elapsed = now.Sub(t.started)
	}
	t.Status = e.Status

	if e.Message != "" {
		t.Message = e.Message
	}
	if e.Count > 0 {
		t.Count = e.Count
	}
	if e.Progress > 0 {
		t.Progress = e.Progress
	}
	if e.Error != nil {
		t.Error = e.Error
	}
}

// View renders the task as a single line.
func (t Task) View(spinnerFrame string, bar progress.Model) string {
	icon := StatusIcon(t.Status, spinnerFrame)

	switch t.Status {
	case StatusPending:
		return fmt.Sprintf("  %s %s", icon, theme.dim.Render(t.Name))
	case StatusSkipped:
		return fmt.Sprintf("  %s %s %s", icon, theme.dim.Render(t.Name), theme.message.Render("skipped"))
	case StatusError:
		line := fmt.Sprintf("  %s %s", icon, theme.name.Render(t.Name))
		if t.Error != nil {
			line += " " + theme.err.Render(t.Error.Error())
		}
		return line
	}

	if t.Status == StatusComplete && t.DoneName != "" && t.Message != "" {
		return fmt.Sprintf("  %s %s %s%s", icon, t.DoneName, theme.user.Render(t.Message), t.elapsedView())
	}

	line := fmt.Sprintf("  %s %s", icon, theme.name.Render(t.Name))
	if t.Status == StatusRunning && t.Progress > 0 {
		line += fmt.Sprintf(" %s %d%%", bar.ViewAs(t.Progress), int(t.Progress*100))
		if t.Message != "" {
			line += " " + theme.message.Render("("+t.Message+")")
		}
		return line
	}

	switch {
	case t.Message != "":
		line += " " + theme.message.Render(t.Message)
	case t.Count > 0 && t.Unit != "":
		line += " " + theme.message.Render(fmt.Sprintf("(%d %s)", t.Count, t.Unit))
	case t.Count > 0:
		line += " " + theme.message.Render(fmt.Sprintf("(%d)", t.Count))
	}
	return line + t.elapsedView()
}

func (t Task) elapsedView() string {
	if t.Status != StatusComplete || t.elapsed <= 0 {
		return ""
	}
	return " " + theme.dim.Render(t.elapsed.Round(100*time.Millisecond).String())
}
