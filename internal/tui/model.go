package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model renders the task list of one scoring run.
type Model struct {
	title    string
	tasks    []Task
	spinner  spinner.Model
	progress progress.Model
	events   <-chan Event
	now      func() time.Time

	done           bool
	result         *ResultEvent
	rateLimited    bool
	rateLimitReset time.Time
}

// doneMsg signals that the event channel was closed.
type doneMsg struct{}

// ModelOption is a functional option for configuring a Model.
type ModelOption func(*Model)

// WithTasks sets the tasks to display.
func WithTasks(tasks []Task) ModelOption {
	return func(m *Model) {
		m.tasks = tasks
	}
}

// WithTitle sets the heading line, usually the pull request reference.
func WithTitle(title string) ModelOption {
	return func(m *Model) {
		m.title = title
	}
}

// ScoreTasks returns the task list of a scoring run. The posting step is only
// listed when the report is posted back to the pull request.
func ScoreTasks(post bool) []Task {
	tasks := []Task{
		NewTask(TaskAuth, "Authenticating").WithDoneName("Authenticated as"),
		NewTask(TaskFetch, "Fetching pull request").WithUnit("commits"),
		NewTask(TaskCommits, "Fetching commit details").WithUnit("commits"),
		NewTask(TaskScore, "Scoring"),
	}
	if post {
		tasks = append(tasks, NewTask(TaskPost, "Posting comment"))
	}
	return tasks
}

// NewModel creates a new TUI model.
func NewModel(events <-chan Event, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		tasks:   ScoreTasks(false),
		spinner: s,
		progress: progress.New(
			progress.WithScaledGradient("#60a5fa", "#1e3a8a"),
			progress.WithWidth(25),
			progress.WithoutPercentage(),
		),
		events: events,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s := msg.String(); s == "ctrl+c" || s == "q" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case TaskEvent:
		cmd := m.apply(msg)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case ResultEvent:
		m.result = &msg
		return m, waitForEvent(m.events)

	case RateLimitEvent:
		m.rateLimited = msg.Limited
		m.rateLimitReset = msg.ResetAt
		return m, waitForEvent(m.events)

	case DoneEvent, doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// apply routes a TaskEvent to its task. Tasks not in the list are ignored.
func (m *Model) apply(e TaskEvent) tea.Cmd {
	now := m.now()
	for i := range m.tasks {
		if m.tasks[i].ID != e.Task {
			continue
		}
		m.tasks[i].apply(e, now)
		if e.Progress > 0 {
			return m.progress.SetPercent(e.Progress)
		}
		return nil
	}
	return nil
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	if m.title != "" {
		fmt.Fprintf(&b, "  %s\n\n", theme.user.Render(m.title))
	}
	for _, task := range m.tasks {
		b.WriteString(task.View(m.spinner.View(), m.progress))
		b.WriteString("\n")
	}

	if m.result != nil {
		line := fmt.Sprintf("\n  Maturity %s / 5", scoreStyle(m.result.Maturity).Render(fmt.Sprintf("%.1f", m.result.Maturity)))
		if m.result.Stale {
			line += " " + theme.warn.Render("(stale)")
		}
		b.WriteString(line + "\n")
	}

	if m.rateLimited {
		if wait := m.rateLimitReset.Sub(m.now()).Round(time.Second); wait > 0 {
			b.WriteString(theme.warn.Render(fmt.Sprintf("\n  Rate limited, resets in %s\n", wait)))
		}
	}

	if !m.done {
		b.WriteString(theme.footer.Render("\n  Press Ctrl+C to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// waitForEvent creates a command that waits for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return event
	}
}
