package tui

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTaskID(t *testing.T) {
	// Verify task IDs are distinct
	ids := []TaskID{TaskAuth, TaskFetch, TaskCommits, TaskScore, TaskPost}
	seen := make(map[TaskID]bool)

	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate task ID: %d", id)
		}
		seen[id] = true
	}
}

func TestTaskStatus(t *testing.T) {
	// Verify statuses are distinct
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}
	seen := make(map[TaskStatus]bool)

	for _, status := range statuses {
		if seen[status] {
			t.Errorf("duplicate status: %d", status)
		}
		seen[status] = true
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskFetch, "Fetching pull request")

	if task.ID != TaskFetch {
		t.Errorf("expected ID %d, got %d", TaskFetch, task.ID)
	}
	if task.Name != "Fetching pull request" {
		t.Errorf("expected name 'Fetching pull request', got %q", task.Name)
	}
	if task.Status != StatusPending {
		t.Errorf("expected status %d, got %d", StatusPending, task.Status)
	}
}

func TestTaskEvent(t *testing.T) {
	event := TaskEvent{
		Task:     TaskCommits,
		Status:   StatusRunning,
		Message:  "10/20",
		Count:    10,
		Progress: 0.5,
	}

	// Verify it implements Event interface
	var _ Event = event

	if event.Task != TaskCommits {
		t.Errorf("expected task %d, got %d", TaskCommits, event.Task)
	}
	if event.Progress != 0.5 {
		t.Errorf("expected progress 0.5, got %f", event.Progress)
	}
}

func TestDoneEvent(t *testing.T) {
	event := DoneEvent{}

	// Verify it implements Event interface
	var _ Event = event
}

func TestSendEvent(t *testing.T) {
	ch := make(chan Event, 1)

	event := TaskEvent{Task: TaskAuth, Status: StatusComplete}
	SendEvent(ch, event)

	select {
	case received := <-ch:
		if te, ok := received.(TaskEvent); ok {
			if te.Task != TaskAuth {
				t.Errorf("expected task %d, got %d", TaskAuth, te.Task)
			}
		} else {
			t.Error("expected TaskEvent type")
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestSendEventNilChannel(t *testing.T) {
	// Should not panic with nil channel
	SendEvent(nil, TaskEvent{})
}

func TestSendTaskEvent(t *testing.T) {
	ch := make(chan Event, 1)

	SendTaskEvent(ch, TaskScore, StatusRunning,
		WithMessage("processing"),
		WithCount(42),
		WithProgress(0.75),
	)

	select {
	case received := <-ch:
		te, ok := received.(TaskEvent)
		if !ok {
			t.Fatal("expected TaskEvent type")
		}
		if te.Task != TaskScore {
			t.Errorf("expected task %d, got %d", TaskScore, te.Task)
		}
		if te.Message != "processing" {
			t.Errorf("expected message 'processing', got %q", te.Message)
		}
		if te.Count != 42 {
			t.Errorf("expected count 42, got %d", te.Count)
		}
		if te.Progress != 0.75 {
			t.Errorf("expected progress 0.75, got %f", te.Progress)
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestWithError(t *testing.T) {
	ch := make(chan Event, 1)
	testErr := errors.New("test error")

	SendTaskEvent(ch, TaskFetch, StatusError, WithError(testErr))

	select {
	case received := <-ch:
		te, ok := received.(TaskEvent)
		if !ok {
			t.Fatal("expected TaskEvent type")
		}
		if te.Error != testErr {
			t.Errorf("expected error %v, got %v", testErr, te.Error)
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestDetectTUI(t *testing.T) {
	tests := []struct {
		name     string
		terminal bool
		env      map[string]string
		want     bool
	}{
		{"terminal", true, nil, true},
		{"not a terminal", false, nil, false},
		{"github actions", true, map[string]string{"GITHUB_ACTIONS": "true"}, false},
		{"generic ci", true, map[string]string{"CI": "1"}, false},
		{"dumb terminal", true, map[string]string{"TERM": "dumb"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if got := detectTUI(tt.terminal, getenv); got != tt.want {
				t.Errorf("detectTUI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	// Test that StatusIcon returns non-empty strings for all statuses
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}

	for _, status := range statuses {
		icon := StatusIcon(status, ">")
		if icon == "" {
			t.Errorf("StatusIcon returned empty string for status %d", status)
		}
	}
}

func TestScoreTasks(t *testing.T) {
	tests := []struct {
		post bool
		want []TaskID
	}{
		{false, []TaskID{TaskAuth, TaskFetch, TaskCommits, TaskScore}},
		{true, []TaskID{TaskAuth, TaskFetch, TaskCommits, TaskScore, TaskPost}},
	}

	for _, tt := range tests {
		tasks := ScoreTasks(tt.post)
		if len(tasks) != len(tt.want) {
			t.Fatalf("ScoreTasks(%v) has %d tasks, want %d", tt.post, len(tasks), len(tt.want))
		}
		for i, id := range tt.want {
			if tasks[i].ID != id || tasks[i].Status != StatusPending {
				t.Errorf("ScoreTasks(%v)[%d] = %+v", tt.post, i, tasks[i])
			}
		}
	}
}

func TestModelUpdate(t *testing.T) {
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	events := make(chan Event)
	m := NewModel(events, WithTasks(ScoreTasks(true)), WithTitle("octo/cat#7"))
	m.now = func() time.Time { return clock }

	steps := []TaskEvent{
		{Task: TaskAuth, Status: StatusComplete, Message: "alice"},
		{Task: TaskFetch, Status: StatusRunning},
		{Task: TaskFetch, Status: StatusComplete, Count: 12},
		{Task: TaskCommits, Status: StatusRunning, Message: "3/12", Progress: 0.25},
		{Task: TaskPost, Status: StatusError, Error: errors.New("forbidden")},
	}
	for _, e := range steps {
		clock = clock.Add(1500 * time.Millisecond)
		next, _ := m.Update(e)
		m = next.(Model)
	}

	byID := map[TaskID]Task{}
	for _, task := range m.tasks {
		byID[task.ID] = task
	}
	if byID[TaskFetch].Count != 12 || byID[TaskFetch].Status != StatusComplete {
		t.Errorf("fetch task = %+v", byID[TaskFetch])
	}
	if byID[TaskFetch].elapsed != 1500*time.Millisecond {
		t.Errorf("fetch elapsed = %v, want 1.5s", byID[TaskFetch].elapsed)
	}
	if byID[TaskCommits].Progress != 0.25 || byID[TaskCommits].Message != "3/12" {
		t.Errorf("commits task = %+v", byID[TaskCommits])
	}
	if byID[TaskPost].Error == nil {
		t.Error("post task should carry its error")
	}

	view := m.View()
	for _, want := range []string{"octo/cat#7", "Authenticated as", "alice", "(12 commits)", "1.5s", "Fetching commit details", "3/12", "forbidden", "Ctrl+C"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	next, _ := m.Update(ResultEvent{Maturity: 4.2, Stale: true})
	m = next.(Model)
	if view := m.View(); !strings.Contains(view, "4.2") || !strings.Contains(view, "(stale)") {
		t.Errorf("view missing result:\n%s", view)
	}

	next, cmd := m.Update(DoneEvent{})
	m = next.(Model)
	if !m.done || cmd == nil {
		t.Error("DoneEvent should finish the model and quit")
	}
	if strings.Contains(m.View(), "Ctrl+C") {
		t.Error("cancel hint should disappear once done")
	}
}

func TestTaskViewSkipped(t *testing.T) {
	task := NewTask(TaskAuth, "Authenticating").WithDoneName("Authenticated as")
	task.apply(TaskEvent{Task: TaskAuth, Status: StatusSkipped}, time.Now())

	view := task.View(">", NewModel(nil).progress)
	if !strings.Contains(view, "skipped") || strings.Contains(view, "Authenticated as") {
		t.Errorf("skipped view = %q", view)
	}
}

func TestModelIgnoresUnknownTask(t *testing.T) {
	m := NewModel(make(chan Event))
	next, _ := m.Update(TaskEvent{Task: TaskPost, Status: StatusComplete})
	m = next.(Model)
	for _, task := range m.tasks {
		if task.Status != StatusPending {
			t.Errorf("task %d changed to %d", task.ID, task.Status)
		}
	}
}

func TestModelRateLimit(t *testing.T) {
	m := NewModel(make(chan Event))
	next, _ := m.Update(RateLimitEvent{Limited: true, ResetAt: time.Now().Add(time.Hour)})
	m = next.(Model)

	if !strings.Contains(m.View(), "Rate limited") {
		t.Errorf("view should warn about the rate limit:\n%s", m.View())
	}
}
