package model

import "testing"

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		message string
		want    CommitType
	}{
		{"feat: add business clock", CommitFeat},
		{"fix(api): handle nil closedAt", CommitFix},
		{"chore!: drop go1.20", CommitChore},
		{"Docs: update readme", CommitDocs},
		{"style: gofmt", CommitStyle},
		{"refactor(scorer): split tables", CommitRefactor},
		{"ci: cache modules", CommitCI},
		{"wip: something", CommitNone},
		{"Merge branch 'main'", CommitNone},
		{"", CommitNone},
		{"feat add thing", CommitNone},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := ClassifyMessage(tt.message); got != tt.want {
				t.Errorf("ClassifyMessage(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestExcludedFromAverages(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"chore: bump deps", true},
		{"style: lint", true},
		{"docs: typo", true},
		{"feat: thing", false},
		{"random message", false},
	}

	for _, tt := range tests {
		c := Commit{Message: tt.message}
		if got := c.ExcludedFromAverages(); got != tt.want {
			t.Errorf("Commit{%q}.ExcludedFromAverages() = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("feat: x\n\nbody"); got != "feat: x" {
		t.Errorf("FirstLine() = %q", got)
	}
	if got := FirstLine("fix: y\r\nbody"); got != "fix: y" {
		t.Errorf("FirstLine() = %q", got)
	}
	if got := FirstLine("single"); got != "single" {
		t.Errorf("FirstLine() = %q", got)
	}
}

func TestChangeRequestState(t *testing.T) {
	open := ChangeRequest{State: StateOpen}
	if !open.IsOpen() || open.Declined() {
		t.Error("open change request misclassified")
	}
	merged := ChangeRequest{State: StateClosed, Merged: true}
	if merged.IsOpen() || merged.Declined() {
		t.Error("merged change request misclassified")
	}
	declined := ChangeRequest{State: StateClosed}
	if !declined.Declined() {
		t.Error("closed without merge should be declined")
	}
}
