package model

import (
	"regexp"
	"strings"
)

// CommitType is the conventional-commit type parsed from a commit message prefix.
type CommitType string

const (
	CommitFeat     CommitType = "feat"
	CommitFix      CommitType = "fix"
	CommitChore    CommitType = "chore"
	CommitDocs     CommitType = "docs"
	CommitStyle    CommitType = "style"
	CommitRefactor CommitType = "refactor"
	CommitTest     CommitType = "test"
	CommitPerf     CommitType = "perf"
	CommitBuild    CommitType = "build"
	CommitCI       CommitType = "ci"
	CommitNone     CommitType = "none"
)

// AllCommitTypes contains every recognized type except CommitNone.
var AllCommitTypes = []CommitType{
	CommitFeat,
	CommitFix,
	CommitChore,
	CommitDocs,
	CommitStyle,
	CommitRefactor,
	CommitTest,
	CommitPerf,
	CommitBuild,
	CommitCI,
}

// typePrefix matches "type:", "type(scope):" and "type!:" prefixes.
var typePrefix = regexp.MustCompile(`^([a-zA-Z]+)(\([^)]*\))?!?:`)

// Commit is a single commit on the change request with its detail stats.
type Commit struct {
	SHA          string `json:"sha"`
	Message      string `json:"message"` // first line only
	FilesTouched int    `json:"filesTouched"`
	LineDelta    int    `json:"lineDelta"`
}

// Type classifies the commit from its message prefix.
func (c Commit) Type() CommitType {
	return ClassifyMessage(c.Message)
}

// ExcludedFromAverages reports whether the commit's type is left out of the
// per-commit file and line averages.
func (c Commit) ExcludedFromAverages() bool {
	switch c.Type() {
	case CommitChore, CommitStyle, CommitDocs:
		return true
	}
	return false
}

// ClassifyMessage returns the commit type for a message, or CommitNone.
func ClassifyMessage(message string) CommitType {
	m := typePrefix.FindStringSubmatch(strings.TrimSpace(message))
	if m == nil {
		return CommitNone
	}
	candidate := CommitType(strings.ToLower(m[1]))
	for _, t := range AllCommitTypes {
		if t == candidate {
			return t
		}
	}
	return CommitNone
}

// FirstLine returns the first line of a commit message.
func FirstLine(message string) string {
	if i := strings.IndexAny(message, "\r\n"); i >= 0 {
		return message[:i]
	}
	return message
}
