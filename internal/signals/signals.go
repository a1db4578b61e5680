// Package signals derives the primitive review metrics of a change request from
// its fetched collaborator data.
package signals

import (
	"regexp"
	"strings"
	"time"

	"github.com/spiffcs/prscore/internal/bizhours"
	"github.com/spiffcs/prscore/internal/model"
)

// Signals holds every primitive metric the aggregator scores.
type Signals struct {
	CommitCount       int     `json:"commitCount"`
	ConformingCommits int     `json:"conformingCommits"`
	ConformanceRatio  float64 `json:"conformanceRatio"`

	// Averages cover only commits whose type is not chore, style or docs.
	EligibleCommits   int     `json:"eligibleCommits"`
	AvgFilesPerCommit float64 `json:"avgFilesPerCommit"`
	AvgLinesPerCommit float64 `json:"avgLinesPerCommit"`

	Approvals       int      `json:"approvals"`
	Approvers       []string `json:"approvers"`
	BranchName      string   `json:"branchName"`
	BranchConforms  bool     `json:"branchConforms"`
	LinesModified   int      `json:"linesModified"`
	CommentsTotal   int      `json:"commentsTotal"`
	ResolvedThreads int      `json:"resolvedThreads"`
	OpenThreads     int      `json:"openThreads"`
	Observations    int      `json:"observations"`
	Declined        bool     `json:"declined"`

	// CloseHours runs from creation to close, or to the extraction time while
	// the change request is still open.
	CloseHours   float64       `json:"closeHours"`
	CloseMinutes int           `json:"closeMinutes"`
	StillOpen    bool          `json:"stillOpen"`
	Age          time.Duration `json:"age"`
}

// Extractor derives Signals using the configured message and branch patterns.
type Extractor struct {
	CommitPattern *regexp.Regexp
	BranchPattern *regexp.Regexp
	Clock         *bizhours.Clock
}

// NewExtractor creates an Extractor.
func NewExtractor(commitPattern, branchPattern *regexp.Regexp, clock *bizhours.Clock) *Extractor {
	return &Extractor{
		CommitPattern: commitPattern,
		BranchPattern: branchPattern,
		Clock:         clock,
	}
}

// Extract derives Signals from a snapshot. now is used as the close instant for
// change requests that are still open and as the reference for age.
func (e *Extractor) Extract(snap *model.Snapshot, now time.Time) Signals {
	cr := snap.ChangeRequest
	s := Signals{
		CommitCount:   len(snap.Commits),
		BranchName:    cr.HeadBranch,
		LinesModified: cr.Additions + cr.Deletions,
		CommentsTotal: snap.Comments.Total(),
		Declined:      cr.Declined(),
		StillOpen:     cr.IsOpen(),
	}

	e.commitMetrics(snap.Commits, &s)
	s.Approvers = Approvers(snap.Reviews)
	s.Approvals = len(s.Approvers)
	s.BranchConforms = e.BranchPattern != nil && e.BranchPattern.MatchString(cr.HeadBranch)

	for _, resolved := range snap.Threads {
		if resolved {
			s.ResolvedThreads++
		} else {
			s.OpenThreads++
		}
	}
	s.Observations = s.CommentsTotal + s.ResolvedThreads

	end := now
	if cr.ClosedAt != nil {
		end = *cr.ClosedAt
	}
	if e.Clock != nil {
		s.CloseMinutes = e.Clock.MinutesBetween(cr.CreatedAt, end)
		s.CloseHours = float64(s.CloseMinutes) / 60
	}
	if age := now.Sub(cr.CreatedAt); age > 0 {
		s.Age = age
	}

	return s
}

func (e *Extractor) commitMetrics(commits []model.Commit, s *Signals) {
	var files, lines int
	for _, c := range commits {
		msg := model.FirstLine(c.Message)
		if e.CommitPattern != nil && e.CommitPattern.MatchString(msg) {
			s.ConformingCommits++
		}
		if c.ExcludedFromAverages() {
			continue
		}
		s.EligibleCommits++
		files += c.FilesTouched
		lines += c.LineDelta
	}

	if s.CommitCount > 0 {
		s.ConformanceRatio = float64(s.ConformingCommits) / float64(s.CommitCount)
	}
	if s.EligibleCommits > 0 {
		s.AvgFilesPerCommit = float64(files) / float64(s.EligibleCommits)
		s.AvgLinesPerCommit = float64(lines) / float64(s.EligibleCommits)
	}
}

// Approvers returns the distinct authors of approved reviews in first-seen order.
func Approvers(reviews []model.Review) []string {
	seen := make(map[string]bool, len(reviews))
	var approvers []string
	for _, r := range reviews {
		if !strings.EqualFold(r.State, model.ReviewApproved) || seen[r.Author] {
			continue
		}
		seen[r.Author] = true
		approvers = append(approvers, r.Author)
	}
	return approvers
}
