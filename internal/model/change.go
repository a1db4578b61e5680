// Package model contains domain types for prscore.
// These types are independent of any external GitHub library.
package model

import "time"

// State is the lifecycle state of a change request as reported by GitHub.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ChangeRequest is an immutable snapshot of a pull request, fetched once per run.
type ChangeRequest struct {
	Number     int        `json:"number"`
	Repository string     `json:"repository"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	HTMLURL    string     `json:"htmlUrl"`
	State      State      `json:"state"`
	Merged     bool       `json:"merged"`
	CreatedAt  time.Time  `json:"createdAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
	MergedAt   *time.Time `json:"mergedAt,omitempty"`
	HeadBranch string     `json:"headBranch"`
	Additions  int        `json:"additions"`
	Deletions  int        `json:"deletions"`
}

// IsOpen reports whether the change request is still open.
func (c ChangeRequest) IsOpen() bool {
	return c.State == StateOpen
}

// Declined reports whether the change request was closed without being merged.
func (c ChangeRequest) Declined() bool {
	return c.State == StateClosed && !c.Merged
}

// Review is a single submitted review.
type Review struct {
	Author string `json:"author"`
	State  string `json:"state"`
}

// ReviewApproved is the review state that counts toward approvals.
const ReviewApproved = "APPROVED"

// CommentCounts holds the issue-level and review-level comment tallies.
type CommentCounts struct {
	Issue  int `json:"issue"`
	Review int `json:"review"`
}

// Total returns the combined comment count.
func (c CommentCounts) Total() int {
	return c.Issue + c.Review
}

// Snapshot bundles every input of a single scoring run.
type Snapshot struct {
	ChangeRequest ChangeRequest `json:"changeRequest"`
	Commits       []Commit      `json:"commits"`
	Reviews       []Review      `json:"reviews"`
	Comments      CommentCounts `json:"comments"`
	// Threads holds one entry per review thread: true when resolved.
	Threads   []bool    `json:"threads"`
	FetchedAt time.Time `json:"fetchedAt"`
}
