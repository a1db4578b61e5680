// Package ghclient provides GitHub API client functionality.
package ghclient

import (
	"context"

	"github.com/spiffcs/prscore/internal/model"
	"github.com/spiffcs/prscore/internal/prref"
)

// Source defines the raw GitHub reads a scoring run needs.
type Source interface {
	PullRequest(ctx context.Context, ref prref.Ref) (model.ChangeRequest, model.CommentCounts, error)
	CommitList(ctx context.Context, ref prref.Ref) ([]model.Commit, error)
	CommitStats(ctx context.Context, ref prref.Ref, sha string) (files, lines int, err error)
	Reviews(ctx context.Context, ref prref.Ref) ([]model.Review, error)
	ReviewThreads(ctx context.Context, ref prref.Ref) ([]bool, error)
}

// Commenter posts a report back to the pull request, replacing the previous
// report comment identified by marker.
type Commenter interface {
	UpsertComment(ctx context.Context, ref prref.Ref, marker, body string) (url string, updated bool, err error)
}

// Ensure Client implements the interfaces.
var (
	_ Source    = (*Client)(nil)
	_ Commenter = (*Client)(nil)
)
