package ghclient

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/prscore/internal/constants"
	"github.com/spiffcs/prscore/internal/log"
	"github.com/spiffcs/prscore/internal/model"
	"github.com/spiffcs/prscore/internal/prref"
)

// PullRequest fetches the pull request summary and its comment tallies.
func (c *Client) PullRequest(ctx context.Context, ref prref.Ref) (model.ChangeRequest, model.CommentCounts, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return model.ChangeRequest{}, model.CommentCounts{}, wrapFetch(fmt.Sprintf("get pull request %s", ref), err)
	}
	if pr.CreatedAt == nil {
		return model.ChangeRequest{}, model.CommentCounts{}, &UpstreamFetchError{
			Op:  fmt.Sprintf("get pull request %s", ref),
			Err: fmt.Errorf("response has no created_at"),
		}
	}

	cr := model.ChangeRequest{
		Number:     pr.GetNumber(),
		Repository: ref.FullName(),
		Title:      pr.GetTitle(),
		Author:     pr.GetUser().GetLogin(),
		HTMLURL:    pr.GetHTMLURL(),
		State:      model.State(pr.GetState()),
		Merged:     pr.GetMerged() || pr.MergedAt != nil,
		CreatedAt:  pr.GetCreatedAt().Time,
		HeadBranch: pr.GetHead().GetRef(),
		Additions:  pr.GetAdditions(),
		Deletions:  pr.GetDeletions(),
	}
	if pr.ClosedAt != nil {
		t := pr.ClosedAt.Time
		cr.ClosedAt = &t
	}
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		cr.MergedAt = &t
	}

	counts := model.CommentCounts{
		Issue:  pr.GetComments(),
		Review: pr.GetReviewComments(),
	}

	log.Debug("fetched pull request", "ref", ref.String(), "state", cr.State, "merged", cr.Merged)
	return cr, counts, nil
}

// CommitList fetches every commit of the pull request in order. File and line
// stats are not part of the list response; see CommitStats.
func (c *Client) CommitList(ctx context.Context, ref prref.Ref) ([]model.Commit, error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	var commits []model.Commit
	for {
		page, resp, err := c.client.PullRequests.ListCommits(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, wrapFetch(fmt.Sprintf("list commits of %s", ref), err)
		}

		for _, rc := range page {
			commits = append(commits, model.Commit{
				SHA:     rc.GetSHA(),
				Message: model.FirstLine(rc.GetCommit().GetMessage()),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("listed commits", "ref", ref.String(), "count", len(commits))
	return commits, nil
}

// CommitStats fetches the number of files touched and the total line delta of
// a single commit. GitHub pages the file list, so every page is counted; the
// stats block covers the whole commit and is read from the first page.
func (c *Client) CommitStats(ctx context.Context, ref prref.Ref, sha string) (files, lines int, err error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	for first := true; ; first = false {
		rc, resp, err := c.client.Repositories.GetCommit(ctx, ref.Owner, ref.Repo, sha, opts)
		if err != nil {
			return 0, 0, wrapFetch(fmt.Sprintf("get commit %s", shortSHA(sha)), err)
		}

		files += len(rc.Files)
		if first {
			lines = rc.GetStats().GetTotal()
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, lines, nil
}

// Reviews fetches every submitted review of the pull request.
func (c *Client) Reviews(ctx context.Context, ref prref.Ref) ([]model.Review, error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	var reviews []model.Review
	for {
		page, resp, err := c.client.PullRequests.ListReviews(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, wrapFetch(fmt.Sprintf("list reviews of %s", ref), err)
		}

		for _, r := range page {
			reviews = append(reviews, model.Review{
				Author: r.GetUser().GetLogin(),
				State:  r.GetState(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return reviews, nil
}

// PostComment posts body as an issue comment on the pull request and returns
// the comment URL.
func (c *Client) PostComment(ctx context.Context, ref prref.Ref, body string) (string, error) {
	comment, _, err := c.client.Issues.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, &gh.IssueComment{
		Body: gh.String(body),
	})
	if err != nil {
		return "", wrapFetch(fmt.Sprintf("post comment on %s", ref), err)
	}
	return comment.GetHTMLURL(), nil
}

// UpsertComment edits the first issue comment containing marker, or posts a
// new one when none exists. It returns the comment URL and whether an existing
// comment was updated.
func (c *Client) UpsertComment(ctx context.Context, ref prref.Ref, marker, body string) (string, bool, error) {
	id, err := c.findComment(ctx, ref, marker)
	if err != nil {
		return "", false, err
	}
	if id == 0 {
		url, err := c.PostComment(ctx, ref, body)
		return url, false, err
	}

	comment, _, err := c.client.Issues.EditComment(ctx, ref.Owner, ref.Repo, id, &gh.IssueComment{
		Body: gh.String(body),
	})
	if err != nil {
		return "", false, wrapFetch(fmt.Sprintf("edit comment %d on %s", id, ref), err)
	}
	return comment.GetHTMLURL(), true, nil
}

// findComment returns the ID of the first comment containing marker, or 0.
func (c *Client) findComment(ctx context.Context, ref prref.Ref, marker string) (int64, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: constants.PerPage}}
	for {
		page, resp, err := c.client.Issues.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return 0, wrapFetch(fmt.Sprintf("list comments of %s", ref), err)
		}
		for _, cm := range page {
			if strings.Contains(cm.GetBody(), marker) {
				log.Debug("found previous report comment", "ref", ref.String(), "id", cm.GetID())
				return cm.GetID(), nil
			}
		}
		if resp.NextPage == 0 {
			return 0, nil
		}
		opts.Page = resp.NextPage
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
