// Package service collects the GitHub data of one pull request into a snapshot.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/prscore/internal/ghclient"
	"github.com/spiffcs/prscore/internal/log"
	"github.com/spiffcs/prscore/internal/model"
	"github.com/spiffcs/prscore/internal/prref"
)

// DefaultWorkers bounds concurrent per-commit detail fetches.
const DefaultWorkers = 8

// ProgressFunc is called as fetches complete.
type ProgressFunc func(completed, total int)

// Collector fetches everything a scoring run needs in parallel. The first
// error cancels the remaining fetches and no snapshot is returned.
type Collector struct {
	src     ghclient.Source
	workers int

	// OnSource is called as each of the top-level sources completes.
	OnSource ProgressFunc
	// OnCommit is called as per-commit details complete.
	OnCommit ProgressFunc

	now func() time.Time
}

// NewCollector creates a Collector. workers below 1 selects DefaultWorkers.
func NewCollector(src ghclient.Source, workers int) *Collector {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Collector{
		src:     src,
		workers: workers,
		now:     time.Now,
	}
}

// sourceCount is the number of top-level fetches in Collect.
const sourceCount = 4

// Collect fetches the pull request, its commits with per-commit stats, its
// reviews and its review threads.
func (c *Collector) Collect(ctx context.Context, ref prref.Ref) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	var mu sync.Mutex

	var completed int32
	c.report(c.OnSource, 0, sourceCount)
	done := func() {
		c.report(c.OnSource, int(atomic.AddInt32(&completed, 1)), sourceCount)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer done()
		cr, counts, err := c.src.PullRequest(gctx, ref)
		if err != nil {
			return fmt.Errorf("pull request: %w", err)
		}
		mu.Lock()
		snap.ChangeRequest = cr
		snap.Comments = counts
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		defer done()
		commits, err := c.commits(gctx, ref)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Commits = commits
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		defer done()
		reviews, err := c.src.Reviews(gctx, ref)
		if err != nil {
			return fmt.Errorf("reviews: %w", err)
		}
		mu.Lock()
		snap.Reviews = reviews
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		defer done()
		threads, err := c.src.ReviewThreads(gctx, ref)
		if err != nil {
			return fmt.Errorf("review threads: %w", err)
		}
		mu.Lock()
		snap.Threads = threads
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.FetchedAt = c.now()
	log.Info("collected pull request data",
		"ref", ref.String(),
		"commits", len(snap.Commits),
		"reviews", len(snap.Reviews),
		"threads", len(snap.Threads))
	return snap, nil
}

// commits lists the commits and fills in their stats with a bounded
// scatter-gather. Each worker writes only its own slot.
func (c *Collector) commits(ctx context.Context, ref prref.Ref) ([]model.Commit, error) {
	commits, err := c.src.CommitList(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("commits: %w", err)
	}

	total := len(commits)
	var completed int32
	c.report(c.OnCommit, 0, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := range commits {
		g.Go(func() error {
			files, lines, err := c.src.CommitStats(gctx, ref, commits[i].SHA)
			if err != nil {
				return fmt.Errorf("commit details: %w", err)
			}
			commits[i].FilesTouched = files
			commits[i].LineDelta = lines
			c.report(c.OnCommit, int(atomic.AddInt32(&completed, 1)), total)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return commits, nil
}

func (c *Collector) report(fn ProgressFunc, completed, total int) {
	if fn != nil {
		fn(completed, total)
	}
}
