package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spiffcs/prscore/config"
	"github.com/spiffcs/prscore/internal/constants"
	"github.com/spiffcs/prscore/internal/duration"
	"github.com/spiffcs/prscore/internal/ghclient"
	"github.com/spiffcs/prscore/internal/log"
	"github.com/spiffcs/prscore/internal/maturity"
	"github.com/spiffcs/prscore/internal/output"
	"github.com/spiffcs/prscore/internal/prref"
	"github.com/spiffcs/prscore/internal/service"
	"github.com/spiffcs/prscore/internal/signals"
	"github.com/spiffcs/prscore/internal/tui"
)

// scoreRuntime bundles TUI-related state that's threaded through a run.
type scoreRuntime struct {
	useTUI  bool
	post    bool
	title   string
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *scoreRuntime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, tui.WithTasks(tui.ScoreTasks(rt.post)), tui.WithTitle(rt.title))
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *scoreRuntime) close() error {
	if rt.events == nil {
		return nil
	}
	close(rt.events)
	rt.events = nil
	return <-rt.tuiDone
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *scoreRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// fail marks task as failed and surfaces a rate limit if that was the cause.
func (rt *scoreRuntime) fail(task tui.TaskID, err error) {
	rt.sendEvent(task, tui.StatusError, tui.WithError(err))
	if errors.Is(err, ghclient.ErrRateLimited) && rt.events != nil {
		_, _, resetAt, limited := ghclient.GetRateLimitStatus()
		tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: limited, ResetAt: resetAt})
	}
}

// NewCmdScore creates the score command.
func NewCmdScore(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [pull request]",
		Short: "Score a pull request (same as root prscore)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args, opts)
		},
	}

	addScoreFlags(cmd, opts)
	return cmd
}

// addScoreFlags adds the score-specific flags to a command.
func addScoreFlags(cmd *cobra.Command, opts *Options) {
	f := cmd.Flags()
	f.StringVarP(&opts.Format, "output", "o", "", "Output format (table, markdown, json, prometheus)")
	f.StringVar(&opts.Repo, "repo", "", "Repository as owner/name")
	f.StringVar(&opts.PR, "pr", "", "Pull request number")
	f.CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	f.BoolVar(&opts.Legacy, "legacy", false, "Use the relaxed size thresholds for legacy repositories")
	f.BoolVar(&opts.Functional, "functional", true, "Treat the change as functional (false scores it at maximum complexity)")
	f.BoolVar(&opts.PostComment, "post-comment", false, "Post the markdown report as a pull request comment")
	f.StringVar(&opts.Timezone, "timezone", config.DefaultTimezone, "IANA time zone of the business-hours clock")
	f.StringVar(&opts.WorkHours, "work-hours", config.DefaultWorkHours, "Work window as HH:MM-HH:MM")
	f.StringVar(&opts.MorningCutoff, "morning-cutoff", config.DefaultMorningCutoff, "Morning cutoff as HH:MM")
	f.StringVar(&opts.CommitRegex, "commit-regex", config.DefaultCommitRegex, "Pattern a conforming commit message matches")
	f.StringVar(&opts.BranchRegex, "branch-regex", config.DefaultBranchRegex, "Pattern a conforming branch name matches")
	f.IntVar(&opts.DeclinedWindowDays, "declined-window-days", 0, "Look-back window for declined submissions (reserved)")
	f.StringVar(&opts.StaleAfter, "stale-after", config.DefaultStaleAfter, "Open age after which the staleness penalty applies (e.g. 7d, 2w)")
	f.IntVarP(&opts.Workers, "workers", "w", config.DefaultWorkers, "Concurrent per-commit detail fetches")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	f.Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
	f.Lookup("tui").NoOptDefVal = "true"

	// Profiling flags
	f.StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	f.StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	f.StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
	_ = f.MarkHidden("cpuprofile")
	_ = f.MarkHidden("memprofile")
	_ = f.MarkHidden("trace")
}

// runPlan is everything resolved before the first API call.
type runPlan struct {
	ref      prref.Ref
	token    string
	settings config.Settings
	format   output.Format
}

func runScore(cmd *cobra.Command, args []string, opts *Options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer func() { _ = profiler.Stop() }()

	useTUI := shouldUseTUI(opts)
	// Suppress logs during TUI to avoid interleaving with the display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, cmd.ErrOrStderr())
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	plan, err := resolvePlan(cmd.Flags(), args, opts, cfg, os.Getenv)
	if err != nil {
		return err
	}
	log.Info("scoring pull request", "ref", plan.ref.String(), "format", plan.format)

	rt := &scoreRuntime{useTUI: useTUI, post: plan.settings.PostComment, title: plan.ref.String()}
	rt.startTUI()

	report, commentURL, err := score(ctx, rt, plan, opts)
	if tuiErr := rt.close(); tuiErr != nil && err == nil {
		err = tuiErr
	}
	if err != nil {
		return err
	}

	if err := output.NewFormatter(plan.format).Format(report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if commentURL != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Posted report: %s\n", commentURL)
	}
	return nil
}

// resolvePlan merges config, flags and environment into a runPlan.
func resolvePlan(flags *pflag.FlagSet, args []string, opts *Options, cfg *config.Config, getenv func(string) string) (*runPlan, error) {
	settings, err := cfg.GetSettings()
	if err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(flags, opts, &settings); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	name := opts.Format
	if name == "" {
		name = cfg.DefaultFormat
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "output", Reason: err.Error()}
	}

	ref, err := resolveRef(args, opts, getenv)
	if err != nil {
		return nil, err
	}

	token := getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, &config.ConfigurationError{Field: "GITHUB_TOKEN", Reason: "not set"}
	}

	return &runPlan{ref: ref, token: token, settings: settings, format: format}, nil
}

// applyFlagOverrides copies explicitly given flags over the config settings.
func applyFlagOverrides(flags *pflag.FlagSet, opts *Options, s *config.Settings) error {
	if flags == nil {
		return nil
	}
	set := flags.Changed

	if set("legacy") {
		s.LegacyRepo = opts.Legacy
	}
	if set("functional") {
		s.Functional = opts.Functional
	}
	if set("post-comment") {
		s.PostComment = opts.PostComment
	}
	if set("timezone") {
		s.Timezone = opts.Timezone
	}
	if set("work-hours") {
		s.WorkHours = opts.WorkHours
	}
	if set("morning-cutoff") {
		s.MorningCutoff = opts.MorningCutoff
	}
	if set("commit-regex") {
		s.CommitRegex = opts.CommitRegex
	}
	if set("branch-regex") {
		s.BranchRegex = opts.BranchRegex
	}
	if set("declined-window-days") {
		s.DeclinedWindowDays = opts.DeclinedWindowDays
	}
	if set("workers") {
		s.Workers = opts.Workers
	}
	if set("stale-after") {
		d, err := parseStaleAfter(opts.StaleAfter)
		if err != nil {
			return err
		}
		s.StaleAfter = d
	}
	return nil
}

func parseStaleAfter(s string) (time.Duration, error) {
	d, err := duration.Parse(s)
	if err != nil {
		return 0, &config.ConfigurationError{Field: "stale-after", Reason: err.Error()}
	}
	return d, nil
}

// resolveRef finds the pull request to score: the positional argument, then
// --repo/--pr, then the GitHub Actions environment.
func resolveRef(args []string, opts *Options, getenv func(string) string) (prref.Ref, error) {
	if len(args) > 0 {
		if opts.Repo != "" || opts.PR != "" {
			return prref.Ref{}, &config.ConfigurationError{Field: "pull request", Reason: "give either an argument or --repo/--pr, not both"}
		}
		ref, err := prref.Parse(args[0])
		if err != nil {
			return prref.Ref{}, &config.ConfigurationError{Field: "pull request", Reason: err.Error()}
		}
		return ref, nil
	}

	repo, number := opts.Repo, opts.PR
	if repo == "" {
		repo = getenv("GITHUB_REPOSITORY")
	}
	if number == "" {
		number = getenv("PR_NUMBER")
	}
	if repo == "" || number == "" {
		return prref.Ref{}, &config.ConfigurationError{
			Field:  "pull request",
			Reason: "not given; pass owner/repo#N, --repo and --pr, or set GITHUB_REPOSITORY and PR_NUMBER",
		}
	}

	ref, err := prref.FromParts(repo, number)
	if err != nil {
		return prref.Ref{}, &config.ConfigurationError{Field: "pull request", Reason: err.Error()}
	}
	return ref, nil
}

// clientOptions points the client at a GitHub Enterprise server when the
// Actions environment names one.
func clientOptions(opts *Options, getenv func(string) string) []ghclient.Option {
	var out []ghclient.Option
	if api := getenv("GITHUB_API_URL"); api != "" && !strings.Contains(api, "api.github.com") {
		out = append(out, ghclient.WithBaseURL(api))
	}
	if gql := getenv("GITHUB_GRAPHQL_URL"); gql != "" && !strings.Contains(gql, "api.github.com") {
		out = append(out, ghclient.WithGraphQLEndpoint(gql))
	}
	return append(out, opts.clientOptions...)
}

// score runs fetch, scoring and the optional comment post.
func score(ctx context.Context, rt *scoreRuntime, plan *runPlan, opts *Options) (*maturity.Report, string, error) {
	s := plan.settings

	clock, err := s.Clock()
	if err != nil {
		return nil, "", err
	}
	commitRe, branchRe, err := s.Patterns()
	if err != nil {
		return nil, "", err
	}

	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)
	client, err := ghclient.NewClient(ctx, plan.token, clientOptions(opts, os.Getenv)...)
	if err != nil {
		rt.fail(tui.TaskAuth, err)
		return nil, "", err
	}
	// Installation tokens cannot read /user, so a failure here is not fatal.
	if user, err := client.AuthenticatedUser(ctx); err != nil {
		log.Debug("could not resolve authenticated user", "error", err)
		rt.sendEvent(tui.TaskAuth, tui.StatusSkipped)
	} else {
		rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(user))
	}

	collector := service.NewCollector(client, s.Workers)
	collector.OnSource = sourceProgress(rt)
	collector.OnCommit = commitProgress(rt)

	start := time.Now()
	rt.sendEvent(tui.TaskFetch, tui.StatusRunning)
	snap, err := collector.Collect(ctx, plan.ref)
	if !rt.useTUI {
		log.ProgressClear()
	}
	if err != nil {
		rt.fail(tui.TaskFetch, err)
		return nil, "", err
	}
	log.Timed(start, "collected pull request", "ref", plan.ref.String(), "commits", len(snap.Commits))
	rt.sendEvent(tui.TaskFetch, tui.StatusComplete, tui.WithCount(len(snap.Commits)))
	rt.sendEvent(tui.TaskCommits, tui.StatusComplete, tui.WithMessage(fmt.Sprintf("%d/%d", len(snap.Commits), len(snap.Commits))))

	rt.sendEvent(tui.TaskScore, tui.StatusRunning)
	engine := maturity.NewEngine(maturity.Settings{
		Legacy:             s.LegacyRepo,
		Functional:         s.Functional,
		StaleAfter:         s.StaleAfter,
		DeclinedWindowDays: s.DeclinedWindowDays,
	}, signals.NewExtractor(commitRe, branchRe, clock))
	report := engine.Score(snap)
	log.Info("scored pull request", "maturity", maturity.Round1(report.Maturity), "complexity", report.Complexity, "stale", report.Stale())
	rt.sendEvent(tui.TaskScore, tui.StatusComplete, tui.WithMessage(fmt.Sprintf("complexity %d/5", report.Complexity)))
	if rt.events != nil {
		tui.SendEvent(rt.events, tui.ResultEvent{Maturity: maturity.Round1(report.Maturity), Stale: report.Stale()})
	}

	if !s.PostComment {
		return report, "", nil
	}

	rt.sendEvent(tui.TaskPost, tui.StatusRunning)
	url, err := postReport(ctx, client, plan.ref, report)
	if err != nil {
		rt.fail(tui.TaskPost, err)
		return nil, "", err
	}
	rt.sendEvent(tui.TaskPost, tui.StatusComplete)
	return report, url, nil
}

// postReport renders the markdown report and posts it on the pull request,
// replacing the report of an earlier run.
func postReport(ctx context.Context, c ghclient.Commenter, ref prref.Ref, report *maturity.Report) (string, error) {
	var body bytes.Buffer
	if err := (&output.MarkdownFormatter{}).Format(report, &body); err != nil {
		return "", fmt.Errorf("failed to render comment: %w", err)
	}
	url, updated, err := c.UpsertComment(ctx, ref, output.CommentMarker, body.String())
	if err != nil {
		return "", err
	}
	log.Info("posted report", "url", url, "updated", updated)
	return url, nil
}

// sourceProgress reports the top-level fetches.
func sourceProgress(rt *scoreRuntime) service.ProgressFunc {
	return func(completed, total int) {
		if total == 0 {
			return
		}
		rt.sendEvent(tui.TaskFetch, tui.StatusRunning,
			tui.WithProgress(float64(completed)/float64(total)),
			tui.WithMessage(fmt.Sprintf("%d/%d sources", completed, total)))
	}
}

// commitProgress reports per-commit detail fetches, throttled for the TUI
// and for log lines.
func commitProgress(rt *scoreRuntime) service.ProgressFunc {
	var lastTUIUpdate int64
	var lastLogPercent int64 = -1
	tuiUpdateInterval := int64(constants.TUIUpdateInterval)

	return func(completed, total int) {
		if total == 0 {
			return
		}
		if completed == 0 {
			rt.sendEvent(tui.TaskCommits, tui.StatusRunning, tui.WithCount(total))
			return
		}

		if rt.useTUI {
			now := time.Now().UnixNano()
			last := atomic.LoadInt64(&lastTUIUpdate)
			if now-last >= tuiUpdateInterval || completed == total {
				if atomic.CompareAndSwapInt64(&lastTUIUpdate, last, now) {
					rt.sendEvent(tui.TaskCommits, tui.StatusRunning,
						tui.WithProgress(float64(completed)/float64(total)),
						tui.WithMessage(fmt.Sprintf("%d/%d", completed, total)))
				}
			}
			return
		}

		percent := int64(completed * 100 / total)
		if percent != atomic.LoadInt64(&lastLogPercent) && percent%constants.LogThrottlePercent == 0 {
			atomic.StoreInt64(&lastLogPercent, percent)
			log.Progress("Fetching commit details: %d/%d (%d%%)...", completed, total, percent)
		}
	}
}
