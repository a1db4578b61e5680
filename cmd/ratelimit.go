package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/spiffcs/prscore/config"
	"github.com/spiffcs/prscore/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long: `Display current GitHub API rate limit status including remaining quota and reset time.
A scoring run needs roughly one core request per commit plus a handful more.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus(opts))
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long:  `Display the current GitHub API rate limit status for the core and GraphQL APIs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runRateLimitStatus(ctx, cmd.OutOrStdout(), opts)
		},
	}
}

func runRateLimitStatus(ctx context.Context, w io.Writer, opts *Options) error {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return &config.ConfigurationError{Field: "GITHUB_TOKEN", Reason: "not set"}
	}

	client, err := ghclient.NewClient(ctx, token, clientOptions(opts, os.Getenv)...)
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return fmt.Errorf("failed to get rate limits: %w", err)
	}

	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintln(w)
	printRate(w, "Core API:", limits.Core)
	printRate(w, "GraphQL:", limits.GraphQL)
	return nil
}

func printRate(w io.Writer, label string, r *gh.Rate) {
	if r == nil {
		return
	}
	resetIn := time.Until(r.Reset.Time).Round(time.Second)
	if resetIn < 0 {
		resetIn = 0
	}
	fmt.Fprintf(w, "%-11s %d/%d remaining (resets in %s)\n", label, r.Remaining, r.Limit, resetIn)
}
