package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New(options ...Option) *cobra.Command {
	opts := NewOptions(options...)

	rootCmd := &cobra.Command{
		Use:   "prscore [pull request]",
		Short: "Score the maturity of a GitHub pull request",
		Long: `Fetches a pull request with its commits, reviews and review threads,
scores it against fixed thresholds and reports an overall maturity between
1 and 5.

The pull request can be given as owner/repo#N, a pull request URL, or with
--repo and --pr. Inside GitHub Actions it defaults to GITHUB_REPOSITORY and
PR_NUMBER.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Score flags live on the root too so `prscore` and `prscore score` work identically
	addScoreFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdScore(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit(opts))

	return rootCmd
}
