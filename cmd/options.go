package cmd

import "github.com/spiffcs/prscore/internal/ghclient"

// Options holds the command-line options of a scoring run. Scoring options
// left unset on the command line fall back to the merged config files.
type Options struct {
	Format    string
	Repo      string
	PR        string
	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Scoring overrides, applied only when the flag was given
	Legacy             bool
	Functional         bool
	PostComment        bool
	Timezone           string
	WorkHours          string
	MorningCutoff      string
	CommitRegex        string
	BranchRegex        string
	DeclinedWindowDays int
	StaleAfter         string
	Workers            int

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file

	clientOptions []ghclient.Option
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, markdown, json, prometheus).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithClientOptions passes options through to the GitHub client.
func WithClientOptions(opts ...ghclient.Option) Option {
	return func(o *Options) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithCPUProfile sets the CPU profile output file.
func WithCPUProfile(path string) Option {
	return func(o *Options) {
		o.CPUProfile = path
	}
}

// WithMemProfile sets the memory profile output file.
func WithMemProfile(path string) Option {
	return func(o *Options) {
		o.MemProfile = path
	}
}

// WithTrace sets the execution trace output file.
func WithTrace(path string) Option {
	return func(o *Options) {
		o.Trace = path
	}
}
