package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/prscore/internal/bizhours"
	"github.com/spiffcs/prscore/internal/duration"
)

// Default values for every option.
const (
	DefaultFormat        = "table"
	DefaultTimezone      = "UTC"
	DefaultWorkHours     = "09:00-18:00"
	DefaultMorningCutoff = "07:30"
	DefaultCommitRegex   = `^(feat|fix|chore|docs|style|refactor|test|perf|build|ci)(\([^)]*\))?!?: .+`
	DefaultBranchRegex   = `^(feature|feat|fix|bugfix|hotfix|chore|docs|refactor|test|release)/.+`
	DefaultStaleAfter    = "7d"
	DefaultWorkers       = 8
)

// Config represents the application configuration as stored on disk.
// Unset fields fall back to defaults; pointer fields distinguish "unset" from
// the zero value so that a local file can override a global one.
type Config struct {
	DefaultFormat string `yaml:"default_format,omitempty" json:"default_format,omitempty"`

	LegacyRepo  *bool `yaml:"legacy_repo,omitempty" json:"legacy_repo,omitempty"`
	Functional  *bool `yaml:"functional,omitempty" json:"functional,omitempty"`
	PostComment *bool `yaml:"post_comment,omitempty" json:"post_comment,omitempty"`

	Timezone      string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
	WorkHours     string `yaml:"work_hours,omitempty" json:"work_hours,omitempty"`
	MorningCutoff string `yaml:"morning_cutoff,omitempty" json:"morning_cutoff,omitempty"`

	CommitRegex string `yaml:"commit_regex,omitempty" json:"commit_regex,omitempty"`
	BranchRegex string `yaml:"branch_regex,omitempty" json:"branch_regex,omitempty"`

	DeclinedWindowDays *int   `yaml:"declined_window_days,omitempty" json:"declined_window_days,omitempty"`
	StaleAfter         string `yaml:"stale_after,omitempty" json:"stale_after,omitempty"`
	Workers            *int   `yaml:"workers,omitempty" json:"workers,omitempty"`
}

// Settings is the fully resolved configuration of a run.
type Settings struct {
	LegacyRepo         bool
	Functional         bool
	PostComment        bool
	Timezone           string
	WorkHours          string
	MorningCutoff      string
	CommitRegex        string
	BranchRegex        string
	DeclinedWindowDays int
	StaleAfter         time.Duration
	Workers            int
}

// ConfigurationError reports missing or invalid required input. It is fatal.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Functional:    true,
		Timezone:      DefaultTimezone,
		WorkHours:     DefaultWorkHours,
		MorningCutoff: DefaultMorningCutoff,
		CommitRegex:   DefaultCommitRegex,
		BranchRegex:   DefaultBranchRegex,
		StaleAfter:    7 * 24 * time.Hour,
		Workers:       DefaultWorkers,
	}
}

// GetSettings returns settings with configured values merged over defaults.
func (c *Config) GetSettings() (Settings, error) {
	s := DefaultSettings()

	if c.LegacyRepo != nil {
		s.LegacyRepo = *c.LegacyRepo
	}
	if c.Functional != nil {
		s.Functional = *c.Functional
	}
	if c.PostComment != nil {
		s.PostComment = *c.PostComment
	}
	if c.Timezone != "" {
		s.Timezone = c.Timezone
	}
	if c.WorkHours != "" {
		s.WorkHours = c.WorkHours
	}
	if c.MorningCutoff != "" {
		s.MorningCutoff = c.MorningCutoff
	}
	if c.CommitRegex != "" {
		s.CommitRegex = c.CommitRegex
	}
	if c.BranchRegex != "" {
		s.BranchRegex = c.BranchRegex
	}
	if c.DeclinedWindowDays != nil {
		s.DeclinedWindowDays = *c.DeclinedWindowDays
	}
	if c.Workers != nil {
		s.Workers = *c.Workers
	}
	if c.StaleAfter != "" {
		d, err := duration.Parse(c.StaleAfter)
		if err != nil {
			return s, &ConfigurationError{Field: "stale_after", Reason: err.Error()}
		}
		s.StaleAfter = d
	}

	return s, nil
}

// Validate checks every option that can be malformed.
func (s Settings) Validate() error {
	if _, err := s.Clock(); err != nil {
		return err
	}
	if _, err := compile("commit_regex", s.CommitRegex); err != nil {
		return err
	}
	if _, err := compile("branch_regex", s.BranchRegex); err != nil {
		return err
	}
	if s.DeclinedWindowDays < 0 {
		return &ConfigurationError{Field: "declined_window_days", Reason: "must not be negative"}
	}
	if s.StaleAfter <= 0 {
		return &ConfigurationError{Field: "stale_after", Reason: "must be positive"}
	}
	if s.Workers < 1 {
		return &ConfigurationError{Field: "workers", Reason: "must be at least 1"}
	}
	return nil
}

// Clock builds the business-hours clock from the schedule options.
func (s Settings) Clock() (*bizhours.Clock, error) {
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return nil, &ConfigurationError{Field: "timezone", Reason: err.Error()}
	}
	if _, _, err := bizhours.ParseWindow(s.WorkHours); err != nil {
		return nil, &ConfigurationError{Field: "work_hours", Reason: err.Error()}
	}
	if _, err := bizhours.ParseClockTime(s.MorningCutoff); err != nil {
		return nil, &ConfigurationError{Field: "morning_cutoff", Reason: err.Error()}
	}
	c, err := bizhours.New(s.Timezone, s.WorkHours, s.MorningCutoff)
	if err != nil {
		return nil, &ConfigurationError{Field: "work_hours", Reason: err.Error()}
	}
	return c, nil
}

// Patterns compiles the commit message and branch name patterns.
func (s Settings) Patterns() (commit, branch *regexp.Regexp, err error) {
	if commit, err = compile("commit_regex", s.CommitRegex); err != nil {
		return nil, nil, err
	}
	if branch, err = compile("branch_regex", s.BranchRegex); err != nil {
		return nil, nil, err
	}
	return commit, branch, nil
}

func compile(field, expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &ConfigurationError{Field: field, Reason: err.Error()}
	}
	return re, nil
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".prscore"
	}
	return filepath.Join(configDir, "prscore")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".prscore.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .prscore.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the config files at the given paths. Missing files
// are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{
		DefaultFormat: DefaultFormat,
	}

	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = DefaultFormat
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	return &Config{
		DefaultFormat:      pick(local.DefaultFormat, global.DefaultFormat),
		LegacyRepo:         pickPtr(local.LegacyRepo, global.LegacyRepo),
		Functional:         pickPtr(local.Functional, global.Functional),
		PostComment:        pickPtr(local.PostComment, global.PostComment),
		Timezone:           pick(local.Timezone, global.Timezone),
		WorkHours:          pick(local.WorkHours, global.WorkHours),
		MorningCutoff:      pick(local.MorningCutoff, global.MorningCutoff),
		CommitRegex:        pick(local.CommitRegex, global.CommitRegex),
		BranchRegex:        pick(local.BranchRegex, global.BranchRegex),
		DeclinedWindowDays: pickPtr(local.DeclinedWindowDays, global.DeclinedWindowDays),
		StaleAfter:         pick(local.StaleAfter, global.StaleAfter),
		Workers:            pickPtr(local.Workers, global.Workers),
	}
}

func pick(local, global string) string {
	if local != "" {
		return local
	}
	return global
}

func pickPtr[T any](local, global *T) *T {
	if local != nil {
		return local
	}
	return global
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	s := DefaultSettings()
	return &Config{
		DefaultFormat:      DefaultFormat,
		LegacyRepo:         &s.LegacyRepo,
		Functional:         &s.Functional,
		PostComment:        &s.PostComment,
		Timezone:           s.Timezone,
		WorkHours:          s.WorkHours,
		MorningCutoff:      s.MorningCutoff,
		CommitRegex:        s.CommitRegex,
		BranchRegex:        s.BranchRegex,
		DeclinedWindowDays: &s.DeclinedWindowDays,
		StaleAfter:         DefaultStaleAfter,
		Workers:            &s.Workers,
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# prscore configuration file
# See: prscore config defaults  (for all available options)

# Output format: table, markdown, json or prometheus
default_format: table

# Looser size thresholds for large legacy code bases
# legacy_repo: false

# Set to false for pure chore/infra changes (forces maximal complexity)
# functional: true

# Business hours used for time-to-close
# timezone: UTC
# work_hours: "09:00-18:00"
# morning_cutoff: "07:30"

# Naming conventions
# branch_regex: '^(feature|fix|chore)/.+'

# Open pull requests older than this lose half a point
# stale_after: 7d
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
