package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/spiffcs/prscore/config"
	"github.com/spiffcs/prscore/internal/ghclient"
	"github.com/spiffcs/prscore/internal/maturity"
	"github.com/spiffcs/prscore/internal/output"
	"github.com/spiffcs/prscore/internal/prref"
)

func TestNew(t *testing.T) {
	cmd := New()
	if cmd.Name() != "prscore" {
		t.Errorf("New().Name() = %q, want prscore", cmd.Name())
	}

	want := map[string]bool{"score": false, "config": false, "version": false, "ratelimit": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	for _, name := range []string{"output", "repo", "pr", "legacy", "stale-after", "tui", "workers"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("root command missing --%s", name)
		}
	}
}

func TestSubcommandUse(t *testing.T) {
	opts := NewOptions()
	tests := []struct {
		got  string
		want string
	}{
		{NewCmdScore(opts).Use, "score [pull request]"},
		{NewCmdConfig().Use, "config"},
		{NewCmdVersion().Use, "version"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Use = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestVersion(t *testing.T) {
	cmd := NewCmdVersion()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "prscore ") {
		t.Errorf("version output = %q", out.String())
	}
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestResolveRef(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		repo    string
		pr      string
		env     map[string]string
		want    prref.Ref
		wantErr bool
	}{
		{
			name: "argument",
			args: []string{"octo/cat#7"},
			want: prref.Ref{Owner: "octo", Repo: "cat", Number: 7},
		},
		{
			name: "url argument",
			args: []string{"https://github.com/octo/cat/pull/9"},
			want: prref.Ref{Owner: "octo", Repo: "cat", Number: 9},
		},
		{
			name: "flags",
			repo: "octo/cat",
			pr:   "12",
			want: prref.Ref{Owner: "octo", Repo: "cat", Number: 12},
		},
		{
			name: "actions environment",
			env:  map[string]string{"GITHUB_REPOSITORY": "octo/dog", "PR_NUMBER": "3"},
			want: prref.Ref{Owner: "octo", Repo: "dog", Number: 3},
		},
		{
			name: "flag beats environment",
			pr:   "4",
			env:  map[string]string{"GITHUB_REPOSITORY": "octo/dog", "PR_NUMBER": "3"},
			want: prref.Ref{Owner: "octo", Repo: "dog", Number: 4},
		},
		{
			name:    "argument and flags",
			args:    []string{"octo/cat#7"},
			repo:    "octo/cat",
			wantErr: true,
		},
		{
			name:    "nothing given",
			wantErr: true,
		},
		{
			name:    "bad number",
			repo:    "octo/cat",
			pr:      "seven",
			wantErr: true,
		},
		{
			name:    "bad argument",
			args:    []string{"not a ref"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{Repo: tt.repo, PR: tt.pr}
			got, err := resolveRef(tt.args, opts, env(tt.env))
			if tt.wantErr {
				var ce *config.ConfigurationError
				if !errors.As(err, &ce) {
					t.Fatalf("expected ConfigurationError, got %v", err)
				}
				if ce.Field != "pull request" {
					t.Errorf("Field = %q, want pull request", ce.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRef() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveRef() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolvePlan(t *testing.T) {
	withToken := env(map[string]string{"GITHUB_TOKEN": "tok"})
	args := []string{"octo/cat#7"}

	t.Run("defaults", func(t *testing.T) {
		opts := NewOptions()
		cmd := NewCmdScore(opts)
		plan, err := resolvePlan(cmd.Flags(), args, opts, config.DefaultConfig(), withToken)
		if err != nil {
			t.Fatalf("resolvePlan() error: %v", err)
		}
		if plan.format != output.FormatTable || plan.token != "tok" || plan.ref.Number != 7 {
			t.Errorf("unexpected plan: %+v", plan)
		}
		if plan.settings.StaleAfter != 7*24*time.Hour || plan.settings.LegacyRepo {
			t.Errorf("unexpected settings: %+v", plan.settings)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		opts := NewOptions()
		_, err := resolvePlan(nil, args, opts, config.DefaultConfig(), env(nil))
		var ce *config.ConfigurationError
		if !errors.As(err, &ce) || ce.Field != "GITHUB_TOKEN" {
			t.Fatalf("expected GITHUB_TOKEN ConfigurationError, got %v", err)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		opts := NewOptions(WithFormat("xml"))
		_, err := resolvePlan(nil, args, opts, config.DefaultConfig(), withToken)
		var ce *config.ConfigurationError
		if !errors.As(err, &ce) || ce.Field != "output" {
			t.Fatalf("expected output ConfigurationError, got %v", err)
		}
	})

	t.Run("config format", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DefaultFormat = "markdown"
		plan, err := resolvePlan(nil, args, NewOptions(), cfg, withToken)
		if err != nil {
			t.Fatalf("resolvePlan() error: %v", err)
		}
		if plan.format != output.FormatMarkdown {
			t.Errorf("format = %s, want markdown", plan.format)
		}
	})

	t.Run("flag overrides", func(t *testing.T) {
		opts := NewOptions()
		cmd := NewCmdScore(opts)
		err := cmd.ParseFlags([]string{
			"--legacy", "--functional=false", "--stale-after", "2w",
			"--timezone", "Europe/Berlin", "--workers", "3", "-o", "json",
		})
		if err != nil {
			t.Fatalf("ParseFlags() error: %v", err)
		}
		plan, err := resolvePlan(cmd.Flags(), args, opts, config.DefaultConfig(), withToken)
		if err != nil {
			t.Fatalf("resolvePlan() error: %v", err)
		}
		s := plan.settings
		if !s.LegacyRepo || s.Functional || s.Workers != 3 || s.Timezone != "Europe/Berlin" {
			t.Errorf("flags not applied: %+v", s)
		}
		if s.StaleAfter != 14*24*time.Hour {
			t.Errorf("StaleAfter = %v, want 336h", s.StaleAfter)
		}
		if plan.format != output.FormatJSON {
			t.Errorf("format = %s, want json", plan.format)
		}
	})

	t.Run("unchanged flags keep config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		legacy := true
		cfg.LegacyRepo = &legacy
		opts := NewOptions()
		cmd := NewCmdScore(opts)
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}
		plan, err := resolvePlan(cmd.Flags(), args, opts, cfg, withToken)
		if err != nil {
			t.Fatalf("resolvePlan() error: %v", err)
		}
		if !plan.settings.LegacyRepo {
			t.Error("config legacy_repo was overridden by an unset flag")
		}
	})

	t.Run("invalid work hours", func(t *testing.T) {
		opts := NewOptions()
		cmd := NewCmdScore(opts)
		if err := cmd.ParseFlags([]string{"--work-hours", "18:00-09:00"}); err != nil {
			t.Fatal(err)
		}
		_, err := resolvePlan(cmd.Flags(), args, opts, config.DefaultConfig(), withToken)
		var ce *config.ConfigurationError
		if !errors.As(err, &ce) || ce.Field != "work_hours" {
			t.Fatalf("expected work_hours ConfigurationError, got %v", err)
		}
	})

	t.Run("invalid stale after", func(t *testing.T) {
		opts := NewOptions()
		cmd := NewCmdScore(opts)
		if err := cmd.ParseFlags([]string{"--stale-after", "soon"}); err != nil {
			t.Fatal(err)
		}
		_, err := resolvePlan(cmd.Flags(), args, opts, config.DefaultConfig(), withToken)
		var ce *config.ConfigurationError
		if !errors.As(err, &ce) || ce.Field != "stale-after" {
			t.Fatalf("expected stale-after ConfigurationError, got %v", err)
		}
	})
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want int
	}{
		{"github.com", map[string]string{"GITHUB_API_URL": "https://api.github.com", "GITHUB_GRAPHQL_URL": "https://api.github.com/graphql"}, 0},
		{"enterprise", map[string]string{"GITHUB_API_URL": "https://ghe.example.com/api/v3", "GITHUB_GRAPHQL_URL": "https://ghe.example.com/api/graphql"}, 2},
		{"unset", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(clientOptions(NewOptions(), env(tt.env))); got != tt.want {
				t.Errorf("clientOptions() gave %d options, want %d", got, tt.want)
			}
		})
	}
}

func TestShouldUseTUI(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name string
		opts *Options
		want bool
	}{
		{"forced on", &Options{TUI: &on}, true},
		{"forced off", &Options{TUI: &off}, false},
		{"verbose wins", &Options{TUI: &on, Verbosity: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldUseTUI(tt.opts); got != tt.want {
				t.Errorf("shouldUseTUI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTUIFlag(t *testing.T) {
	opts := &Options{}
	f := newTUIFlag(opts)
	if f.String() != "auto" || f.Type() != "bool" {
		t.Errorf("initial flag = %q/%q", f.String(), f.Type())
	}

	for _, tt := range []struct {
		in   string
		want string
	}{
		{"true", "true"}, {"off", "false"}, {"YES", "true"}, {"auto", "auto"}, {"0", "false"},
	} {
		if err := f.Set(tt.in); err != nil {
			t.Fatalf("Set(%q) error: %v", tt.in, err)
		}
		if f.String() != tt.want {
			t.Errorf("after Set(%q) String() = %q, want %q", tt.in, f.String(), tt.want)
		}
	}

	if err := f.Set("maybe"); err == nil {
		t.Error("expected error for invalid value")
	}
}

// fakeGitHub serves a small merged pull request with two conforming commits.
func fakeGitHub(t *testing.T, comments *[]string) *httptest.Server {
	t.Helper()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encode: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"login": "ci-bot"})
	})
	mux.HandleFunc("/repos/octo/cat/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{
			"number":          7,
			"state":           "closed",
			"merged":          true,
			"title":           "Add whiskers",
			"html_url":        "https://github.com/octo/cat/pull/7",
			"user":            map[string]any{"login": "alice"},
			"created_at":      "2024-03-04T10:00:00Z",
			"closed_at":       "2024-03-04T14:00:00Z",
			"merged_at":       "2024-03-04T14:00:00Z",
			"head":            map[string]any{"ref": "feature/whiskers"},
			"additions":       30,
			"deletions":       10,
			"comments":        1,
			"review_comments": 1,
		})
	})
	mux.HandleFunc("/repos/octo/cat/pulls/7/commits", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{
			{"sha": "aaa1111", "commit": map[string]any{"message": "feat: add whiskers"}},
			{"sha": "bbb2222", "commit": map[string]any{"message": "test: cover whiskers"}},
		})
	})
	mux.HandleFunc("/repos/octo/cat/commits/", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{
			"files": []map[string]any{{"filename": "a.go"}, {"filename": "b.go"}},
			"stats": map[string]any{"total": 20},
		})
	})
	mux.HandleFunc("/repos/octo/cat/pulls/7/reviews", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{
			{"user": map[string]any{"login": "bob"}, "state": "APPROVED"},
		})
	})
	decodeBody := func(r *http.Request) string {
		var body struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode comment: %v", err)
		}
		return body.Body
	}
	mux.HandleFunc("/repos/octo/cat/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list := []map[string]any{{"id": 100, "body": "looks good"}}
			for i, body := range *comments {
				list = append(list, map[string]any{"id": i + 1, "body": body})
			}
			write(w, list)
		case http.MethodPost:
			*comments = append(*comments, decodeBody(r))
			w.WriteHeader(http.StatusCreated)
			write(w, map[string]any{"html_url": fmt.Sprintf("https://github.com/octo/cat/pull/7#issuecomment-%d", len(*comments))})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/repos/octo/cat/issues/comments/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		if _, err := fmt.Sscanf(path.Base(r.URL.Path), "%d", &id); err != nil || r.Method != http.MethodPatch || id < 1 || id > len(*comments) {
			http.Error(w, "unexpected comment edit", http.StatusBadRequest)
			return
		}
		(*comments)[id-1] = decodeBody(r)
		write(w, map[string]any{"html_url": fmt.Sprintf("https://github.com/octo/cat/pull/7#issuecomment-%d", id)})
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"data": map[string]any{"repository": map[string]any{"pullRequest": map[string]any{
			"reviewThreads": map[string]any{
				"pageInfo": map[string]any{"hasNextPage": false, "endCursor": ""},
				"nodes":    []map[string]any{{"isResolved": true}},
			},
		}}}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_API_URL", "")
	t.Setenv("GITHUB_GRAPHQL_URL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cmd := New(WithClientOptions(
		ghclient.WithBaseURL(srv.URL),
		ghclient.WithGraphQLEndpoint(srv.URL+"/graphql"),
	))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestScoreEndToEnd(t *testing.T) {
	var comments []string
	srv := fakeGitHub(t, &comments)

	stdout, _, err := runCLI(t, srv, "octo/cat#7", "-o", "json", "--tui=false")
	if err != nil {
		t.Fatalf("prscore error: %v", err)
	}

	var report maturity.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, stdout)
	}
	if report.ChangeRequest.Number != 7 || report.ChangeRequest.Repository != "octo/cat" {
		t.Errorf("unexpected change request: %+v", report.ChangeRequest)
	}
	if report.Signals.CommitCount != 2 || report.Signals.Approvals != 1 {
		t.Errorf("unexpected signals: %+v", report.Signals)
	}
	if report.Complexity != 5 {
		t.Errorf("Complexity = %d, want 5", report.Complexity)
	}
	m1 := report.Category(maturity.CategoryCommits)
	if m1 == nil || m1.Score != 5 {
		t.Errorf("M1 = %+v, want score 5", m1)
	}
	if report.Maturity < 1 || report.Maturity > 5 {
		t.Errorf("Maturity = %v out of range", report.Maturity)
	}
	if len(comments) != 0 {
		t.Errorf("posted %d comments without --post-comment", len(comments))
	}
}

func TestScorePostsComment(t *testing.T) {
	var comments []string
	srv := fakeGitHub(t, &comments)

	stdout, stderr, err := runCLI(t, srv, "score", "--repo", "octo/cat", "--pr", "7", "--post-comment", "--tui=false", "-o", "markdown")
	if err != nil {
		t.Fatalf("prscore error: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("posted %d comments, want 1", len(comments))
	}
	if !strings.Contains(comments[0], output.CommentMarker) {
		t.Errorf("comment lacks marker:\n%s", comments[0])
	}
	if !strings.Contains(stdout, "## PR maturity: octo/cat#7") {
		t.Errorf("stdout lacks markdown report:\n%s", stdout)
	}
	if !strings.Contains(stderr, "Posted report: https://github.com/octo/cat/pull/7#issuecomment-1") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestScoreUpdatesPreviousComment(t *testing.T) {
	var comments []string
	srv := fakeGitHub(t, &comments)
	args := []string{"octo/cat#7", "--post-comment", "--tui=false", "-o", "json"}

	for run := 0; run < 2; run++ {
		if _, _, err := runCLI(t, srv, args...); err != nil {
			t.Fatalf("run %d: prscore error: %v", run, err)
		}
	}
	if len(comments) != 1 {
		t.Fatalf("got %d report comments after two runs, want 1", len(comments))
	}
	if !strings.Contains(comments[0], output.CommentMarker) {
		t.Errorf("edited comment lacks marker:\n%s", comments[0])
	}
}

func TestScoreUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, _, err := runCLI(t, srv, "octo/cat#7", "--tui=false")
	var ufe *ghclient.UpstreamFetchError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected UpstreamFetchError, got %v", err)
	}
}

func TestProfiler(t *testing.T) {
	dir := t.TempDir()
	cpu, mem := dir+"/cpu.out", dir+"/mem.out"

	p := NewProfiler(cpu, mem, "")
	if !p.Enabled() {
		t.Fatal("expected profiler to be enabled")
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
	for _, path := range []string{cpu, mem} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("profile %s not written: %v", path, err)
		}
	}

	if NewProfiler("", "", "").Enabled() {
		t.Error("expected empty profiler to be disabled")
	}
	if err := NewProfiler(dir+"/missing/cpu.out", "", "").Start(); err == nil {
		t.Error("expected error for unwritable CPU profile path")
	}
}

func TestRunConfigValidate(t *testing.T) {
	var out bytes.Buffer
	if err := runConfigValidate(&out, config.DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !strings.Contains(out.String(), "stale after 7d") {
		t.Errorf("output = %q", out.String())
	}

	cfg := config.DefaultConfig()
	cfg.Timezone = "Mars/Olympus"
	err := runConfigValidate(io.Discard, cfg)
	var ce *config.ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "timezone" {
		t.Errorf("expected timezone ConfigurationError, got %v", err)
	}
}

func TestPrintConfig(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"yaml", "work_hours:", false},
		{"json", `"work_hours": "09:00-18:00"`, false},
		{"toml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			err := printConfig(&out, config.DefaultConfig(), tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("printConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestRunConfigInit(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	if err := runConfigInit(strings.NewReader("2\n"), &out, false, false); err != nil {
		t.Fatalf("runConfigInit() error: %v", err)
	}
	if !strings.Contains(out.String(), "Created local config file") {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(config.LocalConfigPath()); err != nil {
		t.Errorf("local config not written: %v", err)
	}

	if err := runConfigInit(nil, io.Discard, false, true); err == nil {
		t.Error("expected error when the file already exists")
	}
	if err := runConfigInit(nil, io.Discard, true, true); err == nil {
		t.Error("expected error for --global with --local")
	}
	if err := runConfigInit(strings.NewReader("3\n"), io.Discard, false, false); err == nil {
		t.Error("expected error for an invalid choice")
	}
}
