// Package prref parses references to a single pull request.
package prref

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Ref identifies a pull request.
type Ref struct {
	Owner  string
	Repo   string
	Number int
}

// String returns the owner/repo#N form.
func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// FullName returns owner/repo.
func (r Ref) FullName() string {
	return r.Owner + "/" + r.Repo
}

// Parse parses "owner/repo#123", "owner/repo/pull/123" or a pull request URL
// such as https://github.com/owner/repo/pull/123. API URLs of the form
// https://api.github.com/repos/owner/repo/pulls/123 are accepted too.
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty pull request reference")
	}

	if repo, num, ok := strings.Cut(s, "#"); ok {
		return FromParts(repo, num)
	}

	path := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Ref{}, fmt.Errorf("invalid pull request URL %s: %w", s, err)
		}
		path = u.Path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "repos" {
		parts = parts[1:]
	}
	// owner/repo/pull/123 with optional trailing segments like /files
	if len(parts) < 4 || (parts[2] != "pull" && parts[2] != "pulls") {
		return Ref{}, fmt.Errorf("invalid pull request reference: %s (use owner/repo#123 or a pull request URL)", s)
	}
	return FromParts(parts[0]+"/"+parts[1], parts[3])
}

// FromParts builds a Ref from "owner/repo" and a number string.
func FromParts(repo, number string) (Ref, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Ref{}, fmt.Errorf("invalid repository %q (use owner/repo)", repo)
	}

	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		return Ref{}, fmt.Errorf("failed to parse pull request number %q: %w", number, err)
	}
	if n <= 0 {
		return Ref{}, fmt.Errorf("invalid pull request number %d", n)
	}

	return Ref{Owner: owner, Repo: name, Number: n}, nil
}
