// Package gateway is the narrow interface the CLI uses to read a hosted
// repository and propose changes to it as pull requests.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAccessDenied is returned by callers when ValidateAccess fails.
var ErrAccessDenied = errors.New("cannot access repository")

// PullRequest describes a proposed change set.
type PullRequest struct {
	Title string
	Body  string
	// Files maps repository paths to their full new content.
	Files map[string]string
	// BaseBranch defaults to the repository's default branch.
	BaseBranch string
}

// Gateway is a hosted repository.
type Gateway interface {
	// ValidateAccess reports whether the repository can be read. Failures
	// are not errors; callers print a message and abort.
	ValidateAccess(ctx context.Context) bool
	// FetchFile returns the content at path; ok is false when it does not exist.
	FetchFile(ctx context.Context, path string) (content string, ok bool, err error)
	// ListFiles returns the file paths directly inside dir.
	ListFiles(ctx context.Context, dir string) ([]string, error)
	// CreatePullRequest commits the files to a new branch and opens a pull
	// request, returning its URL.
	CreatePullRequest(ctx context.Context, pr PullRequest) (string, error)
}

// Repo identifies a hosted repository.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

// ParseRepo parses "owner/name". When s has no owner, defaultOwner is used.
func ParseRepo(s, defaultOwner string) (Repo, error) {
	owner, name, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		owner, name = defaultOwner, owner
	}
	if owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}
