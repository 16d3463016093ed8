package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// BranchPrefix prefixes every branch the gateway creates.
const BranchPrefix = "repoforge/"

// GitHub is a Gateway backed by the GitHub REST API.
type GitHub struct {
	client *github.Client
	repo   Repo
	log    *zap.Logger
	branch func() string
}

// GitHubOption configures a GitHub gateway.
type GitHubOption func(*GitHub) error

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(raw string) GitHubOption {
	return func(g *GitHub) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		g.client.BaseURL = u
		return nil
	}
}

// WithLogger sets the gateway logger.
func WithLogger(l *zap.Logger) GitHubOption {
	return func(g *GitHub) error {
		g.log = l
		return nil
	}
}

// WithBranchNamer overrides how PR branch names are chosen.
func WithBranchNamer(f func() string) GitHubOption {
	return func(g *GitHub) error {
		g.branch = f
		return nil
	}
}

// NewGitHub creates a gateway for repo authenticated with token. An empty
// token makes unauthenticated requests.
func NewGitHub(ctx context.Context, repo Repo, token string, opts ...GitHubOption) (*GitHub, error) {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	g := &GitHub{
		client: github.NewClient(httpClient),
		repo:   repo,
		log:    zap.NewNop(),
		branch: func() string { return BranchPrefix + uuid.NewString() },
	}
	for _, o := range opts {
		if err := o(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

// ValidateAccess implements Gateway.
func (g *GitHub) ValidateAccess(ctx context.Context) bool {
	_, _, err := g.client.Repositories.Get(ctx, g.repo.Owner, g.repo.Name)
	if err != nil {
		g.log.Debug("repository access check failed", zap.String("repo", g.repo.String()), zap.Error(err))
		return false
	}
	return true
}

// FetchFile implements Gateway.
func (g *GitHub) FetchFile(ctx context.Context, p string) (string, bool, error) {
	return g.fetchFile(ctx, p, "")
}

func (g *GitHub) fetchFile(ctx context.Context, p, ref string) (string, bool, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, resp, err := g.client.Repositories.GetContents(ctx, g.repo.Owner, g.repo.Name, p, opts)
	if isNotFound(resp, err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetch %s: %w", p, err)
	}
	if file == nil {
		return "", false, fmt.Errorf("fetch %s: path is a directory", p)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("decode %s: %w", p, err)
	}
	return content, true, nil
}

// fileSHA returns the blob SHA of p on ref, or "" when it does not exist.
func (g *GitHub) fileSHA(ctx context.Context, p, ref string) (string, error) {
	file, _, resp, err := g.client.Repositories.GetContents(ctx, g.repo.Owner, g.repo.Name, p,
		&github.RepositoryContentGetOptions{Ref: ref})
	if isNotFound(resp, err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", p, err)
	}
	if file == nil {
		return "", fmt.Errorf("stat %s: path is a directory", p)
	}
	return file.GetSHA(), nil
}

// ListFiles implements Gateway.
func (g *GitHub) ListFiles(ctx context.Context, dir string) ([]string, error) {
	_, entries, resp, err := g.client.Repositories.GetContents(ctx, g.repo.Owner, g.repo.Name, dir, nil)
	if isNotFound(resp, err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	files := []string{}
	for _, e := range entries {
		if e.GetType() != "file" {
			continue
		}
		p := e.GetPath()
		if p == "" {
			p = path.Join(dir, e.GetName())
		}
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

// CreatePullRequest implements Gateway. Files are committed one per commit
// in path order onto a fresh branch cut from the base branch.
func (g *GitHub) CreatePullRequest(ctx context.Context, pr PullRequest) (string, error) {
	owner, name := g.repo.Owner, g.repo.Name

	base := pr.BaseBranch
	if base == "" {
		repo, _, err := g.client.Repositories.Get(ctx, owner, name)
		if err != nil {
			return "", fmt.Errorf("get repository: %w", err)
		}
		base = repo.GetDefaultBranch()
	}

	baseRef, _, err := g.client.Git.GetRef(ctx, owner, name, "refs/heads/"+base)
	if err != nil {
		return "", fmt.Errorf("get base ref %s: %w", base, err)
	}

	branch := g.branch()
	_, _, err = g.client.Git.CreateRef(ctx, owner, name, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: baseRef.Object.SHA},
	})
	if err != nil {
		return "", fmt.Errorf("create branch %s: %w", branch, err)
	}
	g.log.Debug("created branch", zap.String("repo", g.repo.String()), zap.String("branch", branch))

	paths := make([]string, 0, len(pr.Files))
	for p := range pr.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		sha, err := g.fileSHA(ctx, p, branch)
		if err != nil {
			return "", err
		}
		opts := &github.RepositoryContentFileOptions{
			Content: []byte(pr.Files[p]),
			Branch:  github.String(branch),
		}
		if sha != "" {
			opts.Message = github.String("repoforge: update " + p)
			opts.SHA = github.String(sha)
			_, _, err = g.client.Repositories.UpdateFile(ctx, owner, name, p, opts)
		} else {
			opts.Message = github.String("repoforge: add " + p)
			_, _, err = g.client.Repositories.CreateFile(ctx, owner, name, p, opts)
		}
		if err != nil {
			return "", fmt.Errorf("commit %s: %w", p, err)
		}
	}

	created, _, err := g.client.PullRequests.Create(ctx, owner, name, &github.NewPullRequest{
		Title: github.String(pr.Title),
		Body:  github.String(pr.Body),
		Head:  github.String(branch),
		Base:  github.String(base),
	})
	if err != nil {
		return "", fmt.Errorf("create pull request: %w", err)
	}
	return created.GetHTMLURL(), nil
}
