// SPDX-License-Identifier: AGPL-3.0-or-later

package github

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/gateway"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

// Factory opens a gateway to repo.
type Factory func(ctx context.Context, repo gateway.Repo, token string, log *zap.Logger) (gateway.Gateway, error)

// DefaultFactory talks to the GitHub REST API.
func DefaultFactory(ctx context.Context, repo gateway.Repo, token string, log *zap.Logger) (gateway.Gateway, error) {
	return gateway.NewGitHub(ctx, repo, token, gateway.WithLogger(log))
}

type remote struct {
	factory Factory
	owner   string
	repo    string
	token   string
}

// NewGitHubCommand groups the remote repository commands.
func NewGitHubCommand() *cobra.Command {
	return NewGitHubCommandWith(DefaultFactory)
}

// NewGitHubCommandWith is NewGitHubCommand with an explicit gateway factory.
func NewGitHubCommandWith(f Factory) *cobra.Command {
	r := &remote{factory: f}

	cmd := &cobra.Command{
		Use:   "github",
		Short: "Initialize, validate, upgrade and fix repositories on GitHub via pull requests",
	}
	cmd.PersistentFlags().StringVar(&r.owner, "owner", "", "repository owner (default: github.owner from config)")
	cmd.PersistentFlags().StringVar(&r.repo, "repo", "", "repository name or owner/name")
	cmd.PersistentFlags().StringVar(&r.token, "token", "", "GitHub token (default: $GITHUB_TOKEN)")

	cmd.AddCommand(newInitCommand(r))
	cmd.AddCommand(newValidateCommand(r))
	cmd.AddCommand(newUpgradeCommand(r))
	cmd.AddCommand(newFixCommand(r))
	cmd.AddCommand(newScanCommand(r))
	return cmd
}

func (r *remote) resolveToken(env *clienv.Env) (string, error) {
	token := r.token
	if token == "" {
		token = env.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		token = env.Config.GitHub.DefaultToken
	}
	if token == "" {
		return "", clierr.Usagef("a GitHub token is required (--token or GITHUB_TOKEN)")
	}
	return token, nil
}

func (r *remote) resolveOwner(env *clienv.Env) string {
	if r.owner != "" {
		return r.owner
	}
	return env.Config.GitHub.Owner
}

// open builds a gateway for name without checking access.
func (r *remote) open(ctx context.Context, env *clienv.Env, name string) (gateway.Gateway, gateway.Repo, error) {
	repo, err := gateway.ParseRepo(name, r.resolveOwner(env))
	if err != nil {
		return nil, gateway.Repo{}, clierr.Usage(err)
	}
	token, err := r.resolveToken(env)
	if err != nil {
		return nil, gateway.Repo{}, err
	}
	gw, err := r.factory(ctx, repo, token, env.Log)
	if err != nil {
		return nil, gateway.Repo{}, err
	}
	return gw, repo, nil
}

// connect opens the --repo gateway and fails when it is not accessible.
func (r *remote) connect(ctx context.Context, env *clienv.Env) (gateway.Gateway, gateway.Repo, error) {
	if r.repo == "" {
		return nil, gateway.Repo{}, clierr.Usagef("--repo is required")
	}
	gw, repo, err := r.open(ctx, env, r.repo)
	if err != nil {
		return nil, repo, err
	}
	if !gw.ValidateAccess(ctx) {
		return nil, repo, clierr.Wrapf(clierr.ExitViolation, gateway.ErrAccessDenied, "%s (check token and permissions)", repo)
	}
	env.Log.Debug("connected", zap.String("repo", repo.String()))
	return gw, repo, nil
}

// fetchSpec reads and validates the remote spec. ok is false when the
// repository has none.
func fetchSpec(ctx context.Context, gw gateway.Gateway) (s spec.Spec, ok bool, err error) {
	content, ok, err := gw.FetchFile(ctx, spec.DefaultFileName)
	if err != nil || !ok {
		return spec.Spec{}, ok, err
	}
	s, err = spec.Parse([]byte(content))
	if err != nil {
		return spec.Spec{}, true, err
	}
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return spec.Spec{}, true, clierr.Wrapf(clierr.ExitViolation, err, "invalid remote %s", spec.DefaultFileName)
	}
	return s, true, nil
}

func fileMap(files []generator.File) map[string]string {
	m := make(map[string]string, len(files))
	for _, f := range files {
		m[f.Path] = f.Content
	}
	return m
}

func printFiles(w io.Writer, files map[string]string) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		_, _ = fmt.Fprintf(w, "  + %s\n", p)
	}
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		_, _ = fmt.Fprintf(&b, "- %s\n", it)
	}
	return b.String()
}

func openPR(ctx context.Context, w io.Writer, gw gateway.Gateway, pr gateway.PullRequest) error {
	url, err := gw.CreatePullRequest(ctx, pr)
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}
	_, _ = fmt.Fprintf(w, "✓ Pull request created: %s\n", url)
	return nil
}
