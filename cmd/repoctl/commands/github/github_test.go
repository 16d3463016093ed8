package github

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/gateway"
)

const tsSpec = `version: 1.0.0
project:
  type: backend-api
  language: typescript
  runtime: node20
  deployment: container
  risk: internal
standards:
  ci: strict
  security: enforced
  releases: strict
`

type harness struct {
	gw       *gateway.Memory
	dir      string
	env      map[string]string
	lastRepo gateway.Repo
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	return &harness{gw: gateway.NewMemory(files), dir: t.TempDir(), env: map[string]string{}}
}

func (h *harness) run(args ...string) (string, error) {
	env := clienv.Default()
	env.Dir = h.dir
	env.Getenv = func(k string) string { return h.env[k] }
	env.Now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	cmd := NewGitHubCommandWith(func(_ context.Context, repo gateway.Repo, _ string, _ *zap.Logger) (gateway.Gateway, error) {
		h.lastRepo = repo
		return h.gw, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(clienv.With(context.Background(), env))
	return out.String(), err
}

func TestValidate(t *testing.T) {
	h := newHarness(t, map[string]string{
		"repoforge.yaml":           tsSpec,
		".github/workflows/ci.yml": "name: CI\n",
	})

	out, err := h.run("validate", "--owner", "acme", "--repo", "api", "--token", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "Required workflow file missing: .github/workflows/security.yml")
	assert.Equal(t, gateway.Repo{Owner: "acme", Name: "api"}, h.lastRepo)

	_, err = h.run("validate", "--repo", "acme/api", "--token", "t", "--strict")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitViolation, clierr.ExitCodeOf(err))
}

func TestValidateJSON(t *testing.T) {
	h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})

	out, err := h.run("validate", "--repo", "acme/api", "--token", "t", "--format", "json")
	require.NoError(t, err)

	var res struct {
		Valid      bool `json:"valid"`
		Violations []struct {
			Rule     string `json:"rule"`
			Severity string `json:"severity"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Valid)
	require.Len(t, res.Violations, 2)
	assert.Equal(t, "warn", res.Violations[0].Severity)
}

func TestValidateErrors(t *testing.T) {
	t.Run("missing spec", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.run("validate", "--repo", "acme/api", "--token", "t")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no repoforge.yaml")
	})

	t.Run("access denied", func(t *testing.T) {
		h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
		h.gw.Deny()
		_, err := h.run("validate", "--repo", "acme/api", "--token", "t")
		require.Error(t, err)
		assert.ErrorIs(t, err, gateway.ErrAccessDenied)
	})

	t.Run("missing token", func(t *testing.T) {
		h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
		_, err := h.run("validate", "--repo", "acme/api")
		require.Error(t, err)
		assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
	})

	t.Run("token from environment", func(t *testing.T) {
		h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
		h.env["GITHUB_TOKEN"] = "from-env"
		_, err := h.run("validate", "--repo", "acme/api")
		require.NoError(t, err)
	})

	t.Run("repo without owner", func(t *testing.T) {
		h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
		_, err := h.run("validate", "--repo", "api", "--token", "t")
		require.Error(t, err)
		assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
	})

	t.Run("bad format", func(t *testing.T) {
		h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
		_, err := h.run("validate", "--repo", "acme/api", "--token", "t", "--format", "xml")
		assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
	})
}

func TestFixOpensPullRequest(t *testing.T) {
	h := newHarness(t, map[string]string{
		"repoforge.yaml":           tsSpec,
		".github/workflows/ci.yml": "name: CI\n",
	})

	out, err := h.run("fix", "--repo", "acme/api", "--token", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "memory://pull/1")

	reqs := h.gw.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "repoforge: auto-fix spec violations", reqs[0].Title)
	assert.Contains(t, reqs[0].Body, "security.yml")
	assert.Contains(t, reqs[0].Files, ".github/workflows/security.yml")
	assert.NotContains(t, reqs[0].Files, ".github/workflows/ci.yml")
}

func TestFixDryRunAndClean(t *testing.T) {
	h := newHarness(t, map[string]string{
		"repoforge.yaml":                 tsSpec,
		".github/workflows/ci.yml":       "name: CI\n",
		".github/workflows/security.yml": "name: Security\n",
	})
	out, err := h.run("fix", "--repo", "acme/api", "--token", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "No violations found")
	assert.Empty(t, h.gw.Requests())

	h = newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
	out, err = h.run("fix", "--repo", "acme/api", "--token", "t", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+ .github/workflows/ci.yml")
	assert.Empty(t, h.gw.Requests())
}

func TestUpgradeOpensPullRequest(t *testing.T) {
	h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})

	_, err := h.run("upgrade", "--repo", "acme/api", "--token", "t", "--to", "1.1.0")
	require.NoError(t, err)

	reqs := h.gw.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "repoforge: upgrade specs from 1.0.0 to 1.1.0", reqs[0].Title)
	assert.Contains(t, reqs[0].Files["repoforge.yaml"], "version: 1.1.0")
	assert.Contains(t, reqs[0].Files[".github/workflows/release.yml"], "name: Release")
}

func TestUpgradeAlreadyCurrent(t *testing.T) {
	h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
	out, err := h.run("upgrade", "--repo", "acme/api", "--token", "t", "--to", "1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Already at target version")
	assert.Empty(t, h.gw.Requests())

	_, err = h.run("upgrade", "--repo", "acme/api", "--token", "t", "--to", "banana")
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
}

func TestInit(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "go.mod"), []byte("module example.com/x\n"), 0o644))

	out, err := h.run("init", "--repo", "acme/tool", "--token", "t", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+ repoforge.yaml")
	assert.Contains(t, out, "+ .golangci.yml")
	assert.Empty(t, h.gw.Requests())

	_, err = h.run("init", "--repo", "acme/tool", "--token", "t", "--policy", "enterprise")
	require.NoError(t, err)
	reqs := h.gw.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "repoforge: initialize repository standards", reqs[0].Title)
	assert.Contains(t, reqs[0].Files["repoforge.yaml"], "language: go")
	assert.Contains(t, reqs[0].Files["repoforge.yaml"], "releases: enforced")
	assert.Contains(t, reqs[0].Files, ".github/workflows/repoforge.yml")
}

func TestInitRefusesExistingSpec(t *testing.T) {
	h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})
	_, err := h.run("init", "--repo", "acme/api", "--token", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has repoforge.yaml")

	_, err = h.run("init", "--repo", "acme/api", "--token", "t", "--policy", "nope")
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
}

func TestScan(t *testing.T) {
	h := newHarness(t, map[string]string{"repoforge.yaml": tsSpec})

	out, err := h.run("scan", "--owner", "acme", "--token", "t", "--repos", "api,web", "--json")
	require.NoError(t, err)

	var results []ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, ScanResult{Repo: "acme/api", Accessible: true, HasSpec: true, Version: "1.0.0", Valid: true, Violations: 2}, results[0])
	assert.Equal(t, "acme/web", results[1].Repo)

	h.gw.Deny()
	out, err = h.run("scan", "--owner", "acme", "--token", "t", "--repos", "api")
	require.NoError(t, err)
	assert.Contains(t, out, "cannot access repository")
	assert.Contains(t, out, "1 repositories, 0 with spec, 1 without")

	_, err = h.run("scan", "--token", "t")
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
}
