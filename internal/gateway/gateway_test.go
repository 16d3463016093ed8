package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepo(t *testing.T) {
	r, err := ParseRepo("acme/api", "")
	require.NoError(t, err)
	assert.Equal(t, Repo{Owner: "acme", Name: "api"}, r)

	r, err = ParseRepo("web", "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme/web", r.String())

	for _, bad := range []string{"web", "a/b/c", "/x", "x/"} {
		_, err := ParseRepo(bad, "")
		assert.Error(t, err, bad)
	}
}

// fakeGitHub serves the subset of the REST API the gateway uses.
type fakeGitHub struct {
	mu      sync.Mutex
	files   map[string]string // path -> content on the default branch
	commits []string          // "METHOD path message"
	refs    []string
	pr      map[string]any
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/repos/acme/api"
	p := strings.TrimPrefix(r.URL.Path, prefix)
	w.Header().Set("Content-Type", "application/json")

	notFound := func() {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not Found"}`)
	}

	switch {
	case r.Method == http.MethodGet && p == "":
		_ = json.NewEncoder(w).Encode(map[string]any{"full_name": "acme/api", "default_branch": "main"})

	case r.Method == http.MethodGet && p == "/git/ref/heads/main":
		_ = json.NewEncoder(w).Encode(map[string]any{"ref": "refs/heads/main", "object": map[string]any{"sha": "base-sha"}})

	case r.Method == http.MethodPost && p == "/git/refs":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.refs = append(f.refs, body["ref"].(string)+"@"+body["sha"].(string))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"ref": body["ref"]})

	case r.Method == http.MethodGet && strings.HasPrefix(p, "/contents/"):
		file := strings.TrimPrefix(p, "/contents/")
		if content, ok := f.files[file]; ok {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"type": "file", "path": file, "sha": "sha-" + file, "encoding": "base64",
				"content": base64.StdEncoding.EncodeToString([]byte(content)),
			})
			return
		}
		var entries []map[string]any
		for name := range f.files {
			if strings.HasPrefix(name, file+"/") {
				entries = append(entries, map[string]any{"type": "file", "path": name, "name": name[len(file)+1:]})
			}
		}
		if entries == nil {
			notFound()
			return
		}
		entries = append(entries, map[string]any{"type": "dir", "path": file + "/nested", "name": "nested"})
		_ = json.NewEncoder(w).Encode(entries)

	case r.Method == http.MethodPut && strings.HasPrefix(p, "/contents/"):
		var body struct {
			Message string `json:"message"`
			SHA     string `json:"sha"`
			Branch  string `json:"branch"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.commits = append(f.commits, strings.TrimPrefix(p, "/contents/")+"|"+body.Message+"|"+body.SHA+"|"+body.Branch)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"content":{}}`)

	case r.Method == http.MethodPost && p == "/pulls":
		_ = json.NewDecoder(r.Body).Decode(&f.pr)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"number":7,"html_url":"https://github.com/acme/api/pull/7"}`)

	default:
		notFound()
	}
}

func newTestGateway(t *testing.T, fake *fakeGitHub) *GitHub {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	g, err := NewGitHub(context.Background(), Repo{Owner: "acme", Name: "api"}, "token",
		WithBaseURL(srv.URL),
		WithBranchNamer(func() string { return BranchPrefix + "test" }),
	)
	require.NoError(t, err)
	return g
}

func TestGitHubReads(t *testing.T) {
	fake := &fakeGitHub{files: map[string]string{
		"repoforge.yaml":                 "version: 1.0.0\n",
		".github/workflows/ci.yml":       "name: CI\n",
		".github/workflows/security.yml": "name: Security\n",
	}}
	g := newTestGateway(t, fake)
	ctx := context.Background()

	assert.True(t, g.ValidateAccess(ctx))

	content, ok, err := g.FetchFile(ctx, "repoforge.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "version: 1.0.0\n", content)

	_, ok, err = g.FetchFile(ctx, "missing.yaml")
	require.NoError(t, err)
	assert.False(t, ok)

	files, err := g.ListFiles(ctx, ".github/workflows")
	require.NoError(t, err)
	assert.Equal(t, []string{".github/workflows/ci.yml", ".github/workflows/security.yml"}, files)

	files, err = g.ListFiles(ctx, "docs")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestGitHubValidateAccessDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Forbidden"}`)
	}))
	t.Cleanup(srv.Close)

	g, err := NewGitHub(context.Background(), Repo{Owner: "acme", Name: "api"}, "", WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.False(t, g.ValidateAccess(context.Background()))
}

func TestGitHubCreatePullRequest(t *testing.T) {
	fake := &fakeGitHub{files: map[string]string{"repoforge.yaml": "version: 1.0.0\n"}}
	g := newTestGateway(t, fake)

	url, err := g.CreatePullRequest(context.Background(), PullRequest{
		Title: "repoforge: initialize repository standards",
		Body:  "body",
		Files: map[string]string{
			"repoforge.yaml":           "version: 2.0.0\n",
			".github/workflows/ci.yml": "name: CI\n",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/api/pull/7", url)

	assert.Equal(t, []string{"refs/heads/repoforge/test@base-sha"}, fake.refs)
	assert.Equal(t, []string{
		".github/workflows/ci.yml|repoforge: add .github/workflows/ci.yml||repoforge/test",
		"repoforge.yaml|repoforge: update repoforge.yaml|sha-repoforge.yaml|repoforge/test",
	}, fake.commits)
	assert.Equal(t, "repoforge/test", fake.pr["head"])
	assert.Equal(t, "main", fake.pr["base"])
	assert.Equal(t, "repoforge: initialize repository standards", fake.pr["title"])
}

func TestMemoryGateway(t *testing.T) {
	m := NewMemory(map[string]string{
		".github/workflows/ci.yml": "a",
		".github/dependabot.yml":   "b",
	})
	ctx := context.Background()

	assert.True(t, m.ValidateAccess(ctx))
	files, err := m.ListFiles(ctx, ".github/workflows/")
	require.NoError(t, err)
	assert.Equal(t, []string{".github/workflows/ci.yml"}, files)

	url, err := m.CreatePullRequest(ctx, PullRequest{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "memory://pull/1", url)
	assert.Len(t, m.Requests(), 1)

	assert.False(t, m.Deny().ValidateAccess(ctx))
}
