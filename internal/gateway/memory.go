package gateway

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Gateway over a map of files. It records every
// pull request it is asked to open.
type Memory struct {
	mu       sync.Mutex
	files    map[string]string
	denied   bool
	requests []PullRequest
}

// NewMemory returns a gateway holding a copy of files.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: map[string]string{}}
	for k, v := range files {
		m.files[k] = v
	}
	return m
}

// Deny makes ValidateAccess fail.
func (m *Memory) Deny() *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = true
	return m
}

// Requests returns the pull requests opened so far.
func (m *Memory) Requests() []PullRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PullRequest(nil), m.requests...)
}

// ValidateAccess implements Gateway.
func (m *Memory) ValidateAccess(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.denied
}

// FetchFile implements Gateway.
func (m *Memory) FetchFile(_ context.Context, p string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[p]
	return c, ok, nil
}

// ListFiles implements Gateway.
func (m *Memory) ListFiles(_ context.Context, dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = strings.TrimSuffix(dir, "/")
	out := []string{}
	for p := range m.files {
		if path.Dir(p) == dir {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CreatePullRequest implements Gateway.
func (m *Memory) CreatePullRequest(_ context.Context, pr PullRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, pr)
	return fmt.Sprintf("memory://pull/%d", len(m.requests)), nil
}
