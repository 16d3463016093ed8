// Package scanner lists the files of a repository working tree.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Scanner provides access to the repository's files.
type Scanner struct {
	repoRoot string
	log      *zap.Logger

	mu        sync.Mutex
	fileCache []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// New creates a new Scanner for the given repository root.
func New(repoRoot string, opts ...Option) *Scanner {
	s := &Scanner{repoRoot: repoRoot, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Root returns the repository root.
func (s *Scanner) Root() string { return s.repoRoot }

// Files returns the working tree files as slash-separated relative paths,
// sorted, caching the result for the instance lifetime. Inside a git
// repository it asks git for tracked and untracked, non-ignored files;
// elsewhere it walks the directory skipping DefaultExcludeDirs.
func (s *Scanner) Files(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fileCache != nil {
		return s.fileCache, nil
	}

	files, err := s.gitFiles(ctx)
	if err != nil {
		s.log.Debug("git listing unavailable, walking directory", zap.String("root", s.repoRoot), zap.Error(err))
		files, err = s.walkFiles()
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	s.fileCache = files
	return s.fileCache, nil
}

// Invalidate drops the cached listing so the next call rescans.
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.fileCache = nil
	s.mu.Unlock()
}

func (s *Scanner) gitFiles(ctx context.Context) ([]string, error) {
	// -z to avoid escaping issues
	cmd := exec.CommandContext(ctx, "git", "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	cmd.Dir = s.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}

	files := []string{}
	seen := map[string]bool{}
	for _, f := range strings.Split(strings.TrimSuffix(string(out), "\x00"), "\x00") {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		// --cached still lists tracked files deleted from the working tree.
		if _, err := os.Stat(filepath.Join(s.repoRoot, filepath.FromSlash(f))); err != nil {
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *Scanner) walkFiles() ([]string, error) {
	excluded := map[string]bool{}
	for _, d := range DefaultExcludeDirs() {
		excluded[d] = true
	}

	files := []string{}
	err := filepath.WalkDir(s.repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.repoRoot && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.repoRoot, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.repoRoot, err)
	}
	return files, nil
}

// FilesFiltered returns files matching the filter options.
func (s *Scanner) FilesFiltered(ctx context.Context, opts FilterOptions) ([]string, error) {
	all, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}
	return FilterFiles(all, opts), nil
}

// ReadFiles returns the contents of the given relative paths. Paths that do
// not exist are omitted from the result.
func (s *Scanner) ReadFiles(paths []string) (map[string]string, error) {
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(s.repoRoot, filepath.FromSlash(p)))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		out[p] = string(data)
	}
	return out, nil
}
