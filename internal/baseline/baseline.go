// Package baseline records the content of governed files so later runs can
// detect drift.
package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/repoforge/repoforge/internal/scanner"
	"github.com/repoforge/repoforge/internal/spec"
)

// DefaultDir is the state directory relative to the repository root.
const DefaultDir = ".repoforge"

// DefaultPatterns selects the files a snapshot records when none are given.
var DefaultPatterns = []string{
	spec.DefaultFileName,
	".github/workflows/*.{yml,yaml}",
	".github/dependabot.yml",
	".github/CODEOWNERS",
	".editorconfig",
	".gitattributes",
}

// Baseline is a recorded snapshot.
type Baseline struct {
	Created  time.Time         `json:"created"`
	Patterns []string          `json:"patterns"`
	Files    map[string]string `json:"files"`
}

// Store handles reading and writing the baseline file.
type Store struct {
	baseDir string
}

// NewStore creates a store at the given base directory (e.g. .repoforge).
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Path returns the baseline file location.
func (s *Store) Path() string {
	return filepath.Join(s.baseDir, "baseline.json")
}

// Read loads the baseline. A missing file returns nil and no error.
func (s *Store) Read() (*Baseline, error) {
	f, err := os.Open(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening baseline: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b Baseline
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding baseline: %w", err)
	}
	if b.Files == nil {
		b.Files = map[string]string{}
	}
	return &b, nil
}

// Write saves the baseline.
func (s *Store) Write(b Baseline) (err error) {
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// Reset removes the state directory.
func (s *Store) Reset() error {
	return os.RemoveAll(s.baseDir)
}

// Capture reads the files matching patterns through sc.
func Capture(ctx context.Context, sc *scanner.Scanner, patterns []string) (map[string]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if err := scanner.ValidatePatterns(patterns); err != nil {
		return nil, err
	}
	paths, err := sc.FilesFiltered(ctx, scanner.FilterOptions{
		ExcludeDirs: scanner.DefaultExcludeDirs(),
		Include:     patterns,
	})
	if err != nil {
		return nil, err
	}
	return sc.ReadFiles(paths)
}

// Snapshot captures the current contents as a new baseline.
func Snapshot(ctx context.Context, sc *scanner.Scanner, patterns []string, now time.Time) (Baseline, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	files, err := Capture(ctx, sc, patterns)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{Created: now.UTC(), Patterns: patterns, Files: files}, nil
}

// Current reads the present contents of every file the baseline recorded,
// plus any new files its patterns now match.
func Current(ctx context.Context, sc *scanner.Scanner, b Baseline) (map[string]string, error) {
	current, err := Capture(ctx, sc, b.Patterns)
	if err != nil {
		return nil, err
	}
	recorded := make([]string, 0, len(b.Files))
	for p := range b.Files {
		if _, ok := current[p]; !ok {
			recorded = append(recorded, p)
		}
	}
	extra, err := sc.ReadFiles(recorded)
	if err != nil {
		return nil, err
	}
	for p, c := range extra {
		current[p] = c
	}
	return current, nil
}
