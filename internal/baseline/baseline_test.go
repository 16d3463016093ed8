package baseline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/scanner"
	"github.com/repoforge/repoforge/internal/spec"
)

func write(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), DefaultDir))

	b, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, b)

	want := Baseline{
		Created:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Patterns: []string{"*.yml"},
		Files:    map[string]string{"ci.yml": "name: CI\n"},
	}
	require.NoError(t, store.Write(want))

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, &want, got)

	require.NoError(t, store.Reset())
	got, err = store.Read()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotAndDrift(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "repoforge.yaml", "version: 1.0.0\n")
	write(t, dir, ".github/workflows/ci.yml", "name: CI\n")
	write(t, dir, ".github/workflows/security.yml", "name: Security\n")
	write(t, dir, "src/main.go", "package main\n")

	ctx := context.Background()
	b, err := Snapshot(ctx, scanner.New(dir), nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DefaultPatterns, b.Patterns)
	assert.Len(t, b.Files, 3)
	assert.NotContains(t, b.Files, "src/main.go")

	write(t, dir, ".github/workflows/ci.yml", "name: CI\non: push\n")
	require.NoError(t, os.Remove(filepath.Join(dir, ".github/workflows/security.yml")))
	write(t, dir, ".github/workflows/release.yml", "name: Release\n")

	current, err := Current(ctx, scanner.New(dir), b)
	require.NoError(t, err)
	assert.Contains(t, current, ".github/workflows/release.yml")

	s := spec.Spec{Standards: spec.Standards{CI: spec.LevelEnforced}}
	vs := compliance.CheckDrift(s, b.Files, current)
	require.Len(t, vs, 2)
	assert.Equal(t, compliance.RuleFileModified, vs[0].Rule)
	assert.Equal(t, ".github/workflows/ci.yml", vs[0].File)
	assert.Equal(t, compliance.RuleFileDeleted, vs[1].Rule)
	assert.Equal(t, ".github/workflows/security.yml", vs[1].File)
}

func TestSnapshotRejectsBadPattern(t *testing.T) {
	_, err := Snapshot(context.Background(), scanner.New(t.TempDir()), []string{"[oops"}, time.Now())
	require.Error(t, err)
}
