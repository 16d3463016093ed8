package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".github", "workflows"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Root:     dir,
			Subdirs:  []string{".github/workflows"},
			Debounce: 50 * time.Millisecond,
		}, func(context.Context) { calls <- struct{}{} })
	}()

	// Give the watcher time to register before producing events.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".github", "workflows", "ci.yml"), []byte{byte('a' + i)}, 0o644))
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not invoked")
	}

	// The burst collapses into a single call.
	select {
	case <-calls:
		t.Fatal("burst produced more than one call")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRunWatchesSubdirsCreatedLater(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 20)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Root:     dir,
			Subdirs:  []string{".github", ".github/workflows"},
			Debounce: 50 * time.Millisecond,
		}, func(context.Context) { calls <- struct{}{} })
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".github"), 0o755))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".github", "workflows"), 0o755))
	time.Sleep(300 * time.Millisecond)

	// Directory creation itself triggers runs; drain them.
	for len(calls) > 0 {
		<-calls
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".github", "workflows", "ci.yml"), []byte("name: CI\n"), 0o644))
	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("write in a directory created after start was not seen")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestIgnored(t *testing.T) {
	assert.True(t, ignored("/repo/.repoforge-tmp-123"))
	assert.True(t, ignored("/repo/.git"))
	assert.True(t, ignored("/repo/file.swp"))
	assert.False(t, ignored("/repo/repoforge.yaml"))
}
