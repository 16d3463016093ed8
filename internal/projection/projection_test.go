// SPDX-License-Identifier: AGPL-3.0-or-later

package projection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "out", "file.txt")

	require.NoError(t, AtomicWrite(target, []byte("hello world")))
	require.NoError(t, AtomicWrite(target, []byte("replaced")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteTree(t *testing.T) {
	root := t.TempDir()
	written, err := WriteTree(root, map[string]string{
		".github/workflows/ci.yml": "name: CI\n",
		"README.md":                "# x\n",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".github/workflows/ci.yml", "README.md"}, written)

	data, err := os.ReadFile(filepath.Join(root, ".github", "workflows", "ci.yml"))
	require.NoError(t, err)
	assert.Equal(t, "name: CI\n", string(data))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"b": 2, "a": 1, "c": 3}))
	assert.Empty(t, SortedKeys(map[string]string{}))
}

func TestRenderTable(t *testing.T) {
	got := RenderTable([]string{"Name", "CI"}, [][]string{{"saas", "enforced"}})
	assert.Equal(t, "| Name | CI |\n| --- | --- |\n| saas | enforced |\n", got)
}

func TestRenderList(t *testing.T) {
	assert.Equal(t, "- a\n- b\n", RenderList([]string{"a", "b"}))
}
