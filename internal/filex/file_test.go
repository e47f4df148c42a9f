package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedDir(t *testing.T) {
	base := t.TempDir()
	want := filepath.Join(base, "a", "b")

	got, err := EnsureDir(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := t.TempDir()

	got1, err := EnsureDir(dir)
	require.NoError(t, err)
	got2, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, got1, got2)
}
