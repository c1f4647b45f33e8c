package path

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootPath(t *testing.T) {
	root := RootPath()
	ok, err := Exists(filepath.Join(root, "go.mod"))
	require.NoError(t, err)
	assert.True(t, ok, root)
}

func TestRootPath_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(RootEnv, dir+"/")
	assert.Equal(t, filepath.Clean(dir), RootPath())
}

func TestExists(t *testing.T) {
	ok, err := Exists(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}
