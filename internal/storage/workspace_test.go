package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace(t *testing.T) {
	fs := NewMemMapFileSystem()
	ws, err := NewWorkspace("/work", fs, nil)
	require.NoError(t, err)

	t.Run("create makes an isolated conversion directory", func(t *testing.T) {
		dir, err := ws.Create("conv1")
		require.NoError(t, err)
		assert.Equal(t, ws.Dir("conv1"), dir)

		info, err := fs.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("remove deletes the directory and its contents", func(t *testing.T) {
		dir, err := ws.Create("conv2")
		require.NoError(t, err)
		require.NoError(t, fs.WriteFile(dir+"/a.css", []byte("x"), 0644))

		require.NoError(t, ws.Remove("conv2"))
		_, err = fs.Stat(dir)
		assert.Error(t, err)
	})
}
