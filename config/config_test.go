package config

import (
	"io/ioutil"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
		assert.Equal(t, runtime.NumCPU(), c.Scan.Workers)
	})

	t.Run("partial", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wmc2d.toml")
		require.NoError(t, ioutil.WriteFile(path, []byte("[database]\npath = \"/var/lib/wmc2d.db\"\n\n[render]\ndepth = 1\n"), 0600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/wmc2d.db", c.Database.Path)
		assert.Equal(t, 1, c.Render.Depth)
		assert.True(t, c.Render.Mask)
		assert.Equal(t, "info", c.Main.LogLevel)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wmc2d.toml")
		require.NoError(t, ioutil.WriteFile(path, []byte("[render\n"), 0600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wmc2d.toml")

	c := Default()
	c.Main.LogLevel = "debug"
	c.Render.Mask = false
	require.NoError(t, Write(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
