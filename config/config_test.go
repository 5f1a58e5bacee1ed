package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".loomrc.yaml")
	content := "prompt: \">> \"\ncolor: false\nauto_use:\n  - math\n  - gui\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ">> ", cfg.Prompt)
	require.False(t, cfg.Color)
	require.Equal(t, []string{"math", "gui"}, cfg.AutoUse)
}

func TestLoad_MalformedYAMLIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".loomrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
