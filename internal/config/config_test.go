package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSmarttreeEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"SMARTTREE_DEFAULT_FORMAT", "SMARTTREE_CONCURRENCY",
		"SMARTTREE_LOG_FORMAT", "SMARTTREE_LOG_LEVEL", "SMART_TREE_ALLOW",
	} {
		t.Setenv(v, "")
	}
}

func writeTomlFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolveDefaultsOnly(t *testing.T) {
	clearSmarttreeEnv(t)
	dir := t.TempDir()

	cfg, err := Resolve(Options{ProjectDir: dir})
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.DefaultFormat, cfg.DefaultFormat)
	assert.Equal(t, want.Concurrency, cfg.Concurrency)
	assert.Equal(t, want.LogFormat, cfg.LogFormat)
	assert.Equal(t, want.LogLevel, cfg.LogLevel)
}

func TestResolveMissingProjectFileIsNotAnError(t *testing.T) {
	clearSmarttreeEnv(t)
	dir := t.TempDir()

	_, err := Resolve(Options{ProjectDir: dir})
	assert.NoError(t, err)
}

func TestResolveProjectFileOverridesDefaults(t *testing.T) {
	clearSmarttreeEnv(t)
	dir := t.TempDir()
	writeTomlFile(t, dir, fileName, `
default_format = "summary-ai"
concurrency = 8
`)

	cfg, err := Resolve(Options{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "summary-ai", cfg.DefaultFormat)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestResolveEnvOverridesProjectFile(t *testing.T) {
	clearSmarttreeEnv(t)
	dir := t.TempDir()
	writeTomlFile(t, dir, fileName, `default_format = "summary-ai"`)
	t.Setenv("SMARTTREE_DEFAULT_FORMAT", "digest")

	cfg, err := Resolve(Options{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "digest", cfg.DefaultFormat)
}

func TestResolveCLIFlagsOverrideEverything(t *testing.T) {
	clearSmarttreeEnv(t)
	dir := t.TempDir()
	writeTomlFile(t, dir, fileName, `default_format = "summary-ai"`)
	t.Setenv("SMARTTREE_DEFAULT_FORMAT", "digest")

	cfg, err := Resolve(Options{
		ProjectDir: dir,
		CLIFlags:   map[string]any{"default_format": "claude"},
	})
	require.NoError(t, err)
	assert.Equal(t, "claude", cfg.DefaultFormat)
}

func TestResolveEnvSplitsAllowRoots(t *testing.T) {
	clearSmarttreeEnv(t)
	dir := t.TempDir()
	t.Setenv("SMART_TREE_ALLOW", "/a:/b")

	cfg, err := Resolve(Options{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.AllowRoots)
}
