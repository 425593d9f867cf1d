package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenNoFilesExist(t *testing.T) {
	dir := t.TempDir()
	os.Unsetenv("GNS_ENV")
	os.Unsetenv("ENVIRONMENT")

	cfg, err := Load(LoaderOptions{ConfigDir: filepath.Join(dir, "missing")})
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "ws://localhost:8787/ws", cfg.Relay.URL)
}

func TestLoadPrefersEnvironmentSpecificFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staging.yaml"), []byte("relay:\n  url: ws://staging/ws\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("relay:\n  url: ws://default/ws\n"), 0644))

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "staging"})
	require.NoError(t, err)
	assert.Equal(t, "ws://staging/ws", cfg.Relay.URL)
}

func TestLoadAppliesEnvironmentOverrideAfterFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("relay:\n  url: ws://default/ws\n"), 0644))
	t.Setenv("GNS_RELAY_URL", "ws://override/ws")

	cfg, err := Load(LoaderOptions{ConfigDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "ws://override/ws", cfg.Relay.URL)
}

func TestLoadForEnvironmentSetsEnvironmentField(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := LoadForEnvironment("staging")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestMustLoadDoesNotPanicOnMissingFiles(t *testing.T) {
	dir := t.TempDir()
	assert.NotPanics(t, func() {
		cfg := MustLoad(LoaderOptions{ConfigDir: dir})
		assert.NotNil(t, cfg)
	})
}
