package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crafted-tech/msiflow/msi"
	"github.com/crafted-tech/msiflow/ui"
)

// isolateConfig points the user config directory at an empty temp dir and
// clears the environment variables the CLI reads.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)
	for _, name := range []string{
		"MSIFLOW_LOG_PREFIX", "MSIFLOW_LOG_FILE", "MSIFLOW_UI_LEVEL", "MSIFLOW_LEGACY_SCANNER",
		"MSIFLOW_ACCUMULATE", "MSIFLOW_GUI", "MSIFLOW_THEME", "MSIFLOW_HIDE_CANCEL",
		"MSIFLOW_RECORD", "MSIFLOW_VERBOSE", "MSIFLOW_NO_COLOR", "NO_COLOR",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, used, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
log_prefix = "acme-setup"
ui_level = "basic"
accumulate = true
record = "from-file.txt"
theme = "dark"
hide_cancel = true
`)
	t.Setenv("MSIFLOW_RECORD", "from-env.txt")
	t.Setenv("MSIFLOW_LEGACY_SCANNER", "true")
	t.Setenv("MSIFLOW_THEME", "light")
	t.Setenv("MSIFLOW_LOG_FILE", "from-env.log")

	cfg, used, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, Config{
		LogPrefix:     "acme-setup",
		LogFile:       "from-env.log",
		UILevel:       "basic",
		LegacyScanner: true,
		Accumulate:    true,
		Theme:         "light",
		HideCancel:    true,
		Record:        "from-env.txt",
	}, cfg)
}

func TestLoadConfigDefaultPath(t *testing.T) {
	isolateConfig(t)
	path := defaultConfigPath()
	require.NotEmpty(t, path)
	writeFile(t, path, `gui = true`)

	cfg, used, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.True(t, cfg.GUI)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := isolateConfig(t)

	_, _, err := loadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, `unknown_key = 1`)
	_, _, err = loadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	t.Setenv("MSIFLOW_GUI", "maybe")
	_, _, err = loadConfig("")
	assert.ErrorContains(t, err, "parse env")
}

func TestLoadConfigNoColorConvention(t *testing.T) {
	isolateConfig(t)
	t.Setenv("NO_COLOR", "1")

	cfg, _, err := loadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
}

func TestApplyFlagsOverridesOnlyChanged(t *testing.T) {
	isolateConfig(t)
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--gui", "--ui-level", "full", "--theme", "dark", "--no-cancel"}))

	cfg := Config{LogPrefix: "from-file", UILevel: "basic", Accumulate: true, Theme: "light"}
	require.NoError(t, applyFlags(cmd, &cfg))

	assert.Equal(t, Config{
		LogPrefix:  "from-file",
		UILevel:    "full",
		Accumulate: true,
		GUI:        true,
		Theme:      "dark",
		HideCancel: true,
	}, cfg)
}

func TestConfigDerivedOptions(t *testing.T) {
	assert.Empty(t, Config{}.ProgressOptions())
	assert.Len(t, Config{LegacyScanner: true, Accumulate: true}.ProgressOptions(), 2)

	level, err := Config{UILevel: "reduced"}.EngineUILevel()
	require.NoError(t, err)
	assert.Equal(t, msi.UILevelReduced, level)

	_, err = Config{UILevel: "loud"}.EngineUILevel()
	assert.ErrorContains(t, err, "ui_level")

	opts, err := Config{Theme: "dark", HideCancel: true}.WindowOptions("msiflow", "Installing app.msi")
	require.NoError(t, err)
	var window ui.Config
	for _, opt := range opts {
		opt(&window)
	}
	assert.Equal(t, ui.Config{
		Title:      "msiflow",
		Heading:    "Installing app.msi",
		Theme:      ui.ThemeDark,
		HideCancel: true,
	}, window)

	_, err = Config{Theme: "neon"}.WindowOptions("msiflow", "")
	assert.ErrorContains(t, err, "theme")
}
