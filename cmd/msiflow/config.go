package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/crafted-tech/msiflow/msi"
	"github.com/crafted-tech/msiflow/progress"
	"github.com/crafted-tech/msiflow/ui"
)

// Config holds the CLI settings.
// Priority: default < config file < environment < flag.
type Config struct {
	LogPrefix     string `toml:"log_prefix"     env:"MSIFLOW_LOG_PREFIX"`
	LogFile       string `toml:"log_file"       env:"MSIFLOW_LOG_FILE"`
	UILevel       string `toml:"ui_level"       env:"MSIFLOW_UI_LEVEL"`
	LegacyScanner bool   `toml:"legacy_scanner" env:"MSIFLOW_LEGACY_SCANNER"`
	Accumulate    bool   `toml:"accumulate"     env:"MSIFLOW_ACCUMULATE"`
	GUI           bool   `toml:"gui"            env:"MSIFLOW_GUI"`
	Theme         string `toml:"theme"          env:"MSIFLOW_THEME"`
	HideCancel    bool   `toml:"hide_cancel"    env:"MSIFLOW_HIDE_CANCEL"`
	Record        string `toml:"record"         env:"MSIFLOW_RECORD"`
	Verbose       bool   `toml:"verbose"        env:"MSIFLOW_VERBOSE"`
	NoColor       bool   `toml:"no_color"       env:"MSIFLOW_NO_COLOR"`
}

func defaultConfig() Config {
	return Config{
		LogPrefix: "msiflow",
		UILevel:   "none",
		Theme:     "system",
	}
}

// configFileName is looked up in the user config directory when --config is
// not given.
const configFileName = "config.toml"

// defaultConfigPath returns the per-user config file path, or "" if the
// user config directory is unknown.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "msiflow", configFileName)
}

// loadConfig layers the config file and environment over the defaults. An
// explicit path must exist; the default path is optional. It returns the
// path of the file that was read, if any.
func loadConfig(explicitPath string) (Config, string, error) {
	cfg := defaultConfig()

	path := explicitPath
	if path == "" {
		path = defaultConfigPath()
	}

	used := ""
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeConfig(data, &cfg); err != nil {
				return cfg, "", fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			used = path
		case errors.Is(err, os.ErrNotExist) && explicitPath == "":
		case errors.Is(err, os.ErrNotExist):
			return cfg, "", fmt.Errorf("config file not found: %s", path)
		default:
			return cfg, "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, used, fmt.Errorf("parse env: %w", err)
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}

	return cfg, used, nil
}

// decodeConfig overlays TOML data on cfg. Unknown keys are an error.
func decodeConfig(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// applyFlags overrides cfg with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()

	strFlags := map[string]*string{
		"log-prefix": &cfg.LogPrefix,
		"log-file":   &cfg.LogFile,
		"ui-level":   &cfg.UILevel,
		"theme":      &cfg.Theme,
		"record":     &cfg.Record,
	}
	for name, dst := range strFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	boolFlags := map[string]*bool{
		"legacy-scanner": &cfg.LegacyScanner,
		"accumulate":     &cfg.Accumulate,
		"gui":            &cfg.GUI,
		"no-cancel":      &cfg.HideCancel,
		"verbose":        &cfg.Verbose,
		"no-color":       &cfg.NoColor,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

// ProgressOptions returns the relay options selected by the config.
func (c Config) ProgressOptions() []progress.Option {
	var opts []progress.Option
	if c.LegacyScanner {
		opts = append(opts, progress.WithRawCharCodes())
	}
	if c.Accumulate {
		opts = append(opts, progress.WithAccumulation())
	}
	return opts
}

// EngineUILevel parses the configured engine UI level.
func (c Config) EngineUILevel() (msi.UILevel, error) {
	level, err := msi.ParseUILevel(c.UILevel)
	if err != nil {
		return 0, fmt.Errorf("ui_level: %w", err)
	}
	return level, nil
}

// WindowOptions returns the progress window options selected by the config.
// title names the window; heading is shown above the bar.
func (c Config) WindowOptions(title, heading string) ([]ui.Option, error) {
	theme, err := ui.ParseTheme(c.Theme)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	opts := []ui.Option{ui.WithTitle(title), ui.WithHeading(heading), ui.WithTheme(theme)}
	if c.HideCancel {
		opts = append(opts, ui.WithoutCancel())
	}
	return opts, nil
}
