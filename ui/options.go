package ui

import "fmt"

// ThemeMode specifies the color theme for the window.
type ThemeMode int

const (
	ThemeSystem ThemeMode = iota // Auto-detect from OS (default)
	ThemeDark                    // Force dark mode
	ThemeLight                   // Force light mode
)

// ParseTheme parses a theme name: "system", "dark" or "light". An empty
// name selects ThemeSystem.
func ParseTheme(name string) (ThemeMode, error) {
	switch name {
	case "", "system":
		return ThemeSystem, nil
	case "dark":
		return ThemeDark, nil
	case "light":
		return ThemeLight, nil
	default:
		return ThemeSystem, fmt.Errorf("unknown theme %q", name)
	}
}

// Config holds the configuration for a progress window.
type Config struct {
	Title          string    // Window title
	Heading        string    // Text above the progress bar (default: Title)
	Width          string    // Window width spec: "32em", "480", "60%" (default: "32em")
	Height         string    // Window height spec (default: "12em")
	Theme          ThemeMode // Color theme
	NativeTitleBar bool      // Use the native system titlebar (Linux only)
	HideCancel     bool      // Hide the Cancel button
}

// Option configures a Window.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Title:  "Setup",
		Width:  "32em",
		Height: "12em",
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithHeading sets the text shown above the progress bar.
func WithHeading(heading string) Option {
	return func(c *Config) {
		c.Heading = heading
	}
}

// WithSize sets the window dimensions.
// Accepts dimension specs like "32em", "480", "480px", or "60%".
func WithSize(width, height string) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithTheme sets the color theme mode.
func WithTheme(mode ThemeMode) Option {
	return func(c *Config) {
		c.Theme = mode
	}
}

// WithNativeTitleBar uses the native system titlebar.
func WithNativeTitleBar(native bool) Option {
	return func(c *Config) {
		c.NativeTitleBar = native
	}
}

// WithoutCancel hides the Cancel button. Closing the window still cancels.
func WithoutCancel() Option {
	return func(c *Config) {
		c.HideCancel = true
	}
}
