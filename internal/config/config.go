package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/runtimepath"
)

// Position is a rect in desktop coordinates.
type Position struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Rect converts p to a geometry.Rect.
func (p Position) Rect() geometry.Rect {
	return geometry.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// ClassConfig holds the fullscreen options of one WM_CLASS class.
type ClassConfig struct {
	Hotkey string `yaml:"hotkey,omitempty"`
	// OpenAt: none, current, pointer, position, position_and_size.
	OpenAt string `yaml:"open_at"`
	// ShowToolbar falls back to default_show_toolbar when unset.
	ShowToolbar         *bool    `yaml:"show_toolbar,omitempty"`
	Position            Position `yaml:"position"`
	Launch              string   `yaml:"launch,omitempty"`
	LaunchNew           bool     `yaml:"launch_new,omitempty"`
	FullscreenOnPresent bool     `yaml:"fullscreen_on_present,omitempty"`
}

// Hotkeys are the global bindings, in xgbutil keybind syntax.
type Hotkeys struct {
	ToggleMain         string `yaml:"toggle_main,omitempty"`
	ToggleFocused      string `yaml:"toggle_focused,omitempty"`
	ToggleUnderPointer string `yaml:"toggle_under_pointer,omitempty"`
	ToggleToolbar      string `yaml:"toggle_toolbar,omitempty"`
	CloseAll           string `yaml:"close_all,omitempty"`
	Present            string `yaml:"present,omitempty"`
}

// LoggingConfig configures the daemon log.
type LoggingConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level"`
	// File defaults to fullframe.log in the state directory.
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Config holds the application configuration.
type Config struct {
	MainWindowClass     string                 `yaml:"main_window_class"`
	ToolbarHeight       int                    `yaml:"toolbar_height"`
	DoubleApplyPosition bool                   `yaml:"double_apply_position"`
	CloseOrphans        bool                   `yaml:"close_orphans"`
	CloseOnPresentStop  string                 `yaml:"close_on_present_stop"`
	DefaultShowToolbar  bool                   `yaml:"default_show_toolbar"`
	DisplayCacheTTL     time.Duration          `yaml:"display_cache_ttl"`
	LaunchTimeout       time.Duration          `yaml:"launch_timeout"`
	Display             string                 `yaml:"display,omitempty"`
	Hotkeys             Hotkeys                `yaml:"hotkeys"`
	Classes             map[string]ClassConfig `yaml:"classes"`
	Logging             LoggingConfig          `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		MainWindowClass:    "code",
		ToolbarHeight:      39,
		CloseOnPresentStop: string(fullscreen.PresentCloseCreatedAtStart),
		DefaultShowToolbar: true,
		DisplayCacheTTL:    2 * time.Second,
		LaunchTimeout:      10 * time.Second,
		Hotkeys: Hotkeys{
			ToggleMain:         "F8",
			ToggleFocused:      "F9",
			ToggleUnderPointer: "Control-F9",
			ToggleToolbar:      "F12",
			CloseAll:           "Control-F8",
		},
		Classes: make(map[string]ClassConfig),
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ManagerOptions maps the config onto the fullscreen manager options.
func (c *Config) ManagerOptions() fullscreen.Options {
	opts := fullscreen.Options{
		MainWindowClass:     c.MainWindowClass,
		ToolbarHeight:       c.ToolbarHeight,
		DoubleApplyPosition: c.DoubleApplyPosition,
		CloseOnPresentStop:  fullscreen.PresentClosePolicy(c.CloseOnPresentStop),
		DefaultShowToolbar:  c.DefaultShowToolbar,
		Classes:             make(map[string]fullscreen.ClassOptions, len(c.Classes)),
	}
	for name, class := range c.Classes {
		opts.Classes[name] = c.classOptions(class)
	}
	return opts
}

func (c *Config) classOptions(class ClassConfig) fullscreen.ClassOptions {
	openAt := fullscreen.OpenPolicy(class.OpenAt)
	if openAt == "" {
		openAt = fullscreen.OpenPointer
	}
	show := c.DefaultShowToolbar
	if class.ShowToolbar != nil {
		show = *class.ShowToolbar
	}
	return fullscreen.ClassOptions{
		OpenAt:              openAt,
		ShowToolbar:         show,
		Position:            class.Position.Rect(),
		FullscreenOnPresent: class.FullscreenOnPresent,
		LaunchNew:           class.LaunchNew,
	}
}

// LaunchTemplates returns the launch command of every class that has one.
func (c *Config) LaunchTemplates() map[string]string {
	out := make(map[string]string)
	for name, class := range c.Classes {
		if strings.TrimSpace(class.Launch) != "" {
			out[name] = class.Launch
		}
	}
	return out
}

// ClassNames returns the configured classes, sorted.
func (c *Config) ClassNames() []string {
	names := make([]string, 0, len(c.Classes))
	for name := range c.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return DefaultConfig().Logging
	}
	cfg := c.Logging
	if cfg.File == "" {
		if path, err := runtimepath.LogPath(); err == nil {
			cfg.File = path
		}
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// Save writes the configuration to path, or to the standard location when
// path is empty.
//
// Note: this marshals the effective config and will not preserve comments or
// key order from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MainWindowClass) == "" {
		return &ValidationError{Path: "main_window_class", Err: fmt.Errorf("main_window_class is required")}
	}
	if c.ToolbarHeight < 0 {
		return &ValidationError{Path: "toolbar_height", Err: fmt.Errorf("toolbar_height must be >= 0")}
	}
	if !fullscreen.PresentClosePolicy(c.CloseOnPresentStop).Valid() {
		return &ValidationError{Path: "close_on_present_stop", Err: fmt.Errorf("close_on_present_stop must be one of: none, created_at_start, all")}
	}
	if c.DisplayCacheTTL < 0 {
		return &ValidationError{Path: "display_cache_ttl", Err: fmt.Errorf("display_cache_ttl must be >= 0")}
	}
	if c.LaunchTimeout <= 0 {
		return &ValidationError{Path: "launch_timeout", Err: fmt.Errorf("launch_timeout must be > 0")}
	}
	if c.Classes == nil {
		return &ValidationError{Path: "classes", Err: fmt.Errorf("classes must not be null")}
	}

	seen := make(map[string]string)
	for _, name := range c.ClassNames() {
		class := c.Classes[name]
		path := "classes." + name
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "classes", Err: fmt.Errorf("classes contains an empty class name")}
		}
		if prev, ok := seen[strings.ToLower(name)]; ok {
			return &ValidationError{Path: path, Err: fmt.Errorf("class %q duplicates %q (class names are case-insensitive)", name, prev)}
		}
		seen[strings.ToLower(name)] = name

		if class.OpenAt != "" && !fullscreen.OpenPolicy(class.OpenAt).Valid() {
			return &ValidationError{Path: path + ".open_at", Err: fmt.Errorf("open_at must be one of: none, current, pointer, position, position_and_size")}
		}
		if class.OpenAt == string(fullscreen.OpenPositionAndSize) && (class.Position.Width <= 0 || class.Position.Height <= 0) {
			return &ValidationError{Path: path + ".position", Err: fmt.Errorf("position_and_size requires a positive width and height")}
		}
		if class.LaunchNew && strings.TrimSpace(class.Launch) == "" {
			return &ValidationError{Path: path + ".launch_new", Err: fmt.Errorf("launch_new requires a launch command")}
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxBackups < 0 {
		return &ValidationError{Path: "logging.max_backups", Err: fmt.Errorf("max_backups must be >= 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string
	bound := make(map[string]string)
	bind := func(key, owner string) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		if prev, ok := bound[strings.ToLower(key)]; ok {
			warnings = append(warnings, fmt.Sprintf("hotkey %q is bound by both %s and %s; the first one wins", key, prev, owner))
			return
		}
		bound[strings.ToLower(key)] = owner
	}

	bind(c.Hotkeys.ToggleMain, "hotkeys.toggle_main")
	bind(c.Hotkeys.ToggleFocused, "hotkeys.toggle_focused")
	bind(c.Hotkeys.ToggleUnderPointer, "hotkeys.toggle_under_pointer")
	bind(c.Hotkeys.ToggleToolbar, "hotkeys.toggle_toolbar")
	bind(c.Hotkeys.CloseAll, "hotkeys.close_all")
	bind(c.Hotkeys.Present, "hotkeys.present")
	for _, name := range c.ClassNames() {
		bind(c.Classes[name].Hotkey, "classes."+name+".hotkey")
	}

	for _, name := range c.ClassNames() {
		class := c.Classes[name]
		if class.FullscreenOnPresent && class.OpenAt == string(fullscreen.OpenNone) {
			warnings = append(warnings, fmt.Sprintf("classes.%s has fullscreen_on_present but open_at is none; it will be skipped", name))
		}
	}

	return warnings
}
