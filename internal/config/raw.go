package config

import "time"

type RawPosition struct {
	X      *int `yaml:"x"`
	Y      *int `yaml:"y"`
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawClassConfig struct {
	Hotkey              *string      `yaml:"hotkey"`
	OpenAt              *string      `yaml:"open_at"`
	ShowToolbar         *bool        `yaml:"show_toolbar"`
	Position            *RawPosition `yaml:"position"`
	Launch              *string      `yaml:"launch"`
	LaunchNew           *bool        `yaml:"launch_new"`
	FullscreenOnPresent *bool        `yaml:"fullscreen_on_present"`
}

type RawHotkeys struct {
	ToggleMain         *string `yaml:"toggle_main"`
	ToggleFocused      *string `yaml:"toggle_focused"`
	ToggleUnderPointer *string `yaml:"toggle_under_pointer"`
	ToggleToolbar      *string `yaml:"toggle_toolbar"`
	CloseAll           *string `yaml:"close_all"`
	Present            *string `yaml:"present"`
}

type RawLoggingConfig struct {
	Level      *string `yaml:"level"`
	File       *string `yaml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups"`
}

// RawConfig mirrors the file layout. Nil fields were not set and take
// their default.
type RawConfig struct {
	MainWindowClass     *string                   `yaml:"main_window_class"`
	ToolbarHeight       *int                      `yaml:"toolbar_height"`
	DoubleApplyPosition *bool                     `yaml:"double_apply_position"`
	CloseOrphans        *bool                     `yaml:"close_orphans"`
	CloseOnPresentStop  *string                   `yaml:"close_on_present_stop"`
	DefaultShowToolbar  *bool                     `yaml:"default_show_toolbar"`
	DisplayCacheTTL     *time.Duration            `yaml:"display_cache_ttl"`
	LaunchTimeout       *time.Duration            `yaml:"launch_timeout"`
	Display             *string                   `yaml:"display"`
	Hotkeys             *RawHotkeys               `yaml:"hotkeys"`
	Classes             map[string]RawClassConfig `yaml:"classes"`
	Logging             *RawLoggingConfig         `yaml:"logging"`
}
