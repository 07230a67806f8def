package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.MainWindowClass != nil {
		cfg.MainWindowClass = strings.TrimSpace(*raw.MainWindowClass)
	}
	if raw.ToolbarHeight != nil {
		cfg.ToolbarHeight = *raw.ToolbarHeight
	}
	if raw.DoubleApplyPosition != nil {
		cfg.DoubleApplyPosition = *raw.DoubleApplyPosition
	}
	if raw.CloseOrphans != nil {
		cfg.CloseOrphans = *raw.CloseOrphans
	}
	if raw.CloseOnPresentStop != nil {
		cfg.CloseOnPresentStop = *raw.CloseOnPresentStop
	}
	if raw.DefaultShowToolbar != nil {
		cfg.DefaultShowToolbar = *raw.DefaultShowToolbar
	}
	if raw.DisplayCacheTTL != nil {
		cfg.DisplayCacheTTL = *raw.DisplayCacheTTL
	}
	if raw.LaunchTimeout != nil {
		cfg.LaunchTimeout = *raw.LaunchTimeout
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}

	if h := raw.Hotkeys; h != nil {
		applyString(&cfg.Hotkeys.ToggleMain, h.ToggleMain)
		applyString(&cfg.Hotkeys.ToggleFocused, h.ToggleFocused)
		applyString(&cfg.Hotkeys.ToggleUnderPointer, h.ToggleUnderPointer)
		applyString(&cfg.Hotkeys.ToggleToolbar, h.ToggleToolbar)
		applyString(&cfg.Hotkeys.CloseAll, h.CloseAll)
		applyString(&cfg.Hotkeys.Present, h.Present)
	}

	for name, rc := range raw.Classes {
		if strings.TrimSpace(name) == "" {
			return nil, &ValidationError{Path: "classes", Err: fmt.Errorf("classes contains an empty class name")}
		}
		cfg.Classes[name] = buildClass(rc)
	}

	if l := raw.Logging; l != nil {
		applyString(&cfg.Logging.Level, l.Level)
		applyString(&cfg.Logging.File, l.File)
		if l.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *l.MaxSizeMB
		}
		if l.MaxBackups != nil {
			cfg.Logging.MaxBackups = *l.MaxBackups
		}
	}

	return cfg, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func buildClass(rc RawClassConfig) ClassConfig {
	var class ClassConfig
	applyString(&class.Hotkey, rc.Hotkey)
	applyString(&class.OpenAt, rc.OpenAt)
	applyString(&class.Launch, rc.Launch)
	if rc.ShowToolbar != nil {
		show := *rc.ShowToolbar
		class.ShowToolbar = &show
	}
	if rc.LaunchNew != nil {
		class.LaunchNew = *rc.LaunchNew
	}
	if rc.FullscreenOnPresent != nil {
		class.FullscreenOnPresent = *rc.FullscreenOnPresent
	}
	if p := rc.Position; p != nil {
		if p.X != nil {
			class.Position.X = *p.X
		}
		if p.Y != nil {
			class.Position.Y = *p.Y
		}
		if p.Width != nil {
			class.Position.Width = *p.Width
		}
		if p.Height != nil {
			class.Position.Height = *p.Height
		}
	}
	return class
}
