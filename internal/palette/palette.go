package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the picker is closed without a selection.
var ErrCancelled = errors.New("palette cancelled")

// Item is one selectable row.
type Item struct {
	Label  string
	Action string
	Icon   string
	// Meta holds extra search keywords (rofi only).
	Meta     string
	IsHeader bool
	IsActive bool
}

// Backend shows items to the user and returns the chosen one.
type Backend interface {
	Show(prompt string, items []Item, message string) (Item, error)
}

// backendOrder is the auto-detection priority. Only X11 pickers are listed.
var backendOrder = []string{"rofi", "dmenu"}

var lookPath = exec.LookPath

// NewBackend creates a backend by name: auto, rofi or dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		for _, candidate := range backendOrder {
			if _, err := lookPath(candidate); err == nil {
				name = candidate
				break
			}
		}
		if name == "" || name == "auto" {
			return nil, fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
		}
	}

	switch name {
	case "rofi":
		if _, err := lookPath("rofi"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", name)
		}
		return &menuBackend{command: "rofi", rofi: true}, nil
	case "dmenu":
		if _, err := lookPath("dmenu"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", name)
		}
		return &menuBackend{command: "dmenu"}, nil
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, rofi, dmenu)", name)
	}
}
