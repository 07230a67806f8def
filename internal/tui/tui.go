package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/platform"
)

// Daemon is the IPC surface the TUI reads and drives. *ipc.Client
// satisfies it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	ListFullscreen() (*ipc.FullscreenData, error)
	Exit(id platform.WindowID) (bool, error)
	CloseAll() (bool, error)
	ToggleToolbar() (bool, error)
	Reload() error
}

// Run starts the interactive TUI. configPath may be empty for the default
// config location.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(configPath, ipc.NewClient()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
