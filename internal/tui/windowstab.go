package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/1broseidon/fullframe/internal/ipc"
)

type windowItem struct {
	entry ipc.FullscreenEntry
	now   time.Time
}

func (i windowItem) Title() string {
	title := fmt.Sprintf("%s 0x%x", i.entry.WindowType, uint32(i.entry.WindowID))
	if i.entry.MainWindow {
		title += " (main)"
	}
	return title
}

func (i windowItem) Description() string {
	parts := []string{i.entry.ScreenBounds.String()}
	if i.entry.Process != "" {
		parts = append(parts, fmt.Sprintf("%s[%d]", i.entry.Process, i.entry.PID))
	}
	if !i.entry.EnteredAt.IsZero() {
		parts = append(parts, humanize.RelTime(i.entry.EnteredAt, i.now, "ago", "from now"))
	}
	return strings.Join(parts, " | ")
}

func (i windowItem) FilterValue() string { return i.entry.WindowType }

// WindowsTab lists fullscreen windows and acts on them over IPC.
type WindowsTab struct {
	list   list.Model
	daemon Daemon
	width  int
	height int
}

// NewWindowsTab creates an empty WindowsTab.
func NewWindowsTab(d Daemon) WindowsTab {
	return WindowsTab{list: newList("Fullscreen windows"), daemon: d}
}

// SetSnapshot replaces the listed windows.
func (t *WindowsTab) SetSnapshot(windows []ipc.FullscreenEntry, now time.Time) {
	items := make([]list.Item, 0, len(windows))
	for _, w := range windows {
		items = append(items, windowItem{entry: w, now: now})
	}
	t.list.SetItems(items)
}

// Update handles messages for the windows tab.
func (t WindowsTab) Update(msg tea.Msg) (WindowsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(listWidth(t.width), t.height)
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "x", "delete":
			if item, ok := t.list.SelectedItem().(windowItem); ok {
				return t, t.exitCmd(item.entry)
			}
			return t, nil
		case "t":
			return t, t.toolbarCmd()
		case "c":
			return t, t.closeAllCmd()
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t WindowsTab) exitCmd(entry ipc.FullscreenEntry) tea.Cmd {
	d := t.daemon
	return func() tea.Msg {
		exited, err := d.Exit(entry.WindowID)
		if err != nil {
			return actionMsg{err: err}
		}
		if !exited {
			return actionMsg{text: fmt.Sprintf("%s was not fullscreen", entry.WindowType)}
		}
		return actionMsg{text: fmt.Sprintf("restored %s", entry.WindowType)}
	}
}

func (t WindowsTab) toolbarCmd() tea.Cmd {
	d := t.daemon
	return func() tea.Msg {
		show, err := d.ToggleToolbar()
		if err != nil {
			return actionMsg{err: err}
		}
		if show {
			return actionMsg{text: "toolbar shown"}
		}
		return actionMsg{text: "toolbar hidden"}
	}
}

func (t WindowsTab) closeAllCmd() tea.Cmd {
	d := t.daemon
	return func() tea.Msg {
		closed, err := d.CloseAll()
		if err != nil {
			return actionMsg{err: err}
		}
		if !closed {
			return actionMsg{text: "nothing was fullscreen"}
		}
		return actionMsg{text: "closed all fullscreen windows"}
	}
}

// View renders the list and the selected window's details.
func (t WindowsTab) View() string {
	if len(t.list.Items()) == 0 {
		return placeholder("No fullscreen windows", t.width, t.height)
	}

	var detail string
	if item, ok := t.list.SelectedItem().(windowItem); ok {
		e := item.entry
		lines := []string{
			row("Class", e.WindowType),
			row("Instance", e.ActualType),
			row("Title", e.WindowTitle),
			row("Window", fmt.Sprintf("0x%x", uint32(e.WindowID))),
			row("Display", e.ScreenBounds.String()),
			row("Opened at", fmt.Sprintf("%d,%d", e.FullscreenAtPosition.X, e.FullscreenAtPosition.Y)),
			row("Toolbar", yesNo(e.ShowTopToolbar)),
			row("Restores to", e.PreFullscreenPosition.String()),
			row("Close on exit", yesNo(e.CloseOnExitFullscreen)),
		}
		detail = strings.Join(lines, "\n")
	}
	right := lipgloss.NewStyle().
		Width(t.width-listWidth(t.width)).
		Height(t.height).
		Padding(1, 2).
		Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, t.list.View(), right)
}
