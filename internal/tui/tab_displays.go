package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/ipc"
)

type displayItem struct {
	d display.Display
}

func (i displayItem) Title() string {
	name := fmt.Sprintf("Display %d", i.d.ID)
	if i.d.Name != "" {
		name += " (" + i.d.Name + ")"
	}
	if i.d.Primary {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render("★") + " " + name
	}
	return "  " + name
}

func (i displayItem) Description() string {
	desc := i.d.Bounds.String()
	if i.d.HasMainWindow {
		desc += " | main window"
	}
	return desc
}

func (i displayItem) FilterValue() string { return i.d.Name }

// DisplaysTab lists the display layout reported by the daemon.
type DisplaysTab struct {
	list    list.Model
	windows []ipc.FullscreenEntry
	width   int
	height  int
}

// NewDisplaysTab creates an empty DisplaysTab.
func NewDisplaysTab() DisplaysTab {
	return DisplaysTab{list: newList("Displays")}
}

// SetSnapshot replaces the listed displays, keeping the selection.
func (t *DisplaysTab) SetSnapshot(displays []display.Display, windows []ipc.FullscreenEntry) {
	items := make([]list.Item, 0, len(displays))
	for _, d := range displays {
		items = append(items, displayItem{d: d})
	}
	t.list.SetItems(items)
	t.windows = windows
}

// Update handles messages for the displays tab.
func (t DisplaysTab) Update(msg tea.Msg) (DisplaysTab, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = size.Width
		t.height = size.Height
		t.list.SetSize(listWidth(t.width), t.height)
		return t, nil
	}
	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

// View renders the list and the selected display's details.
func (t DisplaysTab) View() string {
	if len(t.list.Items()) == 0 {
		return placeholder("No displays (is the daemon running?)", t.width, t.height)
	}
	left := t.list.View()

	var detail string
	if item, ok := t.list.SelectedItem().(displayItem); ok {
		detail = t.detail(item.d)
	}
	right := lipgloss.NewStyle().
		Width(t.width-listWidth(t.width)).
		Height(t.height).
		Padding(1, 2).
		Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (t DisplaysTab) detail(d display.Display) string {
	lines := []string{
		row("Bounds", d.Bounds.String()),
		row("Physical", d.PhysicalBounds.String()),
		row("Work area", d.WorkArea.String()),
		row("Scale", fmt.Sprintf("%.2fx", d.Scale())),
		row("Primary", yesNo(d.Primary)),
		row("Main window", yesNo(d.HasMainWindow)),
		"",
	}

	var occupants []string
	for _, w := range t.windows {
		if w.OnDisplay(d) {
			occupants = append(occupants, fmt.Sprintf("%s (0x%x)", w.WindowType, uint32(w.WindowID)))
		}
	}
	if len(occupants) == 0 {
		lines = append(lines, dimStyle.Render("  no fullscreen window"))
	} else {
		lines = append(lines, row("Fullscreen", strings.Join(occupants, ", ")))
	}
	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
