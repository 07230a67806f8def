package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/1broseidon/fullframe/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabDisplays Tab = iota
	TabWindows
	TabClasses
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabDisplays:
		return "Displays"
	case TabWindows:
		return "Fullscreen"
	case TabClasses:
		return "Classes"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(16).
			Align(lipgloss.Right).
			PaddingRight(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", int(i)+1, i)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(status *ipc.StatusData, message string, width int) string {
	var parts []string
	if status != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts = append(parts, dot+" daemon connected")
		parts = append(parts, fmt.Sprintf("fullscreen:%d/%d", status.FullscreenCount, status.TrackedCount))
		if status.Presenting {
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("presenting"))
		}
		if status.Queued > 0 {
			parts = append(parts, fmt.Sprintf("queued:%d", status.Queued))
		}
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		parts = append(parts, dot+" daemon not running")
	}
	if message != "" {
		parts = append(parts, message)
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(fit(strings.Join(parts, "  "), width))
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(active Tab, width int) string {
	help := "tab/shift-tab: switch tabs  1-3: jump to tab  r: refresh  q/ctrl-c: quit"
	switch active {
	case TabWindows:
		help = "x: exit fullscreen  t: toggle toolbar  c: close all  " + help
	case TabClasses:
		help = "e: edit class  a: add class  " + help
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(fit(help, width))
}

// fit cuts a styled line to the bar width minus its padding so a narrow
// terminal does not wrap the bar onto a second row.
func fit(s string, width int) string {
	if width <= 2 {
		return s
	}
	return ansi.Truncate(s, width-2, "…")
}

// newList builds a sidebar list in the shared style.
func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func listWidth(width int) int {
	w := width * 2 / 5
	if w < 24 {
		w = 24
	}
	return w
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func placeholder(msg string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Foreground(lipgloss.Color("241")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(msg)
}
