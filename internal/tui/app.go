package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/fullframe/internal/config"
	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/ipc"
)

const refreshInterval = 2 * time.Second

type tickMsg time.Time

// snapshotMsg carries one poll of the daemon.
type snapshotMsg struct {
	status   *ipc.StatusData
	displays []display.Display
	windows  []ipc.FullscreenEntry
	at       time.Time
	err      error
}

// actionMsg reports the outcome of a user action.
type actionMsg struct {
	text string
	err  error
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	cfg        *config.Config
	daemon     Daemon

	activeTab   Tab
	displaysTab DisplaysTab
	windowsTab  WindowsTab
	classesTab  ClassesTab

	status  *ipc.StatusData
	message string

	width  int
	height int
}

func newModel(configPath string, d Daemon) model {
	m := model{
		configPath: configPath,
		daemon:     d,
		activeTab:  TabDisplays,
	}

	var (
		res *config.LoadResult
		err error
	)
	if configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(configPath)
	}
	if err != nil {
		m.message = err.Error()
	} else {
		m.cfg = res.Config
	}

	m.displaysTab = NewDisplaysTab()
	m.windowsTab = NewWindowsTab(d)
	m.classesTab = NewClassesTab(m.cfg, configPath, d)
	return m
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchSnapshot polls the daemon off the UI goroutine.
func fetchSnapshot(d Daemon) tea.Cmd {
	return func() tea.Msg {
		msg := snapshotMsg{at: time.Now()}
		status, err := d.GetStatus()
		if err != nil {
			msg.err = err
			return msg
		}
		msg.status = status
		if data, err := d.GetDisplays(); err == nil {
			msg.displays = data.Displays
		}
		if data, err := d.ListFullscreen(); err == nil {
			msg.windows = data.Windows
		}
		return msg
	}
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchSnapshot(m.daemon), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(fetchSnapshot(m.daemon), tick())

	case snapshotMsg:
		if msg.err != nil {
			m.status = nil
			m.displaysTab.SetSnapshot(nil, nil)
			m.windowsTab.SetSnapshot(nil, msg.at)
			return m, nil
		}
		m.status = msg.status
		m.displaysTab.SetSnapshot(msg.displays, msg.windows)
		m.windowsTab.SetSnapshot(msg.windows, msg.at)
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.message = "error: " + msg.err.Error()
		} else {
			m.message = msg.text
		}
		return m, fetchSnapshot(m.daemon)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.displaysTab, _ = m.displaysTab.Update(sub)
		m.windowsTab, _ = m.windowsTab.Update(sub)
		m.classesTab, _ = m.classesTab.Update(sub)
		return m, nil
	}

	// The class form consumes keys; only ctrl+c escapes to quit.
	if m.activeTab == TabClasses && m.classesTab.editing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.classesTab, cmd = m.classesTab.Update(msg)
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabDisplays
			return m, nil
		case "2":
			m.activeTab = TabWindows
			return m, nil
		case "3":
			m.activeTab = TabClasses
			return m, nil
		case "r":
			m.message = ""
			return m, fetchSnapshot(m.daemon)
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabDisplays:
		m.displaysTab, cmd = m.displaysTab.Update(msg)
	case TabWindows:
		m.windowsTab, cmd = m.windowsTab.Update(msg)
	case TabClasses:
		m.classesTab, cmd = m.classesTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.message, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	var content string
	switch m.activeTab {
	case TabDisplays:
		content = m.displaysTab.View()
	case TabWindows:
		content = m.windowsTab.View()
	case TabClasses:
		content = m.classesTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
