package tui

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/fullframe/internal/config"
	"github.com/1broseidon/fullframe/internal/fullscreen"
)

type classItem struct {
	name string
	cc   config.ClassConfig
	main bool
}

func (i classItem) Title() string {
	if i.main {
		return i.name + " (main window)"
	}
	return i.name
}

func (i classItem) Description() string {
	parts := []string{"open at " + displayOrDefault(i.cc.OpenAt, string(fullscreen.OpenPointer))}
	if i.cc.Hotkey != "" {
		parts = append(parts, i.cc.Hotkey)
	}
	if i.cc.Launch != "" {
		parts = append(parts, "launch")
	}
	if i.cc.FullscreenOnPresent {
		parts = append(parts, "present")
	}
	return strings.Join(parts, " | ")
}

func (i classItem) FilterValue() string { return i.name }

const (
	toolbarDefault = "default"
	toolbarShow    = "show"
	toolbarHide    = "hide"
)

// ClassesTab edits per-class fullscreen options and saves the config.
type ClassesTab struct {
	list       list.Model
	cfg        *config.Config
	configPath string
	daemon     Daemon
	width      int
	height     int

	editing bool
	adding  bool
	form    *huh.Form

	// Form-bound values. Held behind a pointer so copies of the tab
	// share what huh writes.
	f *classForm
}

type classForm struct {
	name      string
	hotkey    string
	openAt    string
	toolbar   string
	x         string
	y         string
	width     string
	height    string
	launch    string
	launchNew bool
	onPresent bool
}

// NewClassesTab creates a ClassesTab for cfg. configPath may be empty for
// the default location.
func NewClassesTab(cfg *config.Config, configPath string, d Daemon) ClassesTab {
	t := ClassesTab{
		list:       newList("Classes"),
		cfg:        cfg,
		configPath: configPath,
		daemon:     d,
	}
	t.refreshItems()
	return t
}

func (t *ClassesTab) refreshItems() {
	if t.cfg == nil {
		t.list.SetItems(nil)
		return
	}
	var items []list.Item
	for _, name := range t.cfg.ClassNames() {
		items = append(items, classItem{
			name: name,
			cc:   t.cfg.Classes[name],
			main: strings.EqualFold(name, t.cfg.MainWindowClass),
		})
	}
	t.list.SetItems(items)
}

// Update handles messages for the classes tab.
func (t ClassesTab) Update(msg tea.Msg) (ClassesTab, tea.Cmd) {
	if t.editing {
		return t.updateEditing(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(listWidth(t.width), t.height)
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "e", "enter":
			if item, ok := t.list.SelectedItem().(classItem); ok {
				t.startEditing(item.name, item.cc, false)
				return t, t.form.Init()
			}
			return t, nil
		case "a":
			t.startEditing("", config.ClassConfig{}, true)
			return t, t.form.Init()
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t ClassesTab) updateEditing(msg tea.Msg) (ClassesTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			t.editing = false
			t.form = nil
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.editing = false
		t.form = nil
		return t, t.save()
	}
	return t, cmd
}

func (t *ClassesTab) startEditing(name string, cc config.ClassConfig, adding bool) {
	t.f = &classForm{}
	t.f.name = name
	t.f.hotkey = cc.Hotkey
	t.f.openAt = displayOrDefault(cc.OpenAt, string(fullscreen.OpenPointer))
	t.f.toolbar = toolbarDefault
	if cc.ShowToolbar != nil {
		t.f.toolbar = toolbarHide
		if *cc.ShowToolbar {
			t.f.toolbar = toolbarShow
		}
	}
	t.f.x = strconv.Itoa(cc.Position.X)
	t.f.y = strconv.Itoa(cc.Position.Y)
	t.f.width = strconv.Itoa(cc.Position.Width)
	t.f.height = strconv.Itoa(cc.Position.Height)
	t.f.launch = cc.Launch
	t.f.launchNew = cc.LaunchNew
	t.f.onPresent = cc.FullscreenOnPresent
	t.adding = adding

	w := t.width - 4
	if w < 40 {
		w = 40
	}

	openOpts := []huh.Option[string]{
		huh.NewOption("none", string(fullscreen.OpenNone)),
		huh.NewOption("current window position", string(fullscreen.OpenCurrent)),
		huh.NewOption("mouse pointer", string(fullscreen.OpenPointer)),
		huh.NewOption("position", string(fullscreen.OpenPosition)),
		huh.NewOption("position and size", string(fullscreen.OpenPositionAndSize)),
	}
	toolbarOpts := []huh.Option[string]{
		huh.NewOption("use default_show_toolbar", toolbarDefault),
		huh.NewOption("show", toolbarShow),
		huh.NewOption("hide", toolbarHide),
	}

	var fields []huh.Field
	if adding {
		fields = append(fields, huh.NewInput().
			Key("name").
			Title("Class").
			Description("WM_CLASS class name (see xprop WM_CLASS)").
			Validate(t.validateName).
			Value(&t.f.name))
	}
	fields = append(fields,
		huh.NewInput().
			Key("hotkey").
			Title("Hotkey").
			Description("X11 keybinding toggling this class, empty for none").
			Value(&t.f.hotkey),
		huh.NewSelect[string]().
			Key("open_at").
			Title("Open At").
			Description("Which display a toggle opens on").
			Options(openOpts...).
			Value(&t.f.openAt),
		huh.NewSelect[string]().
			Key("show_toolbar").
			Title("Toolbar").
			Options(toolbarOpts...).
			Value(&t.f.toolbar),
	)

	t.form = huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewInput().Key("x").Title("Position: X").Validate(validateInt).Value(&t.f.x),
			huh.NewInput().Key("y").Title("Position: Y").Validate(validateInt).Value(&t.f.y),
			huh.NewInput().Key("width").Title("Position: Width").Validate(validateInt).Value(&t.f.width),
			huh.NewInput().Key("height").Title("Position: Height").Validate(validateInt).Value(&t.f.height),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("launch").
				Title("Launch Command").
				Description("Run when no window of the class exists").
				Value(&t.f.launch),
			huh.NewConfirm().
				Key("launch_new").
				Title("Always launch a new window?").
				Value(&t.f.launchNew),
			huh.NewConfirm().
				Key("fullscreen_on_present").
				Title("Fullscreen on presentation start?").
				Value(&t.f.onPresent),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	t.editing = true
}

func (t *ClassesTab) validateName(s string) error {
	name := strings.TrimSpace(s)
	if name == "" {
		return fmt.Errorf("class is required")
	}
	if t.cfg != nil {
		for existing := range t.cfg.Classes {
			if strings.EqualFold(existing, name) {
				return fmt.Errorf("class %q already exists", existing)
			}
		}
	}
	return nil
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

// applyForm returns the config with the edited class applied. The tab's
// config is left untouched.
func (t *ClassesTab) applyForm() (*config.Config, string, error) {
	if t.f == nil {
		return nil, "", fmt.Errorf("no class is being edited")
	}
	base := t.cfg
	if base == nil {
		base = config.DefaultConfig()
	}
	name := strings.TrimSpace(t.f.name)
	if name == "" {
		return nil, "", fmt.Errorf("class is required")
	}

	cc := config.ClassConfig{
		Hotkey:              strings.TrimSpace(t.f.hotkey),
		OpenAt:              t.f.openAt,
		Launch:              strings.TrimSpace(t.f.launch),
		LaunchNew:           t.f.launchNew,
		FullscreenOnPresent: t.f.onPresent,
	}
	switch t.f.toolbar {
	case toolbarShow:
		v := true
		cc.ShowToolbar = &v
	case toolbarHide:
		v := false
		cc.ShowToolbar = &v
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{t.f.x, &cc.Position.X},
		{t.f.y, &cc.Position.Y},
		{t.f.width, &cc.Position.Width},
		{t.f.height, &cc.Position.Height},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(f.field))
		if err != nil {
			return nil, "", fmt.Errorf("classes.%s.position: %q is not a number", name, f.field)
		}
		*f.dst = v
	}

	next := *base
	next.Classes = maps.Clone(base.Classes)
	if next.Classes == nil {
		next.Classes = make(map[string]config.ClassConfig)
	}
	next.Classes[name] = cc
	if err := next.Validate(); err != nil {
		return nil, "", err
	}
	return &next, name, nil
}

// save writes the edited config and asks a running daemon to reload.
func (t *ClassesTab) save() tea.Cmd {
	next, name, err := t.applyForm()
	if err != nil {
		return func() tea.Msg { return actionMsg{err: err} }
	}
	if err := next.Save(t.configPath); err != nil {
		return func() tea.Msg { return actionMsg{err: err} }
	}
	if t.cfg == nil {
		t.cfg = next
	} else {
		*t.cfg = *next
	}
	t.refreshItems()

	d := t.daemon
	return func() tea.Msg {
		text := fmt.Sprintf("saved %s", name)
		if d == nil {
			return actionMsg{text: text}
		}
		if err := d.Reload(); err != nil {
			return actionMsg{text: text + " (daemon not reloaded)"}
		}
		return actionMsg{text: text + ", daemon reloaded"}
	}
}

// View renders the class list, or the form while editing.
func (t ClassesTab) View() string {
	if t.editing && t.form != nil {
		title := "Editing " + t.f.name
		if t.adding {
			title = "Adding class"
		}
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render(title) +
			dimStyle.Render("  (esc to cancel)")
		return lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Padding(1, 2).
			Render(header + "\n\n" + t.form.View())
	}

	if t.cfg == nil {
		return placeholder("No config loaded", t.width, t.height)
	}
	if len(t.list.Items()) == 0 {
		return placeholder("No classes configured. Press 'a' to add one.", t.width, t.height)
	}

	var detail string
	if item, ok := t.list.SelectedItem().(classItem); ok {
		cc := item.cc
		toolbar := "default"
		if cc.ShowToolbar != nil {
			toolbar = yesNo(*cc.ShowToolbar)
		}
		lines := []string{
			row("Hotkey", displayOrDefault(cc.Hotkey, "(none)")),
			row("Open at", displayOrDefault(cc.OpenAt, string(fullscreen.OpenPointer))),
			row("Toolbar", toolbar),
			row("Position", cc.Position.Rect().String()),
			row("Launch", displayOrDefault(cc.Launch, "(none)")),
			row("Launch new", yesNo(cc.LaunchNew)),
			row("On present", yesNo(cc.FullscreenOnPresent)),
			"",
			dimStyle.Render("  Press 'e' to edit"),
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

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
