package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/platform"
)

// Daemon is the part of the IPC client the picker drives.
type Daemon interface {
	Toggle(req fullscreen.Request) (*fullscreen.Result, error)
	Exit(id platform.WindowID) (bool, error)
	CloseAll() (bool, error)
	ToggleToolbar() (bool, error)
	Present(start bool) (*ipc.PresentData, error)
}

// Action identifiers. Class and exit actions carry an argument after ':'.
const (
	actionFocused   = "toggle:focused"
	actionPointer   = "toggle:pointer"
	actionMain      = "toggle:main"
	actionClass     = "class:"
	actionExit      = "exit:"
	actionToolbar   = "toolbar"
	actionCloseAll  = "close-all"
	actionPresentOn = "present:start"
	actionPresentOf = "present:stop"
)

// Items builds the picker rows from the daemon state and the configured
// classes.
func Items(status *ipc.StatusData, windows []ipc.FullscreenEntry, classes []string) []Item {
	fullscreenClass := make(map[string]bool)
	mainFullscreen := false
	for _, w := range windows {
		fullscreenClass[strings.ToLower(w.WindowType)] = true
		if w.MainWindow {
			mainFullscreen = true
		}
	}

	items := []Item{
		{Label: "Toggle", IsHeader: true},
		{Label: "Focused window", Action: actionFocused, Icon: "view-fullscreen"},
		{Label: "Window under pointer", Action: actionPointer, Icon: "input-mouse"},
	}
	if status != nil && status.MainWindowClass != "" {
		items = append(items, Item{
			Label:    fmt.Sprintf("Main window (%s)", status.MainWindowClass),
			Action:   actionMain,
			Icon:     status.MainWindowClass,
			IsActive: mainFullscreen,
		})
	}
	for _, class := range classes {
		items = append(items, Item{
			Label:    class,
			Action:   actionClass + class,
			Icon:     strings.ToLower(class),
			Meta:     "class",
			IsActive: fullscreenClass[strings.ToLower(class)],
		})
	}

	if len(windows) > 0 {
		items = append(items, Item{Label: "Restore", IsHeader: true})
		for _, w := range windows {
			label := fmt.Sprintf("%s (0x%x)", w.WindowType, uint32(w.WindowID))
			if w.WindowTitle != "" {
				label += " " + w.WindowTitle
			}
			items = append(items, Item{
				Label:  label,
				Action: actionExit + strconv.FormatUint(uint64(w.WindowID), 10),
				Icon:   strings.ToLower(w.WindowType),
				Meta:   "exit restore",
			})
		}
		items = append(items,
			Item{Label: "Toggle toolbar", Action: actionToolbar, Icon: "view-restore"},
			Item{Label: "Restore all", Action: actionCloseAll, Icon: "view-restore"},
		)
	}

	presenting := status != nil && status.Presenting
	present := Item{Label: "Start presentation", Action: actionPresentOn, Icon: "x-office-presentation"}
	if presenting {
		present = Item{Label: "Stop presentation", Action: actionPresentOf, Icon: "x-office-presentation", IsActive: true}
	}
	items = append(items, Item{Label: "Presentation", IsHeader: true}, present)
	return items
}

// Execute runs the action of a selected item and returns a one-line
// summary.
func Execute(d Daemon, action string) (string, error) {
	switch {
	case action == actionFocused:
		return toggle(d, fullscreen.Request{Target: fullscreen.TargetFocused})
	case action == actionPointer:
		return toggle(d, fullscreen.Request{Target: fullscreen.TargetPointer})
	case action == actionMain:
		return toggle(d, fullscreen.Request{Target: fullscreen.TargetMain})
	case strings.HasPrefix(action, actionClass):
		class := strings.TrimPrefix(action, actionClass)
		if class == "" {
			return "", fmt.Errorf("palette: empty class")
		}
		return toggle(d, fullscreen.Request{Target: fullscreen.TargetClass, Class: class})
	case strings.HasPrefix(action, actionExit):
		id, err := strconv.ParseUint(strings.TrimPrefix(action, actionExit), 10, 32)
		if err != nil {
			return "", fmt.Errorf("palette: bad window id in %q", action)
		}
		exited, err := d.Exit(platform.WindowID(id))
		if err != nil {
			return "", err
		}
		if !exited {
			return fmt.Sprintf("0x%x was not fullscreen", id), nil
		}
		return fmt.Sprintf("restored 0x%x", id), nil
	case action == actionToolbar:
		shown, err := d.ToggleToolbar()
		if err != nil {
			return "", err
		}
		if shown {
			return "toolbar shown", nil
		}
		return "toolbar hidden", nil
	case action == actionCloseAll:
		closed, err := d.CloseAll()
		if err != nil {
			return "", err
		}
		if !closed {
			return "nothing was fullscreen", nil
		}
		return "restored all fullscreen windows", nil
	case action == actionPresentOn, action == actionPresentOf:
		data, err := d.Present(action == actionPresentOn)
		if err != nil {
			return "", err
		}
		if action == actionPresentOn {
			return fmt.Sprintf("presentation started (%d fullscreen)", len(data.Entered)), nil
		}
		return fmt.Sprintf("presentation stopped (%d restored)", data.Exited), nil
	default:
		return "", fmt.Errorf("palette: unknown action %q", action)
	}
}

func toggle(d Daemon, req fullscreen.Request) (string, error) {
	res, err := d.Toggle(req)
	if err != nil {
		return "", err
	}
	switch {
	case res.Queued:
		return "queued until the session is restored", nil
	case res.Fullscreen:
		return fmt.Sprintf("%s fullscreen", res.WindowType), nil
	default:
		return fmt.Sprintf("%s restored", res.WindowType), nil
	}
}
