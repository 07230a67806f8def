package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateMaxHorz      = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert      = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateHidden       = "_NET_WM_STATE_HIDDEN"
	stateActionRemove = 0
	stateActionAdd    = 1
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// WindowStates returns the _NET_WM_STATE atoms set on a window.
func (c *Connection) WindowStates(windowID xproto.Window) ([]string, error) {
	return ewmh.WmStateGet(c.XUtil, windowID)
}

// IsMaximized reports whether the window is maximized in both directions.
func (c *Connection) IsMaximized(windowID xproto.Window) (bool, error) {
	states, err := c.WindowStates(windowID)
	if err != nil {
		return false, err
	}
	var horz, vert bool
	for _, s := range states {
		switch s {
		case stateMaxHorz:
			horz = true
		case stateMaxVert:
			vert = true
		}
	}
	return horz && vert, nil
}

// SetMaximized asks the window manager to add or remove both maximized states.
func (c *Connection) SetMaximized(windowID xproto.Window, maximized bool) error {
	action := stateActionRemove
	if maximized {
		action = stateActionAdd
	}
	return ewmh.WmStateReqExtra(c.XUtil, windowID, action, stateMaxHorz, stateMaxVert, 2)
}

// SizeLimits returns the WM_NORMAL_HINTS min and max size. Zero means unset.
func (c *Connection) SizeLimits(windowID xproto.Window) (minW, minH, maxW, maxH int, err error) {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if nh.Flags&icccm.SizeHintPMinSize != 0 {
		minW, minH = int(nh.MinWidth), int(nh.MinHeight)
	}
	if nh.Flags&icccm.SizeHintPMaxSize != 0 {
		maxW, maxH = int(nh.MaxWidth), int(nh.MaxHeight)
	}
	return minW, minH, maxW, maxH, nil
}

// SetSizeLimits rewrites the min/max part of WM_NORMAL_HINTS, keeping the
// other hints the client set. A zero size clears that limit.
func (c *Connection) SetSizeLimits(windowID xproto.Window, minW, minH, maxW, maxH int) error {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		nh = &icccm.NormalHints{}
	}

	nh.Flags &^= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	if minW > 0 || minH > 0 {
		nh.Flags |= icccm.SizeHintPMinSize
		nh.MinWidth, nh.MinHeight = uint(minW), uint(minH)
	}
	if maxW > 0 || maxH > 0 {
		nh.Flags |= icccm.SizeHintPMaxSize
		nh.MaxWidth, nh.MaxHeight = uint(maxW), uint(maxH)
	}
	return icccm.WmNormalHintsSet(c.XUtil, windowID, nh)
}

// Decorated reports whether the window asks the WM for decorations.
// Windows without _MOTIF_WM_HINTS are decorated.
func (c *Connection) Decorated(windowID xproto.Window) bool {
	mh, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	return motif.Decor(mh)
}

// SetDecorated toggles window manager decorations through _MOTIF_WM_HINTS.
func (c *Connection) SetDecorated(windowID xproto.Window, decorated bool) error {
	mh, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil {
		mh = &motif.Hints{}
	}
	mh.Flags |= motif.HintDecorations
	if decorated {
		mh.Decoration = motif.DecorationAll
	} else {
		mh.Decoration = motif.DecorationNone
	}
	return motif.WmHintsSet(c.XUtil, windowID, mh)
}

// WindowRect returns the client area in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (Area, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Area{}, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Area{}, err
	}

	return Area{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// FrameRect returns the window rectangle grown by its frame extents.
func (c *Connection) FrameRect(windowID xproto.Window) (Area, error) {
	r, err := c.WindowRect(windowID)
	if err != nil {
		return Area{}, err
	}
	left, right, top, bottom := c.GetFrameExtents(windowID)
	return Area{
		X:      r.X - left,
		Y:      r.Y - top,
		Width:  r.Width + left + right,
		Height: r.Height + top + bottom,
	}, nil
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return extents.Left, extents.Right, extents.Top, extents.Bottom
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) hasWindowType(windowID xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// IsHidden reports whether the window is minimized.
func (c *Connection) IsHidden(windowID xproto.Window) bool {
	states, err := c.WindowStates(windowID)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == stateHidden {
			return true
		}
	}
	return false
}

// ClientWindows returns managed clients in stacking order, bottom first.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	if wins, err := ewmh.ClientListStackingGet(c.XUtil); err == nil && len(wins) > 0 {
		return wins, nil
	}
	wins, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return wins, nil
}

// WindowExists reports whether windowID is still a managed client.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	wins, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		_, gerr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
		return gerr == nil
	}
	for _, w := range wins {
		if w == windowID {
			return true
		}
	}
	return false
}

// WindowClass returns the WM_CLASS class and instance.
func (c *Connection) WindowClass(windowID xproto.Window) (class, instance string) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(wmClass.Class), strings.TrimSpace(wmClass.Instance)
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowPID returns _NET_WM_PID or 0.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// CloseWindow requests graceful window close via WM_DELETE_WINDOW, falling
// back to _NET_CLOSE_WINDOW for clients that do not speak WM_PROTOCOLS.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	protocols, _ := icccm.WmProtocolsGet(c.XUtil, windowID)
	supportsDelete := false
	for _, p := range protocols {
		if p == "WM_DELETE_WINDOW" {
			supportsDelete = true
			break
		}
	}
	if !supportsDelete {
		return ewmh.CloseWindow(c.XUtil, windowID)
	}

	deleteAtom, err := c.internAtom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := c.internAtom("WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// GetActiveWindow returns the window holding _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
