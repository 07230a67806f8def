package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The message is built by hand because the xgbutil ewmh request helpers
// panic on this library version (uint vs int type assertion).
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	const sourceIndication = 2 // pager/direct action
	if err := c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", []uint32{sourceIndication}); err != nil {
		return fmt.Errorf("failed to activate window %d: %w", windowID, err)
	}
	return nil
}

// RaiseWindow restacks a window above its siblings.
func (c *Connection) RaiseWindow(windowID xproto.Window) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}
