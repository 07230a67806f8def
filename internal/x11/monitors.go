package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID       int
	Name     string
	X        int
	Y        int
	Width    int
	Height   int
	MmWidth  int
	MmHeight int
	Primary  bool
}

// Area is a rectangle in root coordinates.
type Area struct {
	X, Y, Width, Height int
}

// RootSize returns the root window resolution.
func (c *Connection) RootSize() (int, int, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query root geometry: %w", err)
	}
	return int(geom.Width), int(geom.Height), nil
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if !c.randrReady {
		return nil, fmt.Errorf("randr extension not available")
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		mon := Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Monitor%d", i),
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		for _, out := range crtcInfo.Outputs {
			if out == primaryOutput && primaryOutput != 0 {
				mon.Primary = true
			}
		}
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			mon.Name = string(outputInfo.Name)
			mon.MmWidth = int(outputInfo.MmWidth)
			mon.MmHeight = int(outputInfo.MmHeight)
		}

		monitors = append(monitors, mon)
	}

	if len(monitors) == 0 {
		return nil, fmt.Errorf("no active crtcs")
	}
	return monitors, nil
}

// WorkArea returns the part of monitor not covered by dock struts. When no
// dock reserves space on it, the EWMH workarea intersection is used.
func (c *Connection) WorkArea(monitor Monitor) Area {
	area := Area{X: monitor.X, Y: monitor.Y, Width: monitor.Width, Height: monitor.Height}
	if applyDockStruts(c, &area) {
		return area
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return area
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	isect := intersectionSize(area.X, area.Y, area.X+area.Width, area.Y+area.Height,
		wa.X, wa.Y, wa.X+int(wa.Width), wa.Y+int(wa.Height))
	if isect.w > 0 && isect.h > 0 {
		area.X = max(area.X, wa.X)
		area.Y = max(area.Y, wa.Y)
		area.Width = isect.w
		area.Height = isect.h
	}
	return area
}

// QueryPointer returns the pointer position in root coordinates.
func (c *Connection) QueryPointer() (int, int, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(pointer.RootX), int(pointer.RootY), nil
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func applyDockStruts(c *Connection, area *Area) bool {
	rootWidth, rootHeight, err := c.RootSize()
	if err != nil {
		return false
	}

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !c.hasWindowType(windowID, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStruts(area, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftEndY:     uint(rootHeight - 1),
				RightEndY:    uint(rootHeight - 1),
				TopEndX:      uint(rootWidth - 1),
				BottomEndX:   uint(rootWidth - 1),
			}
			updateStruts(area, rootWidth, rootHeight, sp, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return false
	}

	area.X += struts.left
	area.Y += struts.top
	area.Width = max(1, area.Width-(struts.left+struts.right))
	area.Height = max(1, area.Height-(struts.top+struts.bottom))
	return true
}

func updateStruts(area *Area, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1, monY1 := area.X, area.Y
	monX2, monY2 := area.X+area.Width, area.Y+area.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		if isect := intersectionSize(monX1, monY1, monX2, monY2, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top)); isect.w > 0 && isect.h > 0 {
			acc.top = max(acc.top, isect.h)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight)
	if sp.Bottom > 0 {
		if isect := intersectionSize(monX1, monY1, monX2, monY2, int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight); isect.w > 0 && isect.h > 0 {
			acc.bottom = max(acc.bottom, isect.h)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		if isect := intersectionSize(monX1, monY1, monX2, monY2, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1); isect.w > 0 && isect.h > 0 {
			acc.left = max(acc.left, isect.w)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth)
	if sp.Right > 0 {
		if isect := intersectionSize(monX1, monY1, monX2, monY2, rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1); isect.w > 0 && isect.h > 0 {
			acc.right = max(acc.right, isect.w)
		}
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
