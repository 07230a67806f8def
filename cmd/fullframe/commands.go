package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/platform"
)

func printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

func formatRect(r geometry.Rect) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print raw JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe displays [--json]")
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	data, err := ipc.NewClient().GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBOUNDS\tWORK AREA\tSCALE\tFLAGS")
	for _, d := range data.Displays {
		var flags []string
		if d.Primary {
			flags = append(flags, "primary")
		}
		if d.HasMainWindow {
			flags = append(flags, "main")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\n",
			d.ID, d.Name, formatRect(d.Bounds), formatRect(d.WorkArea), d.Scale(), strings.Join(flags, ","))
	}
	tw.Flush()
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print raw JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe list [--json]")
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	data, err := ipc.NewClient().ListFullscreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	if len(data.Windows) == 0 {
		fmt.Println("no fullscreen windows")
		return 0
	}

	now := time.Now()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tCLASS\tSCREEN\tTOOLBAR\tPROCESS\tSINCE")
	for _, w := range data.Windows {
		proc := "-"
		if w.PID > 0 {
			proc = fmt.Sprintf("%s[%d]", w.Process, w.PID)
		}
		since := "-"
		if !w.EnteredAt.IsZero() {
			since = humanize.RelTime(w.EnteredAt, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "0x%x\t%s\t%s\t%s\t%s\t%s\n",
			uint32(w.WindowID), w.WindowType, formatRect(w.ScreenBounds), yesNo(w.ShowTopToolbar), proc, since)
	}
	tw.Flush()
	return 0
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// parseWindowID accepts decimal or 0x-prefixed hex, the way xprop and
// xdotool print window ids.
func parseWindowID(s string) (platform.WindowID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return platform.WindowID(v), nil
}

// parsePoint parses "X,Y".
func parsePoint(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	return geometry.Point{X: x, Y: y}, nil
}

// buildToggleRequest turns the toggle flags into a request. An explicit
// window or class wins over the pointer and main flags.
func buildToggleRequest(window, class string, pointer, main bool, at, toolbar string) (fullscreen.Request, error) {
	var req fullscreen.Request
	switch {
	case window != "":
		id, err := parseWindowID(window)
		if err != nil {
			return req, err
		}
		req.Target, req.WindowID = fullscreen.TargetWindow, id
	case class != "":
		req.Target, req.Class = fullscreen.TargetClass, class
	case main:
		req.Target = fullscreen.TargetMain
	case pointer:
		req.Target = fullscreen.TargetPointer
	default:
		req.Target = fullscreen.TargetFocused
	}

	if at != "" {
		p, err := parsePoint(at)
		if err != nil {
			return req, err
		}
		req.At = &p
	}

	switch toolbar {
	case "":
	case "show", "on", "true":
		v := true
		req.ShowToolbar = &v
	case "hide", "off", "false":
		v := false
		req.ShowToolbar = &v
	default:
		return req, fmt.Errorf("invalid --toolbar %q (want show or hide)", toolbar)
	}
	return req, nil
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.String("window", "", "Window id (decimal or 0x hex)")
	class := fs.String("class", "", "Toggle a window of this WM_CLASS, launching one if needed")
	pointer := fs.Bool("pointer", false, "Toggle the window under the pointer")
	main := fs.Bool("main", false, "Toggle the main window")
	at := fs.String("at", "", "Desktop point X,Y selecting the target display")
	toolbar := fs.String("toolbar", "", "show or hide the toolbar strip (default: class setting)")
	asJSON := fs.Bool("json", false, "Print raw JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe toggle [--window ID | --class NAME | --pointer | --main] [--at X,Y] [--toolbar show|hide]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle fullscreen. Without a target the focused window is toggled.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	req, err := buildToggleRequest(*window, *class, *pointer, *main, *at, *toolbar)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	client := ipc.NewClient()
	// Launching a window for a class can take a while.
	client.SetTimeout(30 * time.Second)
	res, err := client.Toggle(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(res)
	}

	switch {
	case res.Queued:
		fmt.Println("queued: session is still being restored")
	case res.Fullscreen:
		fmt.Printf("fullscreen: %s (0x%x) on %s\n", res.WindowType, uint32(res.WindowID), formatRect(res.ScreenBounds))
	default:
		fmt.Printf("restored: %s (0x%x)\n", res.WindowType, uint32(res.WindowID))
	}
	return 0
}

func runExit(args []string) int {
	fs := flag.NewFlagSet("exit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe exit <window-id>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	exited, err := ipc.NewClient().Exit(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !exited {
		fmt.Fprintf(os.Stderr, "window 0x%x is not fullscreen\n", uint32(id))
		return 1
	}
	fmt.Printf("restored: 0x%x\n", uint32(id))
	return 0
}

func runCloseAll(args []string) int {
	fs := flag.NewFlagSet("close-all", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe close-all")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Restore every fullscreen window except the main window.")
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	closed, err := ipc.NewClient().CloseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !closed {
		fmt.Println("nothing was fullscreen")
		return 0
	}
	fmt.Println("restored all fullscreen windows")
	return 0
}

func runToolbar(args []string) int {
	fs := flag.NewFlagSet("toolbar", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe toolbar")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show or hide the toolbar strip of the focused fullscreen window.")
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	shown, err := ipc.NewClient().ToggleToolbar()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if shown {
		fmt.Println("toolbar: shown")
	} else {
		fmt.Println("toolbar: hidden")
	}
	return 0
}

func runPresent(args []string) int {
	if len(args) != 1 || (args[0] != "start" && args[0] != "stop") {
		fmt.Fprintln(os.Stderr, "Usage: fullframe present start|stop")
		if len(args) == 1 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	client.SetTimeout(60 * time.Second)
	data, err := client.Present(args[0] == "start")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if args[0] == "start" {
		fmt.Printf("presentation started: %d window(s) fullscreen\n", len(data.Entered))
		for _, r := range data.Entered {
			fmt.Printf("  %s (0x%x) on %s\n", r.WindowType, uint32(r.WindowID), formatRect(r.ScreenBounds))
		}
		return 0
	}
	fmt.Printf("presentation stopped: %d window(s) restored\n", data.Exited)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe reload")
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}
