package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/palette"
)

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/fullframe/config.yaml)")
	backendName := fs.String("backend", "auto", "Picker: auto, rofi or dmenu")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe pick [--path PATH] [--backend auto|rofi|dmenu]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Choose a fullscreen action from a rofi or dmenu picker. Bind this to a")
		fmt.Fprintln(os.Stderr, "key in your window manager for quick access.")
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	res, err := loadConfigResult(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	list, err := client.ListFullscreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	message := fmt.Sprintf("%d fullscreen on %d display(s)", status.FullscreenCount, status.DisplayCount)
	item, err := backend.Show("fullframe", palette.Items(status, list.Windows, res.Config.ClassNames()), message)
	if err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client.SetTimeout(30 * time.Second)
	summary, err := palette.Execute(client, item.Action)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(summary)
	return 0
}
