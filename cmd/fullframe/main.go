package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hako/durafmt"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/fullframe/internal/config"
	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "exit":
		os.Exit(runExit(os.Args[2:]))
	case "close-all":
		os.Exit(runCloseAll(os.Args[2:]))
	case "toolbar":
		os.Exit(runToolbar(os.Args[2:]))
	case "present":
		os.Exit(runPresent(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fullframe <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the fullframe daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  displays            List attached displays")
	fmt.Fprintln(w, "  list                List fullscreen windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  toggle              Toggle fullscreen (focused window by default)")
	fmt.Fprintln(w, "  exit                Restore one fullscreen window")
	fmt.Fprintln(w, "  close-all           Restore every fullscreen window")
	fmt.Fprintln(w, "  toolbar             Toggle the toolbar of the focused fullscreen window")
	fmt.Fprintln(w, "  present start|stop  Start or stop presentation mode")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  pick                Choose an action from a rofi/dmenu picker")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'fullframe <command> --help' for command-specific options.")
}

// parseNoArgs parses a subcommand that takes only flags. It returns -1 when
// the caller should continue, else the exit code.
func parseNoArgs(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2
	}
	return -1
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print raw JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}

	uptime := durafmt.Parse(time.Duration(status.UptimeSeconds) * time.Second).LimitFirstN(2)
	fmt.Printf("daemon_running:    %v\n", status.DaemonRunning)
	fmt.Printf("pid:               %d\n", status.PID)
	fmt.Printf("uptime:            %s\n", uptime)
	fmt.Printf("session_loaded:    %v\n", status.Loaded)
	if status.Queued > 0 {
		fmt.Printf("queued_toggles:    %d\n", status.Queued)
	}
	fmt.Printf("presenting:        %v\n", status.Presenting)
	fmt.Printf("main_window_class: %s\n", status.MainWindowClass)
	fmt.Printf("displays:          %d\n", status.DisplayCount)
	fmt.Printf("tracked_windows:   %d\n", status.TrackedCount)
	fmt.Printf("fullscreen:        %d\n", status.FullscreenCount)
	if status.SessionPath != "" {
		fmt.Printf("session_file:      %s\n", status.SessionPath)
	}
	if status.LogFile != "" {
		fmt.Printf("log_file:          %s\n", status.LogFile)
	}
	return 0
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  fullframe config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  fullframe config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  fullframe config path")
		fmt.Fprintln(os.Stderr, "  fullframe config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/fullframe/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: ok (%d classes)\n", len(res.Config.Classes))
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/fullframe/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			_ = printEffective // default
			res, err := loadConfigResult(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.Found {
				fmt.Printf("# file: %s\n", res.Path)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/fullframe/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/fullframe/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: fullframe tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive TUI showing displays and fullscreen windows, refreshed")
		fmt.Fprintln(os.Stderr, "every two seconds, and an editor for per-class settings.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1-3  Switch tabs")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Navigate")
		fmt.Fprintln(os.Stderr, "  x         Exit fullscreen for the selected window")
		fmt.Fprintln(os.Stderr, "  t         Toggle toolbar")
		fmt.Fprintln(os.Stderr, "  c         Close all fullscreen windows")
		fmt.Fprintln(os.Stderr, "  e, a      Edit or add a class (saves config, reloads daemon)")
		fmt.Fprintln(os.Stderr, "  r         Refresh")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := tui.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
