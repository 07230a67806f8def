package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Candidate is a live window the launcher can match against.
type Candidate struct {
	ID    uint32
	Class string
}

// ListFunc lists the current top-level windows.
type ListFunc func() ([]Candidate, error)

// Launcher starts new windows of a class from configured command templates.
type Launcher struct {
	// Templates maps a WM_CLASS class to a command line. "{{dir}}" expands
	// to the user's home directory.
	Templates map[string]string
	Timeout   time.Duration
	Poll      time.Duration

	// start is swapped out in tests.
	start func(argv []string) error
}

// New creates a Launcher with the given templates.
func New(templates map[string]string, timeout time.Duration) *Launcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Launcher{
		Templates: templates,
		Timeout:   timeout,
		Poll:      150 * time.Millisecond,
		start:     startDetached,
	}
}

// CanLaunch reports whether a template exists for class.
func (l *Launcher) CanLaunch(class string) bool {
	_, ok := lookupTemplate(l.Templates, class)
	return ok
}

// Launch runs the template for class and waits for a new window of that
// class to show up in list. It returns the new window's ID.
func (l *Launcher) Launch(ctx context.Context, class string, list ListFunc) (uint32, error) {
	class = strings.TrimSpace(class)
	if class == "" {
		return 0, fmt.Errorf("window class is empty")
	}

	template, ok := lookupTemplate(l.Templates, class)
	if !ok {
		return 0, fmt.Errorf("no launch command configured for class %q (set classes.%s.launch)", class, class)
	}

	home, _ := os.UserHomeDir()
	argv, err := renderCommand(template, home)
	if err != nil {
		return 0, fmt.Errorf("failed to render launch command for %q: %w", class, err)
	}
	if len(argv) == 0 {
		return 0, fmt.Errorf("launch command for %q produced empty command", class)
	}

	existing := make(map[uint32]struct{})
	if windows, err := list(); err == nil {
		for _, w := range windows {
			existing[w.ID] = struct{}{}
		}
	}

	start := l.start
	if start == nil {
		start = startDetached
	}
	if err := start(argv); err != nil {
		return 0, fmt.Errorf("failed to launch %q: %w", class, err)
	}

	return l.waitForNewWindow(ctx, class, list, existing)
}

func (l *Launcher) waitForNewWindow(ctx context.Context, class string, list ListFunc, existing map[uint32]struct{}) (uint32, error) {
	poll := l.Poll
	if poll <= 0 {
		poll = 150 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		windows, err := list()
		if err == nil {
			for _, w := range windows {
				if _, ok := existing[w.ID]; ok {
					continue
				}
				if strings.EqualFold(w.Class, class) {
					return w.ID, nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("timeout waiting for a new %q window after %s: %w", class, l.Timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

func startDetached(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Do not wait; launched windows are long-lived.
	go func() { _ = cmd.Wait() }()
	return nil
}

func lookupTemplate(templates map[string]string, class string) (string, bool) {
	if v, ok := templates[class]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	lower := strings.ToLower(class)
	for k, v := range templates {
		if strings.ToLower(k) == lower && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

func renderCommand(template, dir string) ([]string, error) {
	argv, err := splitCommand(template)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		arg = strings.TrimSpace(strings.ReplaceAll(arg, "{{dir}}", dir))
		if arg != "" {
			out = append(out, arg)
		}
	}
	return out, nil
}

// splitCommand splits s into words using shell-like quoting rules.
func splitCommand(s string) ([]string, error) {
	var out []string

	var buf strings.Builder
	inSingle := false
	inDouble := false
	escaped := false
	inWord := false

	flush := func() {
		if !inWord {
			return
		}
		out = append(out, buf.String())
		buf.Reset()
		inWord = false
	}

	for _, r := range s {
		if escaped {
			buf.WriteRune(r)
			escaped = false
			continue
		}

		switch {
		case !inSingle && r == '\\':
			escaped = true
			inWord = true
		case !inDouble && r == '\'':
			inSingle = !inSingle
			inWord = true
		case !inSingle && r == '"':
			inDouble = !inDouble
			inWord = true
		case !inSingle && !inDouble && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			buf.WriteRune(r)
			inWord = true
		}
	}

	if escaped || inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quote or escape in %q", s)
	}
	flush()
	return out, nil
}
