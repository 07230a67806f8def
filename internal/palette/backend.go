package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// menuBackend drives rofi or dmenu in dmenu mode. rofi returns the row
// index; dmenu returns the label, so dmenu labels are made unique.
type menuBackend struct {
	command string
	rofi    bool

	run func(name string, args []string, stdin string) (string, error)
}

func (b *menuBackend) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}
	rows := make([]Item, len(items))
	copy(rows, items)
	if !b.rofi {
		disambiguate(rows)
	}

	run := b.run
	if run == nil {
		run = runCommand
	}
	out, err := run(b.command, b.args(prompt, message, rows), b.input(rows))
	if err != nil {
		return Item{}, err
	}
	if out == "" {
		return Item{}, ErrCancelled
	}

	item, err := b.parse(out, rows)
	if err != nil {
		return Item{}, err
	}
	if item.IsHeader {
		return Item{}, ErrCancelled
	}
	return item, nil
}

func (b *menuBackend) args(prompt, message string, rows []Item) []string {
	if !b.rofi {
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}

	args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
	if prompt != "" {
		args = append(args, "-p", prompt)
	}
	var active []string
	selected := -1
	for i, r := range rows {
		if r.IsHeader {
			continue
		}
		if selected < 0 {
			selected = i
		}
		if r.IsActive {
			active = append(active, strconv.Itoa(i))
		}
	}
	if len(active) > 0 {
		args = append(args, "-a", strings.Join(active, ","))
	}
	if selected >= 0 {
		args = append(args, "-selected-row", strconv.Itoa(selected))
	}
	if message != "" {
		args = append(args, "-mesg", message)
	}
	return args
}

func (b *menuBackend) input(rows []Item) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, b.row(r))
	}
	return strings.Join(lines, "\n")
}

// row renders one line. rofi row properties follow a single NUL and are
// separated by \x1f.
func (b *menuBackend) row(r Item) string {
	label := clean(r.Label)
	if !b.rofi {
		return label
	}
	label = html.EscapeString(label)
	if r.IsHeader {
		label = "<b>" + label + "</b>"
	}

	var attrs []string
	if r.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if r.Icon != "" {
		attrs = append(attrs, "icon", cleanField(r.Icon))
	}
	if r.Meta != "" {
		attrs = append(attrs, "meta", cleanField(r.Meta))
	}
	if len(attrs) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *menuBackend) parse(out string, rows []Item) (Item, error) {
	if b.rofi {
		if idx, err := strconv.Atoi(out); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	for _, r := range rows {
		if clean(r.Label) == out {
			return r, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", out)
}

func disambiguate(rows []Item) {
	seen := make(map[string]int)
	for i := range rows {
		if rows[i].IsHeader {
			continue
		}
		key := clean(rows[i].Label)
		if n := seen[key]; n > 0 {
			rows[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
		}
		seen[key]++
	}
}

func runCommand(name string, args []string, stdin string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err == nil {
		return selection, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// 1 is "no selection", 130 is Ctrl+C.
		if code := exitErr.ExitCode(); (code == 1 || code == 130) && selection == "" {
			return "", ErrCancelled
		}
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return "", fmt.Errorf("%s failed: %s", name, msg)
	}
	return "", fmt.Errorf("%s failed: %w", name, err)
}

func clean(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func cleanField(s string) string {
	s = strings.ReplaceAll(s, "\x00", " ")
	s = strings.ReplaceAll(s, "\x1f", " ")
	return clean(s)
}
