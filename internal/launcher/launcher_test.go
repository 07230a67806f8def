package launcher

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"firefox --new-window", []string{"firefox", "--new-window"}},
		{`code --user-data-dir "/tmp/my dir"`, []string{"code", "--user-data-dir", "/tmp/my dir"}},
		{`sh -c 'echo hi; sleep 1'`, []string{"sh", "-c", "echo hi; sleep 1"}},
		{`app ""`, []string{"app", ""}},
		{`a\ b c`, []string{"a b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitCommand(tt.in)
			if err != nil {
				t.Fatalf("splitCommand(%q): %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitCommand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitCommandRejectsUnterminatedQuote(t *testing.T) {
	if _, err := splitCommand(`code "oops`); err == nil {
		t.Fatalf("expected error for unterminated quote")
	}
}

func TestLaunchWaitsForNewWindowOfClass(t *testing.T) {
	var mu sync.Mutex
	windows := []Candidate{{ID: 1, Class: "firefox"}}
	var started []string

	l := New(map[string]string{"Firefox": "firefox --new-window {{dir}}"}, time.Second)
	l.Poll = 5 * time.Millisecond
	l.start = func(argv []string) error {
		mu.Lock()
		defer mu.Unlock()
		started = argv
		windows = append(windows, Candidate{ID: 7, Class: "Code"}, Candidate{ID: 9, Class: "firefox"})
		return nil
	}
	list := func() ([]Candidate, error) {
		mu.Lock()
		defer mu.Unlock()
		return append([]Candidate(nil), windows...), nil
	}

	id, err := l.Launch(context.Background(), "firefox", list)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if id != 9 {
		t.Fatalf("Launch returned %d, want 9", id)
	}
	if len(started) < 2 || started[0] != "firefox" || started[1] != "--new-window" {
		t.Fatalf("unexpected argv %q", started)
	}
}

func TestLaunchWithoutTemplate(t *testing.T) {
	l := New(nil, time.Second)
	_, err := l.Launch(context.Background(), "gimp", func() ([]Candidate, error) { return nil, nil })
	if err == nil || !strings.Contains(err.Error(), "no launch command") {
		t.Fatalf("expected missing template error, got %v", err)
	}
	if l.CanLaunch("gimp") {
		t.Fatalf("CanLaunch should be false")
	}
}

func TestLaunchTimesOut(t *testing.T) {
	l := New(map[string]string{"gimp": "gimp"}, 30*time.Millisecond)
	l.Poll = 5 * time.Millisecond
	l.start = func([]string) error { return nil }

	_, err := l.Launch(context.Background(), "gimp", func() ([]Candidate, error) { return nil, nil })
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout, got %v", err)
	}
}
