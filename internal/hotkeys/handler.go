package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"golang.org/x/time/rate"

	"github.com/1broseidon/fullframe/internal/config"
	"github.com/1broseidon/fullframe/internal/fullscreen"
)

// Controller is the part of the fullscreen manager the hotkeys drive.
type Controller interface {
	ToggleMain(ctx context.Context) (fullscreen.Result, error)
	ToggleFocused(ctx context.Context) (fullscreen.Result, error)
	ToggleUnderPointer(ctx context.Context) (fullscreen.Result, error)
	ToggleType(ctx context.Context, class string) (fullscreen.Result, error)
	ToggleToolbar() (bool, error)
	CloseAll() bool
	PresentStart(ctx context.Context) []fullscreen.Result
	PresentStop() int
	Presenting() bool
}

// Binding ties a key sequence to a named action.
type Binding struct {
	Keys   string
	Action string
	Run    func(ctx context.Context) error
}

// x11Accessor is implemented by hosts that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	ctrl   Controller
	logger *slog.Logger

	// Key auto-repeat and double presses would toggle straight back.
	debounce time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	running  sync.WaitGroup
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. host may be nil in tests, in
// which case Register is unavailable.
func NewHandler(host any, ctrl Controller, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		ctrl:     ctrl,
		logger:   logger,
		debounce: 250 * time.Millisecond,
		limiters: make(map[string]*rate.Limiter),
	}
	if accessor, ok := host.(x11Accessor); ok {
		h.xu = accessor.XUtil()
		h.root = accessor.RootWindow()
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(h.xu)
		})
	}
	return h
}

// Bindings returns the key bindings described by cfg, global ones first
// and then per-class ones in class order. Empty key sequences are skipped.
func (h *Handler) Bindings(cfg *config.Config) []Binding {
	var out []Binding
	add := func(keys, action string, run func(ctx context.Context) error) {
		keys = strings.TrimSpace(keys)
		if keys == "" {
			return
		}
		out = append(out, Binding{Keys: keys, Action: action, Run: run})
	}
	toggle := func(fn func(context.Context) (fullscreen.Result, error)) func(context.Context) error {
		return func(ctx context.Context) error {
			_, err := fn(ctx)
			return err
		}
	}

	add(cfg.Hotkeys.ToggleMain, "toggle_main", toggle(h.ctrl.ToggleMain))
	add(cfg.Hotkeys.ToggleFocused, "toggle_focused", toggle(h.ctrl.ToggleFocused))
	add(cfg.Hotkeys.ToggleUnderPointer, "toggle_under_pointer", toggle(h.ctrl.ToggleUnderPointer))
	add(cfg.Hotkeys.ToggleToolbar, "toggle_toolbar", func(context.Context) error {
		_, err := h.ctrl.ToggleToolbar()
		return err
	})
	add(cfg.Hotkeys.CloseAll, "close_all", func(context.Context) error {
		h.ctrl.CloseAll()
		return nil
	})
	add(cfg.Hotkeys.Present, "present", h.togglePresent)

	for _, name := range cfg.ClassNames() {
		class := name
		add(cfg.Classes[name].Hotkey, "toggle_class:"+class, func(ctx context.Context) error {
			_, err := h.ctrl.ToggleType(ctx, class)
			return err
		})
	}
	return out
}

func (h *Handler) togglePresent(ctx context.Context) error {
	if !h.ctrl.Presenting() {
		results := h.ctrl.PresentStart(ctx)
		h.logger.Info("presentation mode started", "entered", len(results))
		return nil
	}
	closed := h.ctrl.PresentStop()
	h.logger.Info("presentation mode stopped", "exited", closed)
	return nil
}

// Register grabs every binding from cfg. Bindings that fail to grab are
// logged and skipped; the first error is returned.
func (h *Handler) Register(ctx context.Context, cfg *config.Config) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 connection")
	}
	var first error
	for _, b := range h.Bindings(cfg) {
		b := b
		err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			h.Trigger(ctx, b)
		}).Connect(h.xu, h.root, b.Keys, true)
		if err != nil {
			h.logger.Warn("failed to register hotkey", "keys", b.Keys, "action", b.Action, "error", err)
			if first == nil {
				first = fmt.Errorf("failed to register %s (%s): %w", b.Keys, b.Action, err)
			}
			continue
		}
		h.logger.Debug("registered hotkey", "keys", b.Keys, "action", b.Action)
	}
	return first
}

// Reload drops every grab and registers the bindings of cfg.
func (h *Handler) Reload(ctx context.Context, cfg *config.Config) error {
	if h.xu != nil {
		keybind.Detach(h.xu, h.root)
	}
	h.mu.Lock()
	h.limiters = make(map[string]*rate.Limiter)
	h.mu.Unlock()
	return h.Register(ctx, cfg)
}

// Trigger runs b off the event loop unless the same action fired within
// the debounce window. It reports whether the action was started.
func (h *Handler) Trigger(ctx context.Context, b Binding) bool {
	if !h.limiter(b.Action).Allow() {
		h.logger.Debug("hotkey debounced", "keys", b.Keys, "action", b.Action)
		return false
	}
	h.running.Add(1)
	go func() {
		defer h.running.Done()
		if err := b.Run(ctx); err != nil {
			h.logger.Warn("hotkey action failed", "keys", b.Keys, "action", b.Action, "error", err)
		}
	}()
	return true
}

// Wait blocks until every triggered action has finished.
func (h *Handler) Wait() {
	h.running.Wait()
}

func (h *Handler) limiter(action string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[action]
	if !ok {
		l = rate.NewLimiter(rate.Every(h.debounce), 1)
		h.limiters[action] = l
	}
	return l
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
