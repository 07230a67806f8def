package display

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/1broseidon/fullframe/internal/geometry"
)

const cacheKey = "displays"

// fallbackBounds is used when even the desktop resolution is unavailable.
var fallbackBounds = geometry.Rect{Width: 1920, Height: 1080}

// MainWindowLocator returns the bounds of the main window, if one exists.
type MainWindowLocator func() (geometry.Rect, bool)

// EnumeratorConfig configures an Enumerator.
type EnumeratorConfig struct {
	Discover DiscoverOptions
	// CacheTTL bounds how long a display set is reused. Monitors can be
	// plugged in at any time, so this should stay short.
	CacheTTL   time.Duration
	MainWindow MainWindowLocator
	Logger     *slog.Logger
}

// Enumerator rebuilds the display set on demand and never fails: when
// probing breaks it falls back to one synthetic display.
type Enumerator struct {
	prober     Prober
	opts       DiscoverOptions
	mainWindow MainWindowLocator
	logger     *slog.Logger
	cache      *expirable.LRU[string, []Display]
	// discovery collapses concurrent cache misses into one flood fill.
	discovery singleflight.Group
}

// NewEnumerator creates an Enumerator over prober.
func NewEnumerator(prober Prober, cfg EnumeratorConfig) *Enumerator {
	if cfg.Discover.Step <= 0 {
		cfg.Discover = DefaultDiscoverOptions()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Enumerator{
		prober:     prober,
		opts:       cfg.Discover,
		mainWindow: cfg.MainWindow,
		logger:     cfg.Logger,
		cache:      expirable.NewLRU[string, []Display](1, nil, cfg.CacheTTL),
	}
}

// Displays returns all attached displays sorted top-left to bottom-right.
func (e *Enumerator) Displays() []Display {
	if cached, ok := e.cache.Get(cacheKey); ok {
		return cloneDisplays(cached)
	}

	v, _, _ := e.discovery.Do(cacheKey, func() (any, error) {
		displays := e.discover()
		e.cache.Add(cacheKey, displays)
		return displays, nil
	})
	return cloneDisplays(v.([]Display))
}

func (e *Enumerator) discover() []Display {
	displays, err := Discover(e.prober, e.opts)
	if err != nil || len(displays) == 0 {
		e.logger.Warn("display enumeration failed, using synthetic display", "error", err)
		displays = []Display{e.synthetic()}
	}

	if e.mainWindow != nil {
		if bounds, ok := e.mainWindow(); ok {
			center := bounds.Center()
			if d, ok := ClosestToPoint(displays, center); ok {
				for i := range displays {
					displays[i].HasMainWindow = SameDisplay(displays[i], d)
				}
			}
		}
	}
	return displays
}

// Invalidate drops the cached display set.
func (e *Enumerator) Invalidate() {
	e.cache.Purge()
}

// ClosestToPoint resolves p against the current display set.
func (e *Enumerator) ClosestToPoint(p geometry.Point) Display {
	d, _ := ClosestToPoint(e.Displays(), p)
	return d
}

// ContainingPoint resolves p against the current display set.
func (e *Enumerator) ContainingPoint(p geometry.Point) (Display, bool) {
	return ContainingPoint(e.Displays(), p)
}

// DesktopBounds returns the root window bounds, or the fallback resolution.
func (e *Enumerator) DesktopBounds() geometry.Rect {
	b, err := e.prober.DesktopBounds()
	if err != nil || b.Empty() {
		return fallbackBounds
	}
	return b
}

func (e *Enumerator) synthetic() Display {
	b := e.DesktopBounds()
	return Display{
		ID:             0,
		Name:           "screen",
		Bounds:         b,
		PhysicalBounds: b,
		WorkArea:       b,
		Primary:        true,
	}
}

func cloneDisplays(in []Display) []Display {
	out := make([]Display, len(in))
	copy(out, in)
	return out
}
