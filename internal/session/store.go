package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/runtimepath"
)

const formatVersion = 1

// ErrLocked is returned by Lock when another daemon owns the session.
var ErrLocked = errors.New("session is locked by another fullframe daemon")

type sessionFile struct {
	Version int                      `json:"version"`
	SavedAt time.Time                `json:"saved_at"`
	Windows []fullscreen.WindowState `json:"windows"`
}

// Store persists the fullscreen session as JSON.
type Store struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	lock *os.File
}

var _ fullscreen.Store = (*Store)(nil)

// NewStore creates a store backed by path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// DefaultStore creates a store at the default session path.
func DefaultStore(logger *slog.Logger) (*Store, error) {
	path, err := runtimepath.SessionPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path, logger), nil
}

// Path returns the session file path.
func (s *Store) Path() string { return s.path }

// Load reads the persisted session. A missing or unreadable file yields an
// empty session; the problem is logged and never returned.
func (s *Store) Load() []fullscreen.WindowState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("no saved fullscreen session", "path", s.path)
		} else {
			s.logger.Warn("failed to read fullscreen session, starting empty", "path", s.path, "error", err)
		}
		return nil
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		s.logger.Warn("failed to parse fullscreen session, starting empty", "path", s.path, "error", err)
		return nil
	}
	if f.Version > formatVersion {
		s.logger.Warn("fullscreen session was written by a newer version, starting empty", "path", s.path, "version", f.Version)
		return nil
	}
	return f.Windows
}

// Save atomically replaces the session file with states.
func (s *Store) Save(states []fullscreen.WindowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sessionFile{
		Version: formatVersion,
		SavedAt: time.Now().UTC(),
		Windows: states,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode fullscreen session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write fullscreen session: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod fullscreen session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close fullscreen session: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace fullscreen session: %w", err)
	}
	return nil
}

func (s *Store) lockPath() string {
	return filepath.Join(filepath.Dir(s.path), "session.lock")
}
