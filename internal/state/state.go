// Package state persists small client preferences between sessions.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// State is the persisted client state.
type State struct {
	Theme string `toml:"theme"`
}

// Store reads and writes the state file.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a store backed by path. The file is created on first save.
func Open(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored state, or the default one when the file is missing.
// Unknown theme values fall back to light.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Theme: ThemeLight}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read state: %w", err)
	}
	if err := toml.Unmarshal(data, &st); err != nil {
		return State{Theme: ThemeLight}, fmt.Errorf("failed to parse state: %w", err)
	}
	if st.Theme != ThemeDark {
		st.Theme = ThemeLight
	}
	return st, nil
}

// Save writes st to disk.
func (s *Store) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}

// SetTheme validates and persists a theme.
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q (use light or dark)", theme)
	}
	st, err := s.Load()
	if err != nil {
		st = State{}
	}
	st.Theme = theme
	return s.Save(st)
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Store) ToggleTheme() (string, error) {
	st, _ := s.Load()
	next := ThemeDark
	if st.Theme == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(next)
}
