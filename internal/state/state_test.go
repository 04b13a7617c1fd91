package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileDefaultsToLight(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "state.toml"))
	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, st.Theme)
}

func TestSetThemePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.toml")
	s := Open(path)

	require.NoError(t, s.SetTheme(ThemeDark))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dark")

	st, err := Open(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, st.Theme)
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "state.toml"))
	assert.Error(t, s.SetTheme("sepia"))
}

func TestToggleTheme(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "state.toml"))

	theme, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	theme, err = s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
}

func TestLoadUnknownValueFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"neon\"\n"), 0o644))

	st, err := Open(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, st.Theme)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = = ="), 0o644))

	st, err := Open(path).Load()
	assert.Error(t, err)
	assert.Equal(t, ThemeLight, st.Theme)
}
