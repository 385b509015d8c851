package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames_Sorted(t *testing.T) {
	names := ThemeNames()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, DefaultTheme)
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)

	SetTheme(p)
	assert.Equal(t, p.Primary, ColorPrimary)
	assert.Equal(t, p, CurrentPalette)
}

func TestColorForString_Deterministic(t *testing.T) {
	assert.Equal(t, ColorForString("Amanda"), ColorForString("Amanda"))
	assert.Contains(t, ColorPool, ColorForString("someone else"))
}
