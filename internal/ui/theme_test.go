package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
)

func TestViewerTheme(t *testing.T) {
	base := theme.DefaultTheme()
	th := NewViewerTheme(base)

	assert.Equal(t, float32(2), th.Size(theme.SizeNamePadding))
	assert.Equal(t, base.Size(theme.SizeNameScrollBar), th.Size(theme.SizeNameScrollBar))
	assert.Equal(t, color.NRGBA{R: 30, G: 30, B: 30, A: 255}, th.Color(theme.ColorNameBackground, theme.VariantLight))
	assert.Equal(t,
		base.Color(theme.ColorNameForeground, theme.VariantDark),
		th.Color(theme.ColorNameForeground, theme.VariantLight))
}
