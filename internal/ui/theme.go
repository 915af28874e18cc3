package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// viewerTheme wraps a base theme, forcing the dark variant so images are
// judged against a neutral surround, and tightening padding for the side panel.
type viewerTheme struct {
	fyne.Theme
}

var _ fyne.Theme = (*viewerTheme)(nil)

// NewViewerTheme wraps base.
func NewViewerTheme(base fyne.Theme) fyne.Theme {
	return &viewerTheme{Theme: base}
}

func (t *viewerTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameBackground {
		return color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	}
	return t.Theme.Color(name, theme.VariantDark)
}

func (t *viewerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 2
	case theme.SizeNameText:
		return 12
	}
	return t.Theme.Size(name)
}
