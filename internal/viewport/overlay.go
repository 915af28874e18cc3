package viewport

import (
	"image"
	"math"

	"fyne.io/fyne/v2"
)

// GridVisible reports whether the pixel grid should be drawn.
func (s *State) GridVisible() bool {
	return s.drawGrid && s.gridThreshold != Disabled && s.zoom > s.gridThreshold
}

// PixelInfoVisible reports whether per-pixel values should be drawn.
func (s *State) PixelInfoVisible() bool {
	return s.drawValues && s.pixelInfoThreshold != Disabled && s.zoom > s.pixelInfoThreshold
}

// HelpersVisible reports whether any overlay is visible.
func (s *State) HelpersVisible() bool {
	return s.GridVisible() || s.PixelInfoVisible()
}

// GridAlpha is the grid line opacity, fading in between threshold and twice it.
func (s *State) GridAlpha() float32 {
	return fade(s.zoom, s.gridThreshold, gridMaxAlpha)
}

// PixelInfoAlpha is the pixel value text opacity.
func (s *State) PixelInfoAlpha() float32 {
	return fade(s.zoom, s.pixelInfoThreshold, pixelInfoMaxAlpha)
}

func fade(zoom, threshold, maxAlpha float32) float32 {
	if threshold <= 0 {
		return 0
	}
	t := clamp((zoom-threshold)/threshold, 0, 1)
	return maxAlpha * t * t * (3 - 2*t)
}

// VisiblePixels returns the half-open range of image pixels that intersect
// the viewport, clamped to the image.
func (s *State) VisiblePixels() image.Rectangle {
	w, h := int(s.imageSize.Width), int(s.imageSize.Height)
	if w <= 0 || h <= 0 || s.zoom <= 0 {
		return image.Rectangle{}
	}
	p0 := s.PositionForCoordinate(fyne.Position{})
	r := image.Rect(
		max(0, int(math.Floor(float64(-p0.X/s.zoom)))),
		max(0, int(math.Floor(float64(-p0.Y/s.zoom)))),
		min(w, int(math.Ceil(float64((s.size.Width-p0.X)/s.zoom)))),
		min(h, int(math.Ceil(float64((s.size.Height-p0.Y)/s.zoom)))),
	)
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}

// PixelRect returns the widget rectangle covered by image pixel (x, y).
func (s *State) PixelRect(x, y int) (fyne.Position, fyne.Size) {
	return s.PositionForCoordinate(fyne.NewPos(float32(x), float32(y))), fyne.NewSize(s.zoom, s.zoom)
}

// ImageRectFor returns the widget rectangle covered by an image of size img.
func (s *State) ImageRectFor(img fyne.Size) (fyne.Position, fyne.Size) {
	c := s.CenterOffsetFor(img)
	return fyne.NewPos(s.offset.X+c.X, s.offset.Y+c.Y), scale(img, s.zoom)
}
