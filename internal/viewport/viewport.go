// Package viewport maps between widget-local screen coordinates and image
// coordinates under pan and zoom.
//
// The mapping is
//
//	screen = zoom*image + offset + centerOffset
//	centerOffset = (viewportSize - zoom*imageSize) / 2
//
// so an image smaller than the viewport is centred when offset is zero.
// A State is not safe for concurrent use; it is mutated from input callbacks
// only, never while a frame is being drawn.
package viewport

import (
	"math"

	"fyne.io/fyne/v2"
)

const (
	MinZoom float32 = 0.01
	MaxZoom float32 = 512

	// DefaultSensitivity is 2^(1/10): ten zoom-level steps double the scale.
	DefaultSensitivity float32 = 1.0717734625

	// Disabled is the threshold value that switches an overlay off.
	Disabled float32 = -1

	gridMaxAlpha      float32 = 0.2
	pixelInfoMaxAlpha float32 = 0.5
)

// State owns zoom, zoom level and offset for one viewer widget.
type State struct {
	zoom      float32
	zoomLevel float32
	offset    fyne.Position

	size      fyne.Size     // widget size
	imageSize fyne.Size     // pixel size of the displayed image
	origin    fyne.Position // widget position inside its window

	sensitivity        float32
	gridThreshold      float32
	pixelInfoThreshold float32
	drawGrid           bool
	drawValues         bool

	onZoom func(zoom float32)
}

// New returns a State at 100% zoom with both overlays disabled.
func New() *State {
	return &State{
		zoom:               1,
		zoomLevel:          0,
		sensitivity:        DefaultSensitivity,
		gridThreshold:      Disabled,
		pixelInfoThreshold: Disabled,
		drawGrid:           true,
		drawValues:         true,
	}
}

// --- Getters and setters ---

func (s *State) Zoom() float32          { return s.zoom }
func (s *State) ZoomLevel() float32     { return s.zoomLevel }
func (s *State) Offset() fyne.Position  { return s.offset }
func (s *State) Size() fyne.Size        { return s.size }
func (s *State) ImageSize() fyne.Size   { return s.imageSize }
func (s *State) Origin() fyne.Position  { return s.origin }
func (s *State) Sensitivity() float32   { return s.sensitivity }
func (s *State) SetSize(size fyne.Size) { s.size = size }

// SetOffset replaces the offset without clamping. Used to restore saved views.
func (s *State) SetOffset(offset fyne.Position) { s.offset = offset }

// SetImageSize sets the pixel dimensions of the displayed image.
func (s *State) SetImageSize(size fyne.Size) { s.imageSize = size }

// SetOrigin sets the widget position used by ScreenPositionForCoordinate.
func (s *State) SetOrigin(origin fyne.Position) { s.origin = origin }

// SetSensitivity changes the zoom-level base. Values that cannot act as a
// logarithm base (<= 0 or 1) are ignored. The zoom level is re-derived so the
// current zoom is unchanged.
func (s *State) SetSensitivity(sensitivity float32) {
	if sensitivity <= 0 || sensitivity == 1 {
		return
	}
	s.sensitivity = sensitivity
	s.zoomLevel = s.levelFor(s.zoom)
}

// SetZoomCallback registers the single zoom-changed listener.
func (s *State) SetZoomCallback(fn func(zoom float32)) { s.onZoom = fn }

func (s *State) GridThreshold() float32          { return s.gridThreshold }
func (s *State) SetGridThreshold(t float32)      { s.gridThreshold = t }
func (s *State) PixelInfoThreshold() float32     { return s.pixelInfoThreshold }
func (s *State) SetPixelInfoThreshold(t float32) { s.pixelInfoThreshold = t }
func (s *State) DrawGridOn() bool                { return s.drawGrid }
func (s *State) SetDrawGrid(b bool)              { s.drawGrid = b }
func (s *State) DrawValuesOn() bool              { return s.drawValues }
func (s *State) SetDrawValues(b bool)            { s.drawValues = b }

func (s *State) scaledImageSize() fyne.Size {
	return scale(s.imageSize, s.zoom)
}

// --- Coordinate mapping ---

// CenterOffset is the extra translation that centres the current image.
func (s *State) CenterOffset() fyne.Position {
	return s.CenterOffsetFor(s.imageSize)
}

// CenterOffsetFor is CenterOffset for an image of the given size, used when a
// reference image with different dimensions shares the viewport.
func (s *State) CenterOffsetFor(img fyne.Size) fyne.Position {
	scaled := scale(img, s.zoom)
	return fyne.NewPos((s.size.Width-scaled.Width)/2, (s.size.Height-scaled.Height)/2)
}

// ImageCoordinateAt returns the image coordinate under a widget position.
func (s *State) ImageCoordinateAt(pos fyne.Position) fyne.Position {
	c := s.CenterOffset()
	return fyne.NewPos(
		(pos.X-(s.offset.X+c.X))/s.zoom,
		(pos.Y-(s.offset.Y+c.Y))/s.zoom,
	)
}

// ClampedImageCoordinateAt is ImageCoordinateAt clamped to [0, imageSize].
func (s *State) ClampedImageCoordinateAt(pos fyne.Position) fyne.Position {
	c := s.ImageCoordinateAt(pos)
	return fyne.NewPos(clamp(c.X, 0, s.imageSize.Width), clamp(c.Y, 0, s.imageSize.Height))
}

// PositionForCoordinate is the inverse of ImageCoordinateAt.
func (s *State) PositionForCoordinate(coord fyne.Position) fyne.Position {
	c := s.CenterOffset()
	return fyne.NewPos(
		s.zoom*coord.X+s.offset.X+c.X,
		s.zoom*coord.Y+s.offset.Y+c.Y,
	)
}

// ScreenPositionForCoordinate is PositionForCoordinate in window coordinates.
func (s *State) ScreenPositionForCoordinate(coord fyne.Position) fyne.Position {
	p := s.PositionForCoordinate(coord)
	return fyne.NewPos(p.X+s.origin.X, p.Y+s.origin.Y)
}

// SetImageCoordinateAt moves the offset so that coord lies under pos. The
// offset is clamped to [-scaledImageSize, viewportSize] before centring is
// removed, which keeps part of the image reachable.
func (s *State) SetImageCoordinateAt(pos, coord fyne.Position) {
	scaled := s.scaledImageSize()
	x := pos.X - coord.X*s.zoom
	y := pos.Y - coord.Y*s.zoom

	x = max(min(x, s.size.Width), -scaled.Width)
	y = max(min(y, s.size.Height), -scaled.Height)

	c := s.CenterOffset()
	s.offset = fyne.NewPos(x-c.X, y-c.Y)
}

// --- Mutators ---

// Center resets the offset without touching zoom.
func (s *State) Center() {
	s.offset = fyne.Position{}
}

// Fit scales the image to fit inside the viewport and centres it. It does
// nothing when either the image or the viewport has no area.
func (s *State) Fit() {
	if s.imageSize.Width <= 0 || s.imageSize.Height <= 0 || s.size.Width <= 0 || s.size.Height <= 0 {
		return
	}
	s.setZoom(min(s.size.Width/s.imageSize.Width, s.size.Height/s.imageSize.Height))
	s.Center()
	s.notifyZoom()
}

// MoveOffset pans by delta. Each axis is clamped independently so the image
// cannot be dragged past -scaledSize or past the viewport extent.
func (s *State) MoveOffset(delta fyne.Position) {
	s.offset = s.offset.Add(delta)

	scaled := s.scaledImageSize()
	if s.offset.X+scaled.Width < 0 {
		s.offset.X = -scaled.Width
	}
	if s.offset.X > s.size.Width {
		s.offset.X = s.size.Width
	}
	if s.offset.Y+scaled.Height < 0 {
		s.offset.Y = -scaled.Height
	}
	if s.offset.Y > s.size.Height {
		s.offset.Y = s.size.Height
	}
}

// ZoomBy multiplies the zoom by sensitivity^amount while keeping the image
// coordinate under focus at the same widget position.
func (s *State) ZoomBy(amount float32, focus fyne.Position) {
	focused := s.ImageCoordinateAt(focus)
	factor := float32(math.Pow(float64(s.sensitivity), float64(amount)))
	s.setZoom(s.zoom * factor)
	s.SetImageCoordinateAt(focus, focused)
	s.notifyZoom()
}

// ZoomIn snaps to the next higher power of two, keeping the viewport centre fixed.
func (s *State) ZoomIn() {
	level := math.Ceil(math.Log2(float64(s.zoom)) + 0.5)
	s.zoomAroundCenter(float32(math.Exp2(level)))
}

// ZoomOut snaps to the next lower power of two, keeping the viewport centre fixed.
func (s *State) ZoomOut() {
	level := math.Floor(math.Log2(float64(s.zoom)) - 0.5)
	s.zoomAroundCenter(float32(math.Exp2(level)))
}

// SetZoomLevel sets zoom = sensitivity^level (clamped), keeping the viewport
// centre fixed.
func (s *State) SetZoomLevel(level float32) {
	s.zoomAroundCenter(float32(math.Pow(float64(s.sensitivity), float64(level))))
}

func (s *State) zoomAroundCenter(zoom float32) {
	center := fyne.NewPos(s.size.Width/2, s.size.Height/2)
	coord := s.ImageCoordinateAt(center)
	s.setZoom(zoom)
	s.SetImageCoordinateAt(center, coord)
	s.notifyZoom()
}

// setZoom clamps and stores zoom and derives the level from the clamped value.
func (s *State) setZoom(zoom float32) {
	if math.IsNaN(float64(zoom)) {
		return
	}
	s.zoom = clamp(zoom, MinZoom, MaxZoom)
	s.zoomLevel = s.levelFor(s.zoom)
}

func (s *State) levelFor(zoom float32) float32 {
	return float32(math.Log(float64(zoom)) / math.Log(float64(s.sensitivity)))
}

func (s *State) notifyZoom() {
	if s.onZoom != nil {
		s.onZoom(s.zoom)
	}
}

func scale(sz fyne.Size, f float32) fyne.Size {
	return fyne.NewSize(sz.Width*f, sz.Height*f)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
