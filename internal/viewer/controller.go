// Package viewer answers the spatial questions a viewer widget asks: which
// pixel is under the cursor, where each image lands on screen, and how input
// gestures change the view.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"

	"hdrview/internal/document"
	"hdrview/internal/hdrimage"
	"hdrview/internal/viewport"
	"hdrview/internal/workspace"
)

const (
	// PanScrollFactor scales scroll deltas when the pan modifier is held.
	PanScrollFactor float32 = 4
	// ZoomScrollDivisor divides scroll deltas into zoom-level steps.
	ZoomScrollDivisor float32 = 4
	// PanModifier turns scrolling into panning.
	PanModifier = fyne.KeyModifierShift
)

// Background is drawn where no image covers the viewport.
var Background = color.NRGBA{R: 38, G: 38, B: 38, A: 255}

// Hover describes the pixel under the cursor. Inside is false, and Raw and
// Display are zero, when the cursor is outside the current image.
type Hover struct {
	Pixel   image.Point
	Inside  bool
	Raw     hdrimage.Color
	Display hdrimage.Color
}

// Controller combines the workspace's current and reference documents with one
// viewport and the display settings.
type Controller struct {
	ws   *workspace.Workspace
	view *viewport.State

	exposure float32
	gamma    float32
	srgb     bool
	dither   bool
	channel  Channel
	blend    BlendMode

	onExposure func(float32)
	onGamma    func(float32)
	onSRGB     func(bool)
	onHover    func(Hover)
}

// New creates a controller over ws with default display settings.
func New(ws *workspace.Workspace) *Controller {
	d := hdrimage.DefaultDisplayParams()
	return &Controller{
		ws:       ws,
		view:     viewport.New(),
		exposure: d.Exposure,
		gamma:    d.Gamma,
		srgb:     d.SRGB,
		dither:   d.Dither,
	}
}

// Viewport exposes the view transform, synced to the current image.
func (c *Controller) Viewport() *viewport.State {
	c.sync()
	return c.view
}

func (c *Controller) Workspace() *workspace.Workspace      { return c.ws }
func (c *Controller) Current() *document.Document          { return c.ws.Current() }
func (c *Controller) Reference() *document.Document        { return c.ws.Reference() }
func (c *Controller) SetExposureCallback(fn func(float32)) { c.onExposure = fn }
func (c *Controller) SetGammaCallback(fn func(float32))    { c.onGamma = fn }
func (c *Controller) SetSRGBCallback(fn func(bool))        { c.onSRGB = fn }
func (c *Controller) SetHoverCallback(fn func(Hover))      { c.onHover = fn }
func (c *Controller) SetZoomCallback(fn func(float32))     { c.view.SetZoomCallback(fn) }

// sync copies the current image size into the viewport.
func (c *Controller) sync() {
	var size fyne.Size
	if doc := c.ws.Current(); doc != nil {
		p := doc.Size()
		size = fyne.NewSize(float32(p.X), float32(p.Y))
	}
	c.view.SetImageSize(size)
}

// --- Display settings ---

func (c *Controller) Exposure() float32    { return c.exposure }
func (c *Controller) Gamma() float32       { return c.gamma }
func (c *Controller) SRGB() bool           { return c.srgb }
func (c *Controller) Dither() bool         { return c.dither }
func (c *Controller) Channel() Channel     { return c.channel }
func (c *Controller) BlendMode() BlendMode { return c.blend }

func (c *Controller) SetDither(b bool)           { c.dither = b }
func (c *Controller) SetChannel(ch Channel)      { c.channel = ch }
func (c *Controller) SetBlendMode(b BlendMode)   { c.blend = b }
func (c *Controller) SetDrawGrid(b bool)         { c.view.SetDrawGrid(b) }
func (c *Controller) SetDrawValues(b bool)       { c.view.SetDrawValues(b) }
func (c *Controller) DrawGrid() bool             { return c.view.DrawGridOn() }
func (c *Controller) DrawValues() bool           { return c.view.DrawValuesOn() }
func (c *Controller) SetGridThreshold(t float32) { c.view.SetGridThreshold(t) }

func (c *Controller) SetPixelInfoThreshold(t float32) { c.view.SetPixelInfoThreshold(t) }

// SetExposure changes the exposure in stops and notifies on change.
func (c *Controller) SetExposure(exposure float32) {
	if exposure == c.exposure {
		return
	}
	c.exposure = exposure
	if c.onExposure != nil {
		c.onExposure(exposure)
	}
}

// SetGamma changes the display gamma. Non-positive values are ignored.
func (c *Controller) SetGamma(gamma float32) {
	if gamma <= 0 || gamma == c.gamma {
		return
	}
	c.gamma = gamma
	if c.onGamma != nil {
		c.onGamma(gamma)
	}
}

// SetSRGB switches between the sRGB curve and the plain gamma curve.
func (c *Controller) SetSRGB(srgb bool) {
	if srgb == c.srgb {
		return
	}
	c.srgb = srgb
	if c.onSRGB != nil {
		c.onSRGB(srgb)
	}
}

// DisplayParams returns the current display settings.
func (c *Controller) DisplayParams() hdrimage.DisplayParams {
	return hdrimage.DisplayParams{Exposure: c.exposure, Gamma: c.gamma, SRGB: c.srgb, Dither: c.dither}
}

// --- View mutators ---

// Resize records the widget size and its position in the window.
func (c *Controller) Resize(size fyne.Size, origin fyne.Position) {
	c.view.SetSize(size)
	c.view.SetOrigin(origin)
}

func (c *Controller) Fit()                   { c.sync(); c.view.Fit() }
func (c *Controller) Center()                { c.sync(); c.view.Center() }
func (c *Controller) ZoomIn()                { c.sync(); c.view.ZoomIn() }
func (c *Controller) ZoomOut()               { c.sync(); c.view.ZoomOut() }
func (c *Controller) SetZoomLevel(l float32) { c.sync(); c.view.SetZoomLevel(l) }

// --- Queries and gestures ---

// PixelUnderCursor maps a widget position to the current image. It never
// scans the image.
func (c *Controller) PixelUnderCursor(pos fyne.Position) Hover {
	c.sync()
	coord := c.view.ImageCoordinateAt(pos)
	h := Hover{Pixel: image.Pt(floor(coord.X), floor(coord.Y))}

	doc := c.ws.Current()
	if doc == nil {
		return h
	}
	raw, ok := doc.PixelAt(h.Pixel.X, h.Pixel.Y)
	if !ok {
		return h
	}
	gain := hdrimage.Gain(c.exposure)
	h.Inside = true
	h.Raw = raw
	h.Display = hdrimage.Color{
		R: clamp255(raw.R * gain * 255),
		G: clamp255(raw.G * gain * 255),
		B: clamp255(raw.B * gain * 255),
		A: clamp255(raw.A * 255),
	}
	return h
}

// MouseMotion reports the hovered pixel to the hover callback. It returns
// false when there is no current image.
func (c *Controller) MouseMotion(pos fyne.Position) bool {
	if c.ws.Current() == nil {
		return false
	}
	h := c.PixelUnderCursor(pos)
	if c.onHover != nil {
		c.onHover(h)
	}
	return true
}

// Drag pans so the image point under pos follows the pointer by rel.
func (c *Controller) Drag(pos, rel fyne.Position) {
	c.sync()
	c.view.SetImageCoordinateAt(pos.Add(rel), c.view.ImageCoordinateAt(pos))
}

// Scroll pans with the pan modifier held and zooms around pos with no
// modifiers. Any other modifier combination is left unhandled.
func (c *Controller) Scroll(pos, rel fyne.Position, mods fyne.KeyModifier) bool {
	c.sync()
	switch {
	case mods&PanModifier != 0:
		target := fyne.NewPos(pos.X+rel.X*PanScrollFactor, pos.Y+rel.Y*PanScrollFactor)
		c.view.SetImageCoordinateAt(target, c.view.ImageCoordinateAt(pos))
		return true
	case mods == 0:
		v := rel.Y
		// A purely horizontal wheel event carries no zoom direction; leave
		// it to the caller rather than zooming in by one unit.
		if v == 0 {
			return false
		}
		if math.Abs(float64(v)) < 1 {
			v = float32(math.Copysign(1, float64(v)))
		}
		c.view.ZoomBy(v/ZoomScrollDivisor, pos)
		return true
	default:
		return false
	}
}

// ImageRect returns the widget rectangle covered by the current image.
func (c *Controller) ImageRect() (fyne.Position, fyne.Size, bool) {
	return c.rectFor(c.ws.Current())
}

// ReferenceRect returns the widget rectangle covered by the reference image.
func (c *Controller) ReferenceRect() (fyne.Position, fyne.Size, bool) {
	return c.rectFor(c.ws.Reference())
}

func (c *Controller) rectFor(doc *document.Document) (fyne.Position, fyne.Size, bool) {
	if doc == nil || doc.Image().IsNull() {
		return fyne.Position{}, fyne.Size{}, false
	}
	c.sync()
	p := doc.Size()
	pos, size := c.view.ImageRectFor(fyne.NewSize(float32(p.X), float32(p.Y)))
	return pos, size, true
}

// BorderRect is the smallest rectangle enclosing the current and reference images.
func (c *Controller) BorderRect() (fyne.Position, fyne.Size, bool) {
	pos, size, ok := c.ImageRect()
	if !ok {
		return pos, size, false
	}
	rpos, rsize, rok := c.ReferenceRect()
	if !rok {
		return pos, size, true
	}
	x0, y0 := min(pos.X, rpos.X), min(pos.Y, rpos.Y)
	x1 := max(pos.X+size.Width, rpos.X+rsize.Width)
	y1 := max(pos.Y+size.Height, rpos.Y+rsize.Height)
	return fyne.NewPos(x0, y0), fyne.NewSize(x1-x0, y1-y0), true
}

// PositionAndScale returns the image placement normalised by the screen size,
// the form a texture-quad renderer consumes.
func (c *Controller) PositionAndScale(doc *document.Document, screen fyne.Size) (pos, scale fyne.Position, ok bool) {
	if screen.Width <= 0 || screen.Height <= 0 {
		return pos, scale, false
	}
	p, size, ok := c.rectFor(doc)
	if !ok {
		return pos, scale, false
	}
	origin := c.view.Origin()
	pos = fyne.NewPos((origin.X+p.X)/screen.Width, (origin.Y+p.Y)/screen.Height)
	scale = fyne.NewPos(size.Width/screen.Width, size.Height/screen.Height)
	return pos, scale, true
}

// Sample returns the blended, channel-isolated linear colour shown at a widget
// position, and false when neither image covers it.
func (c *Controller) Sample(pos fyne.Position) (hdrimage.Color, bool) {
	c.sync()
	top, topOK := c.sampleDoc(c.ws.Current(), pos)
	bottom, bottomOK := c.sampleDoc(c.ws.Reference(), pos)
	if !topOK && !bottomOK {
		return hdrimage.Color{}, false
	}
	col := top
	if c.ws.Reference() != nil {
		col = Blend(top, bottom, c.blend)
	}
	return IsolateChannel(col, c.channel), true
}

func (c *Controller) sampleDoc(doc *document.Document, pos fyne.Position) (hdrimage.Color, bool) {
	if doc == nil {
		return hdrimage.Color{}, false
	}
	p := doc.Size()
	co := c.view.CenterOffsetFor(fyne.NewSize(float32(p.X), float32(p.Y)))
	off := c.view.Offset()
	z := c.view.Zoom()
	x := floor((pos.X - off.X - co.X) / z)
	y := floor((pos.Y - off.Y - co.Y) / z)
	return doc.PixelAt(x, y)
}

// Shade returns the display colour of a widget position, as drawn by the raster.
func (c *Controller) Shade(pos fyne.Position, px, py int) color.NRGBA {
	col, ok := c.Sample(pos)
	if !ok {
		return Background
	}
	out := c.DisplayParams().Display(col, px, py)
	if out.A < 255 {
		// Composite over the background.
		a := uint32(out.A)
		out.R = uint8((uint32(out.R)*a + uint32(Background.R)*(255-a)) / 255)
		out.G = uint8((uint32(out.G)*a + uint32(Background.G)*(255-a)) / 255)
		out.B = uint8((uint32(out.B)*a + uint32(Background.B)*(255-a)) / 255)
		out.A = 255
	}
	return out
}

// PixelLabel is the overlay text for one pixel.
type PixelLabel struct {
	Pixel image.Point
	Text  string
	Dark  bool // draw dark text on a bright pixel
}

// PixelInfoText formats pixel (x, y) of the current image as three lines of
// raw channel values. Dark is set when the exposed luminance exceeds 0.5.
func (c *Controller) PixelInfoText(x, y int) (PixelLabel, bool) {
	doc := c.ws.Current()
	if doc == nil {
		return PixelLabel{}, false
	}
	px, ok := doc.PixelAt(x, y)
	if !ok {
		return PixelLabel{}, false
	}
	return PixelLabel{
		Pixel: image.Pt(x, y),
		Text:  fmt.Sprintf("%1.3f\n%1.3f\n%1.3f", px.R, px.G, px.B),
		Dark:  px.Luminance()*hdrimage.Gain(c.exposure) > 0.5,
	}, true
}

// PixelInfoFontSize scales overlay text with the zoom.
func (c *Controller) PixelInfoFontSize() float32 {
	return c.view.Zoom() / 31 * 10
}

// VisibleLabels returns overlay labels for every visible pixel, or nil when
// the pixel info overlay is hidden.
func (c *Controller) VisibleLabels() []PixelLabel {
	c.sync()
	if !c.view.PixelInfoVisible() {
		return nil
	}
	r := c.view.VisiblePixels()
	labels := make([]PixelLabel, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if l, ok := c.PixelInfoText(x, y); ok {
				labels = append(labels, l)
			}
		}
	}
	return labels
}

func floor(v float32) int {
	return int(math.Floor(float64(v)))
}

// clamp255 limits v to [0, 255]. NaN maps to 0.
func clamp255(v float32) float32 {
	if v != v {
		return 0
	}
	return max(0, min(255, v))
}
