package ui

import (
	"image"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"hdrview/internal/viewer"
)

// fyne reports mouse wheel deltas scaled by this much per notch.
const scrollNotch float32 = 10

var (
	borderColor = color.NRGBA{R: 140, G: 140, B: 140, A: 255}
	gridColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// ImageView is the widget that shows the current document through a
// viewer.Controller: the tone mapped pixels, the image border, the pixel grid
// and per-pixel values once zoomed in far enough.
type ImageView struct {
	widget.BaseWidget

	ctrl   *viewer.Controller
	raster *canvas.Raster

	OnInteraction func() // called after a scroll or drag changed the view
}

// NewImageView creates an ImageView drawing through ctrl.
func NewImageView(ctrl *viewer.Controller) *ImageView {
	v := &ImageView{ctrl: ctrl}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// Controller returns the controller the view draws through.
func (v *ImageView) Controller() *viewer.Controller { return v.ctrl }

// Resize keeps the controller's viewport in step with the widget.
func (v *ImageView) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	v.ctrl.Resize(size, v.Position())
}

// Move records the widget origin used for screen positions.
func (v *ImageView) Move(pos fyne.Position) {
	v.BaseWidget.Move(pos)
	v.ctrl.Resize(v.Size(), pos)
}

// draw is the rendering function for the canvas.Raster. w and h are device
// pixels, which differ from widget units on scaled displays.
func (v *ImageView) draw(w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	size := v.Size()
	if w <= 0 || h <= 0 || size.Width <= 0 || size.Height <= 0 {
		return dst
	}
	sx := size.Width / float32(w)
	sy := size.Height / float32(h)

	for y := 0; y < h; y++ {
		py := (float32(y) + 0.5) * sy
		for x := 0; x < w; x++ {
			dst.SetNRGBA(x, y, v.ctrl.Shade(fyne.NewPos((float32(x)+0.5)*sx, py), x, y))
		}
	}
	v.drawGrid(dst, sx, sy)
	v.drawBorder(dst, sx, sy)
	return dst
}

func (v *ImageView) drawGrid(dst *image.NRGBA, sx, sy float32) {
	vp := v.ctrl.Viewport()
	if !vp.GridVisible() {
		return
	}
	alpha := vp.GridAlpha()
	r := vp.VisiblePixels()
	if r.Empty() {
		return
	}
	top := vp.PositionForCoordinate(fyne.NewPos(float32(r.Min.X), float32(r.Min.Y)))
	bottom := vp.PositionForCoordinate(fyne.NewPos(float32(r.Max.X), float32(r.Max.Y)))
	y0, y1 := int(top.Y/sy), int(bottom.Y/sy)
	x0, x1 := int(top.X/sx), int(bottom.X/sx)

	for i := r.Min.X; i <= r.Max.X; i++ {
		x := int(vp.PositionForCoordinate(fyne.NewPos(float32(i), 0)).X / sx)
		for y := y0; y <= y1; y++ {
			blendPixel(dst, x, y, gridColor, alpha)
		}
	}
	for j := r.Min.Y; j <= r.Max.Y; j++ {
		y := int(vp.PositionForCoordinate(fyne.NewPos(0, float32(j))).Y / sy)
		for x := x0; x <= x1; x++ {
			blendPixel(dst, x, y, gridColor, alpha)
		}
	}
}

func (v *ImageView) drawBorder(dst *image.NRGBA, sx, sy float32) {
	pos, size, ok := v.ctrl.BorderRect()
	if !ok {
		return
	}
	x0, y0 := int(pos.X/sx)-1, int(pos.Y/sy)-1
	x1, y1 := int((pos.X+size.Width)/sx), int((pos.Y+size.Height)/sy)
	for x := x0; x <= x1; x++ {
		blendPixel(dst, x, y0, borderColor, 1)
		blendPixel(dst, x, y1, borderColor, 1)
	}
	for y := y0; y <= y1; y++ {
		blendPixel(dst, x0, y, borderColor, 1)
		blendPixel(dst, x1, y, borderColor, 1)
	}
}

// blendPixel draws c over dst at (x, y) with the given opacity. Points
// outside dst are ignored.
func blendPixel(dst *image.NRGBA, x, y int, c color.NRGBA, alpha float32) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	under := dst.NRGBAAt(x, y)
	mix := func(a, b uint8) uint8 {
		return uint8(float32(a)*alpha + float32(b)*(1-alpha) + 0.5)
	}
	dst.SetNRGBA(x, y, color.NRGBA{R: mix(c.R, under.R), G: mix(c.G, under.G), B: mix(c.B, under.B), A: 255})
}

// CreateRenderer is a Fyne lifecycle method.
func (v *ImageView) CreateRenderer() fyne.WidgetRenderer {
	return &imageViewRenderer{view: v}
}

func (v *ImageView) interacted() {
	v.Refresh()
	if v.OnInteraction != nil {
		v.OnInteraction()
	}
}

// Scrolled zooms around the pointer, or pans while shift is held.
func (v *ImageView) Scrolled(ev *fyne.ScrollEvent) {
	rel := fyne.NewPos(ev.Scrolled.DX/scrollNotch, ev.Scrolled.DY/scrollNotch)
	if v.ctrl.Scroll(ev.Position, rel, currentModifiers()) {
		v.interacted()
	}
}

// Dragged pans the image with the pointer.
func (v *ImageView) Dragged(ev *fyne.DragEvent) {
	prev := ev.Position.Subtract(ev.Dragged)
	v.ctrl.Drag(prev, fyne.NewPos(ev.Dragged.DX, ev.Dragged.DY))
	v.ctrl.MouseMotion(ev.Position)
	v.interacted()
}

// DragEnd is required by fyne.Draggable.
func (v *ImageView) DragEnd() {}

// MouseIn reports the pixel under the pointer.
func (v *ImageView) MouseIn(ev *desktop.MouseEvent) { v.ctrl.MouseMotion(ev.Position) }

// MouseMoved reports the pixel under the pointer.
func (v *ImageView) MouseMoved(ev *desktop.MouseEvent) { v.ctrl.MouseMotion(ev.Position) }

// MouseOut is required by desktop.Hoverable.
func (v *ImageView) MouseOut() {}

func currentModifiers() fyne.KeyModifier {
	a := fyne.CurrentApp()
	if a == nil {
		return 0
	}
	if d, ok := a.Driver().(desktop.Driver); ok {
		return d.CurrentKeyModifiers()
	}
	return 0
}

// --- Renderer for ImageView ---

type imageViewRenderer struct {
	view    *ImageView
	texts   []*canvas.Text
	objects []fyne.CanvasObject
}

func (r *imageViewRenderer) Layout(size fyne.Size) {
	r.view.raster.Resize(size)
	r.layoutLabels()
}

func (r *imageViewRenderer) MinSize() fyne.Size { return fyne.NewSize(100, 100) }

func (r *imageViewRenderer) Refresh() {
	canvas.Refresh(r.view.raster)
	r.layoutLabels()
}

func (r *imageViewRenderer) Objects() []fyne.CanvasObject {
	if r.objects == nil {
		return []fyne.CanvasObject{r.view.raster}
	}
	return r.objects
}

func (r *imageViewRenderer) Destroy() {}

// layoutLabels places three lines of channel values centred on each visible
// pixel, reusing canvas.Text objects between refreshes.
func (r *imageViewRenderer) layoutLabels() {
	ctrl := r.view.ctrl
	labels := ctrl.VisibleLabels()
	alpha := uint8(ctrl.Viewport().PixelInfoAlpha() * 255)
	fontSize := ctrl.PixelInfoFontSize()

	needed := len(labels) * 3
	for len(r.texts) < needed {
		t := canvas.NewText("", color.White)
		t.Alignment = fyne.TextAlignCenter
		r.texts = append(r.texts, t)
	}

	r.objects = append(r.objects[:0], r.view.raster)
	for i, l := range labels {
		pos, size := ctrl.Viewport().PixelRect(l.Pixel.X, l.Pixel.Y)
		c := color.NRGBA{R: 255, G: 255, B: 255, A: alpha}
		if l.Dark {
			c = color.NRGBA{A: alpha}
		}
		for k, line := range strings.Split(l.Text, "\n") {
			t := r.texts[i*3+k]
			t.Text = line
			t.Color = c
			t.TextSize = fontSize
			t.Resize(fyne.NewSize(size.Width, fontSize))
			t.Move(fyne.NewPos(pos.X, pos.Y+size.Height*float32(k+1)/4-fontSize/2))
			t.Refresh()
			r.objects = append(r.objects, t)
		}
	}
}

var _ fyne.Widget = (*ImageView)(nil)
var _ fyne.Scrollable = (*ImageView)(nil)
var _ fyne.Draggable = (*ImageView)(nil)
var _ desktop.Hoverable = (*ImageView)(nil)
