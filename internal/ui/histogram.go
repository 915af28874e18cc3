package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"hdrview/internal/stats"
)

var (
	histogramBackground = color.NRGBA{R: 24, G: 24, B: 24, A: 255}
	histogramChannels   = [3]color.NRGBA{
		{R: 220, A: 255},
		{G: 200, A: 255},
		{B: 240, A: 255},
	}
)

// HistogramView draws the per-channel histogram of the current document.
type HistogramView struct {
	widget.BaseWidget

	hist   *stats.Histogram
	raster *canvas.Raster
}

// NewHistogramView creates an empty histogram widget.
func NewHistogramView() *HistogramView {
	v := &HistogramView{}
	v.raster = canvas.NewRaster(func(w, h int) image.Image { return renderHistogram(v.hist, w, h) })
	v.ExtendBaseWidget(v)
	return v
}

// SetHistogram replaces the displayed histogram. nil clears the view.
func (v *HistogramView) SetHistogram(h *stats.Histogram) {
	v.hist = h
	v.Refresh()
}

// CreateRenderer is a Fyne lifecycle method.
func (v *HistogramView) CreateRenderer() fyne.WidgetRenderer {
	return &histogramRenderer{view: v}
}

type histogramRenderer struct {
	view *HistogramView
}

func (r *histogramRenderer) Layout(size fyne.Size)        { r.view.raster.Resize(size) }
func (r *histogramRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 80) }
func (r *histogramRenderer) Refresh()                     { canvas.Refresh(r.view.raster) }
func (r *histogramRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.view.raster} }
func (r *histogramRenderer) Destroy()                     {}

// renderHistogram draws the three channels additively, each column scaled so
// the fullest bin of any channel reaches the top.
func renderHistogram(hist *stats.Histogram, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = histogramBackground.R, histogramBackground.G, histogramBackground.B, 255
	}
	if hist == nil || hist.Bins() == 0 || hist.MaxCount() == 0 || w <= 0 || h <= 0 {
		return dst
	}

	bins := hist.Bins()
	for ch, c := range histogramChannels {
		norm := hist.Normalized(ch)
		for x := 0; x < w; x++ {
			bar := int(norm[x*bins/w]*float64(h) + 0.5)
			for y := h - bar; y < h; y++ {
				p := dst.NRGBAAt(x, y)
				if p == histogramBackground {
					p = color.NRGBA{A: 255}
				}
				p.R = max(p.R, c.R)
				p.G = max(p.G, c.G)
				p.B = max(p.B, c.B)
				dst.SetNRGBA(x, y, p)
			}
		}
	}
	return dst
}
