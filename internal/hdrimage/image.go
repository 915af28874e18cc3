// Package hdrimage holds linear-light floating point images and their codecs.
package hdrimage

import (
	"image"
	"image/color"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
)

// Color is one linear RGBA sample. Values are relative to display white (1.0).
type Color struct {
	R, G, B, A float32
}

// Scale multiplies the colour channels by f, leaving alpha untouched.
func (c Color) Scale(f float32) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f, A: c.A}
}

// Luminance returns the Rec. 709 luminance of the colour.
func (c Color) Luminance() float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Channel returns channel i (0=R, 1=G, 2=B, 3=A).
func (c Color) Channel(i int) float32 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	default:
		return c.A
	}
}

// Image is a width x height grid of RGBA float32 samples stored row-major.
type Image struct {
	Width  int
	Height int
	Pix    []float32 // 4 floats per pixel
}

// New allocates a zero-filled image. Negative dimensions are treated as 0.
func New(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

// IsNull reports whether the image has no pixels.
func (m *Image) IsNull() bool {
	return m == nil || m.Width <= 0 || m.Height <= 0
}

// Contains reports whether (x, y) addresses a pixel of the image.
func (m *Image) Contains(x, y int) bool {
	return m != nil && x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// PixOffset returns the index of the first element of Pix for pixel (x, y).
func (m *Image) PixOffset(x, y int) int {
	return (y*m.Width + x) * 4
}

// Pixel returns the sample at (x, y), or the zero Color when out of range.
func (m *Image) Pixel(x, y int) Color {
	if !m.Contains(x, y) {
		return Color{}
	}
	i := m.PixOffset(x, y)
	return Color{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: m.Pix[i+3]}
}

// SetPixel stores c at (x, y). Out of range writes are ignored.
func (m *Image) SetPixel(x, y int, c Color) {
	if !m.Contains(x, y) {
		return
	}
	i := m.PixOffset(x, y)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = c.R, c.G, c.B, c.A
}

// Fill sets every pixel to c.
func (m *Image) Fill(c Color) {
	for i := 0; i+3 < len(m.Pix); i += 4 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	if m == nil {
		return nil
	}
	pix := make([]float32, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Width: m.Width, Height: m.Height, Pix: pix}
}

// Equal reports whether both images have the same dimensions and samples.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Width != o.Width || m.Height != o.Height || len(m.Pix) != len(o.Pix) {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// --- image.Image and hdr.Image ---

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return hdrcolor.RGBModel }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image.
func (m *Image) At(x, y int) color.Color { return m.HDRAt(x, y) }

// HDRAt implements hdr.Image.
func (m *Image) HDRAt(x, y int) hdrcolor.Color {
	c := m.Pixel(x, y)
	return hdrcolor.RGB{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// Size implements hdr.Image and returns the number of pixels.
func (m *Image) Size() int { return m.Width * m.Height }

var _ hdr.Image = (*Image)(nil)
