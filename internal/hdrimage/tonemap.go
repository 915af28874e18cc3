package hdrimage

import (
	"image"
	"image/color"
)

// DisplayParams controls how linear values become 8-bit display values.
type DisplayParams struct {
	Exposure float32 // stops; values are multiplied by 2^Exposure
	Gamma    float32 // used when SRGB is false
	SRGB     bool
	Dither   bool
}

// DefaultDisplayParams matches the viewer defaults.
func DefaultDisplayParams() DisplayParams {
	return DisplayParams{Exposure: 0, Gamma: 2.2, SRGB: true, Dither: true}
}

// EncodeValue maps one exposed linear value through the display transfer curve.
func (p DisplayParams) EncodeValue(v float32) float32 {
	if p.SRGB {
		return SRGBEncode(v)
	}
	return GammaEncode(v, p.Gamma)
}

// 4x4 Bayer matrix, values in [0,16).
var bayer4 = [4][4]float32{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// Display converts one linear sample to 8 bits. (x, y) selects the dither
// threshold and is ignored when dithering is off.
func (p DisplayParams) Display(c Color, x, y int) color.NRGBA {
	gain := Gain(p.Exposure)
	d := float32(0.5)
	if p.Dither {
		d = (bayer4[y&3][x&3] + 0.5) / 16
	}
	return color.NRGBA{
		R: quantize(p.EncodeValue(c.R*gain), d),
		G: quantize(p.EncodeValue(c.G*gain), d),
		B: quantize(p.EncodeValue(c.B*gain), d),
		A: quantize(c.A, 0.5),
	}
}

// ToneMap renders m into an 8-bit image using p.
func ToneMap(m *Image, p DisplayParams) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.SetNRGBA(x, y, p.Display(m.Pixel(x, y), x, y))
		}
	}
	return out
}

// quantize maps v in [0,1] to a byte, adding the dither offset d in [0,1).
func quantize(v, d float32) uint8 {
	q := clamp01(v)*255 + d
	if q >= 255 {
		return 255
	}
	if q <= 0 {
		return 0
	}
	return uint8(q)
}
