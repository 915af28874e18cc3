package viewer

import (
	"math"

	"hdrview/internal/hdrimage"
)

// Blend combines a sample of the current image (top) with a sample of the
// reference image (bottom). Samples outside an image are the zero Color.
func Blend(top, bottom hdrimage.Color, mode BlendMode) hdrimage.Color {
	if mode == BlendNormal {
		k := 1 - top.A
		return hdrimage.Color{
			R: top.R + bottom.R*k,
			G: top.G + bottom.G*k,
			B: top.B + bottom.B*k,
			A: top.A + bottom.A*k,
		}
	}
	return hdrimage.Color{
		R: blendValue(top.R, bottom.R, mode),
		G: blendValue(top.G, bottom.G, mode),
		B: blendValue(top.B, bottom.B, mode),
		A: max(top.A, bottom.A),
	}
}

func blendValue(a, b float32, mode BlendMode) float32 {
	switch mode {
	case BlendMultiply:
		return a * b
	case BlendDivide:
		if b == 0 {
			return 0
		}
		return a / b
	case BlendAdd:
		return a + b
	case BlendAverage:
		return 0.5 * (a + b)
	case BlendSubtract:
		return a - b
	case BlendDifference:
		return float32(math.Abs(float64(a - b)))
	case BlendRelativeDifference:
		return float32(math.Abs(float64(a-b))) / (b + 0.01)
	default:
		return a
	}
}

// IsolateChannel replaces RGB with the selected channel. Alpha is kept.
func IsolateChannel(c hdrimage.Color, ch Channel) hdrimage.Color {
	var v float32
	switch ch {
	case ChannelRed:
		v = c.R
	case ChannelGreen:
		v = c.G
	case ChannelBlue:
		v = c.B
	case ChannelLuminance:
		v = c.Luminance()
	default:
		return c
	}
	return hdrimage.Color{R: v, G: v, B: v, A: c.A}
}
