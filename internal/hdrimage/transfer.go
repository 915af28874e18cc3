package hdrimage

import "math"

// SRGBEncode applies the sRGB transfer curve to a linear value.
func SRGBEncode(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*float32(math.Pow(float64(v), 1.0/2.4)) - 0.055
}

// SRGBDecode converts an sRGB encoded value back to linear light.
func SRGBDecode(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64((v+0.055)/1.055), 2.4))
}

// GammaEncode applies a pure power curve with exponent 1/gamma.
// Non-positive values map to 0.
func GammaEncode(v, gamma float32) float32 {
	if v <= 0 {
		return 0
	}
	if gamma <= 0 {
		return v
	}
	return float32(math.Pow(float64(v), 1.0/float64(gamma)))
}

// Gain returns the linear multiplier for an exposure value in stops.
func Gain(exposure float32) float32 {
	return float32(math.Exp2(float64(exposure)))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
