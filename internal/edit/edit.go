// Package edit provides reversible image edits for the history.
package edit

import (
	"errors"
	"fmt"
	"math"

	"hdrview/internal/hdrimage"
	"hdrview/internal/history"
)

// ErrEmptyImage is returned by commands that need pixels to work on.
var ErrEmptyImage = errors.New("image is empty")

// FlipHorizontal mirrors the image left to right. It is its own inverse.
type FlipHorizontal struct{}

func (FlipHorizontal) Name() string { return "Flip Horizontal" }

func (f FlipHorizontal) Apply(img *hdrimage.Image) (*hdrimage.Image, history.Command, error) {
	if img.IsNull() {
		return nil, nil, ErrEmptyImage
	}
	out := hdrimage.New(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out.SetPixel(img.Width-1-x, y, img.Pixel(x, y))
		}
	}
	return out, f, nil
}

// FlipVertical mirrors the image top to bottom. It is its own inverse.
type FlipVertical struct{}

func (FlipVertical) Name() string { return "Flip Vertical" }

func (f FlipVertical) Apply(img *hdrimage.Image) (*hdrimage.Image, history.Command, error) {
	if img.IsNull() {
		return nil, nil, ErrEmptyImage
	}
	out := hdrimage.New(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out.SetPixel(x, img.Height-1-y, img.Pixel(x, y))
		}
	}
	return out, f, nil
}

// Gain multiplies RGB by Factor. Zero and non-finite factors are rejected.
// Multiplying back by 1/Factor is only exact for powers of two, so the inverse
// restores a copy of the input instead.
type Gain struct {
	Factor float32
}

// GainStops returns a Gain of 2^stops.
func GainStops(stops float32) Gain {
	return Gain{Factor: hdrimage.Gain(stops)}
}

func (g Gain) Name() string { return fmt.Sprintf("Gain x%g", g.Factor) }

func (g Gain) Apply(img *hdrimage.Image) (*hdrimage.Image, history.Command, error) {
	f := float64(g.Factor)
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil, fmt.Errorf("invalid gain factor %v", g.Factor)
	}
	out := img.Clone()
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.SetPixel(x, y, out.Pixel(x, y).Scale(g.Factor))
		}
	}
	return out, restore{label: g.Name(), image: img}, nil
}

// Func wraps an arbitrary image transformation. Its inverse restores a full
// copy of the input, so it works for edits that have no analytic inverse.
type Func struct {
	Label string
	Fn    func(img *hdrimage.Image) (*hdrimage.Image, error)
}

func (c Func) Name() string { return c.Label }

func (c Func) Apply(img *hdrimage.Image) (*hdrimage.Image, history.Command, error) {
	if c.Fn == nil {
		return nil, nil, errors.New("no edit function")
	}
	out, err := c.Fn(img.Clone())
	if err != nil {
		return nil, nil, err
	}
	return out, restore{label: c.Label, image: img}, nil
}

// restore swaps the current image for a saved one and remembers what it replaced.
type restore struct {
	label string
	image *hdrimage.Image
}

func (r restore) Name() string { return r.label }

func (r restore) Apply(img *hdrimage.Image) (*hdrimage.Image, history.Command, error) {
	return r.image, restore{label: r.label, image: img}, nil
}

// ByName returns the named reference command. Names are matched as typed on
// the command line: "fliph", "flipv" and "gain".
func ByName(name string, amount float32) (history.Command, error) {
	switch name {
	case "fliph":
		return FlipHorizontal{}, nil
	case "flipv":
		return FlipVertical{}, nil
	case "gain":
		return GainStops(amount), nil
	default:
		return nil, fmt.Errorf("unknown edit %q", name)
	}
}
