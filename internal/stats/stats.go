// Package stats computes histograms and summary statistics of HDR images and
// memoizes them per content version.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hdrview/internal/hdrimage"
)

// Mode selects the value domain a histogram is binned in.
type Mode int

const (
	// Linear bins exposed linear values in [0, 1].
	Linear Mode = iota
	// DisplayEncoded bins exposed values after the sRGB transfer curve.
	DisplayEncoded
)

func (m Mode) String() string {
	switch m {
	case DisplayEncoded:
		return "display"
	default:
		return "linear"
	}
}

// ParseMode accepts the names returned by Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "linear":
		return Linear, true
	case "display":
		return DisplayEncoded, true
	default:
		return Linear, false
	}
}

// DefaultBins is the bin count used when none is configured.
const DefaultBins = 256

// ChannelNames labels the histogram channels in order.
var ChannelNames = [3]string{"R", "G", "B"}

// Histogram holds per-channel bin counts. Values below 0 land in the first
// bin, values above 1 in the last.
type Histogram struct {
	Mode     Mode
	Exposure float32
	Version  uint64
	Counts   [3][]int
	Pixels   int
}

// Bins returns the number of bins per channel.
func (h *Histogram) Bins() int { return len(h.Counts[0]) }

// MaxCount returns the largest bin count across all channels.
func (h *Histogram) MaxCount() int {
	m := 0
	for _, ch := range h.Counts {
		for _, n := range ch {
			m = max(m, n)
		}
	}
	return m
}

// Normalized returns channel ch scaled so the fullest bin of any channel is 1.
func (h *Histogram) Normalized(ch int) []float64 {
	out := make([]float64, h.Bins())
	for i, n := range h.Counts[ch] {
		out[i] = float64(n)
	}
	if m := h.MaxCount(); m > 0 {
		floats.Scale(1/float64(m), out)
	}
	return out
}

// ComputeHistogram scans every pixel of img.
func ComputeHistogram(img *hdrimage.Image, mode Mode, exposure float32, bins int) *Histogram {
	if bins <= 0 {
		bins = DefaultBins
	}
	h := &Histogram{Mode: mode, Exposure: exposure}
	for i := range h.Counts {
		h.Counts[i] = make([]int, bins)
	}
	if img.IsNull() {
		return h
	}

	gain := hdrimage.Gain(exposure)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.Pixel(x, y).Scale(gain)
			for i := 0; i < 3; i++ {
				v := c.Channel(i)
				if mode == DisplayEncoded {
					v = hdrimage.SRGBEncode(v)
				}
				h.Counts[i][binOf(v, bins)]++
			}
		}
	}
	h.Pixels = img.Width * img.Height
	return h
}

// binOf maps v to one of bins bins. The clamp happens in float so huge and
// infinite values land in the last bin; NaN lands in the first.
func binOf(v float32, bins int) int {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return bins - 1
	}
	return min(int(v*float32(bins)), bins-1)
}

// Summary holds per-channel statistics of the raw linear values.
type Summary struct {
	Mean   [3]float64
	StdDev [3]float64
	Min    [3]float64
	Max    [3]float64
	Pixels int
}

// Summarize computes a Summary. An empty image yields the zero Summary.
func Summarize(img *hdrimage.Image) Summary {
	var s Summary
	if img.IsNull() {
		return s
	}
	n := img.Width * img.Height
	values := make([]float64, n)
	for ch := 0; ch < 3; ch++ {
		for i := 0; i < n; i++ {
			values[i] = float64(img.Pix[i*4+ch])
		}
		s.Mean[ch], s.StdDev[ch] = stat.MeanStdDev(values, nil)
		s.Min[ch] = floats.Min(values)
		s.Max[ch] = floats.Max(values)
	}
	s.Pixels = n
	return s
}
