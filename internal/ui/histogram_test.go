package ui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdrview/internal/stats"
)

func TestRenderHistogram(t *testing.T) {
	t.Run("nil histogram is background", func(t *testing.T) {
		img := renderHistogram(nil, 8, 4)
		assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
		assert.Equal(t, histogramBackground, img.(*image.NRGBA).NRGBAAt(3, 3))
	})

	t.Run("bars", func(t *testing.T) {
		h := &stats.Histogram{}
		h.Counts[0] = []int{4, 0}
		h.Counts[1] = []int{2, 0}
		h.Counts[2] = []int{0, 4}

		img := renderHistogram(h, 2, 4).(*image.NRGBA)

		// Full red bar with half-height green in column 0.
		assert.Equal(t, histogramChannels[0], img.NRGBAAt(0, 0))
		bottom := img.NRGBAAt(0, 3)
		assert.Equal(t, histogramChannels[0].R, bottom.R)
		assert.Equal(t, histogramChannels[1].G, bottom.G)
		assert.Zero(t, bottom.B)

		// Only blue in column 1.
		assert.Equal(t, histogramChannels[2], img.NRGBAAt(1, 0))
	})

	t.Run("more columns than bins", func(t *testing.T) {
		h := &stats.Histogram{}
		for i := range h.Counts {
			h.Counts[i] = []int{0, 1}
		}
		img := renderHistogram(h, 4, 2).(*image.NRGBA)
		require.Equal(t, 4, img.Bounds().Dx())
		assert.Equal(t, histogramBackground, img.NRGBAAt(1, 0))
		assert.NotEqual(t, histogramBackground, img.NRGBAAt(2, 0))
	})
}
