package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hdrview/internal/hdrimage"
)

func TestBlend(t *testing.T) {
	top := hdrimage.Color{R: 2, G: 1, B: 0.5, A: 1}
	bottom := hdrimage.Color{R: 1, G: 4, B: 0, A: 1}

	tests := []struct {
		mode BlendMode
		want hdrimage.Color
	}{
		{BlendNormal, top},
		{BlendMultiply, hdrimage.Color{R: 2, G: 4, B: 0, A: 1}},
		{BlendDivide, hdrimage.Color{R: 2, G: 0.25, B: 0, A: 1}},
		{BlendAdd, hdrimage.Color{R: 3, G: 5, B: 0.5, A: 1}},
		{BlendAverage, hdrimage.Color{R: 1.5, G: 2.5, B: 0.25, A: 1}},
		{BlendSubtract, hdrimage.Color{R: 1, G: -3, B: 0.5, A: 1}},
		{BlendDifference, hdrimage.Color{R: 1, G: 3, B: 0.5, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Blend(top, bottom, tt.mode))
		})
	}

	t.Run("relative difference", func(t *testing.T) {
		got := Blend(top, bottom, BlendRelativeDifference)
		assert.InDelta(t, 1/1.01, got.R, 1e-6)
		assert.InDelta(t, 3/4.01, got.G, 1e-6)
		assert.InDelta(t, 0.5/0.01, got.B, 1e-3)
	})

	t.Run("normal shows the reference where the top is missing", func(t *testing.T) {
		assert.Equal(t, bottom, Blend(hdrimage.Color{}, bottom, BlendNormal))
	})
}

func TestIsolateChannel(t *testing.T) {
	c := hdrimage.Color{R: 1, G: 2, B: 3, A: 0.5}
	assert.Equal(t, c, IsolateChannel(c, ChannelRGB))
	assert.Equal(t, hdrimage.Color{R: 3, G: 3, B: 3, A: 0.5}, IsolateChannel(c, ChannelBlue))
	lum := IsolateChannel(c, ChannelLuminance)
	assert.InDelta(t, c.Luminance(), lum.G, 1e-6)
}

func TestModeNames(t *testing.T) {
	for _, ch := range Channels() {
		got, ok := ParseChannel(ch.String())
		assert.True(t, ok)
		assert.Equal(t, ch, got)
	}
	for _, b := range BlendModes() {
		got, ok := ParseBlendMode(b.String())
		assert.True(t, ok)
		assert.Equal(t, b, got)
	}
	assert.Equal(t, "Unknown", Channel(42).String())
	_, ok := ParseBlendMode("Screen")
	assert.False(t, ok)
}
