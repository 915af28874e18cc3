package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdrview/internal/viewer"
	"hdrview/internal/workspace"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.InDelta(t, 1.0717734625, s.Sensitivity, 1e-7)
	assert.Equal(t, float32(2.2), s.Gamma)
	assert.True(t, s.SRGB)
	assert.Equal(t, 100, s.DocumentOptions().HistoryCapacity)
	assert.Equal(t, 256, s.DocumentOptions().HistogramBins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero sensitivity", func(s *Settings) { s.Sensitivity = 0 }},
		{"unit sensitivity", func(s *Settings) { s.Sensitivity = 1 }},
		{"negative gamma", func(s *Settings) { s.Gamma = -1 }},
		{"nan exposure", func(s *Settings) { s.Exposure = float32(math.NaN()) }},
		{"negative capacity", func(s *Settings) { s.HistoryCapacity = -3 }},
		{"negative bins", func(s *Settings) { s.HistogramBins = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestApply(t *testing.T) {
	s := Default()
	s.Exposure = 1.5
	s.Gamma = 1.8
	s.SRGB = false
	s.Dither = false
	s.Sensitivity = 2

	c := viewer.New(workspace.New())
	s.Apply(c)

	assert.Equal(t, float32(1.5), c.Exposure())
	assert.Equal(t, float32(1.8), c.Gamma())
	assert.False(t, c.SRGB())
	assert.False(t, c.Dither())
	assert.Equal(t, float32(2), c.Viewport().Sensitivity())
	assert.Equal(t, float32(DefaultGridThreshold), c.Viewport().GridThreshold())
	assert.Equal(t, float32(DefaultPixelInfoThreshold), c.Viewport().PixelInfoThreshold())

	p := s.DisplayParams()
	assert.Equal(t, float32(1.5), p.Exposure)
	assert.False(t, p.Dither)
}
