// Package config holds the viewer defaults shared by the CLI and the GUI.
package config

import (
	"errors"
	"fmt"
	"math"

	"hdrview/internal/document"
	"hdrview/internal/hdrimage"
	"hdrview/internal/history"
	"hdrview/internal/stats"
	"hdrview/internal/viewer"
	"hdrview/internal/viewport"
)

const (
	DefaultGridThreshold      = 10
	DefaultPixelInfoThreshold = 40
	DefaultRecentLimit        = 10
)

// Settings are the tunables of a viewing session.
type Settings struct {
	Sensitivity        float32
	GridThreshold      float32 // zoom at which the pixel grid starts to fade in, -1 disables
	PixelInfoThreshold float32 // same for the per-pixel value labels
	HistoryCapacity    int
	HistogramBins      int
	Exposure           float32
	Gamma              float32
	SRGB               bool
	Dither             bool
	RecentLimit        int
}

// Default returns the settings the GUI starts with.
func Default() Settings {
	p := hdrimage.DefaultDisplayParams()
	return Settings{
		Sensitivity:        viewport.DefaultSensitivity,
		GridThreshold:      DefaultGridThreshold,
		PixelInfoThreshold: DefaultPixelInfoThreshold,
		HistoryCapacity:    history.DefaultCapacity,
		HistogramBins:      stats.DefaultBins,
		Exposure:           p.Exposure,
		Gamma:              p.Gamma,
		SRGB:               p.SRGB,
		Dither:             p.Dither,
		RecentLimit:        DefaultRecentLimit,
	}
}

// Validate reports the first setting that the viewer would reject.
func (s Settings) Validate() error {
	switch {
	case s.Sensitivity <= 0 || s.Sensitivity == 1 || isBad(s.Sensitivity):
		return fmt.Errorf("invalid zoom sensitivity %g", s.Sensitivity)
	case s.Gamma <= 0 || isBad(s.Gamma):
		return fmt.Errorf("invalid gamma %g", s.Gamma)
	case isBad(s.Exposure):
		return errors.New("exposure must be finite")
	case s.HistoryCapacity < 0:
		return fmt.Errorf("invalid history capacity %d", s.HistoryCapacity)
	case s.HistogramBins < 0:
		return fmt.Errorf("invalid histogram bin count %d", s.HistogramBins)
	}
	return nil
}

// DocumentOptions returns the options new documents are created with.
func (s Settings) DocumentOptions() document.Options {
	return document.Options{HistoryCapacity: s.HistoryCapacity, HistogramBins: s.HistogramBins}
}

// DisplayParams returns the tone mapping parameters for LDR output.
func (s Settings) DisplayParams() hdrimage.DisplayParams {
	return hdrimage.DisplayParams{Exposure: s.Exposure, Gamma: s.Gamma, SRGB: s.SRGB, Dither: s.Dither}
}

// Apply pushes the settings into a controller.
func (s Settings) Apply(c *viewer.Controller) {
	c.Viewport().SetSensitivity(s.Sensitivity)
	c.SetGridThreshold(s.GridThreshold)
	c.SetPixelInfoThreshold(s.PixelInfoThreshold)
	c.SetExposure(s.Exposure)
	c.SetGamma(s.Gamma)
	c.SetSRGB(s.SRGB)
	c.SetDither(s.Dither)
}

func isBad(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0)
}
