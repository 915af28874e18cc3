package viewer

import (
	"image"
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdrview/internal/document"
	"hdrview/internal/hdrimage"
	"hdrview/internal/workspace"
)

var marked = hdrimage.Color{R: 0.5, G: 2, B: -1, A: 1}

func newDoc(name string, w, h int, fill hdrimage.Color) *document.Document {
	img := hdrimage.New(w, h)
	img.Fill(fill)
	return document.New(name, hdrimage.FormatRadiance, img, document.Options{})
}

// setup opens a 4x2 image in a 200x200 viewer at 100% zoom. The image's top
// left corner is at (98, 99).
func setup(t *testing.T) (*Controller, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New()
	doc := newDoc("current.hdr", 4, 2, hdrimage.Color{R: 0.1, G: 0.1, B: 0.1, A: 1})
	doc.Image().SetPixel(0, 0, marked)
	ws.Add(doc)

	c := New(ws)
	c.Resize(fyne.NewSize(200, 200), fyne.Position{})
	return c, ws
}

func TestPixelUnderCursor(t *testing.T) {
	c, _ := setup(t)
	c.SetExposure(1)

	h := c.PixelUnderCursor(fyne.NewPos(98.5, 99.5))
	assert.True(t, h.Inside)
	assert.Equal(t, image.Pt(0, 0), h.Pixel)
	assert.Equal(t, marked, h.Raw)
	assert.Equal(t, hdrimage.Color{R: 255, G: 255, B: 0, A: 255}, h.Display)

	t.Run("negative coordinate is outside", func(t *testing.T) {
		h := c.PixelUnderCursor(fyne.NewPos(0, 0))
		assert.False(t, h.Inside)
		assert.Equal(t, hdrimage.Color{}, h.Raw)
		assert.Equal(t, hdrimage.Color{}, h.Display)
		assert.Equal(t, image.Pt(-98, -99), h.Pixel)
	})

	t.Run("just left of the image rounds down", func(t *testing.T) {
		h := c.PixelUnderCursor(fyne.NewPos(97.5, 99.5))
		assert.False(t, h.Inside)
		assert.Equal(t, -1, h.Pixel.X)
	})

	t.Run("nan sample displays as zero", func(t *testing.T) {
		nan := float32(math.NaN())
		c.Current().Image().SetPixel(1, 0, hdrimage.Color{R: nan, G: 0.25, B: nan, A: 1})
		h := c.PixelUnderCursor(fyne.NewPos(99.5, 99.5))
		require.True(t, h.Inside)
		assert.Equal(t, hdrimage.Color{R: 0, G: 127.5, B: 0, A: 255}, h.Display)
	})

	t.Run("no document", func(t *testing.T) {
		empty := New(workspace.New())
		empty.Resize(fyne.NewSize(100, 100), fyne.Position{})
		assert.False(t, empty.PixelUnderCursor(fyne.NewPos(50, 50)).Inside)
		assert.False(t, empty.MouseMotion(fyne.NewPos(50, 50)))
	})
}

func TestMouseMotionFiresHover(t *testing.T) {
	c, _ := setup(t)
	var got []Hover
	c.SetHoverCallback(func(h Hover) { got = append(got, h) })

	assert.True(t, c.MouseMotion(fyne.NewPos(99.5, 100.5)))
	assert.True(t, c.MouseMotion(fyne.NewPos(-5, -5)))
	require.Len(t, got, 2)
	assert.Equal(t, image.Pt(1, 1), got[0].Pixel)
	assert.True(t, got[0].Inside)
	assert.False(t, got[1].Inside)
}

func TestDisplayCallbacks(t *testing.T) {
	c, _ := setup(t)
	var exposures, gammas []float32
	var srgbs []bool
	c.SetExposureCallback(func(v float32) { exposures = append(exposures, v) })
	c.SetGammaCallback(func(v float32) { gammas = append(gammas, v) })
	c.SetSRGBCallback(func(v bool) { srgbs = append(srgbs, v) })

	c.SetExposure(1.5)
	c.SetExposure(1.5)
	c.SetGamma(1.8)
	c.SetGamma(0)
	c.SetGamma(-2)
	c.SetSRGB(false)
	c.SetSRGB(false)
	c.SetSRGB(true)

	assert.Equal(t, []float32{1.5}, exposures)
	assert.Equal(t, []float32{1.8}, gammas)
	assert.Equal(t, []bool{false, true}, srgbs)

	p := c.DisplayParams()
	assert.Equal(t, float32(1.5), p.Exposure)
	assert.Equal(t, float32(1.8), p.Gamma)
	assert.True(t, p.SRGB)
}

func TestZoomCallbackThroughController(t *testing.T) {
	c, _ := setup(t)
	var zooms []float32
	c.SetZoomCallback(func(z float32) { zooms = append(zooms, z) })
	c.Fit()
	assert.Equal(t, []float32{50}, zooms)
	assert.Equal(t, float32(50), c.Viewport().Zoom())
}

func TestDrag(t *testing.T) {
	c, _ := setup(t)
	pos := fyne.NewPos(100, 100)
	before := c.Viewport().ImageCoordinateAt(pos)

	c.Drag(pos, fyne.NewPos(10, 5))
	after := c.Viewport().ImageCoordinateAt(fyne.NewPos(110, 105))
	assert.InDelta(t, before.X, after.X, 1e-4)
	assert.InDelta(t, before.Y, after.Y, 1e-4)
}

func TestScroll(t *testing.T) {
	t.Run("shift pans", func(t *testing.T) {
		c, _ := setup(t)
		pos := fyne.NewPos(100, 100)
		before := c.Viewport().ImageCoordinateAt(pos)

		assert.True(t, c.Scroll(pos, fyne.NewPos(1, 2), fyne.KeyModifierShift))
		after := c.Viewport().ImageCoordinateAt(fyne.NewPos(104, 108))
		assert.InDelta(t, before.X, after.X, 1e-4)
		assert.InDelta(t, before.Y, after.Y, 1e-4)
		assert.Equal(t, float32(1), c.Viewport().Zoom())
	})

	t.Run("small deltas zoom one unit", func(t *testing.T) {
		c, _ := setup(t)
		pos := fyne.NewPos(99, 100)
		before := c.Viewport().ImageCoordinateAt(pos)

		assert.True(t, c.Scroll(pos, fyne.NewPos(0, 0.2), 0))
		assert.InDelta(t, math.Pow(2, 0.025), c.Viewport().Zoom(), 1e-5)

		after := c.Viewport().ImageCoordinateAt(pos)
		assert.InDelta(t, before.X, after.X, 1e-4)
		assert.InDelta(t, before.Y, after.Y, 1e-4)

		assert.True(t, c.Scroll(pos, fyne.NewPos(0, -0.01), 0))
		assert.InDelta(t, 1, c.Viewport().Zoom(), 1e-5)
	})

	t.Run("large deltas", func(t *testing.T) {
		c, _ := setup(t)
		assert.True(t, c.Scroll(fyne.NewPos(100, 100), fyne.NewPos(0, -8), 0))
		assert.InDelta(t, math.Pow(2, -0.2), c.Viewport().Zoom(), 1e-5)
	})

	t.Run("unhandled", func(t *testing.T) {
		c, _ := setup(t)
		assert.False(t, c.Scroll(fyne.NewPos(100, 100), fyne.NewPos(0, 3), fyne.KeyModifierControl))
		assert.False(t, c.Scroll(fyne.NewPos(100, 100), fyne.NewPos(3, 0), 0), "horizontal wheel does not zoom")
		assert.Equal(t, float32(1), c.Viewport().Zoom())
		assert.Equal(t, fyne.Position{}, c.Viewport().Offset())
	})
}

func TestRects(t *testing.T) {
	c, ws := setup(t)

	pos, size, ok := c.ImageRect()
	require.True(t, ok)
	assert.Equal(t, fyne.NewPos(98, 99), pos)
	assert.Equal(t, fyne.NewSize(4, 2), size)

	_, _, ok = c.ReferenceRect()
	assert.False(t, ok)

	pos, size, ok = c.BorderRect()
	require.True(t, ok)
	assert.Equal(t, fyne.NewPos(98, 99), pos)
	assert.Equal(t, fyne.NewSize(4, 2), size)

	t.Run("border spans the reference", func(t *testing.T) {
		ref := ws.Add(newDoc("ref.hdr", 2, 6, hdrimage.Color{A: 1}))
		require.True(t, ws.Select(0))
		require.True(t, ws.SetReference(ref))

		rpos, rsize, ok := c.ReferenceRect()
		require.True(t, ok)
		assert.Equal(t, fyne.NewPos(99, 97), rpos)
		assert.Equal(t, fyne.NewSize(2, 6), rsize)

		pos, size, ok := c.BorderRect()
		require.True(t, ok)
		assert.Equal(t, fyne.NewPos(98, 97), pos)
		assert.Equal(t, fyne.NewSize(4, 6), size)
	})

	t.Run("no current image", func(t *testing.T) {
		empty := New(workspace.New())
		_, _, ok := empty.BorderRect()
		assert.False(t, ok)
	})
}

func TestPositionAndScale(t *testing.T) {
	c, ws := setup(t)
	c.Resize(fyne.NewSize(200, 200), fyne.NewPos(10, 20))

	pos, scale, ok := c.PositionAndScale(ws.Current(), fyne.NewSize(400, 400))
	require.True(t, ok)
	assert.InDelta(t, 108.0/400, pos.X, 1e-6)
	assert.InDelta(t, 119.0/400, pos.Y, 1e-6)
	assert.InDelta(t, 4.0/400, scale.X, 1e-6)
	assert.InDelta(t, 2.0/400, scale.Y, 1e-6)

	_, _, ok = c.PositionAndScale(ws.Current(), fyne.Size{})
	assert.False(t, ok)
	_, _, ok = c.PositionAndScale(nil, fyne.NewSize(400, 400))
	assert.False(t, ok)
}

func TestSampleAndShade(t *testing.T) {
	c, ws := setup(t)
	inside := fyne.NewPos(98.5, 99.5)

	col, ok := c.Sample(inside)
	require.True(t, ok)
	assert.Equal(t, marked, col)

	_, ok = c.Sample(fyne.NewPos(5, 5))
	assert.False(t, ok)
	assert.Equal(t, Background, c.Shade(fyne.NewPos(5, 5), 5, 5))

	c.SetDither(false)
	shaded := c.Shade(inside, 0, 0)
	assert.Equal(t, uint8(255), shaded.G)
	assert.Equal(t, uint8(0), shaded.B)

	t.Run("channel isolation", func(t *testing.T) {
		c.SetChannel(ChannelGreen)
		col, _ := c.Sample(inside)
		assert.Equal(t, hdrimage.Color{R: 2, G: 2, B: 2, A: 1}, col)
		c.SetChannel(ChannelRGB)
	})

	t.Run("blended with reference", func(t *testing.T) {
		ref := ws.Add(newDoc("ref.hdr", 4, 2, hdrimage.Color{R: 0.25, G: 0.25, B: 0.25, A: 1}))
		require.True(t, ws.Select(0))
		require.True(t, ws.SetReference(ref))
		c.SetBlendMode(BlendSubtract)

		col, ok := c.Sample(inside)
		require.True(t, ok)
		assert.Equal(t, hdrimage.Color{R: 0.25, G: 1.75, B: -1.25, A: 1}, col)
	})
}

func TestPixelInfo(t *testing.T) {
	c, _ := setup(t)

	label, ok := c.PixelInfoText(0, 0)
	require.True(t, ok)
	assert.Equal(t, "0.500\n2.000\n-1.000", label.Text)
	assert.True(t, label.Dark)

	label, ok = c.PixelInfoText(1, 0)
	require.True(t, ok)
	assert.False(t, label.Dark)

	_, ok = c.PixelInfoText(4, 0)
	assert.False(t, ok)

	t.Run("labels only when visible", func(t *testing.T) {
		assert.Nil(t, c.VisibleLabels())
		c.SetPixelInfoThreshold(20)
		c.Fit() // zoom 50
		assert.Len(t, c.VisibleLabels(), 8)
		assert.InDelta(t, 50.0/31*10, c.PixelInfoFontSize(), 1e-4)

		c.SetDrawValues(false)
		assert.Nil(t, c.VisibleLabels())
	})
}
