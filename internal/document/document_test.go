package document

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdrview/internal/edit"
	"hdrview/internal/hdrimage"
	"hdrview/internal/stats"
)

func newDoc() *Document {
	img := hdrimage.New(4, 2)
	img.Fill(hdrimage.Color{R: 0.25, G: 0.5, B: 1, A: 1})
	img.SetPixel(0, 0, hdrimage.Color{R: 2, G: 0, B: 0, A: 1})
	return New("/tmp/scene.hdr", hdrimage.FormatRadiance, img, Options{HistogramBins: 16})
}

func TestDocumentBasics(t *testing.T) {
	d := newDoc()
	assert.Equal(t, "scene.hdr", d.Name())
	assert.Equal(t, image.Pt(4, 2), d.Size())
	assert.False(t, d.IsModified())
	assert.False(t, d.HasUndo())

	c, ok := d.PixelAt(0, 0)
	assert.True(t, ok)
	assert.Equal(t, float32(2), c.R)

	_, ok = d.PixelAt(-1, 0)
	assert.False(t, ok)
	_, ok = d.PixelAt(4, 0)
	assert.False(t, ok)

	assert.Equal(t, "untitled", New("", "", nil, Options{}).Name())
}

func TestUndoOnFreshDocument(t *testing.T) {
	d := newDoc()
	assert.False(t, d.Undo())
	assert.False(t, d.Redo())
	assert.False(t, d.IsModified())
}

func TestModifyUndoRestores(t *testing.T) {
	d := newDoc()
	before := d.Image().Clone()

	require.NoError(t, d.Modify(edit.FlipHorizontal{}))
	assert.True(t, d.IsModified())
	c, _ := d.PixelAt(3, 0)
	assert.Equal(t, float32(2), c.R)

	require.True(t, d.Undo())
	assert.True(t, before.Equal(d.Image()))
	assert.False(t, d.IsModified())

	t.Run("new edit discards redo", func(t *testing.T) {
		require.NoError(t, d.Modify(edit.FlipVertical{}))
		assert.False(t, d.Redo())
	})

	t.Run("saving resets the modified flag", func(t *testing.T) {
		d.MarkSaved()
		assert.False(t, d.IsModified())
		require.True(t, d.Undo())
		assert.True(t, d.IsModified())
	})
}

func TestHistogramCaching(t *testing.T) {
	d := newDoc()

	h := d.Histogram(stats.Linear, 0)
	assert.Same(t, h, d.Histogram(stats.Linear, 0))
	assert.Equal(t, 1, d.Recomputes())

	d.Histogram(stats.Linear, 0.5)
	assert.Equal(t, 2, d.Recomputes())

	t.Run("edit invalidates at the same exposure", func(t *testing.T) {
		require.NoError(t, d.Modify(edit.GainStops(1)))
		d.Histogram(stats.Linear, 0.5)
		assert.Equal(t, 3, d.Recomputes())
	})

	t.Run("undo invalidates too", func(t *testing.T) {
		require.True(t, d.Undo())
		d.Histogram(stats.Linear, 0.5)
		assert.Equal(t, 4, d.Recomputes())
	})

	t.Run("rejected edit keeps the cache", func(t *testing.T) {
		require.Error(t, d.Modify(edit.Gain{Factor: 0}))
		d.Histogram(stats.Linear, 0.5)
		assert.Equal(t, 4, d.Recomputes())
	})
}

func TestStatistics(t *testing.T) {
	d := newDoc()
	s := d.Statistics()
	assert.Equal(t, 8, s.Pixels)
	assert.Equal(t, 2.0, s.Max[0])
	assert.Equal(t, 0.0, s.Min[1])

	require.NoError(t, d.Modify(edit.GainStops(1)))
	assert.Equal(t, 4.0, d.Statistics().Max[0])
}
