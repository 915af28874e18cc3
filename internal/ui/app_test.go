package ui

import (
	"image"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdrview/internal/config"
	"hdrview/internal/document"
	"hdrview/internal/edit"
	"hdrview/internal/hdrimage"
	"hdrview/internal/scan"
	"hdrview/internal/service"
	"hdrview/internal/viewer"
	"hdrview/internal/workspace"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	fa := test.NewTempApp(t)
	a := newApp(fa, service.NewService(nil, scan.FileScannerImpl{}, nil), config.Default())
	a.thumbnails.spawn = func(func()) {}
	a.UI.MainWin = fa.NewWindow("test")
	a.UI.MainWin.SetContent(a.buildMainUI())
	a.UI.MainWin.Resize(fyne.NewSize(800, 600))
	return a
}

func testDoc(name string, w, h int) *document.Document {
	img := hdrimage.New(w, h)
	img.Fill(hdrimage.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})
	return document.New("/images/"+name, "hdr", img, document.Options{HistoryCapacity: 8})
}

func TestAppDocuments(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, "hdrview", a.UI.MainWin.Title())

	a.addDocument(testDoc("a.hdr", 100, 50))
	a.addDocument(testDoc("b.hdr", 20, 20))
	require.Equal(t, 2, a.ws.Len())
	assert.Equal(t, 1, a.ws.CurrentIndex())
	assert.Equal(t, "b.hdr - hdrview", a.UI.MainWin.Title())

	assert.True(t, a.handleKey(fyne.KeyRight))
	assert.Equal(t, 0, a.ws.CurrentIndex(), "wraps around")
	assert.True(t, a.handleKey(fyne.KeyLeft))
	assert.Equal(t, 1, a.ws.CurrentIndex())

	t.Run("reopening selects", func(t *testing.T) {
		a.addDocument(testDoc("a.hdr", 100, 50))
		assert.Equal(t, 2, a.ws.Len())
		assert.Equal(t, 0, a.ws.CurrentIndex())
	})

	t.Run("reference", func(t *testing.T) {
		a.toggleReference()
		assert.Equal(t, 0, a.ws.ReferenceIndex())
		assert.Equal(t, "a.hdr [ref]", a.documentLabel(0))
		assert.Contains(t, a.UI.statusPathLabel.Text, "Reference: a.hdr")
		a.toggleReference()
		assert.Equal(t, workspace.None, a.ws.ReferenceIndex())
	})

	t.Run("close", func(t *testing.T) {
		a.closeCurrent()
		assert.Equal(t, 1, a.ws.Len())
		assert.Equal(t, "b.hdr", a.ws.Current().Name())
	})
}

func TestAppEdits(t *testing.T) {
	a := newTestApp(t)
	a.addDocument(testDoc("a.hdr", 4, 4))

	a.applyEdit(edit.GainStops(1))
	doc := a.ws.Current()
	assert.True(t, doc.IsModified())
	assert.Equal(t, "* a.hdr", a.documentLabel(0))
	assert.True(t, strings.HasPrefix(a.UI.MainWin.Title(), "*"))
	px, _ := doc.PixelAt(0, 0)
	assert.InDelta(t, 1, px.R, 1e-6)

	a.undo()
	assert.False(t, doc.IsModified())
	assert.Equal(t, "a.hdr", a.documentLabel(0))

	a.redo()
	assert.True(t, doc.IsModified())
	assert.Contains(t, documentMarkdown(doc), "**Undo:** Gain x2 (1)")
}

func TestAppKeys(t *testing.T) {
	a := newTestApp(t)
	a.addDocument(testDoc("a.hdr", 4, 4))

	assert.True(t, a.handleKey(fyne.KeyUp))
	assert.Equal(t, float32(exposureStep), a.ctrl.Exposure())
	assert.InDelta(t, exposureStep, a.UI.exposureSlider.Value, 1e-6)
	assert.Equal(t, "Exposure: +0.25 EV", a.UI.exposureLabel.Text)

	assert.True(t, a.handleKey(fyne.KeyDown))
	assert.Equal(t, float32(0), a.ctrl.Exposure())

	grid := a.ctrl.DrawGrid()
	assert.True(t, a.handleKey(fyne.KeyG))
	assert.Equal(t, !grid, a.ctrl.DrawGrid())
	assert.Equal(t, !grid, a.UI.gridCheck.Checked)

	srgb := a.ctrl.SRGB()
	assert.True(t, a.handleKey(fyne.KeyS))
	assert.Equal(t, !srgb, a.UI.srgbCheck.Checked)

	zoom := a.ctrl.Viewport().Zoom()
	assert.True(t, a.handleKey(fyne.KeyPlus))
	assert.Greater(t, a.ctrl.Viewport().Zoom(), zoom)

	assert.False(t, a.handleKey(fyne.KeyF12))
}

func TestFormatHover(t *testing.T) {
	assert.Equal(t, "(3, -1)", formatHover(viewer.Hover{Pixel: image.Pt(3, -1)}))
	assert.Equal(t, "(1, 2)  raw 0.500 1.000 2.000  display 128 255 255", formatHover(viewer.Hover{
		Pixel:   image.Pt(1, 2),
		Inside:  true,
		Raw:     hdrimage.Color{R: 0.5, G: 1, B: 2},
		Display: hdrimage.Color{R: 127.5, G: 255, B: 255},
	}))
	assert.Equal(t, "Zoom: 250.0%", formatZoom(2.5))
}

func TestDocumentMarkdown(t *testing.T) {
	md := documentMarkdown(testDoc("a.hdr", 3, 2))
	assert.Contains(t, md, "## a.hdr")
	assert.Contains(t, md, "**Size:** 3 x 2 px")
	assert.Contains(t, md, "**R:** mean 0.5000")
	assert.Contains(t, md, "(no edits)")
	assert.NotContains(t, md, "Unsaved")
}
