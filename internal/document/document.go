// Package document ties one open image to its edit history and derived
// statistics.
package document

import (
	"image"
	"path/filepath"

	"hdrview/internal/hdrimage"
	"hdrview/internal/history"
	"hdrview/internal/stats"
)

// Options configures a new Document. Zero values select defaults.
type Options struct {
	HistoryCapacity int
	HistogramBins   int
}

// Document is one open image. All mutations go through its history, which
// bumps the content version that keys the statistics cache.
type Document struct {
	filename string
	format   string
	history  *history.EditHistory
	cache    *stats.Cache
}

// New wraps img. The history starts empty with the checkpoint at the loaded state.
func New(filename, format string, img *hdrimage.Image, opts Options) *Document {
	return &Document{
		filename: filename,
		format:   format,
		history:  history.New(img, opts.HistoryCapacity),
		cache:    stats.NewCache(opts.HistogramBins),
	}
}

func (d *Document) Filename() string              { return d.filename }
func (d *Document) Format() string                { return d.format }
func (d *Document) Image() *hdrimage.Image        { return d.history.Image() }
func (d *Document) Version() uint64               { return d.history.Version() }
func (d *Document) History() *history.EditHistory { return d.history }

// Name is the base name of the file, used for titles and lists.
func (d *Document) Name() string {
	if d.filename == "" {
		return "untitled"
	}
	return filepath.Base(d.filename)
}

// SetFilename records a new location, e.g. after "save as".
func (d *Document) SetFilename(filename string) { d.filename = filename }

// Size returns the image dimensions.
func (d *Document) Size() image.Point {
	img := d.Image()
	return image.Pt(img.Width, img.Height)
}

// PixelAt returns the raw pixel at (x, y) and whether it lies in the image.
func (d *Document) PixelAt(x, y int) (hdrimage.Color, bool) {
	img := d.Image()
	if !img.Contains(x, y) {
		return hdrimage.Color{}, false
	}
	return img.Pixel(x, y), true
}

// Modify applies cmd through the history.
func (d *Document) Modify(cmd history.Command) error {
	return d.history.Apply(cmd)
}

func (d *Document) Undo() bool       { return d.history.Undo() }
func (d *Document) Redo() bool       { return d.history.Redo() }
func (d *Document) HasUndo() bool    { return d.history.HasUndo() }
func (d *Document) HasRedo() bool    { return d.history.HasRedo() }
func (d *Document) IsModified() bool { return d.history.IsModified() }

// MarkSaved resets the history checkpoint after a successful save.
func (d *Document) MarkSaved() { d.history.ResetCheckpoint() }

// Histogram returns the cached histogram for the current content.
func (d *Document) Histogram(mode stats.Mode, exposure float32) *stats.Histogram {
	return d.cache.Histogram(d.Image(), d.Version(), mode, exposure)
}

// Statistics returns cached per-channel summary statistics.
func (d *Document) Statistics() stats.Summary {
	return d.cache.Summary(d.Image(), d.Version())
}

// Recomputes reports how many full scans the statistics cache has made.
func (d *Document) Recomputes() int { return d.cache.Recomputes() }
