// Package service implements the file level operations shared by the CLI and
// the GUI: opening and saving documents, exports, directory listing and the
// persisted view session.
package service

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"github.com/disintegration/imaging"

	"hdrview/internal/config"
	"hdrview/internal/document"
	"hdrview/internal/hdrimage"
	"hdrview/internal/scan"
	"hdrview/internal/session"
	"hdrview/internal/viewer"
)

// SessionStore abstracts the session DB for easier testing and decoupling.
type SessionStore interface {
	SaveViewState(imagePath string, vs session.ViewState) error
	ViewState(imagePath string) (session.ViewState, error)
	DeleteViewState(imagePath string) error
	Paths() ([]string, error)
	TouchRecent(imagePath string, t time.Time) error
	RecentFiles(limit int) ([]session.RecentFile, error)
	Clean(exists func(path string) bool) (int, error)
	Close() error
}

// FileScanner abstracts file scanning.
type FileScanner interface {
	Run(dir string, logger scan.LoggerFunc) <-chan scan.FileItem
}

// Service is the main entry point for business logic.
type Service struct {
	Store    SessionStore // may be nil; session features are then skipped
	FileScan FileScanner
	Images   *ImageService
	Logger   func(string)
	Settings config.Settings
	Now      func() time.Time
}

// NewService constructs a new Service with default settings.
func NewService(store SessionStore, fileScan FileScanner, logger func(string)) *Service {
	return &Service{
		Store:    store,
		FileScan: fileScan,
		Images:   NewImageService(),
		Logger:   logger,
		Settings: config.Default(),
		Now:      time.Now,
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// OpenDocument loads path into a fresh document and records it in the recent
// files list.
func (s *Service) OpenDocument(path string) (*document.Document, error) {
	if path == "" {
		return nil, errors.New("image path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	img, format, err := hdrimage.Load(abs)
	if err != nil {
		return nil, err
	}
	doc := document.New(abs, format, img, s.Settings.DocumentOptions())
	s.logf("Opened %s (%dx%d %s)", filepath.Base(abs), img.Width, img.Height, format)

	if s.Store != nil {
		if err := s.Store.TouchRecent(abs, s.Now()); err != nil {
			s.logf("Error recording %s as recent: %v", abs, err)
		}
	}
	return doc, nil
}

// IsRadiancePath reports whether path names a file SaveDocument can write.
func IsRadiancePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hdr", ".pic":
		return true
	}
	return false
}

// SaveDocument writes doc in Radiance format to path, or to its own filename
// when path is empty, and marks the current state as saved.
func (s *Service) SaveDocument(doc *document.Document, path string) error {
	if doc == nil {
		return errors.New("no document to save")
	}
	if path == "" {
		path = doc.Filename()
	}
	if path == "" {
		return errors.New("document has no filename")
	}
	if !IsRadiancePath(path) {
		return fmt.Errorf("cannot save %s: only .hdr and .pic keep the full range, use export for LDR formats", filepath.Base(path))
	}
	if err := hdrimage.Save(path, doc.Image()); err != nil {
		return err
	}
	doc.SetFilename(path)
	doc.MarkSaved()
	s.logf("Saved %s", filepath.Base(path))
	return nil
}

// ExportLDR tone maps doc with p and writes it to path. The output format
// follows the extension (png, jpg, gif, tif, bmp). A non-empty crop limits
// the export to that region of the image.
func (s *Service) ExportLDR(doc *document.Document, path string, p hdrimage.DisplayParams, crop image.Rectangle) error {
	if doc == nil || doc.Image().IsNull() {
		return errors.New("nothing to export")
	}
	var out image.Image = hdrimage.ToneMap(doc.Image(), p)
	if !crop.Empty() {
		r := crop.Intersect(out.Bounds())
		if r.Empty() {
			return fmt.Errorf("crop rectangle %v lies outside the image", crop)
		}
		out = imaging.Crop(out, r)
	}
	if err := imaging.Save(out, path); err != nil {
		return fmt.Errorf("failed to export %s: %w", filepath.Base(path), err)
	}
	s.logf("Exported %s", filepath.Base(path))
	return nil
}

// ListImages returns every supported image below dir.
func (s *Service) ListImages(dir string) (scan.FileItems, error) {
	if dir == "" {
		return nil, errors.New("directory required")
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	var items scan.FileItems
	for item := range s.FileScan.Run(dir, scan.LoggerFunc(s.Logger)) {
		items = append(items, item)
	}
	return items, nil
}

// RememberView stores the controller's view of its current document.
func (s *Service) RememberView(c *viewer.Controller) error {
	doc := c.Current()
	if s.Store == nil || doc == nil || doc.Filename() == "" {
		return nil
	}
	if err := s.Store.SaveViewState(doc.Filename(), CaptureView(c)); err != nil {
		return fmt.Errorf("failed to save view of %s: %w", doc.Name(), err)
	}
	return nil
}

// RecallView restores the stored view of the controller's current document.
// It returns false when nothing was stored.
func (s *Service) RecallView(c *viewer.Controller) (bool, error) {
	doc := c.Current()
	if s.Store == nil || doc == nil || doc.Filename() == "" {
		return false, nil
	}
	vs, err := s.Store.ViewState(doc.Filename())
	if errors.Is(err, session.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	RestoreView(c, vs)
	return true, nil
}

// RecentFiles returns the most recently opened paths, newest first.
func (s *Service) RecentFiles(limit int) ([]session.RecentFile, error) {
	if s.Store == nil {
		return nil, nil
	}
	return s.Store.RecentFiles(limit)
}

// CleanSessions removes session data of files that no longer exist.
func (s *Service) CleanSessions() (int, error) {
	if s.Store == nil {
		return 0, nil
	}
	n, err := s.Store.Clean(fileExists)
	if err != nil {
		return 0, fmt.Errorf("failed to clean session database: %w", err)
	}
	s.logf("Removed session data for %d missing files", n)
	return n, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// CaptureView snapshots the display settings and viewport of c.
func CaptureView(c *viewer.Controller) session.ViewState {
	v := c.Viewport()
	return session.ViewState{
		Exposure:  c.Exposure(),
		Gamma:     c.Gamma(),
		SRGB:      c.SRGB(),
		ZoomLevel: v.ZoomLevel(),
		OffsetX:   v.Offset().X,
		OffsetY:   v.Offset().Y,
		Channel:   c.Channel().String(),
	}
}

// RestoreView applies vs to c. Unknown channel names leave the channel as is.
func RestoreView(c *viewer.Controller, vs session.ViewState) {
	c.SetExposure(vs.Exposure)
	c.SetGamma(vs.Gamma)
	c.SetSRGB(vs.SRGB)
	if ch, ok := viewer.ParseChannel(vs.Channel); ok {
		c.SetChannel(ch)
	}
	c.SetZoomLevel(vs.ZoomLevel)
	c.Viewport().SetOffset(fyne.NewPos(vs.OffsetX, vs.OffsetY))
}
