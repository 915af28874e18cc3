package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"hdrview/internal/document"
	"hdrview/internal/hdrimage"
	"hdrview/internal/service"
)

// ThumbnailManager renders and caches document thumbnails. Entries are keyed
// by filename and content version, so an edit produces a fresh thumbnail.
type ThumbnailManager struct {
	cache      map[string]fyne.Resource
	cacheMutex sync.RWMutex
	images     *service.ImageService
	params     func() hdrimage.DisplayParams
	logger     func(string)
	spawn      func(func())
}

// NewThumbnailManager creates a manager that tone maps with the parameters
// returned by params at render time.
func NewThumbnailManager(images *service.ImageService, params func() hdrimage.DisplayParams, logger func(string)) *ThumbnailManager {
	return &ThumbnailManager{
		cache:  make(map[string]fyne.Resource),
		images: images,
		params: params,
		logger: logger,
		spawn:  func(f func()) { go f() },
	}
}

func thumbnailKey(doc *document.Document) string {
	return fmt.Sprintf("%s@%d", doc.Filename(), doc.Version())
}

// imageToBytes encodes img as PNG for a fyne resource.
func imageToBytes(img image.Image) []byte {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Cached returns the thumbnail for the document's current version if one has
// been rendered.
func (tm *ThumbnailManager) Cached(doc *document.Document) (fyne.Resource, bool) {
	tm.cacheMutex.RLock()
	defer tm.cacheMutex.RUnlock()
	res, ok := tm.cache[thumbnailKey(doc)]
	return res, ok
}

// thumbnailJob is everything a background render needs, copied from the
// document and the display settings on the fyne goroutine. Committed images
// are never mutated, so img can be read from another goroutine.
type thumbnailJob struct {
	key    string
	name   string
	img    *hdrimage.Image
	params hdrimage.DisplayParams
}

func (tm *ThumbnailManager) newJob(doc *document.Document) thumbnailJob {
	return thumbnailJob{
		key:    thumbnailKey(doc),
		name:   doc.Name(),
		img:    doc.Image(),
		params: tm.params(),
	}
}

// render builds the thumbnail for job and caches it under the version the
// job was taken from.
func (tm *ThumbnailManager) render(job thumbnailJob) (fyne.Resource, error) {
	if job.img.IsNull() {
		return nil, fmt.Errorf("%s has no pixels", job.name)
	}
	thumb := tm.images.Thumbnail(job.img, job.params, service.ThumbnailWidth, service.ThumbnailHeight)
	data := imageToBytes(thumb)
	if data == nil {
		return nil, fmt.Errorf("encoding thumbnail for %s failed", job.name)
	}
	res := fyne.NewStaticResource(job.key, data)

	tm.cacheMutex.Lock()
	tm.cache[job.key] = res
	tm.cacheMutex.Unlock()
	return res, nil
}

// GetThumbnail returns the cached thumbnail for doc, or a placeholder icon
// while one is rendered in the background. It must be called on the fyne
// goroutine; onComplete runs there once the thumbnail is ready.
func (tm *ThumbnailManager) GetThumbnail(doc *document.Document, onComplete func(fyne.Resource)) fyne.Resource {
	if res, ok := tm.Cached(doc); ok {
		return res
	}

	job := tm.newJob(doc)
	tm.spawn(func() {
		res, err := tm.render(job)
		if err != nil {
			if tm.logger != nil {
				tm.logger("Thumbnail error: " + err.Error())
			}
			return
		}
		fyne.Do(func() {
			onComplete(res)
		})
	})

	return theme.FileImageIcon()
}

// Forget drops every cached version of filename.
func (tm *ThumbnailManager) Forget(filename string) {
	prefix := filename + "@"
	tm.cacheMutex.Lock()
	defer tm.cacheMutex.Unlock()
	for k := range tm.cache {
		if strings.HasPrefix(k, prefix) {
			delete(tm.cache, k)
		}
	}
}
