package service

import (
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"

	"hdrview/internal/hdrimage"
	"hdrview/internal/stats"
)

const (
	ThumbnailWidth  = 100
	ThumbnailHeight = 100
)

// ImageInfo holds metadata about an image file.
type ImageInfo struct {
	Path     string
	Format   string
	Width    int
	Height   int
	Size     int64
	ModTime  time.Time
	EXIFData map[string]string
	Stats    stats.Summary
}

// ImageService provides image loading, metadata extraction and previews.
type ImageService struct {
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// GetEXIF extracts a few common EXIF fields. Files without EXIF (every
// Radiance file, most PNGs) yield nil.
func (is *ImageService) GetEXIF(r io.Reader) map[string]string {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}
	result := make(map[string]string)
	for _, field := range []exif.FieldName{
		exif.DateTime, exif.Model, exif.Make, exif.ExposureTime, exif.FNumber, exif.ISOSpeedRatings, exif.FocalLength,
	} {
		tag, err := x.Get(field)
		if err == nil && tag != nil {
			result[string(field)] = tag.String()
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// GetImageInfo returns size, file metadata, EXIF data and per-channel
// statistics together with the decoded image.
func (is *ImageService) GetImageInfo(path string) (*ImageInfo, *hdrimage.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image for info: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	exifData := is.GetEXIF(f)

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("failed to seek in image file: %w", err)
	}

	img, format, err := hdrimage.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image for info: %w", err)
	}

	return &ImageInfo{
		Path:     path,
		Format:   format,
		Width:    img.Width,
		Height:   img.Height,
		Size:     fi.Size(),
		ModTime:  fi.ModTime(),
		EXIFData: exifData,
		Stats:    stats.Summarize(img),
	}, img, nil
}

// Thumbnail tone maps img and scales it to fit within maxWidth x maxHeight,
// keeping the aspect ratio. Images that already fit are not enlarged.
func (is *ImageService) Thumbnail(img *hdrimage.Image, p hdrimage.DisplayParams, maxWidth, maxHeight uint) image.Image {
	return resize.Thumbnail(maxWidth, maxHeight, hdrimage.ToneMap(img, p), resize.Lanczos3)
}
