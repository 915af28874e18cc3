// Package scan finds loadable images in a directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"hdrview/internal/hdrimage"
)

// LoggerFunc receives scan progress and error messages.
type LoggerFunc func(message string)

// FileItem is one image file found by Run.
type FileItem struct {
	Path string
	Info os.FileInfo
}

// FileItems is a slice of FileItem
type FileItems []FileItem

// NewFileItem creates a new FileItem
func NewFileItem(p string, info os.FileInfo) FileItem {
	return FileItem{Path: p, Info: info}
}

// FileScannerImpl is the filesystem-backed scanner.
type FileScannerImpl struct{}

// Run implements the scanner interface used by the service layer.
func (FileScannerImpl) Run(dir string, logger LoggerFunc) <-chan FileItem {
	return Run(dir, logger)
}

// Run walks dir recursively in a goroutine and sends every non-empty image
// file with an absolute path. The channel is closed when the walk ends.
// Unreadable entries are reported to logger and skipped.
func Run(dir string, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem)
	logf := func(format string, args ...interface{}) {
		if logger != nil {
			logger(fmt.Sprintf(format, args...))
		}
	}

	go func() {
		defer close(out)
		root, err := filepath.Abs(dir)
		if err != nil {
			logf("cannot resolve %s: %v", dir, err)
			return
		}
		count := 0
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				logf("skipping %s: %v", p, err)
				if d != nil && d.IsDir() && p != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isImage(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				logf("skipping %s: %v", p, err)
				return nil
			}
			if !info.Mode().IsRegular() || info.Size() == 0 {
				return nil
			}
			out <- NewFileItem(p, info)
			count++
			return nil
		})
		if err != nil {
			logf("scan of %s stopped: %v", root, err)
		}
		logf("found %d images in %s", count, root)
	}()
	return out
}

// Collect drains Run into a slice.
func Collect(dir string, logger LoggerFunc) FileItems {
	var items FileItems
	for item := range Run(dir, logger) {
		items = append(items, item)
	}
	return items
}

func isImage(n string) bool {
	return hdrimage.IsSupportedExt(n)
}
