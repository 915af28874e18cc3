package scan

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileItem(t *testing.T) {
	dummyInfo, err := os.Stat(".")
	require.NoError(t, err)

	item := NewFileItem("test/path.hdr", dummyInfo)
	assert.Equal(t, "test/path.hdr", item.Path)
	assert.NotNil(t, item.Info)
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"memorial.hdr", true},
		{"scene.PIC", true},
		{"scan.tif", true},
		{"image.PNG", true},
		{"image.jpeg", true},
		{"image.exr", false},
		{"image.txt", false},
		{"image", false},
		{".hdr", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isImage(tt.name), "isImage(%s)", tt.name)
	}
}

func TestRun(t *testing.T) {
	rootDir := t.TempDir()

	subDir := filepath.Join(rootDir, "sub1")
	subSubDir := filepath.Join(subDir, "subsub")
	require.NoError(t, os.MkdirAll(subSubDir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(rootDir, "empty"), 0755))

	// path -> size; 0-byte files are skipped
	filesToCreate := map[string]int{
		filepath.Join(rootDir, "memorial.hdr"): 10,
		filepath.Join(rootDir, "photo.JPG"):    10,
		filepath.Join(rootDir, "document.txt"): 10,
		filepath.Join(rootDir, "empty.hdr"):    0,
		filepath.Join(subDir, "scan.tiff"):     10,
		filepath.Join(subDir, "notes.md"):      10,
		filepath.Join(subSubDir, "deep.pic"):   10,
	}
	for path, size := range filesToCreate {
		content := make([]byte, size)
		require.NoError(t, os.WriteFile(path, content, 0644))
	}

	expected := []string{
		filepath.Join(rootDir, "memorial.hdr"),
		filepath.Join(rootDir, "photo.JPG"),
		filepath.Join(subDir, "scan.tiff"),
		filepath.Join(subSubDir, "deep.pic"),
	}
	for i, p := range expected {
		abs, err := filepath.Abs(p)
		require.NoError(t, err)
		expected[i] = abs
	}
	sort.Strings(expected)

	var logs []string
	itemsChan := Run(rootDir, func(message string) { logs = append(logs, message) })

	var found []string
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case item, ok := <-itemsChan:
			if !ok {
				done = true
				continue
			}
			require.NotNil(t, item.Info)
			assert.False(t, item.Info.IsDir())
			assert.NotZero(t, item.Info.Size())
			assert.True(t, filepath.IsAbs(item.Path))
			found = append(found, item.Path)
		case <-timeout:
			t.Fatal("Run timed out waiting for items from channel")
		}
	}
	sort.Strings(found)

	assert.Equal(t, expected, found)
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[len(logs)-1], "found 4 images")
}

func TestRunMissingDirectory(t *testing.T) {
	items := Collect(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Empty(t, items)
}

func TestFileScannerImpl(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hdr"), []byte("#?RADIANCE"), 0644))

	var count int
	for range (FileScannerImpl{}).Run(dir, nil) {
		count++
	}
	assert.Equal(t, 1, count)
}
