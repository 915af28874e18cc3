package hdrimage

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ErrUnsupportedFormat is returned when the input is not a recognised image.
var ErrUnsupportedFormat = errors.New("hdrimage: unsupported image format")

// FormatRadiance is the format name reported for Radiance RGBE files.
const FormatRadiance = "hdr"

// IsSupportedExt reports whether the file extension is one Load understands.
func IsSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hdr", ".pic", ".tif", ".tiff", ".png", ".jpg", ".jpeg", ".gif":
		return true
	default:
		return false
	}
}

// Decode reads an image. Radiance files keep their floating point values;
// 8 and 16 bit formats are converted from sRGB to linear light.
// The second result is the detected format name.
func Decode(r io.Reader) (*Image, string, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(2)
	if string(magic) == "#?" {
		img, err := rgbe.Decode(br)
		if err != nil {
			return nil, FormatRadiance, fmt.Errorf("failed to decode radiance image: %w", err)
		}
		return FromImage(img), FormatRadiance, nil
	}

	img, format, err := image.Decode(br)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, format, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return FromImage(img), format, nil
}

// Load opens and decodes the image at path.
func Load(path string) (*Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// Encode writes m as a Radiance RGBE file. Alpha is not stored.
func Encode(w io.Writer, m *Image) error {
	if m.IsNull() {
		return errors.New("cannot encode an empty image")
	}
	return rgbe.Encode(w, m)
}

// Save writes m to path in Radiance format.
func Save(path string, m *Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, m); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// FromImage converts any image.Image. hdr.Image sources are copied as is,
// everything else is treated as sRGB encoded and linearised.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := New(b.Dx(), b.Dy())

	if hi, ok := src.(hdr.Image); ok {
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				r, g, bl, _ := hi.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
				out.SetPixel(x, y, Color{R: float32(r), G: float32(g), B: float32(bl), A: 1})
			}
		}
		return out
	}

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			out.SetPixel(x, y, Color{
				R: SRGBDecode(float32(c.R) / 0xffff),
				G: SRGBDecode(float32(c.G) / 0xffff),
				B: SRGBDecode(float32(c.B) / 0xffff),
				A: float32(c.A) / 0xffff,
			})
		}
	}
	return out
}
