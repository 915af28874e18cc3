package edit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdrview/internal/hdrimage"
	"hdrview/internal/history"
)

func gradient(w, h int) *hdrimage.Image {
	m := hdrimage.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetPixel(x, y, hdrimage.Color{R: float32(x), G: float32(y), B: 1, A: 1})
		}
	}
	return m
}

func TestFlips(t *testing.T) {
	tests := []struct {
		name  string
		cmd   history.Command
		check func(t *testing.T, out *hdrimage.Image)
	}{
		{
			name: "horizontal",
			cmd:  FlipHorizontal{},
			check: func(t *testing.T, out *hdrimage.Image) {
				assert.Equal(t, float32(2), out.Pixel(0, 0).R)
				assert.Equal(t, float32(0), out.Pixel(2, 1).R)
				assert.Equal(t, float32(1), out.Pixel(2, 1).G)
			},
		},
		{
			name: "vertical",
			cmd:  FlipVertical{},
			check: func(t *testing.T, out *hdrimage.Image) {
				assert.Equal(t, float32(1), out.Pixel(0, 0).G)
				assert.Equal(t, float32(0), out.Pixel(2, 1).G)
				assert.Equal(t, float32(2), out.Pixel(2, 1).R)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := gradient(3, 2)
			out, inverse, err := tt.cmd.Apply(in)
			require.NoError(t, err)
			tt.check(t, out)

			back, _, err := inverse.Apply(out)
			require.NoError(t, err)
			assert.True(t, in.Equal(back))
		})
	}

	t.Run("empty image", func(t *testing.T) {
		_, _, err := FlipHorizontal{}.Apply(hdrimage.New(0, 0))
		assert.ErrorIs(t, err, ErrEmptyImage)
	})
}

func TestGain(t *testing.T) {
	in := gradient(2, 1)
	out, inverse, err := GainStops(2).Apply(in)
	require.NoError(t, err)
	assert.Equal(t, hdrimage.Color{R: 4, G: 0, B: 4, A: 1}, out.Pixel(1, 0))
	assert.Equal(t, "Gain x4", inverse.Name())

	back, redo, err := inverse.Apply(out)
	require.NoError(t, err)
	assert.True(t, in.Equal(back))

	again, _, err := redo.Apply(back)
	require.NoError(t, err)
	assert.True(t, out.Equal(again))

	_, _, err = Gain{Factor: 0}.Apply(in)
	assert.Error(t, err)
}

func TestGainUndoIsExact(t *testing.T) {
	tests := []struct {
		name string
		cmd  Gain
	}{
		{"half stop", GainStops(0.5)},
		{"third stop down", GainStops(-1.0 / 3)},
		{"subnormal factor", Gain{Factor: 1e-39}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := hdrimage.New(64, 1)
			for x := 0; x < 64; x++ {
				v := 0.1 + float32(x)*0.37
				orig.SetPixel(x, 0, hdrimage.Color{R: v, G: v / 3, B: v * 1.7, A: 1})
			}
			h := history.New(orig.Clone(), 0)
			require.NoError(t, h.Apply(tt.cmd))
			require.False(t, orig.Equal(h.Image()))

			require.True(t, h.Undo())
			assert.True(t, orig.Equal(h.Image()))
			assert.False(t, h.IsModified())

			require.True(t, h.Redo())
			require.True(t, h.Undo())
			assert.True(t, orig.Equal(h.Image()))
		})
	}
}

func TestHistoryNamesTheForwardEdit(t *testing.T) {
	h := history.New(gradient(2, 1), 0)
	require.NoError(t, h.Apply(GainStops(1)))

	name, ok := h.UndoName()
	require.True(t, ok)
	assert.Equal(t, "Gain x2", name)

	require.True(t, h.Undo())
	name, ok = h.RedoName()
	require.True(t, ok)
	assert.Equal(t, "Gain x2", name)
}

func TestFuncRestoresSnapshot(t *testing.T) {
	in := gradient(2, 2)
	crop := Func{
		Label: "Crop",
		Fn: func(img *hdrimage.Image) (*hdrimage.Image, error) {
			out := hdrimage.New(1, 1)
			out.SetPixel(0, 0, img.Pixel(1, 1))
			return out, nil
		},
	}

	h := history.New(in, 0)
	require.NoError(t, h.Apply(crop))
	assert.Equal(t, 1, h.Image().Width)

	require.True(t, h.Undo())
	assert.True(t, in.Equal(h.Image()))
	require.True(t, h.Redo())
	assert.Equal(t, 1, h.Image().Width)

	name, _ := h.UndoName()
	assert.Equal(t, "Crop", name)

	t.Run("error rejects the edit", func(t *testing.T) {
		failing := Func{Label: "Fail", Fn: func(*hdrimage.Image) (*hdrimage.Image, error) {
			return nil, errors.New("boom")
		}}
		before := h.Version()
		assert.Error(t, h.Apply(failing))
		assert.Equal(t, before, h.Version())
	})
}

func TestByName(t *testing.T) {
	cmd, err := ByName("fliph", 0)
	require.NoError(t, err)
	assert.Equal(t, FlipHorizontal{}, cmd)

	cmd, err = ByName("gain", 1)
	require.NoError(t, err)
	assert.Equal(t, Gain{Factor: 2}, cmd)

	_, err = ByName("rotate", 0)
	assert.Error(t, err)
}
