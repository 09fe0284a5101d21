package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/bodgit/wmc2d/colormap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		w, h int
		err  bool
	}{
		{"64x64", 64, 64, false},
		{"48x32", 48, 32, false},
		{"0x64", 0, 0, true},
		{"64", 0, 0, true},
		{"axb", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseSize(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestFit(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 128, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 128; x++ {
			src.SetNRGBA(x, y, color.NRGBA{0x20, 0xb2, 0xaa, 0xff})
		}
	}

	tests := []struct {
		name string
		w, h int
		want image.Rectangle
	}{
		{"wide", 64, 64, image.Rect(0, 0, 64, 32)},
		{"tall", 64, 16, image.Rect(0, 0, 32, 16)},
		{"tiny", 1, 1, image.Rect(0, 0, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fit(src, tt.w, tt.h)
			assert.Equal(t, tt.want, m.Bounds())
			c := color.NRGBAModel.Convert(m.At(0, 0)).(color.NRGBA)
			assert.InDelta(t, 0x20, c.R, 1)
			assert.InDelta(t, 0xb2, c.G, 1)
			assert.InDelta(t, 0xaa, c.B, 1)
			assert.InDelta(t, 0xff, c.A, 1)
		})
	}
}

func TestModelFor(t *testing.T) {
	tests := []struct {
		depth int
		model colormap.Model
	}{
		{1, colormap.DefaultMono},
		{15, colormap.Depth15},
		{16, colormap.Depth16},
		{24, colormap.Depth24},
		{32, colormap.Depth24},
	}

	for _, tt := range tests {
		m, err := modelFor(tt.depth)
		require.NoError(t, err)
		assert.Equal(t, tt.model, m)
	}

	m, err := modelFor(8)
	require.NoError(t, err)
	assert.IsType(t, &colormap.PseudoColor{}, m)

	_, err = modelFor(4)
	assert.Error(t, err)
}
