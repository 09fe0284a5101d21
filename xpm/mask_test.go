package xpm

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	m := NewMask(10, 2)
	assert.Equal(t, 2, m.Stride)
	assert.Equal(t, []uint8{0xff, 0xff, 0xff, 0xff}, m.Pix)
	assert.Equal(t, image.Rect(0, 0, 10, 2), m.Bounds())

	m.SetOpaque(0, 0, false)
	m.SetOpaque(9, 1, false)
	assert.Equal(t, []uint8{0xfe, 0xff, 0xff, 0xfd}, m.Pix)

	assert.False(t, m.Opaque(0, 0))
	assert.True(t, m.Opaque(1, 0))
	assert.False(t, m.Opaque(9, 1))
	assert.False(t, m.Opaque(10, 0), "outside bounds")

	assert.Equal(t, color.Transparent, m.At(0, 0))
	assert.Equal(t, color.Opaque, m.At(1, 0))

	m.SetOpaque(0, 0, true)
	assert.True(t, m.Opaque(0, 0))

	// Ignored
	m.SetOpaque(-1, 0, false)
	m.SetOpaque(0, 2, false)
	assert.Equal(t, []uint8{0xff, 0xff, 0xff, 0xfd}, m.Pix)
}

func TestPlaceholder(t *testing.T) {
	m := Placeholder(3, 2, 24, 0x123456, true)
	assert.Equal(t, []uint32{0x123456, 0x123456, 0x123456, 0x123456, 0x123456, 0x123456}, m.Pix)
	assert.Equal(t, []uint8{0xff, 0xff}, m.Mask.Pix)
	assert.Equal(t, uint8(24), m.Depth)

	assert.Nil(t, Placeholder(1, 1, 1, 0, false).Mask)
}
