package xpm

import (
	"image"
	"image/color"
)

// Mask is a one bit per pixel transparency bitmap. Rows are Stride bytes
// long and the leftmost pixel of each byte is its least significant bit,
// which is the bitmap layout X11 expects when the mask is uploaded as a
// depth 1 pixmap. A set bit is opaque.
type Mask struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewMask returns a fully opaque mask.
func NewMask(width, height int) *Mask {
	stride := (width + 7) >> 3
	m := &Mask{
		Pix:    make([]uint8, stride*height),
		Stride: stride,
		Rect:   image.Rect(0, 0, width, height),
	}
	for i := range m.Pix {
		m.Pix[i] = 0xff
	}
	return m
}

func (m *Mask) offset(x, y int) (int, uint8) {
	return y*m.Stride + x>>3, 1 << uint(x&7)
}

// Opaque reports whether the pixel at x, y is opaque.
func (m *Mask) Opaque(x, y int) bool {
	if !image.Pt(x, y).In(m.Rect) {
		return false
	}
	i, bit := m.offset(x, y)
	return m.Pix[i]&bit != 0
}

// SetOpaque sets or clears the bit for the pixel at x, y.
func (m *Mask) SetOpaque(x, y int, opaque bool) {
	if !image.Pt(x, y).In(m.Rect) {
		return
	}
	i, bit := m.offset(x, y)
	if opaque {
		m.Pix[i] |= bit
	} else {
		m.Pix[i] &^= bit
	}
}

func (m *Mask) ColorModel() color.Model {
	return color.Alpha16Model
}

func (m *Mask) Bounds() image.Rectangle {
	return m.Rect
}

func (m *Mask) At(x, y int) color.Color {
	if m.Opaque(x, y) {
		return color.Opaque
	}
	return color.Transparent
}

var _ image.Image = &Mask{}
