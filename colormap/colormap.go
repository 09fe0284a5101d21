/*
Package colormap implements color services for the xpm decoder.

A Model maps a 16-bit per channel RGB triple to a pixel value the way an
X11 visual class does. A Server owns any number of colormaps and answers
allocation requests asynchronously: AllocColor queues a request and returns
its sequence number straight away, AllocColorReply waits for that reply.
*/
package colormap

import (
	"errors"
	"image/color"
	"math/bits"
	"sync"
)

var (
	// ErrColormapFull is returned when a PseudoColor colormap has no free
	// cells left
	ErrColormapFull = errors.New("colormap: no free color cells")
	// ErrBadColormap is returned for requests against an unknown colormap
	ErrBadColormap = errors.New("colormap: unknown colormap")
	// ErrUnknownSequence is returned when collecting a reply that was
	// never requested or has already been collected
	ErrUnknownSequence = errors.New("colormap: unknown request sequence")
	// ErrClosed is returned for requests made after the server is closed
	ErrClosed = errors.New("colormap: server closed")
)

// Model allocates a pixel value for a color.
type Model interface {
	Alloc(r, g, b uint16) (uint32, error)
}

// TrueColor composes pixel values directly from the channels, each one
// scaled into the bits of its mask.
type TrueColor struct {
	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
}

// Common TrueColor visuals
var (
	Depth24 = TrueColor{RedMask: 0xff0000, GreenMask: 0x00ff00, BlueMask: 0x0000ff}
	Depth16 = TrueColor{RedMask: 0xf800, GreenMask: 0x07e0, BlueMask: 0x001f}
	Depth15 = TrueColor{RedMask: 0x7c00, GreenMask: 0x03e0, BlueMask: 0x001f}
)

func channel(v uint16, mask uint32) uint32 {
	n := bits.OnesCount32(mask)
	if n == 0 {
		return 0
	}
	if n > 16 {
		n = 16
	}
	return uint32(v) >> uint(16-n) << uint(bits.TrailingZeros32(mask)) & mask
}

// Alloc never fails.
func (tc TrueColor) Alloc(r, g, b uint16) (uint32, error) {
	return channel(r, tc.RedMask) | channel(g, tc.GreenMask) | channel(b, tc.BlueMask), nil
}

// PseudoColor hands out cells from a fixed size colormap. Allocating a
// color that is already present shares its cell.
type PseudoColor struct {
	mu    sync.Mutex
	size  int
	cells []color.RGBA64
}

// NewPseudoColor returns an empty colormap with size cells.
func NewPseudoColor(size int) *PseudoColor {
	return &PseudoColor{
		size:  size,
		cells: make([]color.RGBA64, 0, size),
	}
}

func (pc *PseudoColor) Alloc(r, g, b uint16) (uint32, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	c := color.RGBA64{R: r, G: g, B: b, A: 0xffff}
	for i, cell := range pc.cells {
		if cell == c {
			return uint32(i), nil
		}
	}
	if len(pc.cells) >= pc.size {
		return 0, ErrColormapFull
	}
	pc.cells = append(pc.cells, c)
	return uint32(len(pc.cells) - 1), nil
}

// Colors returns the allocated cells, indexed by pixel value.
func (pc *PseudoColor) Colors() color.Palette {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	p := make(color.Palette, len(pc.cells))
	for i, c := range pc.cells {
		p[i] = c
	}
	return p
}

// Mono is a depth 1 colormap. Colors at least half as bright as white get
// WhitePixel, anything darker BlackPixel.
type Mono struct {
	WhitePixel uint32
	BlackPixel uint32
}

// DefaultMono matches the usual bitmap convention of a set bit being
// foreground.
var DefaultMono = Mono{WhitePixel: 1, BlackPixel: 0}

func (m Mono) Alloc(r, g, b uint16) (uint32, error) {
	// Same weights as color.GrayModel
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	if y >= 0x8000 {
		return m.WhitePixel, nil
	}
	return m.BlackPixel, nil
}
