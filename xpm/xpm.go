/*
Package xpm implements a decoder and encoder for the subset of the XPM
pixmap format used by dock app artwork.

An XPM image is a sequence of text rows. The first row is the header
"width height colors chars_per_pixel", the next colors rows form the color
table and the remaining height rows hold one character per pixel. Each
color table row starts with the id character followed by pairs of a role
key and a color: "c" is the color used on displays deeper than one bit and
"m" the one used on monochrome displays and masks. A color is either
"#RRGGBB" or "None", the latter marking the id as transparent.

Decode does not know how to turn an RGB triple into a pixel value. That is
the job of a ColorService, which is asked for all colors of the table
before any reply is collected, so a decode costs a single round trip to
the service regardless of the number of colors.
*/
package xpm

const (
	maxColors    = 255
	maxIDs       = 256
	charsPerID   = 1
	headerFields = 4
	hotspotField = 6
	maskDepth    = 1
)

// ColorService allocates colors in a colormap. AllocColor must only queue
// the request and return its sequence number; AllocColorReply blocks until
// the reply for that sequence is available. Each sequence is collected at
// most once.
type ColorService interface {
	AllocColor(colormap uint32, r, g, b uint16) uint32
	AllocColorReply(sequence uint32) (uint32, error)
}

// Image is a decoded XPM image in the pixel format of the target colormap.
type Image struct {
	Width  int
	Height int
	Depth  uint8

	// Pix holds Width*Height pixel values in row-major order
	Pix []uint32

	// Mask is nil unless a mask was requested
	Mask *Mask

	// Transparent is the pixel value written for transparent pixels
	Transparent uint32

	// Hotspot is set when the header carries the optional hotspot fields
	Hotspot *[2]int
}

// PixelAt returns the pixel value at x, y.
func (m *Image) PixelAt(x, y int) uint32 {
	return m.Pix[y*m.Width+x]
}

// Placeholder returns a fully opaque image of the given size with every
// pixel set to pixel. It can stand in for artwork that failed to decode.
func Placeholder(width, height int, depth uint8, pixel uint32, withMask bool) *Image {
	m := &Image{
		Width:  width,
		Height: height,
		Depth:  depth,
		Pix:    make([]uint32, width*height),
	}
	for i := range m.Pix {
		m.Pix[i] = pixel
	}
	if withMask {
		m.Mask = NewMask(width, height)
	}
	return m
}
