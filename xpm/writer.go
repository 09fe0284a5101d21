package xpm

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
)

// Every printable character other than the string delimiter and escape
// can be a color id, space is kept for None
const (
	noneID    = ' '
	idChars   = "!#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[]^_`abcdefghijklmnopqrstuvwxyz{|}~"
	maxOpaque = len(idChars)
)

var (
	errEmptyImage    = errors.New("xpm: image is empty")
	errTooManyColors = errors.New("xpm: too many colors")
)

type encoder struct {
	w    *bufio.Writer
	name string
}

func opaque(c color.Color) (color.NRGBA, bool) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A < 0x80 {
		return color.NRGBA{}, false
	}
	n.A = 0xff
	return n, true
}

func countColors(m image.Image) map[color.NRGBA]int {
	colors := make(map[color.NRGBA]int)
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c, ok := opaque(m.At(x, y)); ok {
				colors[c]++
			}
		}
	}
	return colors
}

// reduce returns m with no more than maxOpaque distinct opaque colors,
// leaving transparent pixels alone
func reduce(m image.Image) image.Image {
	b := m.Bounds()

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, maxOpaque), m)

	pm := image.NewPaletted(b, p)
	draw.Draw(pm, b, m, b.Min, draw.Src)

	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, ok := opaque(m.At(x, y)); !ok {
				continue
			}
			c := color.NRGBAModel.Convert(pm.At(x, y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func monoColor(c color.NRGBA) string {
	if color.GrayModel.Convert(c).(color.Gray).Y >= 0x80 {
		return "#FFFFFF"
	}
	return "#000000"
}

func cName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			r = '_'
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "image"
	}
	return sb.String()
}

func (e *encoder) encode(m image.Image) error {
	b := m.Bounds()

	// Assign ids in order of first appearance
	ids := make(map[color.NRGBA]byte)
	var order []color.NRGBA
	hasNone := false
	rows := make([][]byte, 0, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]byte, 0, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := opaque(m.At(x, y))
			if !ok {
				hasNone = true
				row = append(row, noneID)
				continue
			}
			id, ok := ids[c]
			if !ok {
				if len(order) == maxOpaque {
					return errTooManyColors
				}
				id = idChars[len(order)]
				ids[c] = id
				order = append(order, c)
			}
			row = append(row, id)
		}
		rows = append(rows, row)
	}

	colors := len(order)
	if hasNone {
		colors++
	}

	fmt.Fprintf(e.w, "%s\nstatic char *%s[] = {\n", xpm3Magic, e.name)
	fmt.Fprintf(e.w, "/* columns rows colors chars-per-pixel */\n\"%d %d %d %d\",\n", b.Dx(), b.Dy(), colors, charsPerID)
	if hasNone {
		fmt.Fprintf(e.w, "\"%c c None m None\",\n", noneID)
	}
	for _, c := range order {
		fmt.Fprintf(e.w, "\"%c c %s m %s\",\n", ids[c], hexColor(c), monoColor(c))
	}
	fmt.Fprintf(e.w, "/* pixels */\n")
	for i, row := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(e.w, "\"%s\"%s\n", row, sep)
	}
	fmt.Fprintf(e.w, "};\n")

	return e.w.Flush()
}

// Encode writes the Image m to w as an XPM3 C source file declaring an
// array called name. Pixels less than half opaque are written as None and
// images with too many colors are quantized first.
func Encode(w io.Writer, m image.Image, name string) error {
	b := m.Bounds()
	if b.Empty() {
		return errEmptyImage
	}

	if len(countColors(m)) > maxOpaque {
		m = reduce(m)
	}

	e := encoder{
		w:    bufio.NewWriter(w),
		name: cName(name),
	}

	return e.encode(m)
}
