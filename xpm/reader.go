package xpm

import (
	"errors"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/bodgit/wmc2d/colormap"
)

var errBadDepth = errors.New("xpm: invalid target depth")

type role int

const (
	roleColor role = iota
	roleMono
	numRoles
)

func makeNibbles() *[256]int8 {
	t := new([256]int8)
	for i := range t {
		t[i] = -1
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = int8(c - '0')
	}
	for c := 'a'; c <= 'f'; c++ {
		t[c] = int8(c - 'a' + 10)
		t[c-'a'+'A'] = int8(c - 'a' + 10)
	}
	return t
}

var nibbles = makeNibbles()

func hexByte(hi, lo byte) (uint8, bool) {
	h, l := nibbles[hi], nibbles[lo]
	if h < 0 || l < 0 {
		return 0, false
	}
	return uint8(h)<<4 | uint8(l), true
}

// 8-bit channel to the 16-bit precision of the color service
func scale(v uint8) uint16 {
	return uint16(65535 * uint32(v) / 255)
}

// parseColor returns the 16-bit channels of spec, or transparent for None
func parseColor(spec string) (r, g, b uint16, transparent bool, ok bool) {
	if strings.EqualFold(spec, "none") {
		return 0, 0, 0, true, true
	}
	if len(spec) != 7 || spec[0] != '#' {
		return 0, 0, 0, false, false
	}
	var rgb [3]uint8
	for i := range rgb {
		if rgb[i], ok = hexByte(spec[1+i*2], spec[2+i*2]); !ok {
			return 0, 0, 0, false, false
		}
	}
	return scale(rgb[0]), scale(rgb[1]), scale(rgb[2]), false, true
}

// splitKey returns the next key and its value from tokens along with the
// number of tokens used. A "c" or "m" key may be joined to its color.
func splitKey(tokens []string) (key, value string, n int) {
	key = tokens[0]
	if len(key) > 1 && (key[0] == 'c' || key[0] == 'm') {
		if rest := key[1:]; rest[0] == '#' || strings.EqualFold(rest, "none") {
			return key[:1], rest, 1
		}
	}
	if len(tokens) < 2 {
		return key, "", 1
	}
	return key, tokens[1], 2
}

type entry struct {
	defined     bool
	line        int
	seen        [numRoles]bool
	pending     bool
	sequence    uint32
	transparent bool
	pixel       uint32
}

// Options control how Decode builds the image.
type Options struct {
	// Mask requests a transparency mask
	Mask bool

	// Transparent is the pixel value for transparent pixels. It is
	// ignored for depth 1 images, where transparent pixels are always 1.
	Transparent uint32
}

type decoder struct {
	svc      ColorService
	colormap uint32
	depth    uint8
	data     []string

	width   int
	height  int
	colors  int
	hotspot *[2]int

	// Indexed by id character, in the order the color table defines them
	entries [maxIDs]entry
	ids     []byte

	image *Image
}

func (d *decoder) readHeader() error {
	if len(d.data) == 0 {
		return errorf(MalformedHeader, 0, "no header row")
	}

	fields := strings.Fields(d.data[0])
	if len(fields) != headerFields && len(fields) != hotspotField {
		return errorf(MalformedHeader, 0, "%q", d.data[0])
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return errorf(MalformedHeader, 0, "%q", d.data[0])
		}
		values[i] = v
	}

	d.width, d.height, d.colors = values[0], values[1], values[2]

	if d.colors < 1 || d.colors > maxColors {
		return errorf(UnsupportedColorCount, 0, "%d colors", d.colors)
	}
	if values[3] != charsPerID {
		return errorf(UnsupportedEncoding, 0, "%d characters per pixel", values[3])
	}
	if d.width < 1 || d.height < 1 {
		return errorf(MalformedHeader, 0, "image is %dx%d", d.width, d.height)
	}
	if len(values) == hotspotField {
		d.hotspot = &[2]int{values[4], values[5]}
	}

	return nil
}

func (d *decoder) matches(r role) bool {
	return r == roleOf(d.depth)
}

func (d *decoder) readColor(line int) error {
	row := d.data[line]
	if row == "" {
		return errorf(MalformedColorSpec, line, "missing color id")
	}

	id := row[0]
	e := &d.entries[id]
	if e.defined {
		return errorf(DuplicateColorID, line, "%q already defined at row %d", id, e.line)
	}
	e.defined = true
	e.line = line
	d.ids = append(d.ids, id)

	// Multiple choices for the color, as pairs of key and color. The
	// space between a key and its color is optional.
	tokens := strings.Fields(row[1:])
	for i := 0; i < len(tokens); {
		key, spec, n := splitKey(tokens[i:])
		i += n

		var r role
		switch key {
		case "c":
			r = roleColor
		case "m":
			r = roleMono
		case "s", "g", "g4":
			// Symbolic and grayscale choices are never used
			if spec == "" {
				return errorf(MalformedColorSpec, line, "no value for key %q", key)
			}
			continue
		default:
			return errorf(UnknownColorRole, line, "%q in %q", key, row)
		}

		if spec == "" {
			return errorf(MalformedColorSpec, line, "no color for key %q", key)
		}
		red, green, blue, transparent, ok := parseColor(spec)
		if !ok {
			return errorf(MalformedColorSpec, line, "%q", spec)
		}

		if e.seen[r] {
			if d.matches(r) {
				return errorf(DuplicateColorRequest, line, "%q", row)
			}
			return errorf(MalformedColorSpec, line, "key %q given twice", key)
		}
		e.seen[r] = true

		if !d.matches(r) {
			continue
		}
		if transparent {
			e.transparent = true
			continue
		}
		e.sequence = d.svc.AllocColor(d.colormap, red, green, blue)
		e.pending = true
	}

	return nil
}

// readColors parses the color table, queueing an allocation for every
// color that applies to the target depth.
func (d *decoder) readColors() error {
	for i := 0; i < d.colors; i++ {
		line := 1 + i
		if line >= len(d.data) {
			return errorf(MissingRows, line, "expected %d color rows, got %d", d.colors, i)
		}
		if err := d.readColor(line); err != nil {
			return err
		}
	}
	return nil
}

// resolveColors collects the replies for every queued allocation. All
// replies are collected even after a failure so none are left behind.
func (d *decoder) resolveColors() error {
	var failed error
	for _, id := range d.ids {
		e := &d.entries[id]
		if !e.pending {
			// None, or no color for this depth
			if !e.seen[roleOf(d.depth)] {
				e.transparent = true
			}
			continue
		}
		pixel, err := d.svc.AllocColorReply(e.sequence)
		e.pending = false
		if err != nil {
			if failed == nil {
				failed = &DecodeError{Kind: ColorAllocationFailed, Line: e.line, Err: err}
			}
			continue
		}
		e.pixel = pixel
	}
	return failed
}

func roleOf(depth uint8) role {
	if depth == maskDepth {
		return roleMono
	}
	return roleColor
}

// discard collects and drops any replies still outstanding.
func (d *decoder) discard() {
	for _, id := range d.ids {
		e := &d.entries[id]
		if e.pending {
			_, _ = d.svc.AllocColorReply(e.sequence)
			e.pending = false
		}
	}
}

func (d *decoder) readPixels(opts Options) error {
	transparent := opts.Transparent
	if d.depth == maskDepth {
		transparent = 1
	}

	d.image = &Image{
		Width:       d.width,
		Height:      d.height,
		Depth:       d.depth,
		Pix:         make([]uint32, d.width*d.height),
		Transparent: transparent,
		Hotspot:     d.hotspot,
	}
	if opts.Mask {
		d.image.Mask = NewMask(d.width, d.height)
	}

	for y := 0; y < d.height; y++ {
		line := 1 + d.colors + y
		if line >= len(d.data) {
			return errorf(MissingRows, line, "expected %d pixel rows, got %d", d.height, y)
		}
		row := d.data[line]
		switch {
		case len(row) < d.width:
			return errorf(ShortPixelRow, line, "%d of %d pixels", len(row), d.width)
		case len(row) > d.width:
			return errorf(LongPixelRow, line, "%d of %d pixels", len(row), d.width)
		}

		p := d.image.Pix[y*d.width : (y+1)*d.width]
		for x := 0; x < d.width; x++ {
			e := &d.entries[row[x]]
			if !e.defined {
				return errorf(UnknownColorID, line, "%q at column %d", row[x], x)
			}
			if e.transparent {
				p[x] = transparent
				if d.image.Mask != nil {
					d.image.Mask.SetOpaque(x, y, false)
				}
			} else {
				p[x] = e.pixel
			}
		}
	}

	return nil
}

func (d *decoder) decode(opts Options) error {
	if err := d.readHeader(); err != nil {
		return err
	}
	if err := d.readColors(); err != nil {
		return err
	}
	if err := d.resolveColors(); err != nil {
		return err
	}
	return d.readPixels(opts)
}

// Decode converts the XPM rows in data into an image of the given depth,
// allocating its colors in colormap through svc. At depth 1 the "m" colors
// are used, otherwise the "c" colors; ids without a color for the target
// depth are transparent. With withMask set the image carries a mask with
// every transparent pixel cleared.
func Decode(svc ColorService, colormap uint32, depth uint8, data []string, withMask bool) (*Image, error) {
	return DecodeWithOptions(svc, colormap, depth, data, Options{Mask: withMask})
}

// DecodeWithOptions is like Decode but allows the transparent pixel value
// to be chosen.
func DecodeWithOptions(svc ColorService, colormap uint32, depth uint8, data []string, opts Options) (*Image, error) {
	if depth < 1 || depth > 32 {
		return nil, errBadDepth
	}
	d := decoder{
		svc:      svc,
		colormap: colormap,
		depth:    depth,
		data:     data,
	}
	if err := d.decode(opts); err != nil {
		d.discard()
		return nil, err
	}
	return d.image, nil
}

// DecodeImage reads an XPM image from r and returns it as an *image.NRGBA
// with transparent pixels fully transparent.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := ReadRows(r)
	if err != nil {
		return nil, err
	}

	svc := colormap.NewDirect(colormap.Depth24)
	m, err := Decode(svc, 0, 24, data, true)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Mask.Opaque(x, y) {
				continue
			}
			p := m.PixelAt(x, y)
			img.SetNRGBA(x, y, color.NRGBA{uint8(p >> 16), uint8(p >> 8), uint8(p), 0xff})
		}
	}
	return img, nil
}

// DecodeConfig returns the color model and dimensions of an XPM image
// without decoding the color table or pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := ReadRows(r)
	if err != nil {
		return image.Config{}, err
	}
	d := decoder{data: data}
	if err := d.readHeader(); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      d.width,
		Height:     d.height,
	}, nil
}

func init() {
	image.RegisterFormat("xpm", xpm3Magic, DecodeImage, DecodeConfig)
	image.RegisterFormat("xpm", xpm2Magic, DecodeImage, DecodeConfig)
}
