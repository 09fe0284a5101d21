package xpm

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 0xff})

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m, "test"))

	expected := `/* XPM */
static char *test[] = {
/* columns rows colors chars-per-pixel */
"2 1 2 1",
"  c None m None",
"! c #000000 m #000000",
/* pixels */
"! "
};
`
	assert.Equal(t, expected, b.String())
}

func testImage() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			if x == y {
				continue
			}
			m.SetNRGBA(x, y, color.NRGBA{uint8(x * 50), uint8(y * 100), 0x80, 0xff})
		}
	}
	return m
}

func TestEncodeDecode(t *testing.T) {
	m := testImage()

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m, "icon"))

	decoded, format, err := image.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "xpm", format)
	assert.Equal(t, m, decoded)
}

func TestEncodeMono(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.SetNRGBA(0, 0, color.NRGBA{0xf0, 0xf0, 0xf0, 0xff})
	m.SetNRGBA(1, 0, color.NRGBA{0x10, 0x10, 0x10, 0xff})

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m, "mono"))

	rows, err := ReadRows(b)
	require.NoError(t, err)

	decoded, err := Decode(newRecorder(), 0, 1, rows, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{pixelFor(0xffff, 0xffff, 0xffff), pixelFor(0, 0, 0)}, decoded.Pix)
	assert.Equal(t, []uint8{0xff}, decoded.Mask.Pix)
}

func TestEncodeQuantize(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x * 16), uint8(y * 16), uint8(x ^ y), 0xff})
		}
	}
	m.SetNRGBA(0, 0, color.NRGBA{})
	require.Greater(t, len(countColors(m)), maxOpaque)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m, "gradient"))

	decoded, err := DecodeImage(b)
	require.NoError(t, err)
	assert.Equal(t, m.Bounds(), decoded.Bounds())
	assert.LessOrEqual(t, len(countColors(decoded)), maxOpaque)

	// Transparency survives quantization
	_, _, _, a := decoded.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), a)
	_, _, _, a = decoded.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncodeOffset(t *testing.T) {
	m := testImage().SubImage(image.Rect(1, 1, 4, 3))

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m, "sub"))

	decoded, err := DecodeImage(b)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())
	assert.Equal(t, m.At(1, 1), decoded.At(0, 0))
	assert.Equal(t, m.At(3, 2), decoded.At(2, 1))
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, errEmptyImage, Encode(new(bytes.Buffer), image.NewNRGBA(image.Rectangle{}), "x"))
}

func TestCName(t *testing.T) {
	tests := map[string]string{
		"":          "image",
		"wmc2d":     "wmc2d",
		"2d":        "_d",
		"my-icon.p": "my_icon_p",
	}
	for in, out := range tests {
		assert.Equal(t, out, cName(in), in)
	}
}
