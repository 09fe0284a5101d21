package xpm

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleSource = `/* XPM */
static char * example_xpm[] = {
/* columns rows colors chars-per-pixel */
"2 1 2 1",
". c #000000",
// a line comment with a "quote"
"# c none",
/* pixels, "not a row" */
".#"
};
`

func TestReadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rows  []string
	}{
		{"source", exampleSource, example},
		{"lines", "2 1 2 1\n. c #000000\n# c none\n.#\n\n", example},
		{"crlf", "2 1 2 1\r\n. c #000000\r\n# c none\r\n.#\r\n", example},
		{"xpm2", "! XPM2\n2 1 2 1\n. c #000000\n# c none\n.#\n", example},
		{"spaces kept", "1 1 1 1\n  c None\n \n", []string{"1 1 1 1", "  c None", " "}},
		{"escapes", "/* XPM */\n\"a\\\"b\",\"c\\\\\"", []string{`a"b`, `c\`}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadRows(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.rows, rows)
		})
	}
}

func TestReadRowsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"string", "/* XPM */\n\"2 1 2 1", errUnterminatedString},
		{"newline in string", "/* XPM */\n\"2 1\n2 1\"", errUnterminatedString},
		{"comment", "/* XPM */\n/* pixels", errUnterminatedComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRows(strings.NewReader(tt.input))
			assert.Equal(t, tt.err, err)
		})
	}
}

func TestDecodeConfig(t *testing.T) {
	c, err := DecodeConfig(strings.NewReader(exampleSource))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Width)
	assert.Equal(t, 1, c.Height)

	_, err = DecodeConfig(strings.NewReader("/* XPM */\n\"2 1\""))
	assert.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestImageDecodeFormats(t *testing.T) {
	for _, input := range []string{exampleSource, "! XPM2\n2 1 2 1\n. c #000000\n# c none\n.#\n"} {
		m, format, err := image.Decode(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, "xpm", format)
		assert.Equal(t, image.Rect(0, 0, 2, 1), m.Bounds())

		c, format, err := image.DecodeConfig(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, "xpm", format)
		assert.Equal(t, 2, c.Width)
	}
}
