package xpm

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"strings"
)

const (
	xpm3Magic = "/* XPM */"
	xpm2Magic = "! XPM2"
)

var (
	errUnterminatedString  = errors.New("xpm: unterminated string")
	errUnterminatedComment = errors.New("xpm: unterminated comment")
)

// ReadRows reads the rows of an XPM image from r. The input is either an
// XPM3 C source file starting with "/* XPM */", in which case each string
// literal is a row, or one row per line with an optional "! XPM2" first
// line.
func ReadRows(r io.Reader) ([]string, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(string(bytes.TrimSpace(b)), xpm3Magic) {
		return readStrings(b)
	}
	return readLines(b)
}

func readLines(b []byte) ([]string, error) {
	var rows []string
	s := bufio.NewScanner(bytes.NewReader(b))
	first := true
	for s.Scan() {
		line := strings.TrimSuffix(s.Text(), "\r")
		if first {
			first = false
			if strings.TrimSpace(line) == xpm2Magic {
				continue
			}
		}
		rows = append(rows, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	// Trailing blank lines aren't rows
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// readStrings returns every C string literal outside of comments
func readStrings(b []byte) ([]string, error) {
	var rows []string
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '*':
			end := bytes.Index(b[i+2:], []byte("*/"))
			if end < 0 {
				return nil, errUnterminatedComment
			}
			i += end + 3
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '/':
			end := bytes.IndexByte(b[i:], '\n')
			if end < 0 {
				return rows, nil
			}
			i += end
		case b[i] == '"':
			var sb strings.Builder
			i++
			for ; i < len(b) && b[i] != '"'; i++ {
				if b[i] == '\n' {
					return nil, errUnterminatedString
				}
				if b[i] == '\\' && i+1 < len(b) {
					i++
				}
				sb.WriteByte(b[i])
			}
			if i >= len(b) {
				return nil, errUnterminatedString
			}
			rows = append(rows, sb.String())
		}
	}
	return rows, nil
}
