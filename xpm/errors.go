package xpm

import (
	"fmt"
)

// ErrorKind classifies why a decode failed.
type ErrorKind int

// The kinds of decode failure.
const (
	MalformedHeader ErrorKind = iota + 1
	UnsupportedColorCount
	UnsupportedEncoding
	UnknownColorRole
	MalformedColorSpec
	DuplicateColorRequest
	DuplicateColorID
	ColorAllocationFailed
	UnknownColorID
	ShortPixelRow
	LongPixelRow
	MissingRows
)

var kindNames = map[ErrorKind]string{
	MalformedHeader:       "malformed header",
	UnsupportedColorCount: "unsupported number of colors",
	UnsupportedEncoding:   "unsupported characters per pixel",
	UnknownColorRole:      "unknown color role",
	MalformedColorSpec:    "malformed color spec",
	DuplicateColorRequest: "multiple color specs for role",
	DuplicateColorID:      "color id defined twice",
	ColorAllocationFailed: "unable to allocate color",
	UnknownColorID:        "unknown color id",
	ShortPixelRow:         "pixel row too short",
	LongPixelRow:          "pixel row too long",
	MissingRows:           "not enough rows",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// DecodeError is returned for every decode failure. Line is the index of
// the offending row, or -1 when the failure is not tied to a row.
type DecodeError struct {
	Kind ErrorKind
	Line int
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	s := "xpm: " + e.Kind.String()
	if e.Line >= 0 {
		s += fmt.Sprintf(" at row %d", e.Line)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *DecodeError of the same kind, so the
// package sentinels can be used with errors.Is.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

func kindError(k ErrorKind) error {
	return &DecodeError{Kind: k, Line: -1}
}

// Sentinels for use with errors.Is.
var (
	ErrMalformedHeader       = kindError(MalformedHeader)
	ErrUnsupportedColorCount = kindError(UnsupportedColorCount)
	ErrUnsupportedEncoding   = kindError(UnsupportedEncoding)
	ErrUnknownColorRole      = kindError(UnknownColorRole)
	ErrMalformedColorSpec    = kindError(MalformedColorSpec)
	ErrDuplicateColorRequest = kindError(DuplicateColorRequest)
	ErrDuplicateColorID      = kindError(DuplicateColorID)
	ErrColorAllocationFailed = kindError(ColorAllocationFailed)
	ErrUnknownColorID        = kindError(UnknownColorID)
	ErrShortPixelRow         = kindError(ShortPixelRow)
	ErrLongPixelRow          = kindError(LongPixelRow)
	ErrMissingRows           = kindError(MissingRows)
)

func errorf(k ErrorKind, line int, format string, args ...interface{}) error {
	return &DecodeError{Kind: k, Line: line, Msg: fmt.Sprintf(format, args...)}
}
