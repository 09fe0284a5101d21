package wmc2d

import (
	"bytes"

	"github.com/bodgit/wmc2d/xpm"
)

// Dock apps are always this size
const (
	iconWidth  = 64
	iconHeight = 64
)

// Render decodes the named icon for the given colormap and depth,
// allocating its colors through svc.
func (w *Wmc2d) Render(name string, svc xpm.ColorService, colormap uint32, depth uint8, withMask bool) (*xpm.Image, error) {
	b, err := w.db.Icon(name)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrIconNotFound
	}

	rows, err := xpm.ReadRows(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return xpm.Decode(svc, colormap, depth, rows, withMask)
}

// LoadIcon is like Render but never fails. When the icon can't be
// rendered a warning is logged and a dock sized placeholder filled with
// background is returned instead.
func (w *Wmc2d) LoadIcon(name string, svc xpm.ColorService, colormap uint32, depth uint8, withMask bool, background uint32) *xpm.Image {
	m, err := w.Render(name, svc, colormap, depth, withMask)
	if err != nil {
		w.logger.WithField("name", name).WithError(err).Warn("Using placeholder icon")
		return xpm.Placeholder(iconWidth, iconHeight, depth, background, withMask)
	}
	return m
}
