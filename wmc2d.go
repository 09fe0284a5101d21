/*
Package wmc2d maintains the artwork of the wmc2d dock app.

Artwork is kept as XPM source in an sqlite database, imported from XPM or
any other image format the image package can decode, and rendered for a
target colormap and depth with the xpm package.
*/
package wmc2d

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrIconNotFound is returned when a named icon is not in the database.
var ErrIconNotFound = errors.New("icon not found")

type Wmc2d struct {
	db      *IconDB
	logger  *logrus.Logger
	workers int
}

// New opens the icon database in file. The logger receives progress and
// warnings.
func New(file string, logger *logrus.Logger) (*Wmc2d, error) {
	db, err := NewIconDB(file)
	if err != nil {
		return nil, err
	}
	return &Wmc2d{
		db:      db,
		logger:  logger,
		workers: runtime.NumCPU(),
	}, nil
}

// SetWorkers sets how many files Scan imports concurrently.
func (w *Wmc2d) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	w.workers = n
}

func (w *Wmc2d) Close() error {
	return w.db.Close()
}

func iconName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

func (w *Wmc2d) importFile(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	name := iconName(file)
	sha, err := w.db.AddIcon(name, f)
	if err != nil {
		return err
	}
	w.logger.WithFields(logrus.Fields{"file": file, "name": name, "sha1": sha}).Info("Imported icon")
	return nil
}

// Import stores each file as an icon named after the file without its
// extension.
func (w *Wmc2d) Import(files ...string) error {
	for _, file := range files {
		if err := w.importFile(file); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the XPM source of the named icon to out.
func (w *Wmc2d) Export(name string, out io.Writer) error {
	b, err := w.db.Icon(name)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrIconNotFound
	}
	_, err = out.Write(b)
	return err
}

// Icons lists the stored icons.
func (w *Wmc2d) Icons() ([]IconInfo, error) {
	return w.db.Icons()
}

// Delete removes the named icon.
func (w *Wmc2d) Delete(name string) error {
	ok, err := w.db.DeleteIcon(name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIconNotFound
	}
	w.logger.WithField("name", name).Info("Deleted icon")
	return nil
}
