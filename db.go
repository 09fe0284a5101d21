package wmc2d

import (
	"bytes"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoders for import
	_ "image/jpeg" // register decoders for import
	_ "image/png"  // register decoders for import
	"io"
	"io/ioutil"

	"github.com/bodgit/wmc2d/xpm"
	_ "github.com/mattn/go-sqlite3"
	_ "golang.org/x/image/bmp" // register decoders for import
)

// IconDB stores XPM artwork by name. Identical artwork imported under
// several names is only stored once.
type IconDB struct {
	db *sql.DB
}

// IconInfo describes a stored icon.
type IconInfo struct {
	Name   string
	SHA1   string
	Width  int
	Height int
}

// NewIconDB opens or creates the database in file.
func NewIconDB(file string) (*IconDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	// Writes happen from several goroutines during a scan
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS xpm (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS icon (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, xpm_id INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, FOREIGN KEY(xpm_id) REFERENCES xpm(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &IconDB{
		db: db,
	}, nil
}

func (db *IconDB) Close() error {
	return db.db.Close()
}

// imageError marks input that isn't usable artwork, as opposed to a
// failure to read it
type imageError struct {
	err error
}

func (e *imageError) Error() string {
	return "unusable image: " + e.err.Error()
}

func (e *imageError) Unwrap() error {
	return e.err
}

// decodeImage decodes b in any registered format. Plain XPM rows have no
// magic to sniff so they are tried last.
func decodeImage(b []byte) (image.Image, string, error) {
	m, format, err := image.Decode(bytes.NewReader(b))
	if err == nil {
		return m, format, nil
	}
	if errors.Is(err, image.ErrFormat) {
		if m, xerr := xpm.DecodeImage(bytes.NewReader(b)); xerr == nil {
			return m, "xpm", nil
		}
	}
	return nil, "", &imageError{err}
}

// encodeIcon returns r as XPM source. XPM input is kept as is, anything
// else the image package can decode is converted.
func encodeIcon(name string, r io.Reader) ([]byte, image.Config, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, image.Config{}, err
	}

	m, format, err := decodeImage(b)
	if err != nil {
		return nil, image.Config{}, err
	}

	config := image.Config{
		ColorModel: m.ColorModel(),
		Width:      m.Bounds().Dx(),
		Height:     m.Bounds().Dy(),
	}

	if format == "xpm" {
		return b, config, nil
	}

	buf := new(bytes.Buffer)
	if err := xpm.Encode(buf, m, name); err != nil {
		return nil, image.Config{}, &imageError{err}
	}
	return buf.Bytes(), config, nil
}

// AddIcon stores the image read from r under name, replacing any icon
// already using that name. It returns the SHA-1 of the stored XPM source.
func (db *IconDB) AddIcon(name string, r io.Reader) (string, error) {
	b, config, err := encodeIcon(name, r)
	if err != nil {
		return "", err
	}
	sha := fmt.Sprintf("%X", sha1.Sum(b))

	tx, err := db.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var id int64
	switch err := tx.QueryRow("SELECT id FROM xpm WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO xpm (sha1, data) VALUES (?, ?)", sha, b)
		if err != nil {
			return "", err
		}
		if id, err = result.LastInsertId(); err != nil {
			return "", err
		}
	case nil:
	default:
		return "", err
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO icon (name, xpm_id, width, height) VALUES (?, ?, ?, ?)", name, id, config.Width, config.Height); err != nil {
		return "", err
	}

	if err := prune(tx); err != nil {
		return "", err
	}

	return sha, tx.Commit()
}

// prune removes artwork no longer referenced by any icon
func prune(tx *sql.Tx) error {
	_, err := tx.Exec("DELETE FROM xpm WHERE id NOT IN (SELECT xpm_id FROM icon)")
	return err
}

// Icon returns the XPM source of the named icon, or nil if there is no
// such icon.
func (db *IconDB) Icon(name string) ([]byte, error) {
	var b []byte
	switch err := db.db.QueryRow("SELECT x.data FROM icon AS i JOIN xpm AS x ON i.xpm_id = x.id WHERE i.name = ?", name).Scan(&b); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return b, nil
	default:
		return nil, err
	}
}

// Icons lists every stored icon ordered by name.
func (db *IconDB) Icons() ([]IconInfo, error) {
	rows, err := db.db.Query("SELECT i.name, x.sha1, i.width, i.height FROM icon AS i JOIN xpm AS x ON i.xpm_id = x.id ORDER BY i.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var icons []IconInfo
	for rows.Next() {
		var info IconInfo
		if err := rows.Scan(&info.Name, &info.SHA1, &info.Width, &info.Height); err != nil {
			return nil, err
		}
		icons = append(icons, info)
	}
	return icons, rows.Err()
}

// DeleteIcon removes the named icon, reporting whether it existed.
func (db *IconDB) DeleteIcon(name string) (bool, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec("DELETE FROM icon WHERE name = ?", name)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := prune(tx); err != nil {
		return false, err
	}

	return n > 0, tx.Commit()
}
