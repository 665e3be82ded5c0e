package nbgl

import (
	"bytes"
	"database/sql"
	"fmt"
	"hash/crc32"
	"image"
	"image/draw"
	"image/png"

	_ "github.com/mattn/go-sqlite3"
)

// GoldenDB stores named reference screenshots for UI regression comparison.
// Each golden keeps both its PNG and a CRC of the raw pixels so a verify can
// short-circuit on the checksum before falling back to a pixel compare.
type GoldenDB struct {
	db *sql.DB
}

// OpenGoldenDB opens or creates the database at file.
func OpenGoldenDB(file string) (*GoldenDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS golden (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, crc TEXT NOT NULL, png BLOB NOT NULL)"); err != nil {
		return nil, err
	}

	return &GoldenDB{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (db *GoldenDB) Close() error {
	return db.db.Close()
}

// checksumImage computes the big-endian hex IEEE CRC over the raw RGBA rows,
// top to bottom, ignoring stride padding.
func checksumImage(m *image.RGBA) string {
	h := crc32.NewIEEE()
	w := m.Rect.Dx() * 4
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		o := m.PixOffset(m.Rect.Min.X, y)
		h.Write(m.Pix[o : o+w])
	}
	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil))
}

// Put stores m as the golden screenshot for name, replacing any previous one.
func (db *GoldenDB) Put(name string, m *image.RGBA) error {
	b := new(bytes.Buffer)
	if err := png.Encode(b, m); err != nil {
		return err
	}
	_, err := db.db.Exec("INSERT OR REPLACE INTO golden (name, crc, png) VALUES (?, ?, ?)", name, checksumImage(m), b.Bytes())
	return err
}

// Golden returns the stored screenshot for name, or nil if there is none.
func (db *GoldenDB) Golden(name string) (*image.RGBA, error) {
	var blob []byte
	switch err := db.db.QueryRow("SELECT png FROM golden WHERE name = ?", name).Scan(&blob); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}
	m, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	if rgba, ok := m.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(m.Bounds())
	draw.Draw(rgba, rgba.Rect, m, m.Bounds().Min, draw.Src)
	return rgba, nil
}

// Verify reports whether m matches the golden stored for name. A missing
// golden is an error rather than a mismatch so a renamed scenario fails
// loudly.
func (db *GoldenDB) Verify(name string, m *image.RGBA) (bool, error) {
	var crc string
	switch err := db.db.QueryRow("SELECT crc FROM golden WHERE name = ?", name).Scan(&crc); err {
	case sql.ErrNoRows:
		return false, fmt.Errorf("nbgl: no golden screenshot named %q", name)
	case nil:
	default:
		return false, err
	}
	return crc == checksumImage(m), nil
}
