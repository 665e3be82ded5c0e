package nbgl

import (
	"bytes"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/hwsim/nbgl/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCapture(t *testing.T, file string, color uint8) {
	t.Helper()

	area := Area{X0: 0, Y0: 0, Width: 8, Height: 8, Color: color}
	rect, err := BuildDrawRect(area)
	require.NoError(t, err)
	refresh, err := BuildRefresh(area)
	require.NoError(t, err)

	var b bytes.Buffer
	w := capture.NewWriter(&b)
	require.NoError(t, w.Record(capture.OpDrawRect, rect))
	require.NoError(t, w.Record(capture.OpRefresh, refresh))

	require.NoError(t, ioutil.WriteFile(file, b.Bytes(), 0644))
}

func testVerifier(t *testing.T) (*Verifier, *GoldenDB, string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "nbgl")
	require.NoError(t, err)

	db, err := OpenGoldenDB(filepath.Join(dir, "golden.db"))
	require.NoError(t, err)

	v := NewVerifier(db, 64, 64, false, log.New(ioutil.Discard, "", 0))
	return v, db, dir, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func TestVerifierRender(t *testing.T) {
	v, _, dir, done := testVerifier(t)
	defer done()

	file := filepath.Join(dir, "white-square.nbgl")
	writeCapture(t, file, 3)

	scr, err := v.Render(file)
	require.NoError(t, err)

	m := scr.Image()
	c := m.RGBAAt(0, 0)
	assert.Equal(t, uint8(0xff), c.R)
	assert.Equal(t, uint8(0xff), c.G)
	assert.Equal(t, uint8(0xff), c.B)
}

func TestVerifierScan(t *testing.T) {
	v, db, dir, done := testVerifier(t)
	defer done()

	captures := filepath.Join(dir, "captures")
	require.NoError(t, os.Mkdir(captures, 0755))

	for name, color := range map[string]uint8{"white-square": 3, "gray-square": 1} {
		file := filepath.Join(captures, name+CaptureExt)
		writeCapture(t, file, color)

		scr, err := v.Render(file)
		require.NoError(t, err)
		require.NoError(t, db.Put(name, scr.Image()))
	}

	assert.NoError(t, v.Scan(captures))
}

func TestVerifierScanMismatch(t *testing.T) {
	v, db, dir, done := testVerifier(t)
	defer done()

	file := filepath.Join(dir, "white-square"+CaptureExt)
	writeCapture(t, file, 3)

	// Golden rendered from a different capture.
	other := filepath.Join(dir, "other.tmp")
	writeCapture(t, other, 1)
	scr, err := v.Render(other)
	require.NoError(t, err)
	require.NoError(t, db.Put("white-square", scr.Image()))

	assert.EqualError(t, v.Scan(dir), "1 screenshot mismatches")
}

func TestVerifierScanMissingGolden(t *testing.T) {
	v, _, dir, done := testVerifier(t)
	defer done()

	writeCapture(t, filepath.Join(dir, "unnamed"+CaptureExt), 2)

	assert.Error(t, v.Scan(dir))
}
