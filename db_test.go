package nbgl

import (
	"image"
	"image/color"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempGoldenDB(t *testing.T) (*GoldenDB, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "nbgl")
	require.NoError(t, err)

	db, err := OpenGoldenDB(filepath.Join(dir, "golden.db"))
	require.NoError(t, err)

	return db, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func testImage(seed uint8) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(x*4+y) + seed
			m.SetRGBA(x, y, color.RGBA{v, v, v, 0xff})
		}
	}
	return m
}

func TestGoldenDBPutAndGolden(t *testing.T) {
	db, done := tempGoldenDB(t)
	defer done()

	want := testImage(0)
	require.NoError(t, db.Put("boot-screen", want))

	got, err := db.Golden("boot-screen")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Pix, got.Pix)
}

func TestGoldenDBGoldenMissing(t *testing.T) {
	db, done := tempGoldenDB(t)
	defer done()

	got, err := db.Golden("no-such")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGoldenDBVerify(t *testing.T) {
	db, done := tempGoldenDB(t)
	defer done()

	require.NoError(t, db.Put("boot-screen", testImage(0)))

	ok, err := db.Verify("boot-screen", testImage(0))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.Verify("boot-screen", testImage(1))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.Verify("no-such", testImage(0))
	assert.Error(t, err)
}

func TestGoldenDBPutReplaces(t *testing.T) {
	db, done := tempGoldenDB(t)
	defer done()

	require.NoError(t, db.Put("boot-screen", testImage(0)))
	require.NoError(t, db.Put("boot-screen", testImage(7)))

	ok, err := db.Verify("boot-screen", testImage(7))
	require.NoError(t, err)
	assert.True(t, ok)
}
