package nbgl

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

// grayLevel reduces a color to the n-bit gray the controller can reproduce,
// using BT.601 luma weights.
func grayLevel(c color.Color, bpp int) uint8 {
	r, g, b, _ := c.RGBA()
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 16
	return uint8(y >> uint(16-bpp))
}

// EncodeImage packs m into an NBGL pixel buffer at the given depth, in the
// field order a blit with transformation t consumes. Images carrying more
// colors than the depth can express are quantized first. The returned buffer
// blitted at t onto an area of the same size reproduces m, reduced to
// grayscale.
func EncodeImage(m image.Image, bpp int, t Transform) ([]byte, error) {
	switch bpp {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedDepth, bpp)
	}

	b := m.Bounds()
	pm, ok := m.(*image.Paletted)
	if !ok || len(pm.Palette) > 1<<uint(bpp) {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 1<<uint(bpp)), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	levels := make([]uint8, len(pm.Palette))
	for i, c := range pm.Palette {
		levels[i] = grayLevel(c, bpp)
	}

	area := Area{Width: uint16(b.Dx()), Height: uint16(b.Dy())}
	cur, err := newCursor(area, t)
	if err != nil {
		return nil, err
	}

	fields := int(area.Width) * int(area.Height) * bpp / 8 * (8 / bpp)
	out := make([]byte, 0, fields*bpp/8)
	var acc uint8
	var nbits int
	for i := 0; i < fields; i++ {
		var v uint8
		// The rotation order walks one column past the right edge; those
		// slots encode as zero.
		if p := (image.Point{b.Min.X + cur.x, b.Min.Y + cur.y}); p.In(b) {
			v = levels[pm.ColorIndexAt(p.X, p.Y)]
		}
		acc = acc<<uint(bpp) | v
		nbits += bpp
		if nbits == 8 {
			out = append(out, acc)
			acc, nbits = 0, 0
		}
		cur.advance()
	}
	return out, nil
}

// BuildDrawRect returns the wire payload of a rectangle fill.
func BuildDrawRect(area Area) ([]byte, error) {
	return area.MarshalBinary()
}

// BuildRefresh returns the wire payload of a refresh.
func BuildRefresh(area Area) ([]byte, error) {
	return area.MarshalBinary()
}

// BuildDrawLine returns the wire payload of a masked line fill.
func BuildDrawLine(area Area, mask, frontColor uint8) ([]byte, error) {
	b, err := area.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(b, mask, frontColor), nil
}

// BuildDrawImage returns the wire payload of a raw image blit. The buffer
// length must match the area geometry at its depth.
func BuildDrawImage(area Area, buf []byte, t Transform, colorMap uint8) ([]byte, error) {
	bpp, err := readBPP(area.BPP)
	if err != nil {
		return nil, err
	}
	if want := int(area.Width) * int(area.Height) * bpp / 8; len(buf) != want {
		return nil, fmt.Errorf("nbgl: buffer is %d bytes, area needs %d", len(buf), want)
	}
	b, err := area.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = append(b, buf...)
	return append(b, uint8(t), colorMap), nil
}

// BuildDrawImageFile returns the wire payload of an image file blit. When
// chunkSize is zero the buffer is written raw; otherwise it is split into
// chunkSize slices, each gzip-compressed and length-prefixed.
func BuildDrawImageFile(area Area, buf []byte, t Transform, colorMap uint8, chunkSize int) ([]byte, error) {
	bpp, err := readBPP(area.BPP)
	if err != nil {
		return nil, err
	}
	if want := int(area.Width) * int(area.Height) * bpp / 8; len(buf) != want {
		return nil, fmt.Errorf("nbgl: buffer is %d bytes, area needs %d", len(buf), want)
	}
	b, err := area.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var hdr [8]byte
	binary.LittleEndian.PutUint16(hdr[0:], area.Width)
	binary.LittleEndian.PutUint16(hdr[2:], area.Height)
	hdr[4] = area.BPP << 4

	if chunkSize <= 0 {
		// The three size bytes ride along unused in the raw form; the
		// buffer always starts at the same offset.
		b = append(b, hdr[:]...)
		b = append(b, buf...)
		return append(b, uint8(t), colorMap), nil
	}

	var chunks bytes.Buffer
	for len(buf) > 0 {
		n := chunkSize
		if n > len(buf) {
			n = len(buf)
		}
		var z bytes.Buffer
		zw := gzip.NewWriter(&z)
		if _, err := zw.Write(buf[:n]); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		if z.Len() > maxChunk {
			return nil, fmt.Errorf("nbgl: compressed chunk is %d bytes, limit %d", z.Len(), maxChunk)
		}
		var prefix [2]byte
		binary.LittleEndian.PutUint16(prefix[:], uint16(z.Len()))
		chunks.Write(prefix[:])
		chunks.Write(z.Bytes())
		buf = buf[n:]
	}

	hdr[4] |= 1
	hdr[5] = uint8(chunks.Len())
	hdr[6] = uint8(chunks.Len() >> 8)
	hdr[7] = uint8(chunks.Len() >> 16)
	b = append(b, hdr[:]...)
	b = append(b, chunks.Bytes()...)
	return append(b, uint8(t), colorMap), nil
}

const maxChunk = 1<<16 - 1
