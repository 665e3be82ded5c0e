package nbgl

import (
	"encoding/binary"
	"fmt"
)

// DrawRect fills the area with its two bit base color. Fill order is not
// observable so it runs column by column like the hardware blitter.
func (r *Renderer) DrawRect(data []byte) error {
	var area Area
	if err := area.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("draw rect: %w", err)
	}
	if r.forceFullOCR {
		// Text legibility mode: everything paints black on white.
		area.Color = 3
	}
	if err := area.validate(r.width, r.height); err != nil {
		return fmt.Errorf("draw rect: %w", err)
	}
	rgb := grayColor(area.Color, 2)
	for x := int(area.X0); x < int(area.X0)+int(area.Width); x++ {
		for y := int(area.Y0); y < int(area.Y0)+int(area.Height); y++ {
			r.sink.SetPixel(x, y, rgb)
		}
	}
	return nil
}

// Refresh marks a previously painted rectangle presentable. It writes no
// pixels of its own.
func (r *Renderer) Refresh(data []byte) error {
	var area Area
	if err := area.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := area.validate(r.width, r.height); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	r.sink.FlushRegion(int(area.X0), int(area.Y0), int(area.Width), int(area.Height))
	return nil
}

// DrawLine fills the area row by row, picking the trailing front color for
// rows whose bit is set in the trailing mask and the area's base color
// otherwise. Areas taller than the eight bit mask repeat nothing: rows past
// bit 7 read a zero bit.
func (r *Renderer) DrawLine(data []byte) error {
	var area Area
	if err := area.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("draw line: %w", err)
	}
	if len(data) < AreaSize+2 {
		return fmt.Errorf("draw line: %w: missing mask and color", ErrTruncatedPayload)
	}
	if err := area.validate(r.width, r.height); err != nil {
		return fmt.Errorf("draw line: %w", err)
	}
	mask := data[len(data)-2]
	back := grayColor(area.Color, 2)
	front := grayColor(data[len(data)-1], 2)
	for x := int(area.X0); x < int(area.X0)+int(area.Width); x++ {
		for y := int(area.Y0); y < int(area.Y0)+int(area.Height); y++ {
			if mask>>uint(y-int(area.Y0))&0x1 != 0 {
				r.sink.SetPixel(x, y, front)
			} else {
				r.sink.SetPixel(x, y, back)
			}
		}
	}
	return nil
}

// DrawImage blits a raw bit-packed image buffer onto the area. The buffer is
// followed on the wire by a transformation code and a color map byte.
func (r *Renderer) DrawImage(data []byte) error {
	var area Area
	if err := area.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	if err := area.validate(r.width, r.height); err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	bpp, err := readBPP(area.BPP)
	if err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	size := int(area.Width) * int(area.Height) * bpp / 8
	if len(data) < AreaSize+size+2 {
		return fmt.Errorf("draw image: %w: need %d bytes, have %d", ErrTruncatedPayload, AreaSize+size+2, len(data))
	}
	buf := data[AreaSize : AreaSize+size]
	t := Transform(data[AreaSize+size])
	colorMap := data[AreaSize+size+1]
	if err := r.blit(area, buf, bpp, t, colorMap); err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	return nil
}

// blit expands the packed buffer field by field, MSB first within each byte,
// and writes the resolved colors through the sink in traversal order. The
// caller has already validated the area.
func (r *Renderer) blit(area Area, buf []byte, bpp int, t Transform, colorMap uint8) error {
	if r.forceFullOCR && colorMap == 3 {
		// Text legibility mode again: map 3 marks text glyphs.
		area.Color = 3
		colorMap = 0
	}
	cur, err := newCursor(area, t)
	if err != nil {
		return err
	}
	bitStep := bpp
	mask := uint8(1)<<uint(bpp) - 1
	if bpp == 1 {
		// A one bit source picks between two palette entries keyed by the
		// area's base color: fold the base color into the map and resolve
		// each bit at two bit depth.
		colorMap = colorMap<<2 | area.Color
		bpp = 2
	}
	for _, b := range buf {
		for i := 0; i < 8; i += bitStep {
			nib := b >> uint(8-bitStep-i) & mask
			var rgb uint32
			if colorMap != 0 && bpp < 4 {
				rgb = mapColor(nib, colorMap)
			} else {
				rgb = grayColor(nib, bpp)
			}
			r.sink.SetPixel(cur.x, cur.y, rgb)
			cur.advance()
		}
	}
	return nil
}

// DrawImageFile blits an image file object. The ten byte header carries only
// the position; the real width, height and depth follow it, along with a
// compression flag. Compressed payloads are chunked gzip streams reassembled
// by inflateChunks before blitting.
func (r *Renderer) DrawImageFile(data []byte) error {
	var area Area
	if err := area.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("draw image file: %w", err)
	}
	if err := area.validate(r.width, r.height); err != nil {
		return fmt.Errorf("draw image file: %w", err)
	}
	rest := data[AreaSize:]
	if len(rest) < 8 {
		return fmt.Errorf("draw image file: %w: short file header", ErrTruncatedPayload)
	}
	area.Width = binary.LittleEndian.Uint16(rest[0:])
	area.Height = binary.LittleEndian.Uint16(rest[2:])
	area.BPP = rest[4] >> 4
	compressed := rest[4]&0xF != 0
	bpp, err := readBPP(area.BPP)
	if err != nil {
		return fmt.Errorf("draw image file: %w", err)
	}

	pixelBytes := int(area.Width) * int(area.Height) * bpp / 8
	size := pixelBytes
	if compressed {
		size = int(rest[5]) | int(rest[6])<<8 | int(rest[7])<<16
	}
	if len(rest) < 8+size {
		return fmt.Errorf("draw image file: %w: need %d buffer bytes, have %d", ErrTruncatedPayload, size, len(rest)-8)
	}
	buf := rest[8 : 8+size]
	if err := area.validate(r.width, r.height); err != nil {
		return fmt.Errorf("draw image file: %w", err)
	}

	if !compressed {
		if len(rest) < 8+size+2 {
			return fmt.Errorf("draw image file: %w: missing transformation and color map", ErrTruncatedPayload)
		}
		t := Transform(rest[8+size])
		colorMap := rest[8+size+1]
		if err := r.blit(area, buf, bpp, t, colorMap); err != nil {
			return fmt.Errorf("draw image file: %w", err)
		}
		return nil
	}

	out, err := inflateChunks(buf)
	if err != nil {
		return fmt.Errorf("draw image file: %w", err)
	}
	if len(out) < pixelBytes {
		return fmt.Errorf("draw image file: %w: inflated %d bytes, area needs %d", ErrCorruptTile, len(out), pixelBytes)
	}
	// The compressed encoding carries no usable transformation byte; the
	// controller always blits it untransformed and the color map rides as
	// the final byte of the wire payload.
	colorMap := data[len(data)-1]
	if err := r.blit(area, out[:pixelBytes], bpp, TransformNone, colorMap); err != nil {
		return fmt.Errorf("draw image file: %w", err)
	}
	return nil
}
