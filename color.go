package nbgl

import "fmt"

// readBPP maps the two bit wire depth code to bits per pixel. Code 3 is
// reserved and rejected.
func readBPP(code uint8) (int, error) {
	switch code {
	case 0:
		return 1, nil
	case 1:
		return 2, nil
	case 2:
		return 4, nil
	}
	return 0, fmt.Errorf("%w: depth code %d", ErrUnsupportedDepth, code)
}

// grayColor expands an n-bit pixel value to 24-bit RGB. The scale is chosen
// so the full-range value of each depth lands on white.
func grayColor(v uint8, bpp int) uint32 {
	switch bpp {
	case 1:
		return uint32(v) * 0xFFFFFF
	case 2:
		return uint32(v) * 0x555555
	case 4:
		return uint32(v) * 0x111111
	}
	return 0
}

// mapColor looks v up in the four entry packed palette. Map entries are two
// bit grays regardless of the depth of the buffer being decoded.
func mapColor(v, colorMap uint8) uint32 {
	return grayColor(colorMap>>(v*2)&0x3, 2)
}
