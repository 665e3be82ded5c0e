package nbgl

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// AreaSize is the encoded size of an Area header in bytes.
const AreaSize = 10

// Errors surfaced by the decoder. All of them are fatal to the enclosing
// command: they indicate desynchronization with the firmware, not a
// recoverable condition.
var (
	ErrMisalignedArea       = errors.New("nbgl: area not 4-aligned")
	ErrOutOfBounds          = errors.New("nbgl: area outside screen")
	ErrUnsupportedDepth     = errors.New("nbgl: unsupported pixel depth")
	ErrUnsupportedTransform = errors.New("nbgl: unsupported transformation")
	ErrCorruptTile          = errors.New("nbgl: corrupt compressed tile")
	ErrTruncatedPayload     = errors.New("nbgl: truncated payload")
)

// Area is the rectangle descriptor prefixed to most draw commands: position,
// size, base color and pixel depth, packed little-endian into ten bytes. It
// implements the encoding.BinaryMarshaler and encoding.BinaryUnmarshaler
// interfaces.
type Area struct {
	X0     uint16
	Y0     uint16
	Width  uint16
	Height uint16
	Color  uint8
	BPP    uint8
}

// UnmarshalBinary decodes the wire header from the front of b.
func (a *Area) UnmarshalBinary(b []byte) error {
	if len(b) < AreaSize {
		return fmt.Errorf("%w: area header needs %d bytes, have %d", ErrTruncatedPayload, AreaSize, len(b))
	}
	a.X0 = binary.LittleEndian.Uint16(b[0:])
	a.Y0 = binary.LittleEndian.Uint16(b[2:])
	a.Width = binary.LittleEndian.Uint16(b[4:])
	a.Height = binary.LittleEndian.Uint16(b[6:])
	a.Color = b[8]
	a.BPP = b[9]
	return nil
}

// MarshalBinary encodes the header into its ten byte wire form.
func (a Area) MarshalBinary() ([]byte, error) {
	b := make([]byte, AreaSize)
	binary.LittleEndian.PutUint16(b[0:], a.X0)
	binary.LittleEndian.PutUint16(b[2:], a.Y0)
	binary.LittleEndian.PutUint16(b[4:], a.Width)
	binary.LittleEndian.PutUint16(b[6:], a.Height)
	b[8] = a.Color
	b[9] = a.BPP
	return b, nil
}

// validate enforces the controller's alignment and bounds rules before any
// pixel is written. The display DMAs whole four pixel rows, so y0 and height
// must be multiples of four. A failure here means the decoder has lost sync
// with the firmware; it is fatal to the command, never retried.
func (a Area) validate(screenW, screenH int) error {
	if a.Y0%4 != 0 || a.Height%4 != 0 {
		return fmt.Errorf("%w: y0=%d height=%d", ErrMisalignedArea, a.Y0, a.Height)
	}
	if int(a.X0)+int(a.Width) > screenW {
		return fmt.Errorf("%w: right edge %d past %d", ErrOutOfBounds, int(a.X0)+int(a.Width), screenW)
	}
	if int(a.Y0)+int(a.Height) > screenH {
		return fmt.Errorf("%w: bottom edge %d past %d", ErrOutOfBounds, int(a.Y0)+int(a.Height), screenH)
	}
	return nil
}
