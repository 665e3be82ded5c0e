package nbgl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreaUnmarshalBinary(t *testing.T) {
	b := []byte{0x34, 0x12, 0x04, 0x00, 0x40, 0x01, 0x08, 0x00, 0x02, 0x01}

	var a Area
	require.NoError(t, a.UnmarshalBinary(b))

	assert.Equal(t, Area{
		X0:     0x1234,
		Y0:     4,
		Width:  320,
		Height: 8,
		Color:  2,
		BPP:    1,
	}, a)
}

func TestAreaUnmarshalBinaryShort(t *testing.T) {
	var a Area
	err := a.UnmarshalBinary(make([]byte, AreaSize-1))
	assert.True(t, errors.Is(err, ErrTruncatedPayload))
}

func TestAreaMarshalRoundTrip(t *testing.T) {
	in := Area{X0: 10, Y0: 12, Width: 100, Height: 40, Color: 3, BPP: 2}

	b, err := in.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, AreaSize)

	var out Area
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
}

func TestAreaValidate(t *testing.T) {
	tests := []struct {
		name string
		area Area
		want error
	}{
		{"aligned in bounds", Area{X0: 0, Y0: 0, Width: 8, Height: 4}, nil},
		{"touching both edges", Area{X0: 392, Y0: 668, Width: 8, Height: 4}, nil},
		{"misaligned y0", Area{X0: 0, Y0: 1, Width: 8, Height: 4}, ErrMisalignedArea},
		{"misaligned height", Area{X0: 0, Y0: 0, Width: 8, Height: 5}, ErrMisalignedArea},
		{"right edge out", Area{X0: 399, Y0: 0, Width: 10, Height: 4}, ErrOutOfBounds},
		{"bottom edge out", Area{X0: 0, Y0: 672, Width: 8, Height: 4}, ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.area.validate(400, 672)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
			}
		})
	}
}
