/*
Package capture implements the on-disk format for recorded NBGL command
streams.

A capture is a flat sequence of records, each a one byte opcode followed by a
little-endian u16 payload length and the raw command payload exactly as the
firmware issued it. Replaying a capture through the renderer reproduces the
recorded frame.
*/
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcodes identifying which decode entry point a record's payload belongs to.
const (
	OpDrawRect uint8 = iota
	OpRefresh
	OpDrawLine
	OpDrawImage
	OpDrawImageFile
)

const maxPayload = 1<<16 - 1

var errPayloadTooLarge = errors.New("capture: payload exceeds 65535 bytes")

// Reader reads capture records from a stream.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader consuming records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next record. It returns io.EOF at a clean end of stream
// and io.ErrUnexpectedEOF wrapped with context when a record is cut short.
func (r *Reader) Next() (uint8, []byte, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r.r, hdr[:1]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("capture: reading opcode: %w", err)
	}
	if _, err := io.ReadFull(r.r, hdr[1:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, fmt.Errorf("capture: reading record length: %w", err)
	}
	payload := make([]byte, binary.LittleEndian.Uint16(hdr[1:]))
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, fmt.Errorf("capture: reading %d byte payload: %w", len(payload), err)
	}
	return hdr[0], payload, nil
}

// Writer appends capture records to a stream.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer appending records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Record appends one record.
func (w *Writer) Record(op uint8, payload []byte) error {
	if len(payload) > maxPayload {
		return errPayloadTooLarge
	}
	var hdr [3]byte
	hdr[0] = op
	binary.LittleEndian.PutUint16(hdr[1:], uint16(len(payload)))
	if _, err := w.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.w.Write(payload)
	return err
}
