package nbgl

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io/ioutil"
)

// inflateChunks reassembles an image buffer from the chunked stream the
// firmware emits for large images: each chunk is a little-endian u16 length
// followed by that many bytes of an independent gzip stream. The inflated
// chunks concatenate into the logical pixel buffer. Any truncation or
// inflate failure discards the whole buffer.
func inflateChunks(b []byte) ([]byte, error) {
	var out bytes.Buffer
	for len(b) > 0 {
		if len(b) < 2 {
			return nil, fmt.Errorf("%w: truncated chunk length", ErrCorruptTile)
		}
		n := int(binary.LittleEndian.Uint16(b))
		b = b[2:]
		if n > len(b) {
			return nil, fmt.Errorf("%w: chunk length %d exceeds remaining %d bytes", ErrCorruptTile, n, len(b))
		}
		zr, err := gzip.NewReader(bytes.NewReader(b[:n]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptTile, err)
		}
		p, err := ioutil.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptTile, err)
		}
		out.Write(p)
		b = b[n:]
	}
	return out.Bytes(), nil
}
