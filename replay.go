package nbgl

import (
	"fmt"
	"io"

	"github.com/hwsim/nbgl/capture"
)

// Replay feeds a recorded command stream through the renderer in order.
// Commands are strictly sequential; later commands may paint over earlier
// ones, so ordering is a correctness contract. The first decode error stops
// the replay.
func (r *Renderer) Replay(rd io.Reader) error {
	cr := capture.NewReader(rd)
	for {
		op, payload, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch op {
		case capture.OpDrawRect:
			err = r.DrawRect(payload)
		case capture.OpRefresh:
			err = r.Refresh(payload)
		case capture.OpDrawLine:
			err = r.DrawLine(payload)
		case capture.OpDrawImage:
			err = r.DrawImage(payload)
		case capture.OpDrawImageFile:
			err = r.DrawImageFile(payload)
		default:
			err = fmt.Errorf("nbgl: unknown opcode %#02x", op)
		}
		if err != nil {
			return err
		}
	}
}
