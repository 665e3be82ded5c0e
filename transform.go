package nbgl

import "fmt"

// Transform selects the order the pixels of a blitted buffer are written to
// the framebuffer. The firmware encodes image buffers in this order, so
// replaying it reproduces the mirror or rotation without touching the data.
type Transform uint8

const (
	TransformNone Transform = iota
	TransformHMirror
	TransformVMirror
	TransformHVMirror
	TransformRotate90
)

// cursor walks the coordinates of an area in the order dictated by a
// transformation code. Every order except Rotate90 is column-major.
type cursor struct {
	area Area
	t    Transform
	x, y int
}

func newCursor(area Area, t Transform) (*cursor, error) {
	if t > TransformRotate90 {
		return nil, fmt.Errorf("%w: code %d", ErrUnsupportedTransform, t)
	}
	c := &cursor{area: area, t: t}
	c.reset()
	return c, nil
}

// reset moves the cursor back to the first coordinate of its order.
func (c *cursor) reset() {
	x0, y0 := int(c.area.X0), int(c.area.Y0)
	w, h := int(c.area.Width), int(c.area.Height)
	switch c.t {
	case TransformNone:
		c.x, c.y = x0+w-1, y0
	case TransformHMirror:
		c.x, c.y = x0+w-1, y0+h-1
	case TransformVMirror:
		c.x, c.y = x0, y0
	case TransformHVMirror:
		c.x, c.y = x0, y0+h-1
	case TransformRotate90:
		c.x, c.y = x0, y0
	}
}

// advance steps to the coordinate the next pixel lands on.
func (c *cursor) advance() {
	x0, y0 := int(c.area.X0), int(c.area.Y0)
	w, h := int(c.area.Width), int(c.area.Height)
	switch c.t {
	case TransformNone:
		if c.y < y0+h-1 {
			c.y++
		} else {
			c.y = y0
			c.x--
		}
	case TransformHMirror:
		if c.y > y0 {
			c.y--
		} else {
			c.y = y0 + h - 1
			c.x--
		}
	case TransformVMirror:
		if c.y < y0+h-1 {
			c.y++
		} else {
			c.y = y0
			c.x++
		}
	case TransformHVMirror:
		if c.y > y0 {
			c.y--
		} else {
			c.y = y0 + h - 1
			c.x++
		}
	case TransformRotate90:
		// The rotation path on the real controller is row-major and wraps
		// one column late: after painting x0+width-1 the cursor still steps
		// to x0+width before resetting, so each row spans width+1 slots.
		// Kept bit-exact; see the traversal tests.
		if c.x < x0+w {
			c.x++
		} else {
			c.x = x0
			c.y++
		}
	}
}
