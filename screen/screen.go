/*
Package screen provides the reference framebuffer NBGL draw commands render
into.

The screen is double buffered the way the device's display controller is:
draw commands paint a back buffer and only a refresh publishes the affected
region to the visible image. Screenshot comparison therefore sees exactly
what the physical display would show, never a half painted frame.
*/
package screen

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
)

// Screen is a double buffered framebuffer. It implements the renderer's
// FrameSink contract.
type Screen struct {
	back    *image.RGBA
	visible *image.RGBA
}

// New returns a Screen of the given dimensions with both buffers black.
func New(width, height int) *Screen {
	r := image.Rect(0, 0, width, height)
	s := &Screen{
		back:    image.NewRGBA(r),
		visible: image.NewRGBA(r),
	}
	draw.Draw(s.back, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(s.visible, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
	return s
}

// SetPixel paints a 24-bit RGB pixel into the back buffer. Out of range
// coordinates are clipped silently; the rotation traversal of the real
// controller oversteps the right edge of its area by one column and the
// display absorbs it.
func (s *Screen) SetPixel(x, y int, rgb uint32) {
	if !(image.Point{x, y}.In(s.back.Rect)) {
		return
	}
	s.back.SetRGBA(x, y, color.RGBA{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
		A: 0xff,
	})
}

// FlushRegion publishes a rectangle of the back buffer to the visible image.
func (s *Screen) FlushRegion(x, y, w, h int) {
	r := image.Rect(x, y, x+w, y+h).Intersect(s.back.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(s.visible, r, s.back, r.Min, draw.Src)
}

// Image returns the visible framebuffer.
func (s *Screen) Image() *image.RGBA {
	return s.visible
}

// Bounds returns the screen rectangle.
func (s *Screen) Bounds() image.Rectangle {
	return s.back.Rect
}

// WritePNG encodes the visible framebuffer as PNG.
func (s *Screen) WritePNG(w io.Writer) error {
	return png.Encode(w, s.visible)
}

// Equal reports whether two images have identical bounds sizes and pixels.
// It is the pixel-for-pixel comparison UI regression tests rely on.
func Equal(a, b image.Image) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return false
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ar, ag, abl, aa := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			br, bg, bbl, ba := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if ar != br || ag != bg || abl != bbl || aa != ba {
				return false
			}
		}
	}
	return true
}
