/*
Package nbgl emulates the NBGL display sub-controller of a secure hardware
device. It decodes the binary drawing protocol issued by firmware under
emulation (rectangle fills, masked line fills, raw and gzip-compressed image
blits) and renders it through a FrameSink, pixel for pixel as the physical
controller would, so screenshot regression tests behave identically on
hardware and under emulation.
*/
package nbgl

import "log"

// FrameSink is the surface draw commands render onto. SetPixel paints a
// single 24-bit RGB pixel into the back buffer; FlushRegion marks a
// rectangle of previously painted pixels presentable.
type FrameSink interface {
	SetPixel(x, y int, rgb uint32)
	FlushRegion(x, y, w, h int)
}

// Renderer decodes NBGL draw commands and paints them onto a FrameSink.
// It holds no state across commands beyond the screen geometry and the
// force-full-OCR flag, both fixed at construction.
type Renderer struct {
	sink          FrameSink
	width, height int
	forceFullOCR  bool
	logger        *log.Logger
}

// New returns a Renderer for a screen of the given dimensions. When
// forceFullOCR is set every fill takes color 3 and any image blit carrying
// color map 3 is redrawn black on white, so text stays machine readable.
func New(sink FrameSink, width, height int, forceFullOCR bool, logger *log.Logger) *Renderer {
	return &Renderer{
		sink:         sink,
		width:        width,
		height:       height,
		forceFullOCR: forceFullOCR,
		logger:       logger,
	}
}
