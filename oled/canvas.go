package oled

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"twibang/core"
)

// QuarterHeight is the pixel height of a quarter of the screen
const QuarterHeight = Height / 4

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas is an off-screen copy of one quarter of the display. It implements
// drivers.Displayer so tinyfont and other TinyGo drawing code can render
// into it; Display uploads it in a single quarter conversation.
type Canvas struct {
	bus     *core.Bus
	quarter uint8
	cols    [Width][2]uint8 // Column bytes for the upper and lower page
	last    core.Status
}

// NewCanvas returns a blank canvas for quarter 0 to 3
func NewCanvas(bus *core.Bus, quarter uint8) *Canvas {
	return &Canvas{bus: bus, quarter: quarter & 3}
}

// Size implements drivers.Displayer
func (c *Canvas) Size() (x, y int16) {
	return Width, QuarterHeight
}

// SetPixel lights the pixel for any colour with a non-zero channel
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= QuarterHeight {
		return
	}
	mask := uint8(1) << (y % 8)
	if col.R|col.G|col.B != 0 {
		c.cols[x][y/8] |= mask
	} else {
		c.cols[x][y/8] &^= mask
	}
}

// Pixel reports whether a pixel is lit
func (c *Canvas) Pixel(x, y int16) bool {
	if x < 0 || x >= Width || y < 0 || y >= QuarterHeight {
		return false
	}
	return c.cols[x][y/8]&(1<<(y%8)) != 0
}

// Clear blanks the canvas without touching the display
func (c *Canvas) Clear() {
	c.cols = [Width][2]uint8{}
}

// Text draws s with its baseline at y using the built-in font
func (c *Canvas) Text(x, y int16, s string) {
	tinyfont.WriteLine(c, &proggy.TinySZ8pt7b, x, y, s, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
}

// Display implements drivers.Displayer. Faults are returned as FaultCode
// errors and kept for LastStatus.
func (c *Canvas) Display() error {
	q := NewQuarterChat(c.bus, c.quarter, 0, Width-1)
	for x := range c.cols {
		q.SendColumn(c.cols[x][0], c.cols[x][1])
	}
	c.last = q.Stop()
	return c.last.Fault.Err()
}

// LastStatus returns the outcome of the last Display
func (c *Canvas) LastStatus() core.Status {
	return c.last
}
