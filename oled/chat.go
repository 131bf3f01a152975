// Package oled drives an SSD1306 display controller through a bus Session.
package oled

import "twibang/core"

// Display geometry
const (
	Width        = 128
	Height       = 64
	Pages        = Height / 8
	BytesPerPage = Width
)

// Control bytes that precede every payload byte
const (
	PayloadCommand     = 0x80 // One command byte follows
	PayloadData        = 0x40 // Display RAM bytes follow until the stop
	PayloadLastCommand = 0x00 // Command bytes follow until the stop
)

// Addressing selects how the RAM pointer advances after a data byte
type Addressing uint8

const (
	HorizontalAddressing Addressing = 0b00
	VerticalAddressing   Addressing = 0b01
	PageAddressing       Addressing = 0b10
)

// Chat is a conversation with the display. Every command goes out with its
// own control byte so commands can be mixed freely until StartData.
//
// Chat methods never report faults; the underlying Session keeps the first
// one and the caller reads it from Stop.
type Chat struct {
	*core.Session
}

// NewChat opens a conversation with the display on bus, counting steps from step
func NewChat(bus *core.Bus, step uint16) *Chat {
	return &Chat{Session: core.NewSession(bus, step)}
}

// Continue wraps a Session that a lower layer already opened
func Continue(s *core.Session) *Chat {
	return &Chat{Session: s}
}

func (c *Chat) command(b uint8) *Chat {
	c.Send(PayloadCommand).Send(b)
	return c
}

// Init turns on the charge pump that powers the panel
func (c *Chat) Init() *Chat {
	return c.command(0x8D).command(0x14)
}

// SetEnabled switches the panel on or off
func (c *Chat) SetEnabled(enabled bool) *Chat {
	cmd := uint8(0xAE)
	if enabled {
		cmd |= 1
	}
	return c.command(cmd)
}

// SetContrast sets the contrast as a fraction of 255
func (c *Chat) SetContrast(fraction uint8) *Chat {
	return c.command(0x81).command(fraction)
}

// SetAddressingMode selects how data bytes advance the RAM pointer
func (c *Chat) SetAddressingMode(mode Addressing) *Chat {
	return c.command(0x20).command(uint8(mode))
}

// SetColumnAddress limits horizontal and vertical addressing to columns
// start through end
func (c *Chat) SetColumnAddress(start, end uint8) *Chat {
	return c.command(0x21).command(start).command(end)
}

// SetPageAddress limits horizontal and vertical addressing to pages start
// through end
func (c *Chat) SetPageAddress(start, end uint8) *Chat {
	return c.command(0x22).command(start).command(end)
}

// SetPageStartAddress switches to page addressing and moves to page n
func (c *Chat) SetPageStartAddress(n uint8) *Chat {
	return c.SetAddressingMode(PageAddressing).command(0xB0 | n&0x07)
}

// StartData ends the command phase. Only display RAM bytes and the final
// Stop may follow on the returned Session.
func (c *Chat) StartData() *core.Session {
	return c.Send(PayloadData)
}
