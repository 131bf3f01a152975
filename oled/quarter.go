package oled

import "twibang/core"

// QuarterStep is the step counter start of every quarter conversation
const QuarterStep = 20

// QuarterChat writes display RAM of one quarter of the screen: two
// consecutive pages, 16 pixel rows. Each column is two bytes, the upper
// page first, so the display must be in vertical addressing.
type QuarterChat struct {
	s *core.Session
}

// NewQuarterChat opens a data conversation for quarter 0 to 3, limited to
// columns xBegin through xEnd
func NewQuarterChat(bus *core.Bus, quarter, xBegin, xEnd uint8) *QuarterChat {
	page := quarter * 2
	s := NewChat(bus, QuarterStep).
		SetPageAddress(page, page+1).
		SetColumnAddress(xBegin, xEnd).
		StartData()
	return &QuarterChat{s: s}
}

// SendColumn sends one column, top byte first
func (q *QuarterChat) SendColumn(top, bottom uint8) *QuarterChat {
	q.s.Send(top).Send(bottom)
	return q
}

// SendSpacing sends width empty columns
func (q *QuarterChat) SendSpacing(width uint16) *QuarterChat {
	q.s.SendRepeated(width*2, 0)
	return q
}

// OK reports whether the conversation is still healthy
func (q *QuarterChat) OK() bool {
	return q.s.OK()
}

// Stop ends the conversation
func (q *QuarterChat) Stop() core.Status {
	return q.s.Stop()
}
