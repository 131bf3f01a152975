package main

import (
	"twibang/core"
	"twibang/oled"
)

// setupDisplay powers the panel and selects the addressing quarter
// conversations need
func setupDisplay(bus *core.Bus) core.Status {
	return oled.NewChat(bus, 0).
		Init().
		SetAddressingMode(oled.VerticalAddressing).
		SetContrast(0x7F).
		SetEnabled(true).
		Stop()
}

// scene draws one frame of the demo: a title, the frame number in hex and
// decimal, and the outcome of the previous frame
type scene struct {
	bus    *core.Bus
	title  *oled.Canvas
	frame  int
	last   core.Status
	titled bool
}

func newScene(bus *core.Bus) *scene {
	return &scene{bus: bus, title: oled.NewCanvas(bus, 0)}
}

// draw stops at the first conversation that faults
func (s *scene) draw() core.Status {
	if !s.titled {
		s.title.Text(2, 11, "twibang")
		if err := s.title.Display(); err != nil {
			return s.finish(s.title.LastStatus())
		}
		s.titled = true
	}

	st := oled.NewQuarterChat(s.bus, 1, 0, oled.Width-1).
		Send4Hex(uint16(s.frame)).
		Stop()
	if !st.OK() {
		return s.finish(st)
	}

	st = oled.NewQuarterChat(s.bus, 2, 0, oled.Width-1).
		Send4Dec(s.frame).
		Stop()
	if !st.OK() {
		return s.finish(st)
	}

	st = oled.NewQuarterChat(s.bus, 3, 0, oled.Width-1).
		Send2Hex(uint8(s.last.Fault)).
		SendSpacing(oled.DigitWidth).
		Send3Dec(uint8(s.last.Step)).
		Stop()
	return s.finish(st)
}

func (s *scene) finish(st core.Status) core.Status {
	s.last = st
	s.frame++
	return st
}
