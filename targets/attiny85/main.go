//go:build attiny85

// Firmware for an ATtiny85 driving an SSD1306 over its USI: it counts
// upwards on the display and blinks the fault code when a conversation
// fails.
package main

import (
	"machine"
	"time"

	"periph.io/x/conn/v3/physic"

	"twibang/core"
	"twibang/oled"
)

const displayAddress = 0x3C

func main() {
	led := machine.PB1
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	cpu := physic.Frequency(machine.CPUFrequency()) * physic.Hertz
	bus, err := core.Claim(hardwareUSI{}, core.StandardProfile(cpu, displayAddress))
	if err != nil {
		for {
			core.Blink(led, core.FaultMissingStart, time.Sleep)
		}
	}

	st := oled.NewChat(bus, 0).
		Init().
		SetAddressingMode(oled.VerticalAddressing).
		SetEnabled(true).
		Stop()

	for count := 0; ; count++ {
		if st.OK() {
			st = oled.NewQuarterChat(bus, 1, 0, oled.Width-1).
				Send4Dec(count).
				Stop()
		}
		if !st.OK() {
			core.BlinkStatus(led, st, time.Sleep)
			continue
		}
		time.Sleep(100 * time.Millisecond)
	}
}
