//go:build attiny85

package main

import (
	"device/avr"

	"twibang/core"
)

// Port B pins wired to the USI in two-wire mode
const (
	pinSDA = 1 << 0 // PB0
	pinSCL = 1 << 2 // PB2
)

// USICR bits
const (
	usiWM1 = 1 << 5 // Two-wire mode
	usiCS1 = 1 << 3 // External clock source...
	usiCLK = 1 << 1 // ...strobed by software
	usiTC  = 1 << 0 // Toggle the clock pin
)

// usiControl selects two-wire mode with a software clock strobe and no
// interrupts
const usiControl = usiWM1 | usiCS1 | usiCLK

// hardwareUSI drives the on-chip USI registers
type hardwareUSI struct{}

var _ core.USI = hardwareUSI{}

func (hardwareUSI) Configure() {
	avr.PORTB.SetBits(pinSDA | pinSCL)
	avr.DDRB.SetBits(pinSDA | pinSCL)
	avr.USIDR.Set(0xFF)
	avr.USICR.Set(usiControl)
	avr.USISR.Set(core.StatusStart | core.StatusOverflow | core.StatusStop | core.StatusCollision)
}

func (hardwareUSI) SetStatus(v uint8) { avr.USISR.Set(v) }
func (hardwareUSI) Status() uint8     { return avr.USISR.Get() }
func (hardwareUSI) SetData(b uint8)   { avr.USIDR.Set(b) }
func (hardwareUSI) Data() uint8       { return avr.USIDR.Get() }

func (hardwareUSI) StrobeClock() {
	avr.USICR.Set(usiControl | usiTC)
}

func (hardwareUSI) SetSCL(release bool) {
	if release {
		avr.PORTB.SetBits(pinSCL)
	} else {
		avr.PORTB.ClearBits(pinSCL)
	}
}

func (hardwareUSI) SCLHigh() bool {
	return avr.PINB.HasBits(pinSCL)
}

func (hardwareUSI) SetSDA(release bool) {
	if release {
		avr.PORTB.SetBits(pinSDA)
	} else {
		avr.PORTB.ClearBits(pinSDA)
	}
}

func (hardwareUSI) SetSDAOutput(output bool) {
	if output {
		avr.DDRB.SetBits(pinSDA)
	} else {
		avr.DDRB.ClearBits(pinSDA)
	}
}
