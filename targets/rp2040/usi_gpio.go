//go:build rp2040

package main

import (
	"machine"

	"twibang/core"
)

// gpioUSI emulates the USI shift register, edge counter and condition
// detector on two GPIO pins. Lines are open drain: a released pin is an
// input with pull-up, a pulled pin is an output driven low.
type gpioUSI struct {
	sda machine.Pin
	scl machine.Pin

	portSCL bool // Released
	portSDA bool // Released
	sdaOut  bool
	data    uint8
	outBit  bool // Register MSB latched on the falling edge
	flags   uint8
	counter uint8

	sdaLevel bool // Last SDA level seen by the condition detector
}

var _ core.USI = (*gpioUSI)(nil)

func newGPIOUSI(sda, scl machine.Pin) *gpioUSI {
	return &gpioUSI{sda: sda, scl: scl}
}

func release(p machine.Pin) {
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func pull(p machine.Pin) {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
}

func (u *gpioUSI) Configure() {
	u.portSCL, u.portSDA = true, true
	u.sdaOut = true
	u.data = 0xFF
	u.outBit = true
	u.flags = 0
	u.counter = 0
	release(u.scl)
	release(u.sda)
	u.sdaLevel = u.sda.Get()
}

func (u *gpioUSI) SetStatus(v uint8) {
	u.flags &^= v & 0xF0
	u.counter = v & core.StatusCounter
}

func (u *gpioUSI) Status() uint8 {
	st := u.flags | u.counter
	if u.sdaOut && u.outBit != u.sda.Get() {
		st |= core.StatusCollision
	}
	return st
}

func (u *gpioUSI) SetData(b uint8) {
	u.data = b
	if !u.portSCL {
		u.outBit = b&0x80 != 0
		u.driveSDA()
	}
}

func (u *gpioUSI) Data() uint8 {
	return u.data
}

func (u *gpioUSI) StrobeClock() {
	u.SetSCL(!u.portSCL)
	if u.portSCL {
		// Rising edge: shift in the line. SDA is stable while a device
		// stretches the clock, so it is sampled right away.
		u.data <<= 1
		if u.sda.Get() {
			u.data |= 1
		}
	} else {
		u.outBit = u.data&0x80 != 0
		u.driveSDA()
	}
	u.counter = (u.counter + 1) & core.StatusCounter
	if u.counter == 0 {
		u.flags |= core.StatusOverflow
	}
}

func (u *gpioUSI) SetSCL(rel bool) {
	u.portSCL = rel
	if rel {
		release(u.scl)
	} else {
		pull(u.scl)
	}
}

func (u *gpioUSI) SCLHigh() bool {
	return u.scl.Get()
}

func (u *gpioUSI) SetSDA(rel bool) {
	u.portSDA = rel
	u.driveSDA()
}

func (u *gpioUSI) SetSDAOutput(output bool) {
	u.sdaOut = output
	u.driveSDA()
}

// driveSDA applies the output gating and runs the condition detector
func (u *gpioUSI) driveSDA() {
	if !u.sdaOut || (u.portSDA && u.outBit) {
		release(u.sda)
	} else {
		pull(u.sda)
	}

	level := u.sda.Get()
	if level != u.sdaLevel && u.scl.Get() {
		if level {
			u.flags |= core.StatusStop
		} else {
			u.flags |= core.StatusStart
		}
	}
	u.sdaLevel = level
}
