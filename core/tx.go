package core

import (
	"errors"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// The bus can be handed to TinyGo and periph device drivers directly.
var (
	_ drivers.I2C = (*Bus)(nil)
	_ i2c.Bus     = (*Bus)(nil)
)

var errTenBitAddress = errors.New("twi: only 7-bit addresses are supported")

// Tx writes w to the device at addr and then reads len(r) bytes back, using a
// repeated start between the two phases. It fails with ErrSessionOpen while a
// Session owns the bus and with ErrReleased once the bus was released.
// Faults are returned as FaultCode errors.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if b.usi == nil {
		return ErrReleased
	}
	if b.session != nil {
		return ErrSessionOpen
	}
	if addr > 0x7F {
		return errTenBitAddress
	}
	address := uint8(addr)

	if len(w) > 0 || len(r) == 0 {
		if f := b.startSendingTo(address); f != FaultOK {
			return f
		}
		for _, msg := range w {
			if f := b.Send(msg); f != FaultOK {
				return f
			}
		}
	}
	if len(r) > 0 {
		return b.receiveFrom(address, r).Err()
	}
	return b.Stop().Err()
}

// ReadRegister reads len(buf) bytes starting at register reg
func (b *Bus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at register reg
func (b *Bus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, reg)
	w = append(w, buf...)
	return b.Tx(uint16(addr), w, nil)
}

// SetSpeed implements i2c.Bus. The clock rate follows from the timing profile
// the bus was claimed with, so it cannot be changed here.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return ErrSpeedFixed
}

// String implements i2c.Bus
func (b *Bus) String() string {
	return "twi(usi, device " + hex8(b.profile.Address) + ")"
}
