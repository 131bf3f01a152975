package core

// Direction is the R/W bit of the address byte
type Direction uint8

const (
	DirSend    Direction = 0
	DirReceive Direction = 1
)

const nackBit = 1 << 0 // Position of the (N)ACK bit in a 1-bit transfer

// AddressPrefix returns the byte sent right after a start condition
func AddressPrefix(address uint8, dir Direction) uint8 {
	return (address&0x7F)<<1 | uint8(dir&1)
}

// transmit sends one byte and clocks in the peer's (N)ACK.
// isAddress tells whether the byte is the first one after a start condition.
func (b *Bus) transmit(msg uint8, isAddress bool) FaultCode {
	usi := b.usi
	status := usi.Status()

	// An address byte must follow a start; a data byte must not
	if started := status&StatusStart != 0; started != isAddress {
		if isAddress {
			return FaultMissingStart
		}
		return FaultUnexpectedStart
	}
	// A stop flag left over from the previous conversation is harmless before
	// an address byte
	if status&StatusStop != 0 && !isAddress {
		return FaultUnexpectedStop
	}
	if status&StatusCollision != 0 {
		return FaultDataCollision
	}

	usi.SetSCL(false)
	usi.SetData(msg)
	if _, f := b.transfer(8); f != FaultOK {
		return f
	}

	// Clock and verify (N)ACK from the peer
	usi.SetSDAOutput(false)
	ack, f := b.transfer(1)
	if f != FaultOK {
		return f
	}
	if ack&nackBit != 0 {
		if isAddress {
			return FaultAddressNACK
		}
		return FaultDataNACK
	}

	if isAddress {
		RecordBusEvent(EvtAddress, msg, 0)
	} else {
		RecordBusEvent(EvtData, msg, 0)
	}
	return FaultOK
}

// receive reads len(buf) bytes from address, acknowledging every byte but the
// last. The conversation is closed with a stop only when every step succeeded:
// a fault part way through returns at once and leaves the bus open.
func (b *Bus) receive(address uint8, buf []byte) FaultCode {
	usi := b.usi

	if f := b.start(); f != FaultOK {
		return f
	}
	if f := b.transmit(AddressPrefix(address, DirReceive), true); f != FaultOK {
		return f
	}
	b.state = StateReceiving

	for i := range buf {
		usi.SetSDAOutput(false)
		received, f := b.transfer(8)
		if f != FaultOK {
			return f
		}
		buf[i] = received

		if i == len(buf)-1 {
			usi.SetData(0xFF) // NACK ends the transmission
		} else {
			usi.SetData(0x00) // ACK
		}
		if _, f := b.transfer(1); f != FaultOK {
			return f
		}
		RecordBusEvent(EvtReceive, received, uint8(i))
	}

	return b.stop()
}
