package core

// StartSending opens a conversation towards the profile's device: a (repeated)
// start condition followed by the address with the send direction.
func (b *Bus) StartSending() FaultCode {
	return b.startSendingTo(b.profile.Address)
}

func (b *Bus) startSendingTo(address uint8) FaultCode {
	if b.usi == nil {
		return FaultMissingStart
	}
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if f := b.start(); f != FaultOK {
		return b.enter(StateStarted, f)
	}
	b.state = StateStarted
	f := b.transmit(AddressPrefix(address, DirSend), true)
	return b.enter(StateAddressSent, f)
}

// Send transmits one data byte in the open send conversation.
// Without an open conversation it reports FaultMissingStart, and after a fault
// it reports that fault again; neither case touches the hardware.
func (b *Bus) Send(msg uint8) FaultCode {
	if b.usi == nil {
		return FaultMissingStart
	}
	switch b.state {
	case StateError:
		return b.fault
	case StateAddressSent, StateSending:
	default:
		return FaultMissingStart
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	return b.enter(StateSending, b.transmit(msg, false))
}

// Receive reads len(buf) bytes from the profile's device in a conversation of
// its own (start, address with the receive direction, data, stop). When it is
// issued inside an open send conversation the start becomes a repeated start.
//
// A fault after the address phase returns without generating a stop.
func (b *Bus) Receive(buf []byte) FaultCode {
	return b.receiveFrom(b.profile.Address, buf)
}

func (b *Bus) receiveFrom(address uint8, buf []byte) FaultCode {
	if b.usi == nil {
		return FaultMissingStart
	}
	state := disableInterrupts()
	defer restoreInterrupts(state)

	b.state = StateStarted
	return b.enter(StateStopped, b.receive(address, buf))
}

// Stop closes the conversation with a stop condition
func (b *Bus) Stop() FaultCode {
	if b.usi == nil {
		return FaultMissingStop
	}
	state := disableInterrupts()
	defer restoreInterrupts(state)

	return b.enter(StateStopped, b.stop())
}
