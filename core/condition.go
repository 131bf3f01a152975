package core

// start generates a (repeated) start condition: SDA falls while SCL is high.
func (b *Bus) start() FaultCode {
	usi := b.usi
	p := &b.profile

	// Release SCL so a start is possible even in the middle of a conversation
	usi.SetSCL(true)
	if f := b.waitSCLHigh(); f != FaultOK {
		return f
	}

	usi.SetSDA(false) // This edge is the start condition
	b.wait(p.PreStart)
	usi.SetSCL(false)
	usi.SetSDA(true)
	b.wait(p.PostStart)

	if usi.Status()&StatusStart == 0 {
		return FaultMissingStart
	}
	RecordBusEvent(EvtStart, 0, 0)
	return FaultOK
}

// stop generates a stop condition: SDA rises while SCL is high.
func (b *Bus) stop() FaultCode {
	usi := b.usi
	p := &b.profile

	usi.SetSDA(false)
	usi.SetSCL(true)
	if f := b.waitSCLHigh(); f != FaultOK {
		return f
	}

	b.wait(p.PreStop)
	usi.SetSDA(true) // This edge is the stop condition
	b.wait(p.Idle)

	if usi.Status()&StatusStop == 0 {
		return FaultMissingStop
	}
	RecordBusEvent(EvtStop, 0, 0)
	return FaultOK
}
