package core

// waitSCLHigh polls the SCL pin until it reads high, giving up after
// SCLPollLimit low readings. A peer stretching the clock holds it low.
func (b *Bus) waitSCLHigh() FaultCode {
	for polls := 0; !b.usi.SCLHigh(); {
		polls++
		if polls == SCLPollLimit {
			return FaultClockHighTimeout
		}
	}
	return FaultOK
}

// transfer clocks 1 or 8 bits through the shift register. The byte to send
// must already be in the data register; the byte shifted in is returned.
//
// This is the only place bit timing happens. On return SDA is released
// (data register 0xFF, pin back to output) whatever the outcome.
func (b *Bus) transfer(bits uint8) (uint8, FaultCode) {
	usi := b.usi
	p := &b.profile

	usi.SetStatus(transferStatus(bits))

	fault := FaultOK
	for {
		b.wait(p.PreClockHigh)
		usi.StrobeClock() // Positive SCL edge
		if fault = b.waitSCLHigh(); fault != FaultOK {
			break
		}
		b.wait(p.PostClockHigh)
		usi.StrobeClock() // Negative SCL edge
		if usi.Status()&StatusOverflow != 0 {
			break
		}
	}

	b.wait(p.PostTransfer)
	received := usi.Data()
	usi.SetData(0xFF)
	usi.SetSDAOutput(true)

	return received, fault
}
