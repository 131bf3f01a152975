package usisim

// Device is a bus peripheral as seen by the simulated bus
type Device interface {
	// Begin is called when the device's address is clocked in. Returning
	// false leaves the address unacknowledged.
	Begin(read bool) bool

	// Write receives a byte from the master and reports whether to ACK it
	Write(b byte) bool

	// Read supplies the next byte for the master
	Read() byte

	// End is called on a stop condition after the device was addressed
	End()
}

type peerState uint8

const (
	peerIdle      peerState = iota // Not taking part
	peerAddress                    // Shifting in the address byte
	peerWrite                      // Shifting in a byte from the master
	peerAck                        // Driving ACK for the byte just shifted in
	peerRead                       // Driving a byte to the master
	peerMasterAck                  // Sampling the master's ACK/NACK
)

// peer is the slave side of the wire protocol, shared by all devices: it
// decodes the address, then forwards bytes to the addressed device
type peer struct {
	state   peerState
	sda     bool // Released
	shift   uint8
	bits    uint8
	read    bool
	dev     Device
	out     uint8 // Byte being driven in peerRead
	acked   bool  // Master ACKed the last byte read
	written int   // Data bytes written in this conversation
}

func (p *peer) start() {
	p.state = peerAddress
	p.sda = true
	p.shift, p.bits = 0, 0
	p.written = 0
}

func (p *peer) stop() {
	if p.dev != nil {
		p.dev.End()
	}
	*p = peer{sda: true}
}

func (p *peer) rise(sda bool) {
	switch p.state {
	case peerAddress, peerWrite:
		p.shift <<= 1
		if sda {
			p.shift |= 1
		}
		p.bits++
	case peerMasterAck:
		p.acked = !sda
	}
}

// fall advances the device after a falling SCL edge; the SDA level it leaves
// is what the master samples on the next rising edge
func (p *peer) fall(s *Sim) {
	switch p.state {
	case peerAddress:
		if p.bits != 8 {
			return
		}
		dev := s.devices[p.shift>>1]
		read := p.shift&1 != 0
		ack := dev != nil && dev.Begin(read)
		s.record(Event{Kind: EventAddress, Byte: p.shift, Ack: ack})
		if !ack {
			p.state = peerIdle
			p.dev = nil
			return
		}
		p.dev, p.read = dev, read
		p.sda = false
		p.state = peerAck

	case peerWrite:
		if p.bits != 8 {
			return
		}
		p.written++
		ack := p.dev.Write(p.shift)
		if s.faults.NACKByte != 0 && p.written == s.faults.NACKByte {
			ack = false
		}
		s.record(Event{Kind: EventWrite, Byte: p.shift, Ack: ack})
		if !ack {
			p.state = peerIdle
			return
		}
		p.sda = false
		p.state = peerAck

	case peerAck:
		p.sda = true
		if p.read {
			p.load()
		} else {
			p.state = peerWrite
			p.shift, p.bits = 0, 0
		}

	case peerRead:
		p.bits++
		if p.bits < 8 {
			p.sda = (p.out<<p.bits)&0x80 != 0
			return
		}
		p.sda = true
		p.state = peerMasterAck

	case peerMasterAck:
		s.record(Event{Kind: EventRead, Byte: p.out, Ack: p.acked})
		if p.acked {
			p.load()
		} else {
			p.state = peerIdle
		}
	}
}

// load fetches the next byte from the device and drives its MSB
func (p *peer) load() {
	p.out = p.dev.Read()
	p.bits = 0
	p.sda = p.out&0x80 != 0
	p.state = peerRead
}
