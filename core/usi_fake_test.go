package core

import "testing"

// fakeUSI is a scripted peripheral for unit tests. The peer's bits come from
// a queue and are only consumed while the master has SDA as an input; an
// empty queue reads as 0, i.e. a peer that acknowledges everything.
type fakeUSI struct {
	status  uint8 // Flags only; the counter lives in counter
	counter uint8
	data    uint8

	sclLatch  bool // Released
	sdaLatch  bool // Released
	sdaOutput bool

	peer []uint8 // Bits the peer drives, MSB first

	holdSCL     bool // SCL never rises
	sclLowPolls int  // SCL reads low this many more times, then rises
	dropStart   bool // Start conditions are not detected
	dropStop    bool // Stop conditions are not detected
	collision   bool // Collision flag stays set

	configured bool
	touches    int // Every register access
	polls      int // SCLHigh calls
	strobes    int
	starts     int
	stops      int

	outBits  int
	outByte  uint8
	sent     []uint8 // Complete bytes shifted out by the master
	received int     // Rising edges sampled from the peer
}

func newFakeUSI() *fakeUSI {
	return &fakeUSI{sclLatch: true, sdaLatch: true, sdaOutput: true, data: 0xFF}
}

// peerByte queues a byte for the peer to send
func (f *fakeUSI) peerByte(b uint8) {
	for i := 7; i >= 0; i-- {
		f.peer = append(f.peer, (b>>uint(i))&1)
	}
}

func (f *fakeUSI) peerAck()  { f.peer = append(f.peer, 0) }
func (f *fakeUSI) peerNack() { f.peer = append(f.peer, 1) }

func (f *fakeUSI) Configure() {
	f.touches++
	f.configured = true
	f.data = 0xFF
	f.sclLatch, f.sdaLatch, f.sdaOutput = true, true, true
	f.status, f.counter = 0, 0
}

func (f *fakeUSI) SetStatus(v uint8) {
	f.touches++
	f.status &^= v & statusClearFlags
	f.counter = v & StatusCounter
	f.outBits, f.outByte = 0, 0
}

func (f *fakeUSI) Status() uint8 {
	f.touches++
	s := f.status | f.counter
	if f.collision {
		s |= StatusCollision
	}
	return s
}

func (f *fakeUSI) SetData(b uint8) {
	f.touches++
	f.data = b
}

func (f *fakeUSI) Data() uint8 {
	f.touches++
	return f.data
}

func (f *fakeUSI) StrobeClock() {
	f.touches++
	f.strobes++
	f.sclLatch = !f.sclLatch
	if f.sclLatch {
		f.risingEdge()
	}
	f.counter = (f.counter + 1) & StatusCounter
	if f.counter == 0 {
		f.status |= StatusOverflow
	}
}

func (f *fakeUSI) risingEdge() {
	var bit uint8
	if f.sdaOutput {
		bit = f.data >> 7
		f.outByte = f.outByte<<1 | bit
		f.outBits++
		if f.outBits == 8 {
			f.sent = append(f.sent, f.outByte)
		}
	} else {
		f.received++
		if len(f.peer) > 0 {
			bit = f.peer[0]
			f.peer = f.peer[1:]
		}
	}
	f.data = f.data<<1 | bit
}

func (f *fakeUSI) SetSCL(release bool) {
	f.touches++
	f.sclLatch = release
}

func (f *fakeUSI) SCLHigh() bool {
	f.touches++
	f.polls++
	if f.holdSCL {
		return false
	}
	if f.sclLowPolls > 0 {
		f.sclLowPolls--
		return false
	}
	return f.sclLatch
}

func (f *fakeUSI) SetSDA(release bool) {
	f.touches++
	if f.sclLatch && release != f.sdaLatch {
		if release {
			f.stops++
			if !f.dropStop {
				f.status |= StatusStop
			}
		} else {
			f.starts++
			if !f.dropStart {
				f.status |= StatusStart
			}
		}
	}
	f.sdaLatch = release
}

func (f *fakeUSI) SetSDAOutput(output bool) {
	f.touches++
	f.sdaOutput = output
}

var testProfile = TimingProfile{
	PreStart:      Delay{cycles: 5},
	PreStop:       Delay{cycles: 5},
	Idle:          Delay{cycles: 11},
	PostClockHigh: Delay{cycles: 5},
	Address:       0x3C,
}

// claimTestBus claims the bus on f and releases it when the test ends.
// Delays are recorded instead of spun.
func claimTestBus(t *testing.T, f *fakeUSI) (*Bus, *[]Delay) {
	t.Helper()
	b, err := Claim(f, testProfile)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	var waits []Delay
	b.wait = func(d Delay) { waits = append(waits, d) }
	t.Cleanup(func() {
		b.session = nil
		if err := b.Release(); err != nil {
			t.Errorf("Release: %v", err)
		}
	})
	return b, &waits
}
