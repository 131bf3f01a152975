// Package usisim simulates a USI peripheral in two-wire mode together with
// the open-drain bus it drives and the devices attached to it, so the bus
// master can be exercised on a host.
//
// Both lines are wired-AND: SCL is low when the master pulls it or a device
// stretches it, SDA is low when the master or a device drives it. The shift
// register samples SDA on rising SCL edges; the bit the master drives is
// latched from the register MSB on falling edges and whenever the register
// is written while SCL is low.
package usisim

import (
	"sync"

	"twibang/core"
)

var _ core.USI = (*Sim)(nil)

// Faults selects misbehaviour injected into the bus
type Faults struct {
	HoldSCL      bool // A device holds SCL low forever
	StretchPolls int  // Every rising SCL edge is delayed by this many polls
	HoldSDA      bool // A device holds SDA low forever
	DropStart    bool // Start conditions do not raise the start flag
	DropStop     bool // Stop conditions do not raise the stop flag
	NACKByte     int  // Refuse the n-th data byte of each conversation (1-based; 0 disables)
}

// Stats counts register-level activity
type Stats struct {
	Polls   int // SCL pin reads
	Strobes int // Clock strobes
	Starts  int // Start conditions seen on the wire
	Stops   int // Stop conditions seen on the wire
}

// Sim is a simulated USI plus bus. It is safe for concurrent use, so a viewer
// may inspect attached devices while a conversation runs.
type Sim struct {
	mu sync.Mutex

	// Master side
	portSCL bool // Released
	portSDA bool // Released
	sdaOut  bool // SDA pin is an output
	data    uint8
	outBit  bool // Latched register MSB
	flags   uint8
	counter uint8

	// Line levels after the last settle
	scl bool
	sda bool

	stretchLeft int
	faults      Faults
	stats       Stats

	peer    peer
	devices map[uint8]Device
	trace   []Event
}

// New returns a bus with both lines idle and no devices attached
func New() *Sim {
	s := &Sim{devices: make(map[uint8]Device)}
	s.reset()
	return s
}

func (s *Sim) reset() {
	s.portSCL, s.portSDA, s.sdaOut = true, true, true
	s.data, s.outBit = 0xFF, true
	s.flags, s.counter = 0, 0
	s.scl, s.sda = true, true
	s.stretchLeft = 0
	s.peer = peer{sda: true}
}

// Attach connects dev at the 7-bit address
func (s *Sim) Attach(address uint8, dev Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[address&0x7F] = dev
}

// SetFaults replaces the injected faults
func (s *Sim) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
	s.settle()
}

// InjectFlags raises status flags as if the hardware had detected them
func (s *Sim) InjectFlags(mask uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags |= mask & (core.StatusStart | core.StatusStop | core.StatusOverflow)
}

// Stats returns the activity counters
func (s *Sim) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Lines returns the current SCL and SDA levels (true is high)
func (s *Sim) Lines() (scl, sda bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scl, s.sda
}

// Trace returns a copy of the recorded transactions
func (s *Sim) Trace() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.trace...)
}

// ClearTrace drops the recorded transactions and resets the counters
func (s *Sim) ClearTrace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trace = s.trace[:0]
	s.stats = Stats{}
}

func (s *Sim) record(e Event) {
	s.trace = append(s.trace, e)
}

// USI register interface

func (s *Sim) Configure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.settle()
}

func (s *Sim) SetStatus(v uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags &^= v & (core.StatusStart | core.StatusOverflow | core.StatusStop | core.StatusCollision)
	s.counter = v & core.StatusCounter
}

func (s *Sim) Status() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.flags | s.counter
	// The collision flag is live: a released output that reads low
	if s.sdaOut && s.portSDA && s.outBit && !s.sda {
		st |= core.StatusCollision
	}
	return st
}

func (s *Sim) SetData(b uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = b
	if !s.scl {
		s.outBit = b&0x80 != 0
	}
	s.settle()
}

func (s *Sim) Data() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *Sim) StrobeClock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Strobes++
	s.driveSCL(!s.portSCL)
	s.counter = (s.counter + 1) & core.StatusCounter
	if s.counter == 0 {
		s.flags |= core.StatusOverflow
	}
}

func (s *Sim) SetSCL(release bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driveSCL(release)
}

func (s *Sim) SCLHigh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Polls++
	if s.portSCL && s.stretchLeft > 0 {
		s.stretchLeft--
		if s.stretchLeft == 0 {
			s.settle()
		}
		return false
	}
	return s.scl
}

func (s *Sim) SetSDA(release bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portSDA = release
	s.settle()
}

func (s *Sim) SetSDAOutput(output bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sdaOut = output
	s.settle()
}

// Line model

func (s *Sim) driveSCL(release bool) {
	if release && !s.portSCL {
		s.stretchLeft = s.faults.StretchPolls
	}
	s.portSCL = release
	s.settle()
}

func (s *Sim) sclLevel() bool {
	return s.portSCL && !s.faults.HoldSCL && s.stretchLeft == 0
}

func (s *Sim) sdaLevel() bool {
	master := !s.sdaOut || (s.portSDA && s.outBit)
	return master && s.peer.sda && !s.faults.HoldSDA
}

// settle propagates the current drive levels to the lines and reacts to the
// resulting edges
func (s *Sim) settle() {
	scl := s.sclLevel()
	if scl != s.scl {
		s.scl = scl
		if scl {
			s.risingEdge()
		} else {
			s.outBit = s.data&0x80 != 0
			s.peer.fall(s)
		}
		// SDA changes while SCL is low carry no condition
		s.sda = s.sdaLevel()
		return
	}

	sda := s.sdaLevel()
	if sda == s.sda {
		return
	}
	s.sda = sda
	if !scl {
		return
	}
	if sda {
		s.stopCondition()
	} else {
		s.startCondition()
	}
}

func (s *Sim) risingEdge() {
	var bit uint8
	if s.sda {
		bit = 1
	}
	s.data = s.data<<1 | bit
	s.peer.rise(s.sda)
}

func (s *Sim) startCondition() {
	s.stats.Starts++
	if !s.faults.DropStart {
		s.flags |= core.StatusStart
	}
	s.record(Event{Kind: EventStart})
	s.peer.start()
}

func (s *Sim) stopCondition() {
	s.stats.Stops++
	if !s.faults.DropStop {
		s.flags |= core.StatusStop
	}
	s.record(Event{Kind: EventStop})
	s.peer.stop()
}
