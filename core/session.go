package core

// Status is the outcome of a finished Session: either success (Fault is
// FaultOK) or the first fault and the step at which it happened.
type Status struct {
	Fault FaultCode
	Step  uint16
}

// OK reports whether the conversation succeeded
func (s Status) OK() bool {
	return s.Fault == FaultOK
}

func (s Status) String() string {
	if s.Fault == FaultOK {
		return "ok at step " + utoa(uint32(s.Step))
	}
	return s.Fault.String() + " at step " + utoa(uint32(s.Step))
}

// Session is one send conversation with the profile's device.
//
// The first fault sticks: every later operation is a no-op that leaves the
// hardware alone and the step counter frozen, so a long chain of Send calls
// can be written without checking each result. The step counter tells which
// operation failed.
type Session struct {
	bus    *Bus
	fault  FaultCode
	step   uint16
	closed bool // Conversation already ended by a successful Receive
}

// NewSession opens a conversation on the bus, starting the step counter at
// step. The start condition and address are sent immediately.
//
// Only one Session may be open on a bus; opening a second one panics.
// On a released bus the Session starts out faulted with FaultMissingStart.
func NewSession(bus *Bus, step uint16) *Session {
	if bus.session != nil {
		panic("twi: session already open on bus")
	}
	s := &Session{bus: bus, step: step}
	if bus.usi == nil {
		s.fault = FaultMissingStart
		s.closed = true
		return s
	}
	bus.session = s
	s.fault = bus.StartSending()
	if s.fault != FaultOK {
		RecordBusEvent(EvtSessionFault, uint8(s.fault), uint8(s.step))
	}
	return s
}

// OK reports whether the conversation is still on speaking terms.
// It is a cheap guard before expensive follow-up work.
func (s *Session) OK() bool {
	return s.fault == FaultOK
}

// Fault returns the sticky fault so far
func (s *Session) Fault() FaultCode {
	return s.fault
}

// Step returns the current step counter
func (s *Session) Step() uint16 {
	return s.step
}

// Send transmits one byte unless the conversation already faulted.
// A Session that no longer owns the bus records FaultMissingStart instead.
func (s *Session) Send(msg uint8) *Session {
	if !s.usable() {
		return s
	}
	s.step++
	s.record(s.bus.Send(msg))
	return s
}

// SendRepeated sends the same byte count times
func (s *Session) SendRepeated(count uint16, msg uint8) *Session {
	for i := uint16(0); i < count; i++ {
		s.Send(msg)
	}
	return s
}

// SendAll sends every byte of msgs in order
func (s *Session) SendAll(msgs []byte) *Session {
	for _, m := range msgs {
		s.Send(m)
	}
	return s
}

// Receive reads len(buf) bytes from the device after a repeated start and
// ends the conversation. It is a no-op returning the sticky fault once the
// conversation faulted.
func (s *Session) Receive(buf []byte) FaultCode {
	if !s.usable() {
		return s.fault
	}
	s.step++
	s.record(s.bus.Receive(buf))
	if s.fault == FaultOK {
		s.closed = true
	}
	return s.fault
}

// Stop ends the conversation and returns its Status. The stop condition is
// only generated when no fault occurred. The bus is free for a new Session
// afterwards in every case.
func (s *Session) Stop() Status {
	if s.fault == FaultOK && !s.closed {
		s.record(s.bus.Stop())
	}
	s.closed = true
	if s.bus.session == s {
		s.bus.session = nil
	}
	return Status{Fault: s.fault, Step: s.step}
}

// usable reports whether the next operation may reach the hardware. Once
// stopped, the Session has given the bus away and only collects a fault.
func (s *Session) usable() bool {
	if s.fault != FaultOK {
		return false
	}
	if s.bus.session != s {
		s.fault = FaultMissingStart
		RecordBusEvent(EvtSessionFault, uint8(s.fault), uint8(s.step))
		return false
	}
	return true
}

func (s *Session) record(f FaultCode) {
	s.fault = s.fault.fold(f)
	if f != FaultOK {
		RecordBusEvent(EvtSessionFault, uint8(f), uint8(s.step))
	}
}
