package core

import (
	"errors"
	"sync/atomic"
)

var (
	ErrBusClaimed  = errors.New("twi bus already claimed")
	ErrSessionOpen = errors.New("twi session still open")
	ErrSpeedFixed  = errors.New("twi bus speed is set by the timing profile")
	ErrReleased    = errors.New("twi bus already released")
)

// BusState is the conversation state of the master
type BusState uint8

const (
	StateIdle        BusState = iota // No conversation since the bus was claimed
	StateStarted                     // Start condition generated
	StateAddressSent                 // Address acknowledged, direction not yet exercised
	StateSending                     // Data bytes being transmitted
	StateReceiving                   // Data bytes being received
	StateStopped                     // Stop condition generated
	StateError                       // Last operation faulted; bus electrically undefined
)

func (s BusState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarted:
		return "started"
	case StateAddressSent:
		return "address sent"
	case StateSending:
		return "sending"
	case StateReceiving:
		return "receiving"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	}
	return "unknown"
}

// busClaimed guards the process-wide peripheral (atomic bool)
var busClaimed uint32

// Bus is the exclusive handle on the two-wire peripheral. Only one Bus exists
// at a time; it MUST be released to claim the peripheral again.
type Bus struct {
	usi     USI
	profile TimingProfile
	state   BusState
	fault   FaultCode   // Fault that moved the bus to StateError
	session *Session    // Open conversation, if any
	wait    func(Delay) // Busy-wait primitive (replaced in tests)
}

// Claim configures the peripheral and returns the bus handle.
// It fails with ErrBusClaimed while another handle is live.
func Claim(usi USI, profile TimingProfile) (*Bus, error) {
	if usi == nil {
		return nil, errors.New("twi: nil peripheral")
	}
	if !atomic.CompareAndSwapUint32(&busClaimed, 0, 1) {
		return nil, ErrBusClaimed
	}

	usi.Configure()

	return &Bus{
		usi:     usi,
		profile: profile,
		state:   StateIdle,
		wait:    Delay.Wait,
	}, nil
}

// Release gives the peripheral back. It fails while a Session is open.
// The handle is dead afterwards: operations on it fail without touching the
// peripheral.
func (b *Bus) Release() error {
	if b.session != nil {
		return ErrSessionOpen
	}
	if b.usi == nil {
		return nil
	}
	b.usi = nil
	atomic.StoreUint32(&busClaimed, 0)
	return nil
}

// Profile returns the timing profile the bus was claimed with
func (b *Bus) Profile() TimingProfile {
	return b.profile
}

// State returns the current conversation state
func (b *Bus) State() BusState {
	return b.state
}

// Fault returns the fault that put the bus in StateError, or FaultOK
func (b *Bus) Fault() FaultCode {
	return b.fault
}

// Released reports whether the peripheral was given back
func (b *Bus) Released() bool {
	return b.usi == nil
}

// Busy reports whether a Session is open on the bus
func (b *Bus) Busy() bool {
	return b.session != nil
}

// enter records the outcome of an operation: success moves to next,
// a fault moves to StateError.
func (b *Bus) enter(next BusState, f FaultCode) FaultCode {
	if f != FaultOK {
		b.state = StateError
		b.fault = f
		RecordBusEvent(EvtFault, uint8(f), uint8(next))
		return f
	}
	b.state = next
	b.fault = FaultOK
	return FaultOK
}
