package core

// FaultCode is the outcome of a bus operation.
// Values are kept small so they can be shown as a count of LED blinks:
// the most likely faults have the lowest numbers.
type FaultCode uint8

const (
	FaultOK               FaultCode = 0
	FaultAddressNACK      FaultCode = 1  // Peer did not acknowledge the address
	FaultDataNACK         FaultCode = 2  // Peer did not acknowledge a data byte
	FaultMissingStart     FaultCode = 3  // Start condition expected but not detected
	FaultMissingStop      FaultCode = 4  // Generated stop condition not detected
	FaultDataCollision    FaultCode = 5  // SDA did not follow the driven level
	FaultUnexpectedStop   FaultCode = 6  // Stop condition seen during a data phase
	FaultUnexpectedStart  FaultCode = 7  // Start condition seen during a data phase
	FaultClockHighTimeout FaultCode = 11 // SCL never went high when released
)

// OK reports whether the code is the success value.
func (f FaultCode) OK() bool {
	return f == FaultOK
}

// String returns a short name for the fault.
func (f FaultCode) String() string {
	switch f {
	case FaultOK:
		return "ok"
	case FaultAddressNACK:
		return "address nack"
	case FaultDataNACK:
		return "data nack"
	case FaultMissingStart:
		return "missing start"
	case FaultMissingStop:
		return "missing stop"
	case FaultDataCollision:
		return "data collision"
	case FaultUnexpectedStop:
		return "unexpected stop"
	case FaultUnexpectedStart:
		return "unexpected start"
	case FaultClockHighTimeout:
		return "clock high timeout"
	}
	return "fault " + itoa(int(f))
}

// Error implements error so a fault can travel through error-returning APIs.
func (f FaultCode) Error() string {
	return "twi: " + f.String()
}

// Err returns nil for FaultOK and the fault itself otherwise.
func (f FaultCode) Err() error {
	if f == FaultOK {
		return nil
	}
	return f
}

// fold keeps the first fault: an existing fault is never overwritten.
func (f FaultCode) fold(next FaultCode) FaultCode {
	if f != FaultOK {
		return f
	}
	return next
}
