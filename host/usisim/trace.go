package usisim

import "fmt"

// EventKind classifies a recorded bus transaction
type EventKind uint8

const (
	EventStart   EventKind = iota + 1 // Start or repeated start on the wire
	EventStop                         // Stop on the wire
	EventAddress                      // Address byte clocked in by the devices
	EventWrite                        // Data byte from the master
	EventRead                         // Data byte to the master
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	case EventAddress:
		return "address"
	case EventWrite:
		return "write"
	case EventRead:
		return "read"
	}
	return "unknown"
}

// Event is one transaction on the simulated bus. Ack is the acknowledge bit
// that followed the byte: from the device for address and write, from the
// master for read.
type Event struct {
	Kind EventKind
	Byte uint8
	Ack  bool
}

func (e Event) String() string {
	switch e.Kind {
	case EventStart, EventStop:
		return e.Kind.String()
	}
	ack := "nack"
	if e.Ack {
		ack = "ack"
	}
	return fmt.Sprintf("%s 0x%02x %s", e.Kind, e.Byte, ack)
}

// Writes returns the data bytes written by the master, in order
func Writes(trace []Event) []byte {
	var out []byte
	for _, e := range trace {
		if e.Kind == EventWrite {
			out = append(out, e.Byte)
		}
	}
	return out
}
