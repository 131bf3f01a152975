package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// BusEvent captures one bus step for post-mortem analysis
type BusEvent struct {
	EventType uint8 // Event type code
	Value1    uint8 // Context-dependent value
	Value2    uint8 // Context-dependent value
	Seq       uint16
}

// Event type codes
const (
	EvtStart        = 1 // Start condition verified
	EvtStop         = 2 // Stop condition verified
	EvtAddress      = 3 // Address byte acknowledged (v1 = prefix)
	EvtData         = 4 // Data byte acknowledged (v1 = byte)
	EvtReceive      = 5 // Byte received (v1 = byte, v2 = index)
	EvtFault        = 6 // Orchestrator fault (v1 = code, v2 = target state)
	EvtSessionFault = 7 // Session fault (v1 = code, v2 = step, low byte)
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer (non-blocking, for post-mortem)
	eventRing     [EventRingSize]BusEvent
	eventRingHead uint8  // Next write position
	eventSeq      uint16 // Sequence number of the next event
	eventsEnabled bool   = true
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// SetEventsEnabled turns event capture on or off
func SetEventsEnabled(enabled bool) {
	eventsEnabled = enabled
}

// RecordBusEvent captures a bus event in the ring buffer.
// It never blocks or allocates, so it is safe inside a bus operation.
func RecordBusEvent(eventType, value1, value2 uint8) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = BusEvent{
		EventType: eventType,
		Value1:    value1,
		Value2:    value2,
		Seq:       eventSeq,
	}
	eventSeq++
	eventRingHead = (idx + 1) % EventRingSize
}

// BusEvents returns the captured events, oldest first
func BusEvents() []BusEvent {
	events := make([]BusEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// EventName returns the display name of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtStart:
		return "START"
	case EvtStop:
		return "STOP"
	case EvtAddress:
		return "ADDRESS"
	case EvtData:
		return "DATA"
	case EvtReceive:
		return "RECEIVE"
	case EvtFault:
		return "FAULT!"
	case EvtSessionFault:
		return "SESSION_FAULT!"
	}
	return "UNKNOWN"
}

// String formats an event for debug output
func (e BusEvent) String() string {
	s := "#" + utoa(uint32(e.Seq)) + " " + EventName(e.EventType)
	switch e.EventType {
	case EvtAddress, EvtData:
		s += " " + hex8(e.Value1)
	case EvtReceive:
		s += " " + hex8(e.Value1) + " [" + itoa(int(e.Value2)) + "]"
	case EvtFault:
		s += " " + FaultCode(e.Value1).String() + " entering " + BusState(e.Value2).String()
	case EvtSessionFault:
		s += " " + FaultCode(e.Value1).String() + " at step " + itoa(int(e.Value2))
	}
	return s
}

// DumpBusEvents outputs the event ring (call after a fault)
func DumpBusEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TWI] === Bus Event Dump ===")
	for _, evt := range BusEvents() {
		debugPrintln("[TWI] " + evt.String())
	}
	debugPrintln("[TWI] === End Dump ===")
}

// ClearBusEvents clears the event buffer
func ClearBusEvents() {
	for i := range eventRing {
		eventRing[i] = BusEvent{}
	}
	eventRingHead = 0
	eventSeq = 0
}
