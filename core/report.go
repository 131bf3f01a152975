package core

import (
	"errors"

	"twibang/protocol"
)

// Command and response identifiers exchanged with the host monitor
const (
	CmdQueryStatus uint16 = 1  // query_status
	CmdDumpEvents  uint16 = 2  // dump_events
	CmdClearEvents uint16 = 3  // clear_events
	MsgStatus      uint16 = 16 // session_status fault=%c step=%u
	MsgBusEvent    uint16 = 17 // bus_event seq=%u type=%c v1=%c v2=%c
	MsgEventsDone  uint16 = 18 // events_done count=%u
)

// ErrUnknownCommand is returned for command IDs the reporter does not handle
var ErrUnknownCommand = errors.New("unknown command")

// Reporter publishes session outcomes and the bus event ring to a host over
// the framed protocol transport.
type Reporter struct {
	transport *protocol.Transport
	last      Status
}

// NewReporter creates a reporter writing frames to output
func NewReporter(output protocol.OutputBuffer) *Reporter {
	r := &Reporter{}
	r.transport = protocol.NewTransport(output, r.handleCommand)
	return r
}

// Transport returns the underlying transport so the platform can install
// reset and flush callbacks
func (r *Reporter) Transport() *protocol.Transport {
	return r.transport
}

// Receive processes host commands from the input buffer
func (r *Reporter) Receive(input protocol.InputBuffer) {
	r.transport.Receive(input)
}

// Publish records st as the latest outcome and sends it to the host
func (r *Reporter) Publish(st Status) {
	r.last = st
	r.sendStatus()
}

// Last returns the most recently published status
func (r *Reporter) Last() Status {
	return r.last
}

func (r *Reporter) sendStatus() {
	st := r.last
	r.transport.SendCommand(MsgStatus, func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, uint32(st.Fault))
		protocol.EncodeVLQUint(output, uint32(st.Step))
	})
}

// handleCommand dispatches commands received from the host
func (r *Reporter) handleCommand(cmdID uint16, data *[]byte) error {
	switch cmdID {
	case CmdQueryStatus:
		r.sendStatus()
	case CmdDumpEvents:
		events := BusEvents()
		for _, evt := range events {
			r.transport.SendCommand(MsgBusEvent, func(output protocol.OutputBuffer) {
				protocol.EncodeVLQUint(output, uint32(evt.Seq))
				protocol.EncodeVLQUint(output, uint32(evt.EventType))
				protocol.EncodeVLQUint(output, uint32(evt.Value1))
				protocol.EncodeVLQUint(output, uint32(evt.Value2))
			})
		}
		r.transport.SendCommand(MsgEventsDone, func(output protocol.OutputBuffer) {
			protocol.EncodeVLQUint(output, uint32(len(events)))
		})
	case CmdClearEvents:
		ClearBusEvents()
	default:
		// Unknown commands would desync the frame; drop the rest of it
		*data = nil
		return ErrUnknownCommand
	}
	return nil
}

// DecodeStatus decodes a session_status payload (after the message ID)
func DecodeStatus(data *[]byte) (Status, error) {
	fault, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return Status{}, err
	}
	step, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return Status{}, err
	}
	return Status{Fault: FaultCode(fault), Step: uint16(step)}, nil
}

// DecodeBusEvent decodes a bus_event payload (after the message ID)
func DecodeBusEvent(data *[]byte) (BusEvent, error) {
	var fields [4]uint32
	for i := range fields {
		v, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return BusEvent{}, err
		}
		fields[i] = v
	}
	return BusEvent{
		Seq:       uint16(fields[0]),
		EventType: uint8(fields[1]),
		Value1:    uint8(fields[2]),
		Value2:    uint8(fields[3]),
	}, nil
}
