package core

import (
	"testing"

	"twibang/protocol"
)

// splitFrames returns the payload of every non-empty frame in out
func splitFrames(t *testing.T, out []byte) [][]byte {
	t.Helper()
	var payloads [][]byte
	for len(out) > 0 {
		n := int(out[protocol.MessagePositionLen])
		if n < protocol.MessageLengthMin || n > len(out) {
			t.Fatalf("Bad frame length %d in % X", n, out)
		}
		crc := protocol.CRC16(out[:n-protocol.MessageTrailerSize])
		if out[n-3] != uint8(crc>>8) || out[n-2] != uint8(crc) || out[n-1] != protocol.MessageValueSync {
			t.Fatalf("Bad frame trailer in % X", out[:n])
		}
		if payload := out[protocol.MessageHeaderSize : n-protocol.MessageTrailerSize]; len(payload) > 0 {
			payloads = append(payloads, payload)
		}
		out = out[n:]
	}
	return payloads
}

func hostCommand(seq uint8, cmdID uint16) []byte {
	scratch := protocol.NewScratchOutput()
	scratch.Output([]byte{0, seq})
	protocol.EncodeVLQUint(scratch, uint32(cmdID))
	frame := scratch.Result()
	frame[0] = uint8(len(frame) + protocol.MessageTrailerSize)
	crc := protocol.CRC16(frame)
	return append(append([]byte(nil), frame...), uint8(crc>>8), uint8(crc), protocol.MessageValueSync)
}

func TestReporterPublish(t *testing.T) {
	out := protocol.NewScratchOutput()
	r := NewReporter(out)

	st := Status{Fault: FaultDataNACK, Step: 300}
	r.Publish(st)
	if r.Last() != st {
		t.Errorf("Last() = %v", r.Last())
	}

	payloads := splitFrames(t, out.Result())
	if len(payloads) != 1 {
		t.Fatalf("Expected 1 report, got %d", len(payloads))
	}
	data := payloads[0]
	id, _ := protocol.DecodeVLQUint(&data)
	if uint16(id) != MsgStatus {
		t.Fatalf("Message id %d, want %d", id, MsgStatus)
	}
	got, err := DecodeStatus(&data)
	if err != nil || got != st {
		t.Errorf("DecodeStatus = %v, %v", got, err)
	}
}

func TestReporterCommands(t *testing.T) {
	ClearBusEvents()
	defer ClearBusEvents()
	RecordBusEvent(EvtStart, 0, 0)
	RecordBusEvent(EvtAddress, 0x78, 0)

	out := protocol.NewScratchOutput()
	r := NewReporter(out)

	in := append(hostCommand(0x10, CmdDumpEvents), hostCommand(0x11, CmdClearEvents)...)
	r.Receive(protocol.NewSliceInputBuffer(in))

	payloads := splitFrames(t, out.Result())
	if len(payloads) != 3 {
		t.Fatalf("Expected 2 events and a done marker, got %d reports", len(payloads))
	}
	data := payloads[1]
	protocol.DecodeVLQUint(&data)
	evt, err := DecodeBusEvent(&data)
	if err != nil || evt.EventType != EvtAddress || evt.Value1 != 0x78 || evt.Seq != 1 {
		t.Errorf("DecodeBusEvent = %v, %v", evt, err)
	}
	data = payloads[2]
	id, _ := protocol.DecodeVLQUint(&data)
	count, _ := protocol.DecodeVLQUint(&data)
	if uint16(id) != MsgEventsDone || count != 2 {
		t.Errorf("Done marker id=%d count=%d", id, count)
	}

	if n := len(BusEvents()); n != 0 {
		t.Errorf("clear_events left %d events", n)
	}
}

func TestReporterUnknownCommand(t *testing.T) {
	r := NewReporter(protocol.NewScratchOutput())
	data := []byte{1, 2}
	if err := r.handleCommand(99, &data); err != ErrUnknownCommand {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
	if len(data) != 0 {
		t.Error("Rest of frame not dropped")
	}
}
