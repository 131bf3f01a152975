package core

import (
	"bytes"
	"testing"
)

func TestSessionCleanRoundTrip(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	s := NewSession(b, 7)
	if !s.OK() {
		t.Fatalf("Session faulted on open: %v", s.Fault())
	}
	st := s.Stop()
	if st != (Status{Fault: FaultOK, Step: 7}) {
		t.Errorf("Expected ok at step 7, got %v", st)
	}
	if f.starts != 1 || f.stops != 1 {
		t.Errorf("starts=%d stops=%d", f.starts, f.stops)
	}
	if b.Busy() {
		t.Error("Bus still busy after Stop")
	}
}

func TestSessionStepAccounting(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	st := NewSession(b, 0).
		Send(0x00).
		Send(0xAE).
		SendRepeated(4, 0x00).
		SendAll([]byte{0x80, 0x14}).
		Stop()
	if st != (Status{Fault: FaultOK, Step: 8}) {
		t.Errorf("Expected ok at step 8, got %v", st)
	}
	if len(f.sent) != 9 {
		t.Errorf("Sent %d bytes, want address plus 8", len(f.sent))
	}
}

func TestSessionFirstFaultWins(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	// Address and two data bytes acknowledged, the third refused
	f.peerAck()
	f.peerAck()
	f.peerAck()
	f.peerNack()

	s := NewSession(b, 10).Send(1).Send(2).Send(3)
	if s.Fault() != FaultDataNACK || s.Step() != 13 {
		t.Fatalf("Expected data nack at step 13, got %v at %d", s.Fault(), s.Step())
	}

	touches := f.touches
	s.Send(4).SendRepeated(100, 5).SendAll([]byte{6, 7})
	buf := []byte{0xEE}
	if fault := s.Receive(buf); fault != FaultDataNACK {
		t.Errorf("Receive after fault returned %v", fault)
	}
	st := s.Stop()
	if f.touches != touches {
		t.Errorf("Faulted session touched the hardware %d times", f.touches-touches)
	}
	if st != (Status{Fault: FaultDataNACK, Step: 13}) {
		t.Errorf("Expected data nack at step 13, got %v", st)
	}
	if buf[0] != 0xEE {
		t.Error("Faulted receive wrote the buffer")
	}
	if f.stops != 0 {
		t.Error("Faulted session generated a stop")
	}
}

func TestSessionAddressFault(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	f.peerNack()
	s := NewSession(b, 3)
	if s.OK() {
		t.Fatal("Session OK despite address nack")
	}
	st := s.Send(1).Stop()
	if st != (Status{Fault: FaultAddressNACK, Step: 3}) {
		t.Errorf("Expected address nack at step 3, got %v", st)
	}
	if st.String() != "address nack at step 3" {
		t.Errorf("Status string %q", st.String())
	}
}

func TestSessionReceive(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	f.peerAck() // Write address
	f.peerAck() // Register
	f.peerAck() // Read address
	f.peerByte(0xDE)
	f.peerByte(0xAD)

	s := NewSession(b, 0).Send(0x10)
	buf := make([]byte, 2)
	if fault := s.Receive(buf); fault != FaultOK {
		t.Fatalf("Receive = %v", fault)
	}
	if !bytes.Equal(buf, []byte{0xDE, 0xAD}) {
		t.Errorf("Received %X", buf)
	}
	st := s.Stop()
	if st != (Status{Fault: FaultOK, Step: 2}) {
		t.Errorf("Expected ok at step 2, got %v", st)
	}
	// Receive already ended the conversation
	if f.stops != 1 {
		t.Errorf("Generated %d stops, want 1", f.stops)
	}
	if f.starts != 2 {
		t.Errorf("Generated %d starts, want start and repeated start", f.starts)
	}
}

func TestSessionExclusive(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	s := NewSession(b, 0)
	func() {
		defer func() {
			if recover() == nil {
				t.Error("Second session did not panic")
			}
		}()
		NewSession(b, 0)
	}()

	if err := b.Release(); err != ErrSessionOpen {
		t.Errorf("Release with open session: %v", err)
	}
	if err := b.Tx(0x3C, []byte{0}, nil); err != ErrSessionOpen {
		t.Errorf("Tx with open session: %v", err)
	}

	s.Stop()
	if b.Busy() {
		t.Error("Stop did not free the bus")
	}
	NewSession(b, 0).Stop()
}

func TestSessionFreesBusAfterFault(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	f.peerNack()
	NewSession(b, 0).Stop()
	if b.Busy() {
		t.Error("Faulted session kept the bus")
	}
}

// setupDisplay stands for a higher layer that hands its session on
func setupDisplay(s *Session) *Session {
	return s.Send(0x00).Send(0xAF)
}

func TestSessionLayering(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	f.peerAck()
	f.peerNack()

	s := setupDisplay(NewSession(b, 0))
	st := s.Send(0x40).SendRepeated(8, 0xFF).Stop()
	if st != (Status{Fault: FaultDataNACK, Step: 1}) {
		t.Errorf("Expected data nack at step 1, got %v", st)
	}
}

func TestStoppedSessionLeavesNextConversationAlone(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	s1 := NewSession(b, 0)
	s1.Stop()
	s2 := NewSession(b, 100)
	touches, sent := f.touches, len(f.sent)

	s1.Send(0x42).SendRepeated(3, 0x43)
	if f.touches != touches || len(f.sent) != sent {
		t.Errorf("Stopped session reached the hardware: %d touches, %d bytes", f.touches-touches, len(f.sent)-sent)
	}
	if s1.Fault() != FaultMissingStart || s1.Step() != 0 {
		t.Errorf("Expected missing start at step 0, got %v at %d", s1.Fault(), s1.Step())
	}
	if st := s1.Stop(); st != (Status{Fault: FaultMissingStart, Step: 0}) {
		t.Errorf("Stale stop = %v", st)
	}
	if !b.Busy() {
		t.Fatal("Stale stop freed the newer session's bus")
	}

	st := s2.Send(0x01).Stop()
	if st != (Status{Fault: FaultOK, Step: 101}) {
		t.Errorf("Expected ok at step 101, got %v", st)
	}
	if got := f.sent[len(f.sent)-1]; got != 0x01 {
		t.Errorf("Last byte on the bus 0x%02X, want 0x01", got)
	}
}

func TestStoppedSessionReceiveStartsNothing(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	s := NewSession(b, 5)
	s.Stop()
	starts, touches := f.starts, f.touches

	buf := []byte{0xEE}
	if fault := s.Receive(buf); fault != FaultMissingStart {
		t.Errorf("Expected missing start, got %v", fault)
	}
	if f.starts != starts || f.touches != touches {
		t.Errorf("Stopped session opened a conversation: %d starts", f.starts-starts)
	}
	if buf[0] != 0xEE || s.Step() != 5 {
		t.Errorf("buf %X step %d", buf, s.Step())
	}
	if b.Busy() {
		t.Error("Bus claimed by a stopped session")
	}
}
