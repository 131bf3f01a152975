package core

import "testing"

func TestAddressPrefix(t *testing.T) {
	if p := AddressPrefix(0x3C, DirSend); p != 0x78 {
		t.Errorf("Send prefix = 0x%02X, want 0x78", p)
	}
	if p := AddressPrefix(0x3C, DirReceive); p != 0x79 {
		t.Errorf("Receive prefix = 0x%02X, want 0x79", p)
	}
	if p := AddressPrefix(0xFF, DirSend); p != 0xFE {
		t.Errorf("Address not masked: 0x%02X", p)
	}
}

func TestTransmitAddressAfterStart(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	if fault := b.start(); fault != FaultOK {
		t.Fatalf("start() = %v", fault)
	}
	if fault := b.transmit(0x78, true); fault != FaultOK {
		t.Fatalf("Address phase after start = %v", fault)
	}
	if len(f.sent) != 1 || f.sent[0] != 0x78 {
		t.Errorf("Sent %X, want [78]", f.sent)
	}
	if f.received != 1 {
		t.Errorf("Sampled %d peer bits, want the ACK only", f.received)
	}
	// The transfer consumed the start flag, so a data byte is valid now
	if fault := b.transmit(0x42, false); fault != FaultOK {
		t.Errorf("Data phase = %v", fault)
	}
}

func TestTransmitPhaseValidation(t *testing.T) {
	tests := []struct {
		name      string
		status    uint8
		isAddress bool
		want      FaultCode
	}{
		{"address without start", 0, true, FaultMissingStart},
		{"data with fresh start", StatusStart, false, FaultUnexpectedStart},
		{"data after stop", StatusStop, false, FaultUnexpectedStop},
		{"address after previous stop", StatusStart | StatusStop, true, FaultOK},
		{"collision", StatusStart | StatusCollision, true, FaultDataCollision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeUSI()
			b, _ := claimTestBus(t, f)
			f.status = tt.status
			f.sclLatch = false

			before := f.strobes
			got := b.transmit(0x78, tt.isAddress)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if tt.want != FaultOK && f.strobes != before {
				t.Errorf("Rejected transmit clocked the bus")
			}
		})
	}
}

func TestTransmitNACK(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	f.peerNack()
	b.start()
	if fault := b.transmit(0x78, true); fault != FaultAddressNACK {
		t.Errorf("Expected address nack, got %v", fault)
	}

	f.peerAck()
	f.peerNack()
	b.start()
	if fault := b.transmit(0x78, true); fault != FaultOK {
		t.Fatalf("Address = %v", fault)
	}
	if fault := b.transmit(0x00, false); fault != FaultDataNACK {
		t.Errorf("Expected data nack, got %v", fault)
	}
}
