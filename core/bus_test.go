package core

import (
	"bytes"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

func TestClaimIsExclusive(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	if !f.configured {
		t.Error("Claim did not configure the peripheral")
	}
	if _, err := Claim(newFakeUSI(), testProfile); err != ErrBusClaimed {
		t.Errorf("Second claim: expected ErrBusClaimed, got %v", err)
	}
	if b.Profile() != testProfile {
		t.Errorf("Profile not kept")
	}
}

func TestReleaseAllowsReclaim(t *testing.T) {
	b, err := Claim(newFakeUSI(), testProfile)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := b.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := b.Release(); err != nil {
		t.Errorf("Second Release: %v", err)
	}
	b2, err := Claim(newFakeUSI(), testProfile)
	if err != nil {
		t.Fatalf("Reclaim: %v", err)
	}
	b2.Release()

	if _, err := Claim(nil, testProfile); err == nil {
		t.Error("Claim accepted a nil peripheral")
	}
}

func TestTxWriteRead(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	f.peerAck()
	f.peerAck()
	f.peerAck()
	f.peerByte(0x5A)

	r := make([]byte, 1)
	if err := b.ReadRegister(0x50, 0x07, r); err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if r[0] != 0x5A {
		t.Errorf("Read 0x%02X, want 0x5A", r[0])
	}
	want := []byte{0xA0, 0x07, 0xA1}
	if !bytes.Equal(f.sent, want) {
		t.Errorf("Wire bytes %X, want %X", f.sent, want)
	}
}

func TestTxWriteOnly(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	if err := b.WriteRegister(0x3C, 0x00, []byte{0xAE, 0xAF}); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	want := []byte{0x78, 0x00, 0xAE, 0xAF}
	if !bytes.Equal(f.sent, want) {
		t.Errorf("Wire bytes %X, want %X", f.sent, want)
	}
	if f.stops != 1 {
		t.Errorf("Generated %d stops", f.stops)
	}
}

func TestTxErrors(t *testing.T) {
	f := newFakeUSI()
	b, _ := claimTestBus(t, f)

	if err := b.Tx(0x3FF, []byte{0}, nil); err != errTenBitAddress {
		t.Errorf("10-bit address: %v", err)
	}
	f.peerNack()
	err := b.Tx(0x3C, []byte{0}, nil)
	if fc, ok := err.(FaultCode); !ok || fc != FaultAddressNACK {
		t.Errorf("Expected address nack error, got %v", err)
	}
	if err := b.SetSpeed(400 * physic.KiloHertz); err != ErrSpeedFixed {
		t.Errorf("SetSpeed: %v", err)
	}
	if s := b.String(); s != "twi(usi, device 0x3c)" {
		t.Errorf("String() = %q", s)
	}
}

type countingLED struct {
	highs, lows int
}

func (l *countingLED) High() { l.highs++ }
func (l *countingLED) Low()  { l.lows++ }

func TestBlink(t *testing.T) {
	var slept time.Duration
	sleep := func(d time.Duration) { slept += d }

	led := &countingLED{}
	Blink(led, FaultClockHighTimeout, sleep)
	if led.highs != 11 || led.lows != 11 {
		t.Errorf("Expected 11 pulses, got %d/%d", led.highs, led.lows)
	}
	if want := 11*(BlinkOn+BlinkOff) + BlinkPause; slept != want {
		t.Errorf("Slept %v, want %v", slept, want)
	}

	led = &countingLED{}
	BlinkStatus(led, Status{Fault: FaultOK, Step: 4}, sleep)
	if led.highs != 0 {
		t.Error("Success blinked")
	}
	BlinkStatus(led, Status{Fault: FaultDataNACK, Step: 3}, sleep)
	if led.highs != 2+3 {
		t.Errorf("Expected 5 pulses, got %d", led.highs)
	}
}

func TestReleasedBusRefusesWork(t *testing.T) {
	f := newFakeUSI()
	b, err := Claim(f, testProfile)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := b.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !b.Released() {
		t.Error("Released() = false after Release")
	}
	touches := f.touches

	if err := b.Tx(0x3C, []byte{0}, nil); err != ErrReleased {
		t.Errorf("Tx: expected ErrReleased, got %v", err)
	}
	if fault := b.StartSending(); fault != FaultMissingStart {
		t.Errorf("StartSending = %v", fault)
	}
	if fault := b.Send(0); fault != FaultMissingStart {
		t.Errorf("Send = %v", fault)
	}
	if fault := b.Receive(make([]byte, 1)); fault != FaultMissingStart {
		t.Errorf("Receive = %v", fault)
	}
	if fault := b.Stop(); fault != FaultMissingStop {
		t.Errorf("Stop = %v", fault)
	}

	st := NewSession(b, 2).Send(1).Stop()
	if st != (Status{Fault: FaultMissingStart, Step: 2}) {
		t.Errorf("Expected missing start at step 2, got %v", st)
	}
	if b.Busy() {
		t.Error("Session registered on a released bus")
	}
	if f.touches != touches {
		t.Errorf("Released bus touched the peripheral %d times", f.touches-touches)
	}
}
