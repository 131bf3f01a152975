package core

import (
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestDelayFromMicros(t *testing.T) {
	tests := []struct {
		name string
		us   float64
		cpu  physic.Frequency
		want uint32
	}{
		{"zero", 0, 8 * physic.MegaHertz, 0},
		{"negative", -3, 8 * physic.MegaHertz, 0},
		{"no clock", 1, 0, 0},
		{"exact", 1, 8 * physic.MegaHertz, 8},
		{"rounds up", 0.6, 8 * physic.MegaHertz, 5},
		{"bus free time at 16MHz", 1.3, 16 * physic.MegaHertz, 21},
		{"sub-cycle", 0.01, 1 * physic.MegaHertz, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DelayFromMicros(tt.us, tt.cpu).Cycles(); got != tt.want {
				t.Errorf("DelayFromMicros(%v, %v) = %d cycles, want %d", tt.us, tt.cpu, got, tt.want)
			}
		})
	}
}

func TestDelayMicrosNeverUndershoots(t *testing.T) {
	cpu := 8 * physic.MegaHertz
	for _, us := range []float64{0.1, 0.6, 1.3, 4.7, 100} {
		d := DelayFromMicros(us, cpu)
		if d.Micros(cpu) < us {
			t.Errorf("%vus became %d cycles = %vus", us, d.Cycles(), d.Micros(cpu))
		}
	}
}

func TestStandardProfile(t *testing.T) {
	p := StandardProfile(8*physic.MegaHertz, 0xBC)
	if p.Address != 0x3C {
		t.Errorf("Address not masked to 7 bits: 0x%02X", p.Address)
	}
	if p.Idle.Cycles() != 11 {
		t.Errorf("Idle = %d cycles, want 11", p.Idle.Cycles())
	}
	if p.PostStart.Cycles() != 0 || p.PreClockHigh.Cycles() != 0 || p.PostTransfer.Cycles() != 0 {
		t.Errorf("Zero phases produced cycles: %+v", p)
	}
}

func TestDelayWaitZero(t *testing.T) {
	// Must return without spinning
	Delay{}.Wait()
	DelayFromMicros(1, physic.MegaHertz).Wait()
}

func TestSpinCountRoundsUp(t *testing.T) {
	tests := []struct {
		cycles, perSpin, want uint32
	}{
		{0, 4, 0},
		{1, 4, 1},
		{3, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{8, 4, 2},
		{9, 1, 9},
	}
	for _, tt := range tests {
		if got := spinCount(tt.cycles, tt.perSpin); got != tt.want {
			t.Errorf("spinCount(%d, %d) = %d, want %d", tt.cycles, tt.perSpin, got, tt.want)
		}
	}
	// 0.6us at 1MHz is a single cycle and must still spin
	if d := DelayFromMicros(0.6, physic.MegaHertz); spinCount(d.Cycles(), 4) == 0 {
		t.Errorf("%d cycles spun zero times", d.Cycles())
	}
}
