package core

import (
	"math"

	"periph.io/x/conn/v3/physic"
)

// SCLPollLimit bounds every wait for SCL to read high.
// It is a poll count, not a deadline: its wall-clock length depends on the CPU
// frequency and must be reconsidered whenever the timing profile changes.
const SCLPollLimit = 256

// Delay is a busy-wait length in CPU cycles.
type Delay struct {
	cycles uint32
}

// DelayFromMicros converts a duration in microseconds to CPU cycles at the given
// clock frequency. Fractional cycles round up so a delay never undershoots.
// Zero or negative durations, and non-positive frequencies, yield zero cycles.
func DelayFromMicros(us float64, cpu physic.Frequency) Delay {
	if !(us > 0) || cpu <= 0 {
		return Delay{}
	}
	hz := float64(cpu) / float64(physic.Hertz)
	cycles := math.Ceil(us * hz / 1e6)
	if cycles >= math.MaxUint32 {
		return Delay{cycles: math.MaxUint32}
	}
	return Delay{cycles: uint32(cycles)}
}

// Cycles returns the delay length in CPU cycles
func (d Delay) Cycles() uint32 {
	return d.cycles
}

// Micros converts the delay back to microseconds at the given clock frequency
func (d Delay) Micros(cpu physic.Frequency) float64 {
	if cpu <= 0 {
		return 0
	}
	hz := float64(cpu) / float64(physic.Hertz)
	return float64(d.cycles) * 1e6 / hz
}

// Wait busy-waits for the delay
func (d Delay) Wait() {
	if d.cycles == 0 {
		return
	}
	spinCycles(d.cycles)
}

// spinCount returns the loop iterations needed to burn at least cycles CPU
// cycles when one iteration costs perSpin cycles
func spinCount(cycles, perSpin uint32) uint32 {
	return (cycles + perSpin - 1) / perSpin
}

// TimingProfile is the per-deployment set of bus delays plus the address of the
// display controller. It is built once and never modified.
type TimingProfile struct {
	PreStart      Delay // SDA low to SCL low when generating a start (hold time)
	PostStart     Delay // After releasing SDA at the end of a start
	PreStop       Delay // SCL high to SDA release when generating a stop (setup time)
	Idle          Delay // Bus free time after a stop
	PreClockHigh  Delay // Before every rising SCL edge
	PostClockHigh Delay // SCL high period before the falling edge
	PostTransfer  Delay // After the last edge of a 1 or 8 bit transfer

	Address uint8 // 7-bit device address
}

// ProfileMicros is a timing profile expressed in microseconds.
// It is the form profiles are written in, both in Go and in JSON files.
type ProfileMicros struct {
	PreStart      float64 `json:"pre_start"`
	PostStart     float64 `json:"post_start"`
	PreStop       float64 `json:"pre_stop"`
	Idle          float64 `json:"idle"`
	PreClockHigh  float64 `json:"pre_clock_high"`
	PostClockHigh float64 `json:"post_clock_high"`
	PostTransfer  float64 `json:"post_transfer"`
}

// StandardMicros follows the fast-mode minimums that matter on an SSD1306.
// Only the bus free time after a stop proved significant in practice; the
// other phases are already longer than required because of instruction overhead.
var StandardMicros = ProfileMicros{
	PreStart:      0.6,
	PostStart:     0,
	PreStop:       0.6,
	Idle:          1.3,
	PreClockHigh:  0,
	PostClockHigh: 0.6,
	PostTransfer:  0,
}

// NewProfile derives a TimingProfile for the given CPU clock
func NewProfile(us ProfileMicros, cpu physic.Frequency, address uint8) TimingProfile {
	return TimingProfile{
		PreStart:      DelayFromMicros(us.PreStart, cpu),
		PostStart:     DelayFromMicros(us.PostStart, cpu),
		PreStop:       DelayFromMicros(us.PreStop, cpu),
		Idle:          DelayFromMicros(us.Idle, cpu),
		PreClockHigh:  DelayFromMicros(us.PreClockHigh, cpu),
		PostClockHigh: DelayFromMicros(us.PostClockHigh, cpu),
		PostTransfer:  DelayFromMicros(us.PostTransfer, cpu),
		Address:       address & 0x7F,
	}
}

// StandardProfile returns the standard timings for the given CPU clock
func StandardProfile(cpu physic.Frequency, address uint8) TimingProfile {
	return NewProfile(StandardMicros, cpu, address)
}
