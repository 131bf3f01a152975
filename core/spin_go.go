//go:build !tinygo

package core

// spinSink keeps the host busy loop from being optimised away
var spinSink uint32

// spinCycles busy-waits for roughly n CPU cycles (regular Go implementation).
// Host builds only run against simulated peripherals, so precision is irrelevant.
func spinCycles(n uint32) {
	for i := uint32(0); i < n; i++ {
		spinSink += i
	}
}
