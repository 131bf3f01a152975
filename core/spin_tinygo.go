//go:build tinygo

package core

import "device"

// cyclesPerSpin is the cost of one loop iteration below (nop, increment,
// compare, branch) on the slowest supported core.
const cyclesPerSpin = 4

// spinCycles busy-waits for at least n CPU cycles
func spinCycles(n uint32) {
	for i := spinCount(n, cyclesPerSpin); i > 0; i-- {
		device.Asm("nop")
	}
}
