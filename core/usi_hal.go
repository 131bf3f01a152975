package core

// USI status register bits (USISR layout on AVR parts)
const (
	StatusStart     uint8 = 1 << 7 // USISIF: start condition detected
	StatusOverflow  uint8 = 1 << 6 // USIOIF: 4-bit edge counter overflowed
	StatusStop      uint8 = 1 << 5 // USIPF: stop condition detected
	StatusCollision uint8 = 1 << 4 // USIDC: output bit differs from SDA line
	StatusCounter   uint8 = 0x0F   // USICNT3:0: edge counter
)

// statusClearFlags written to the status register clears all four flags
const statusClearFlags = StatusStart | StatusOverflow | StatusStop | StatusCollision

// transferStatus returns the status register value that clears all flags and
// presets the edge counter to overflow after n bits (2n clock edges).
func transferStatus(bits uint8) uint8 {
	return statusClearFlags | ((16 - 2*bits) & StatusCounter)
}

// USI is the abstract two-wire shift-register peripheral the bus master drives.
// Platform-specific implementations map it to real registers (AVR USI) or
// emulate it (GPIO bit-banging, host simulation).
//
// "Release" means letting the open-drain line float high through its pull-up.
type USI interface {
	// Configure enables pull-ups, makes both pins outputs, presets the data
	// register to 0xFF, selects two-wire mode with a software clock strobe and
	// clears all flags.
	Configure()

	// SetStatus writes the status register: flag bits written as 1 are cleared,
	// the low nibble loads the edge counter.
	SetStatus(v uint8)

	// Status reads the status register
	Status() uint8

	// SetData loads the shift register
	SetData(b uint8)

	// Data reads the shift register
	Data() uint8

	// StrobeClock toggles SCL through the peripheral (one clock edge) and
	// advances the edge counter.
	StrobeClock()

	// SetSCL releases (true) or pulls low (false) the SCL output latch
	SetSCL(release bool)

	// SCLHigh samples the SCL pin
	SCLHigh() bool

	// SetSDA releases (true) or pulls low (false) the SDA output latch
	SetSDA(release bool)

	// SetSDAOutput switches the SDA pin between output (true) and input (false)
	SetSDAOutput(output bool)
}
