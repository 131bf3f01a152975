// Package serial opens the USB CDC port the firmware reports on
package serial

import (
	"errors"
	"io"
	"time"
)

// ErrNoDevice is returned when no device path is configured
var ErrNoDevice = errors.New("serial: no device given")

// Port is a bidirectional byte stream to the firmware
type Port interface {
	io.ReadWriteCloser

	// Flush discards data not yet read or written
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate; USB CDC ignores it but real UARTs do not
	Baud int

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultConfig returns the configuration used by the monitor
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
