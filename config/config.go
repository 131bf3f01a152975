// Package config loads bus deployment settings from JSON files
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"periph.io/x/conn/v3/physic"

	"twibang/core"
)

// Defaults used when a file leaves a field out
const (
	DefaultCPU     = "8MHz"
	DefaultAddress = 0x3C
	DefaultBaud    = 115200
)

var errAddressRange = errors.New("address must be a 7-bit value")

// Deployment describes one board and its display
type Deployment struct {
	CPU     string              `json:"cpu"`     // CPU clock, e.g. "8MHz"
	Address uint8               `json:"address"` // 7-bit display address
	Timing  *core.ProfileMicros `json:"timing"`  // Bus delays in microseconds
	Port    string              `json:"port"`    // Serial device of the status reporter
	Baud    int                 `json:"baud"`
}

// Load parses a JSON deployment and fills in defaults
func Load(jsonData []byte) (*Deployment, error) {
	var d Deployment
	if err := json.Unmarshal(jsonData, &d); err != nil {
		return nil, err
	}
	applyDefaults(&d)
	if d.Address > 0x7F {
		return nil, errAddressRange
	}
	if _, err := d.Frequency(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads and parses a deployment file
func LoadFile(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	d, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// applyDefaults fills in missing values
func applyDefaults(d *Deployment) {
	if d.CPU == "" {
		d.CPU = DefaultCPU
	}
	if d.Address == 0 {
		d.Address = DefaultAddress
	}
	if d.Timing == nil {
		t := core.StandardMicros
		d.Timing = &t
	}
	if d.Baud == 0 {
		d.Baud = DefaultBaud
	}
}

// Default returns the deployment used when no file is given
func Default() *Deployment {
	d := &Deployment{}
	applyDefaults(d)
	return d
}

// Frequency parses the CPU clock
func (d *Deployment) Frequency() (physic.Frequency, error) {
	var f physic.Frequency
	if err := f.Set(d.CPU); err != nil {
		return 0, fmt.Errorf("invalid cpu %q: %w", d.CPU, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("invalid cpu %q: must be positive", d.CPU)
	}
	return f, nil
}

// Profile derives the timing profile for the deployment
func (d *Deployment) Profile() (core.TimingProfile, error) {
	f, err := d.Frequency()
	if err != nil {
		return core.TimingProfile{}, err
	}
	return core.NewProfile(*d.Timing, f, d.Address), nil
}
