package core

import "time"

// LED is a minimal output pin abstraction
type LED interface {
	High()
	Low()
}

// Blink timing for field diagnostics
const (
	BlinkOn    = 150 * time.Millisecond
	BlinkOff   = 300 * time.Millisecond
	BlinkPause = 1500 * time.Millisecond
)

// Blink shows a fault as a count of LED pulses followed by a pause.
// FaultOK produces no pulses. sleep is usually time.Sleep.
func Blink(led LED, f FaultCode, sleep func(time.Duration)) {
	for i := 0; i < int(f); i++ {
		led.High()
		sleep(BlinkOn)
		led.Low()
		sleep(BlinkOff)
	}
	sleep(BlinkPause)
}

// BlinkStatus shows the fault, then the step at which it happened
func BlinkStatus(led LED, st Status, sleep func(time.Duration)) {
	if st.OK() {
		return
	}
	Blink(led, st.Fault, sleep)
	for i := uint16(0); i < st.Step; i++ {
		led.High()
		sleep(BlinkOn / 3)
		led.Low()
		sleep(BlinkOn / 3)
	}
	sleep(BlinkPause)
}
