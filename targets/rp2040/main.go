//go:build rp2040

// Firmware for an RP2040 driving an SSD1306 through an emulated USI on two
// GPIO pins. It shows a running counter, publishes the outcome of every
// frame over USB and blinks faults on the LED.
package main

import (
	"machine"
	"time"

	"periph.io/x/conn/v3/physic"

	"twibang/core"
	"twibang/oled"
	"twibang/protocol"
)

const (
	displayAddress = 0x3C
	framePeriod    = 250 * time.Millisecond
)

var (
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	reporter     *core.Reporter

	msgerrors                uint32
	usbWasDisconnected       bool
	consecutiveWriteFailures uint32
)

func main() {
	// Clear any watchdog state left from before the reset
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}
	InitUSB()
	InitDebugUART()

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	faults := make(chan core.Status, 1)
	go blinkLoop(led, faults)

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()
	reporter = core.NewReporter(outputBuffer)
	reporter.Transport().SetResetCallback(func() {
		inputBuffer.Reset()
		outputBuffer.Reset()
	})
	reporter.Transport().SetFlushCallback(writeUSB)
	go usbReaderLoop()

	cpu := physic.Frequency(machine.CPUFrequency()) * physic.Hertz
	bus, err := core.Claim(newGPIOUSI(machine.GPIO4, machine.GPIO5), core.StandardProfile(cpu, displayAddress))
	if err != nil {
		DebugPrintln("claim failed: " + err.Error())
		return
	}

	st := oled.NewChat(bus, 0).
		Init().
		SetAddressingMode(oled.VerticalAddressing).
		SetEnabled(true).
		Stop()
	publish(st, faults)

	next := time.Now()
	for count := 0; ; {
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			if inputBuffer.Available() > 0 {
				reporter.Receive(inputBuffer)
			}
			if len(outputBuffer.Result()) > 0 {
				writeUSB()
			}
		}()

		if time.Now().After(next) {
			next = next.Add(framePeriod)
			st = oled.NewQuarterChat(bus, 1, 0, oled.Width-1).
				Send4Hex(uint16(count)).
				Stop()
			if st.OK() {
				st = oled.NewQuarterChat(bus, 2, 0, oled.Width-1).
					Send4Dec(count).
					Stop()
			}
			publish(st, faults)
			count++
		}

		time.Sleep(10 * time.Microsecond)
	}
}

// publish reports a frame outcome to the host and hands faults to the LED
func publish(st core.Status, faults chan<- core.Status) {
	reporter.Publish(st)
	writeUSB()
	if st.OK() {
		return
	}
	core.DumpBusEvents()
	select {
	case faults <- st:
	default:
		// Still blinking the previous fault
	}
}

func blinkLoop(led core.LED, faults <-chan core.Status) {
	for st := range faults {
		core.BlinkStatus(led, st, time.Sleep)
	}
}

// usbReaderLoop moves bytes from USB into the input FIFO
func usbReaderLoop() {
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		if USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(time.Millisecond)
				continue
			}

			if usbWasDisconnected {
				usbWasDisconnected = false
				inputBuffer.Reset()
				outputBuffer.Reset()
				reporter.Transport().Reset()
				consecutiveWriteFailures = 0
			}

			if inputBuffer.Write([]byte{data}) == 0 {
				msgerrors++
				time.Sleep(10 * time.Millisecond)
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// writeUSB sends the pending output; repeated failures mark the host gone
func writeUSB() {
	result := outputBuffer.Result()
	written := 0
	for written < len(result) {
		n, err := USBWriteBytes(result[written:])
		if err != nil || n == 0 {
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				usbWasDisconnected = true
				consecutiveWriteFailures = 0
				outputBuffer.Reset()
				inputBuffer.Reset()
			}
			return
		}
		written += n
	}
	consecutiveWriteFailures = 0
	outputBuffer.Reset()
}
