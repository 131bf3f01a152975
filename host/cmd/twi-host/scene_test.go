package main

import (
	"errors"
	"testing"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zaptest"

	"twibang/config"
	"twibang/core"
	"twibang/host/usisim"
	"twibang/oled"
)

func TestSceneDrawsFrames(t *testing.T) {
	sim, display, bus, err := simBus(config.Default(), usisim.Faults{})
	if err != nil {
		t.Fatalf("simBus: %v", err)
	}
	defer bus.Release()

	if st := setupDisplay(bus); !st.OK() || st.Step != 14 {
		t.Fatalf("Setup: %v", st)
	}
	if display.Mode() != uint8(oled.VerticalAddressing) || !display.On() {
		t.Fatalf("Display not set up: mode %d, on %v", display.Mode(), display.On())
	}

	sc := newScene(bus)
	for i := 0; i < 3; i++ {
		if st := sc.draw(); !st.OK() {
			t.Fatalf("Frame %d: %v", i, st)
		}
	}
	if sc.frame != 3 {
		t.Errorf("Expected 3 frames, got %d", sc.frame)
	}

	// The hex quarter shows the last frame number, 0002
	want := oled.HexDigit(2)
	for i, seg := range want {
		x := 3*oled.DigitWidth + oled.DigitMargin + i
		if display.Segment(x, 2) != seg<<4 || display.Segment(x, 3) != seg>>4 {
			t.Errorf("Column %d does not show digit 2", x)
		}
	}
	if sim.Stats().Starts != sim.Stats().Stops {
		t.Errorf("Unbalanced conditions: %+v", sim.Stats())
	}
}

func TestSceneStopsAtFault(t *testing.T) {
	_, _, bus, err := simBus(config.Default(), usisim.Faults{NACKByte: 40})
	if err != nil {
		t.Fatalf("simBus: %v", err)
	}
	defer bus.Release()

	if st := setupDisplay(bus); !st.OK() {
		t.Fatalf("Setup: %v", st)
	}
	st := newScene(bus).draw()
	if st.Fault != core.FaultDataNACK || st.Step != oled.QuarterStep+40 {
		t.Errorf("Expected data NACK at step %d, got %v", oled.QuarterStep+40, st)
	}
}

func TestReportStatusExitCode(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()

	if err := reportStatus(log, core.Status{Step: 3}); err != nil {
		t.Errorf("OK status returned %v", err)
	}

	err := reportStatus(log, core.Status{Fault: core.FaultClockHighTimeout, Step: 7})
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 11 {
		t.Errorf("Expected exit code 11, got %v", err)
	}
}
