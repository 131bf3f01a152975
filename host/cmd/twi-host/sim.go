package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"twibang/config"
	"twibang/core"
	"twibang/host/usisim"
)

const (
	flagFrames    = "frames"
	flagStretch   = "stretch"
	flagHoldSCL   = "hold-scl"
	flagHoldSDA   = "hold-sda"
	flagDropStart = "drop-start"
	flagDropStop  = "drop-stop"
	flagNACKByte  = "nack-byte"
	flagTrace     = "trace"
)

var faultFlags = []cli.Flag{
	&cli.IntFlag{Name: flagStretch, Usage: "delay every rising SCL edge by `N` polls"},
	&cli.BoolFlag{Name: flagHoldSCL, Usage: "hold SCL low"},
	&cli.BoolFlag{Name: flagHoldSDA, Usage: "hold SDA low"},
	&cli.BoolFlag{Name: flagDropStart, Usage: "never raise the start flag"},
	&cli.BoolFlag{Name: flagDropStop, Usage: "never raise the stop flag"},
	&cli.IntFlag{Name: flagNACKByte, Usage: "refuse the `N`-th data byte of each conversation"},
}

var simCommand = &cli.Command{
	Name:  "sim",
	Usage: "draw demo frames on a simulated display and print it",
	Flags: append([]cli.Flag{
		&cli.IntFlag{Name: flagFrames, Value: 1, Usage: "number of frames to draw"},
		&cli.BoolFlag{Name: flagTrace, Usage: "print the bus transaction trace"},
	}, faultFlags...),
	Action: simAction,
}

func faultsFromFlags(c *cli.Context) usisim.Faults {
	return usisim.Faults{
		HoldSCL:      c.Bool(flagHoldSCL),
		StretchPolls: c.Int(flagStretch),
		HoldSDA:      c.Bool(flagHoldSDA),
		DropStart:    c.Bool(flagDropStart),
		DropStop:     c.Bool(flagDropStop),
		NACKByte:     c.Int(flagNACKByte),
	}
}

// simBus builds a simulator with a display attached and claims it
func simBus(dep *config.Deployment, faults usisim.Faults) (*usisim.Sim, *usisim.SSD1306, *core.Bus, error) {
	profile, err := dep.Profile()
	if err != nil {
		return nil, nil, nil, err
	}
	sim := usisim.New()
	display := usisim.NewSSD1306()
	sim.Attach(profile.Address, display)
	sim.SetFaults(faults)

	bus, err := core.Claim(sim, profile)
	if err != nil {
		return nil, nil, nil, err
	}
	return sim, display, bus, nil
}

func simAction(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	dep, err := loadDeployment(c)
	if err != nil {
		return err
	}
	sim, display, bus, err := simBus(dep, faultsFromFlags(c))
	if err != nil {
		return err
	}
	defer bus.Release()

	core.SetDebugWriter(func(s string) { log.Debug(s) })
	core.SetDebugEnabled(c.Bool(flagDebug))
	core.ClearBusEvents()

	st := setupDisplay(bus)
	log.Debugw("display setup", "status", st.String())
	if st.OK() {
		sc := newScene(bus)
		for i := 0; i < c.Int(flagFrames) && st.OK(); i++ {
			st = sc.draw()
			log.Debugw("frame drawn", "frame", i, "status", st.String())
		}
	}

	fmt.Print(display.Render('#', '.'))
	if c.Bool(flagTrace) {
		for _, evt := range sim.Trace() {
			fmt.Println(evt)
		}
	}

	stats := sim.Stats()
	log.Infow("bus activity",
		"strobes", stats.Strobes,
		"polls", stats.Polls,
		"starts", stats.Starts,
		"stops", stats.Stops,
	)
	return reportStatus(log, st)
}

// reportStatus logs the final outcome. A fault becomes the exit code, the
// same count the firmware blinks.
func reportStatus(log *zap.SugaredLogger, st core.Status) error {
	if st.OK() {
		log.Infow("conversation finished", "status", st.String())
		return nil
	}
	log.Warnw("conversation faulted", "fault", st.Fault.String(), "step", st.Step)
	core.DumpBusEvents()
	return cli.Exit(st.String(), int(st.Fault))
}
