package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"twibang/core"
)

var profileCommand = &cli.Command{
	Name:   "profile",
	Usage:  "print the delays derived from the deployment",
	Action: profileAction,
}

func profileAction(c *cli.Context) error {
	dep, err := loadDeployment(c)
	if err != nil {
		return err
	}
	cpu, err := dep.Frequency()
	if err != nil {
		return err
	}
	p, err := dep.Profile()
	if err != nil {
		return err
	}

	fmt.Printf("cpu %s, address 0x%02x, SCL poll limit %d\n", cpu, p.Address, core.SCLPollLimit)
	delays := []struct {
		name string
		d    core.Delay
	}{
		{"pre_start", p.PreStart},
		{"post_start", p.PostStart},
		{"pre_stop", p.PreStop},
		{"idle", p.Idle},
		{"pre_clock_high", p.PreClockHigh},
		{"post_clock_high", p.PostClockHigh},
		{"post_transfer", p.PostTransfer},
	}
	for _, d := range delays {
		fmt.Printf("  %-16s %6d cycles %8.3f us\n", d.name, d.d.Cycles(), d.d.Micros(cpu))
	}
	return nil
}
