package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"twibang/core"
	"twibang/host/monitor"
	"twibang/host/serial"
)

const flagPort = "port"

var monitorCommand = &cli.Command{
	Name:  "monitor",
	Usage: "talk to firmware reporting bus sessions over USB",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  flagPort,
			Usage: "serial `DEVICE`; overrides the deployment",
		},
	},
	Subcommands: []*cli.Command{
		{
			Name:   "status",
			Usage:  "print the status of the last session",
			Action: withMonitor(statusAction),
		},
		{
			Name:   "events",
			Usage:  "dump the bus event ring",
			Action: withMonitor(eventsAction),
		},
		{
			Name:   "clear",
			Usage:  "clear the bus event ring",
			Action: withMonitor(clearAction),
		},
		{
			Name:   "watch",
			Usage:  "print every session status as it is published",
			Action: withMonitor(watchAction),
		},
	},
}

type monitorAction func(c *cli.Context, m *monitor.Monitor, log *zap.SugaredLogger) error

// withMonitor opens the port for the duration of a subcommand
func withMonitor(action monitorAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := newLogger(c)
		if err != nil {
			return err
		}
		defer log.Sync()

		dep, err := loadDeployment(c)
		if err != nil {
			return err
		}
		cfg := serial.DefaultConfig(dep.Port)
		if p := c.String(flagPort); p != "" {
			cfg.Device = p
		}
		cfg.Baud = dep.Baud

		log.Debugw("opening port", "device", cfg.Device, "baud", cfg.Baud)
		m, err := monitor.Open(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				log.Warnw("close failed", "error", err)
			}
		}()
		return action(c, m, log)
	}
}

func statusAction(c *cli.Context, m *monitor.Monitor, log *zap.SugaredLogger) error {
	st, err := m.QueryStatus()
	if err != nil {
		return err
	}
	fmt.Println(st)
	return nil
}

func eventsAction(c *cli.Context, m *monitor.Monitor, log *zap.SugaredLogger) error {
	events, err := m.DumpEvents()
	for _, evt := range events {
		fmt.Println(evt)
	}
	if err != nil {
		return err
	}
	log.Debugw("events dumped", "count", len(events))
	return nil
}

func clearAction(c *cli.Context, m *monitor.Monitor, log *zap.SugaredLogger) error {
	return m.ClearEvents()
}

func watchAction(c *cli.Context, m *monitor.Monitor, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := m.Watch(ctx, func(st core.Status) {
		if st.OK() {
			log.Infow("session", "status", st.String())
		} else {
			log.Warnw("session faulted", "fault", st.Fault.String(), "step", st.Step)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
