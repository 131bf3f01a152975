// Command twi-host runs display conversations on the simulated bus, shows the
// result, and talks to firmware that reports bus sessions over USB.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"twibang/config"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
)

func main() {
	app := &cli.App{
		Name:            "twi-host",
		Usage:           "simulate and monitor the bit-banged two-wire display bus",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load the deployment from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			simCommand,
			viewCommand,
			monitorCommand,
			profileCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the console logger for a command
func newLogger(c *cli.Context) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if c.Bool(flagDebug) {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// loadDeployment reads --config, or returns the defaults
func loadDeployment(c *cli.Context) (*config.Deployment, error) {
	path := c.String(flagConfig)
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}
