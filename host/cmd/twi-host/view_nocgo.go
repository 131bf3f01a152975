//go:build !cgo

package main

import "github.com/urfave/cli/v2"

var viewCommand = &cli.Command{
	Name:  "view",
	Usage: "animate the demo on a simulated display (needs a cgo build)",
	Action: func(c *cli.Context) error {
		return cli.Exit("view: twi-host was built without cgo", 1)
	},
}
