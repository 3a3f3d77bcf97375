package main

import (
	"fmt"
	"os"

	"github.com/dargueta/blocksim"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "blocksim",
		Usage: "Simulate how FAT32, NTFS and EXT allocate blocks for files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "state",
				Usage:   "state file; a .zst suffix compresses it",
				Value:   "filesystem_data.json",
				EnvVars: []string{"BLOCKSIM_STATE"},
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "host directory that holds file contents",
				Value:   ".",
				EnvVars: []string{"BLOCKSIM_ROOT"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error; logging is off if not set",
				EnvVars: []string{"BLOCKSIM_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print listings as JSON",
			},
		},
		Before: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]interface{})
			}
			c.App.Metadata[sessionKey] = s
			return nil
		},
		Commands: commands(),
	}
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", blocksim.KindOf(err), err.Error())
		os.Exit(1)
	}
}
