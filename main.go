package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/slighter12/tres-devtools-go/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "tres-devtools"
	app.Usage = "mirror a running 3D scene and stream it to devtools panels"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "config file (.json, .yaml, .yml or .toml)",
			EnvVar: "TRES_DEVTOOLS_CONFIG_PATH",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "serve devtools state to observer panels",
			Description: `
Start the observer HTTP server. Panels read snapshots from the panel route and
follow live updates on its event stream. With --stdin, host messages are read
as newline-delimited JSON from standard input.`,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "stdin",
					Usage: "read host messages from stdin",
				},
				cli.BoolFlag{
					Name:  "watch",
					Usage: "reload logging settings when the config file changes",
				},
				cli.IntFlag{
					Name:  "port, p",
					Usage: "override the configured port",
				},
				cli.StringFlag{
					Name:  "host",
					Usage: "override the configured host",
				},
			},
			Action: cmd.Serve,
		},
		{
			Name:      "replay",
			Usage:     "replay recorded host sessions and print the resulting state",
			ArgsUsage: "session1.jsonl session2.jsonl ...",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "print the final state as JSON instead of tables",
				},
			},
			Action: cmd.Replay,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
