// Command odimtool inspects and creates ODIM_H5 weather radar files.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-odim/odim"
)

var (
	// Version is the release tag, set at build time.
	Version = "git"
	// Build is the commit hash, set at build time.
	Build = "norev"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "odimtool:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	return &cli.App{
		Name:    "odimtool",
		Usage:   "inspect and create ODIM_H5 radar files",
		Version: Version + " (" + Build + ")",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log debug events to stderr",
				EnvVars: []string{"ODIM_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(logrus.DebugLevel)
			}
			c.App.Metadata = map[string]interface{}{"log": log}
			return nil
		},
		Commands: []*cli.Command{
			infoCommand(),
			treeCommand(),
			rawCommand(),
			newCommand(),
		},
	}
}

func logger(c *cli.Context) logrus.FieldLogger {
	if log, ok := c.App.Metadata["log"].(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}

// openArg opens the file named by the single argument of c.
func openArg(c *cli.Context) (odim.Object, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit(fmt.Sprintf("usage: odimtool %s <file.h5>", c.Command.Name), 2)
	}
	return odim.Open(c.Args().First(), odim.WithLogger(logger(c)))
}
