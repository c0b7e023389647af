package main

import (
	"os"
	"strings"

	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lockfile"
	"github.com/lalbuild/lal/internal/propagate"
)

// PropagateCommand implements `lal propagate <name> [-j]`.
type PropagateCommand struct{ app *app }

func (c *PropagateCommand) Synopsis() string { return "Print an update plan for a leaf dependency" }

func (c *PropagateCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal propagate <name> [-j]

  -j   Print the machine-readable JSON form instead of the pretty one.
`)
}

func (c *PropagateCommand) Run(args []string) int {
	var leaf string
	var asJSON bool
	for _, arg := range args {
		switch arg {
		case "-j", "--json":
			asJSON = true
		default:
			leaf = arg
		}
	}
	if leaf == "" {
		c.app.ui.Error("usage: lal propagate <name> [-j]")
		return 1
	}

	m, err := c.app.loadManifest()
	if err != nil {
		c.app.logError(err)
		return 1
	}
	lf := lockfile.New(m.Name, environment.None(), m.Environment, "", "")
	lf, err = lf.PopulateFromInput(c.app.dir)
	if err != nil {
		c.app.logError(err)
		return 1
	}

	stages, found := propagate.Plan(lf, leaf)
	if !found {
		c.app.logger.Warn("leaf not found in the dependency tree", "name", leaf)
		if asJSON {
			_ = propagate.PrintJSON(os.Stdout, nil)
		} else {
			propagate.PrintPretty(os.Stdout, nil)
		}
		return 0
	}

	if asJSON {
		if err := propagate.PrintJSON(os.Stdout, stages); err != nil {
			c.app.logError(err)
			return 1
		}
		return 0
	}
	propagate.PrintPretty(os.Stdout, stages)
	return 0
}
