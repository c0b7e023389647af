package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lockfile"
)

// StatusCommand implements `lal status [--full] [--origin] [--time]`.
type StatusCommand struct{ app *app }

func (c *StatusCommand) Synopsis() string { return "Report the state of INPUT/ against the manifest" }

func (c *StatusCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal status [--full] [--origin] [--time]

  --full     Also print devDependencies.
  --origin   Also print each dependency's recorded environment.
  --time     Also print each dependency's build timestamp.
`)
}

func (c *StatusCommand) Run(args []string) int {
	var full, origin, withTime bool
	for _, arg := range args {
		switch arg {
		case "--full":
			full = true
		case "--origin":
			origin = true
		case "--time":
			withTime = true
		default:
			c.app.logError(lalInvalidFlag(arg))
			return 1
		}
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

	c.app.ui.Output(fmt.Sprintf("%s (environment: %s)", m.Name, m.Environment))

	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	if full {
		for name := range m.DevDependencies {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		child, present := lf.Dependencies[name]
		line := "  " + name
		switch {
		case !present:
			line += " (missing from INPUT)"
		default:
			line += "=" + child.Version
			if origin {
				line += " [" + child.Environment + "]"
			}
			if withTime {
				line += " built " + child.Built
			}
		}
		c.app.ui.Output(line)
	}
	return 0
}
