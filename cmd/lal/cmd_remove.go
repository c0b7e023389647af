package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/resolve"
)

// RemoveCommand implements `lal remove <name>... [--save|--save-dev]`.
type RemoveCommand struct{ app *app }

func (c *RemoveCommand) Synopsis() string { return "Drop dependencies from INPUT/ and the manifest" }

func (c *RemoveCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal remove <name>... [--save|--save-dev]
`)
}

func (c *RemoveCommand) Run(args []string) int {
	var save, saveDev bool
	var names []string
	for _, arg := range args {
		switch {
		case arg == "--save":
			save = true
		case arg == "--save-dev":
			saveDev = true
		case strings.HasPrefix(arg, "--"):
			c.app.logError(lalInvalidFlag(arg))
			return 1
		default:
			names = append(names, arg)
		}
	}
	if len(names) == 0 {
		c.app.ui.Error("usage: lal remove <name>...")
		return 1
	}

	m, err := c.app.loadManifest()
	if err != nil {
		c.app.logError(err)
		return 1
	}
	if err := resolve.Remove(c.app.dir, m, names, save, saveDev, c.app.logger); err != nil {
		c.app.logError(err)
		return 1
	}
	return 0
}
