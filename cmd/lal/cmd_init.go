package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/manifest"
)

// InitCommand implements `lal init <env> [-f]`.
type InitCommand struct{ app *app }

func (c *InitCommand) Synopsis() string { return "Create a manifest in the current directory" }

func (c *InitCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal init <environment> [-f]

  Create a manifest.json with the given default environment.

Options:
  -f    Overwrite an existing manifest.
`)
}

func (c *InitCommand) Run(args []string) int {
	var env string
	var force bool
	for _, arg := range args {
		switch {
		case arg == "-f" || arg == "--force":
			force = true
		case strings.HasPrefix(arg, "-"):
			c.app.logError(lalInvalidFlag(arg))
			return 1
		default:
			env = arg
		}
	}
	if env == "" {
		c.app.ui.Error("usage: lal init <environment> [-f]")
		return 1
	}

	if _, err := c.app.loadManifest(); err == nil && !force {
		c.app.ui.Error("a manifest already exists here - pass -f to overwrite")
		return 1
	}

	name := strings.ToLower(lastPathElement(c.app.dir))
	m := manifest.New(name, env)
	if err := manifest.Write(m, c.app.dir, c.app.logger); err != nil {
		c.app.logError(err)
		return 1
	}
	c.app.ui.Output("wrote manifest for " + name + " (environment: " + env + ")")
	return 0
}
