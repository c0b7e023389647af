package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/resolve"
)

// FetchCommand implements `lal fetch [--core]`.
type FetchCommand struct{ app *app }

func (c *FetchCommand) Synopsis() string { return "Materialize INPUT/ from the manifest" }

func (c *FetchCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal fetch [--core] [--env=<name>]

  Fetch every declared dependency into INPUT/.

Options:
  --core         Only fetch core dependencies, skip devDependencies.
  --env=<name>   Override the environment (defaults to the sticky/manifest one).
`)
}

func (c *FetchCommand) Run(args []string) int {
	var coreOnly bool
	var envFlag string
	for _, arg := range args {
		switch {
		case arg == "--core":
			coreOnly = true
		case strings.HasPrefix(arg, "--env="):
			envFlag = arg[len("--env="):]
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
	cfg, err := c.app.loadConfig()
	if err != nil {
		c.app.logError(err)
		return 1
	}
	env, err := c.app.effectiveEnv(m, envFlag)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	cached, err := backendFor(cfg, c.app.logger)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	if err := resolve.Fetch(c.app.dir, m, cached, coreOnly, env, c.app.logger); err != nil {
		c.app.logError(err)
		return exitCode(err)
	}
	c.app.ui.Output("fetched dependencies for environment " + env)
	return 0
}
