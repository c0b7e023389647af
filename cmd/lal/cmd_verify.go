package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/resolve"
)

// VerifyCommand implements `lal verify [--simple]`.
type VerifyCommand struct{ app *app }

func (c *VerifyCommand) Synopsis() string { return "Enforce dependency invariants on INPUT/" }

func (c *VerifyCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal verify [--simple] [--env=<name>]

  --simple elides the global-version and consistent-tree checks, for use
  with stashed (non-integer-versioned) dependencies.
`)
}

func (c *VerifyCommand) Run(args []string) int {
	var simple bool
	var envFlag string
	for _, arg := range args {
		switch {
		case arg == "--simple":
			simple = true
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
	env, err := c.app.effectiveEnv(m, envFlag)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	if err := resolve.Verify(c.app.dir, m, env, simple, c.app.logger); err != nil {
		c.app.logError(err)
		return 1
	}
	return 0
}
