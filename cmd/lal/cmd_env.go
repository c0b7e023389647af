package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/opts"
	"github.com/lalbuild/lal/internal/resolve"
)

// EnvCommand implements `lal env {set|update|reset} [<name>]`.
type EnvCommand struct{ app *app }

func (c *EnvCommand) Synopsis() string { return "Manipulate the sticky environment override" }

func (c *EnvCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal env set <name>      Pin this directory to environment <name>.
       lal env update          Re-fetch dependencies using the sticky environment.
       lal env reset           Drop the sticky override, back to the manifest default.
`)
}

func (c *EnvCommand) Run(args []string) int {
	if len(args) == 0 {
		c.app.ui.Error("usage: lal env {set|update|reset}")
		return 1
	}

	m, err := c.app.loadManifest()
	if err != nil {
		c.app.logError(err)
		return 1
	}

	switch args[0] {
	case "set":
		if len(args) != 2 {
			c.app.ui.Error("usage: lal env set <name>")
			return 1
		}
		name := args[1]
		if _, err := c.app.effectiveEnv(m, name); err != nil {
			c.app.logError(err)
			return 1
		}
		if err := opts.Write(opts.Options{Env: name}, c.app.dir); err != nil {
			c.app.logError(err)
			return 1
		}
		c.app.ui.Output("now sticky to environment " + name)
		return 0

	case "update":
		cfg, err := c.app.loadConfig()
		if err != nil {
			c.app.logError(err)
			return 1
		}
		env, err := c.app.effectiveEnv(m, "")
		if err != nil {
			c.app.logError(err)
			return 1
		}
		cached, err := backendFor(cfg, c.app.logger)
		if err != nil {
			c.app.logError(err)
			return 1
		}
		if err := resolve.Fetch(c.app.dir, m, cached, false, env, c.app.logger); err != nil {
			c.app.logError(err)
			return 1
		}
		return 0

	case "reset":
		if err := opts.DeleteLocal(c.app.dir); err != nil {
			c.app.logError(err)
			return 1
		}
		c.app.ui.Output("reset to manifest default environment " + m.Environment)
		return 0

	default:
		c.app.ui.Error("unknown env subcommand: " + args[0])
		return 1
	}
}
