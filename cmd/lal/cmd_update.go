package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/resolve"
)

// UpdateCommand implements `lal update <spec>... [--save|--save-dev]`.
type UpdateCommand struct{ app *app }

func (c *UpdateCommand) Synopsis() string { return "Update named dependencies" }

func (c *UpdateCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal update <name[=version]>... [--save|--save-dev] [--env=<name>]

  Update one or more dependencies. A bare name resolves to the latest
  version available in every supported environment; name=N pins a
  published version; name=tag fetches from the stash.
`)
}

func (c *UpdateCommand) Run(args []string) int {
	var save, saveDev bool
	var envFlag string
	var specs []string
	for _, arg := range args {
		switch {
		case arg == "--save":
			save = true
		case arg == "--save-dev":
			saveDev = true
		case strings.HasPrefix(arg, "--env="):
			envFlag = arg[len("--env="):]
		case strings.HasPrefix(arg, "--"):
			c.app.logError(lalInvalidFlag(arg))
			return 1
		default:
			specs = append(specs, arg)
		}
	}
	if len(specs) == 0 {
		c.app.ui.Error("usage: lal update <name[=version]>...")
		return 1
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
	if err := resolve.Update(c.app.dir, m, cached, specs, save, saveDev, env, c.app.logger); err != nil {
		c.app.logError(err)
		return exitCode(err)
	}
	return 0
}

// UpdateAllCommand implements `lal update-all [--dev] [--save]`.
type UpdateAllCommand struct{ app *app }

func (c *UpdateAllCommand) Synopsis() string { return "Update every dependency" }

func (c *UpdateAllCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal update-all [--dev] [--save] [--env=<name>]

  Update every dependency (or, with --dev, every devDependency) to the
  latest version available in every supported environment.
`)
}

func (c *UpdateAllCommand) Run(args []string) int {
	var dev, save bool
	var envFlag string
	for _, arg := range args {
		switch {
		case arg == "--dev":
			dev = true
		case arg == "--save":
			save = true
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
	if err := resolve.UpdateAll(c.app.dir, m, cached, save, dev, env, c.app.logger); err != nil {
		c.app.logError(err)
		return exitCode(err)
	}
	return 0
}
