package main

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryCommand implements `lal query <name> [-l]`.
type QueryCommand struct{ app *app }

func (c *QueryCommand) Synopsis() string { return "List available versions of a dependency" }

func (c *QueryCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal query <name> [-l] [--env=<name>]

  -l   Print only the latest version.
`)
}

func (c *QueryCommand) Run(args []string) int {
	var name, envFlag string
	var latestOnly bool
	for _, arg := range args {
		switch {
		case arg == "-l":
			latestOnly = true
		case strings.HasPrefix(arg, "--env="):
			envFlag = arg[len("--env="):]
		default:
			name = arg
		}
	}
	if name == "" {
		c.app.ui.Error("usage: lal query <name> [-l]")
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

	if latestOnly {
		v, err := cached.GetLatestVersion(name, env)
		if err != nil {
			c.app.logError(err)
			return 1
		}
		c.app.ui.Output(strconv.Itoa(v))
		return 0
	}

	versions, err := cached.GetVersions(name, env)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	for _, v := range versions {
		c.app.ui.Output(fmt.Sprintf("%d", v))
	}
	return 0
}
