package main

import (
	"strconv"
	"strings"

	"github.com/lalbuild/lal/internal/lockfile"
)

// PublishCommand implements `lal publish <name>`.
type PublishCommand struct{ app *app }

func (c *PublishCommand) Synopsis() string { return "Upload the current release artifact" }

func (c *PublishCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal publish <name> [--env=<name>]

  Upload ARTIFACT/<name>.tar.gz and ARTIFACT/lockfile.json under the
  version recorded in OUTPUT/lockfile.json, or, when that version is not
  an integer, as the next published version for <name>.
`)
}

func (c *PublishCommand) Run(args []string) int {
	var name, envFlag string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--env="):
			envFlag = arg[len("--env="):]
		default:
			name = arg
		}
	}
	if name == "" {
		c.app.ui.Error("usage: lal publish <name>")
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

	release, err := lockfile.ReleaseBuild(c.app.dir)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	version, err := strconv.Atoi(release.Version)
	if err != nil {
		version, err = cached.GetLatestVersion(name, env)
		if err != nil {
			version = 0
		}
		version++
	}

	if err := cached.PublishArtifact(c.app.dir, name, version, env); err != nil {
		c.app.logError(err)
		return 1
	}
	c.app.ui.Output("published " + name + "=" + strconv.Itoa(version) + " to " + env)
	return 0
}
