package main

import "strings"

// StashCommand implements `lal stash <tag>`.
type StashCommand struct{ app *app }

func (c *StashCommand) Synopsis() string { return "Archive OUTPUT/ into the stash under a tag" }

func (c *StashCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal stash <tag>
`)
}

func (c *StashCommand) Run(args []string) int {
	if len(args) != 1 {
		c.app.ui.Error("usage: lal stash <tag>")
		return 1
	}
	tag := args[0]

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
	cached, err := backendFor(cfg, c.app.logger)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	if err := cached.StashOutput(c.app.dir, m.Name, tag); err != nil {
		c.app.logError(err)
		return 1
	}
	c.app.ui.Output("stashed " + m.Name + " as " + tag)
	return 0
}
