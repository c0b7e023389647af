package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/lalconfig"
)

// ConfigureCommand implements `lal configure <defaults-file>`.
type ConfigureCommand struct{ app *app }

func (c *ConfigureCommand) Synopsis() string { return "Seed the global lal config from a defaults file" }

func (c *ConfigureCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal configure <defaults.json>

  Write ~/.lal/config from an org-provided defaults seed.
`)
}

func (c *ConfigureCommand) Run(args []string) int {
	if len(args) != 1 {
		c.app.ui.Error("usage: lal configure <defaults.json>")
		return 1
	}
	defaults, err := lalconfig.ReadDefaults(args[0])
	if err != nil {
		c.app.logError(err)
		return 1
	}
	cfg := lalconfig.New(*defaults, c.app.home, c.app.logger)
	if err := lalconfig.Write(&cfg, c.app.home, false, c.app.logger); err != nil {
		c.app.logError(err)
		return 1
	}
	return 0
}
