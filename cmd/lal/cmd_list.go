package main

// The list-* commands are hidden machine-readable listings consumed by
// shell completion, matching the pattern of the teacher's own hidden
// "graph" command (registered in c.HiddenCommands).

// ListDependenciesCommand implements the hidden `lal list-dependencies`.
type ListDependenciesCommand struct{ app *app }

func (c *ListDependenciesCommand) Synopsis() string { return "List dependency names (for shell completion)" }
func (c *ListDependenciesCommand) Help() string      { return "" }

func (c *ListDependenciesCommand) Run(args []string) int {
	m, err := c.app.loadManifest()
	if err != nil {
		return 1
	}
	for name := range m.Dependencies {
		c.app.ui.Output(name)
	}
	for name := range m.DevDependencies {
		c.app.ui.Output(name)
	}
	return 0
}

// ListComponentsCommand implements the hidden `lal list-components`.
type ListComponentsCommand struct{ app *app }

func (c *ListComponentsCommand) Synopsis() string { return "List buildable component names (for shell completion)" }
func (c *ListComponentsCommand) Help() string      { return "" }

func (c *ListComponentsCommand) Run(args []string) int {
	m, err := c.app.loadManifest()
	if err != nil {
		return 1
	}
	for name := range m.Components {
		c.app.ui.Output(name)
	}
	return 0
}

// ListEnvironmentsCommand implements the hidden `lal list-environments`.
type ListEnvironmentsCommand struct{ app *app }

func (c *ListEnvironmentsCommand) Synopsis() string { return "List supported environment names (for shell completion)" }
func (c *ListEnvironmentsCommand) Help() string      { return "" }

func (c *ListEnvironmentsCommand) Run(args []string) int {
	m, err := c.app.loadManifest()
	if err != nil {
		return 1
	}
	for _, name := range m.SupportedEnvironments {
		c.app.ui.Output(name)
	}
	return 0
}
