package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalconfig"
	"github.com/lalbuild/lal/internal/runner"
)

func parseRunnerFlags(args []string) (modes runner.ShellModes, flags runner.DockerRunFlags, envName string, rest []string) {
	flags.Interactive = true
	for _, arg := range args {
		switch {
		case arg == "--print-only":
			modes.PrintOnly = true
		case arg == "-X":
			modes.X11Forwarding = true
		case arg == "-n":
			modes.HostNetworking = true
		case arg == "--privileged":
			flags.Privileged = true
		case strings.HasPrefix(arg, "--env-var="):
			modes.EnvVars = append(modes.EnvVars, arg[len("--env-var="):])
		case strings.HasPrefix(arg, "--env="):
			envName = arg[len("--env="):]
		default:
			rest = append(rest, arg)
		}
	}
	return
}

func (c *app) resolveRunEnvironment(envName string) (string, environment.Environment, error) {
	m, err := c.loadManifest()
	if err != nil {
		return "", environment.Environment{}, err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return "", environment.Environment{}, err
	}
	resolved, err := c.effectiveEnv(m, envName)
	if err != nil {
		return "", environment.Environment{}, err
	}
	if container, err := lalconfig.GetContainer(cfg, resolved); err == nil {
		return resolved, environment.NewContainer(container), nil
	}
	return resolved, environment.None(), nil
}

// ShellCommand implements `lal shell`: an interactive runner invocation with
// no command, which the docker runner interprets as an entrypoint override.
type ShellCommand struct{ app *app }

func (c *ShellCommand) Synopsis() string { return "Open an interactive shell in the build environment" }

func (c *ShellCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal shell [--env=<name>] [-X] [-n] [--print-only] [--env-var=K=V]...
`)
}

func (c *ShellCommand) Run(args []string) int {
	modes, flags, envName, _ := parseRunnerFlags(args)

	cfg, err := c.app.loadConfig()
	if err != nil {
		c.app.logError(err)
		return 1
	}
	_, env, err := c.app.resolveRunEnvironment(envName)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	if err := runner.Run(cfg, env, nil, flags, modes, c.app.dir, c.app.logger); err != nil {
		c.app.logError(err)
		return exitCode(err)
	}
	return 0
}

// RunCommand implements `lal run <script>`: a scripted (non-interactive)
// runner invocation.
type RunCommand struct{ app *app }

func (c *RunCommand) Synopsis() string { return "Run a script in the build environment" }

func (c *RunCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal run <script> [args...] [--env=<name>] [-X] [-n] [--print-only] [--env-var=K=V]...
`)
}

func (c *RunCommand) Run(args []string) int {
	modes, flags, envName, rest := parseRunnerFlags(args)
	flags.Interactive = false
	if len(rest) == 0 {
		c.app.ui.Error("usage: lal run <script> [args...]")
		return 1
	}

	cfg, err := c.app.loadConfig()
	if err != nil {
		c.app.logError(err)
		return 1
	}
	_, env, err := c.app.resolveRunEnvironment(envName)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	if err := runner.Run(cfg, env, rest, flags, modes, c.app.dir, c.app.logger); err != nil {
		c.app.logError(err)
		return exitCode(err)
	}
	return 0
}
