package main

import (
	"strings"

	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalconfig"
	"github.com/lalbuild/lal/internal/orchestrator"
	"github.com/lalbuild/lal/internal/runner"
)

// BuildCommand implements `lal build`.
type BuildCommand struct{ app *app }

func (c *BuildCommand) Synopsis() string { return "Orchestrate a build" }

func (c *BuildCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal build [component] [--config=C] [-r] [--with-version=V] [--with-sha=S]
                  [-f] [-s] [--print-only] [-X] [-n] [--env-var=K=V]...

Options:
  --config=C       Build configuration (defaults to the component's defaultConfig).
  -r, --release    Package OUTPUT/ into ARTIFACT/<component>.tar.gz afterwards.
  --with-version=V Stamp the build with a version, injected as BUILD_VERSION.
  --with-sha=S     Stamp the lockfile with a revision id.
  -f, --force      Continue even if `verify` fails.
  -s, --simple     Use simple verify semantics.
  --print-only     Print the composed runner invocation and exit.
  -X               Forward X11 to the container.
  -n               Use host networking in the container.
  --env-var=K=V    Extra environment variable passed to the build script (repeatable).
`)
}

func (c *BuildCommand) Run(args []string) int {
	var opts orchestrator.Options
	var modes runner.ShellModes
	var envName string
	var component string

	for _, arg := range args {
		switch {
		case arg == "-r" || arg == "--release":
			opts.Release = true
		case arg == "-f" || arg == "--force":
			opts.Force = true
		case arg == "-s" || arg == "--simple":
			opts.SimpleVerify = true
		case arg == "--print-only":
			modes.PrintOnly = true
		case arg == "-X":
			modes.X11Forwarding = true
		case arg == "-n":
			modes.HostNetworking = true
		case strings.HasPrefix(arg, "--config="):
			opts.Configuration = arg[len("--config="):]
		case strings.HasPrefix(arg, "--with-version="):
			opts.Version = arg[len("--with-version="):]
		case strings.HasPrefix(arg, "--with-sha="):
			opts.Sha = arg[len("--with-sha="):]
		case strings.HasPrefix(arg, "--env-var="):
			modes.EnvVars = append(modes.EnvVars, arg[len("--env-var="):])
		case strings.HasPrefix(arg, "--env="):
			envName = arg[len("--env="):]
		case strings.HasPrefix(arg, "-"):
			c.app.logError(lalInvalidFlag(arg))
			return 1
		default:
			component = arg
		}
	}
	opts.Name = component

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
	resolvedEnv, err := c.app.effectiveEnv(m, envName)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	if container, err := lalconfig.GetContainer(cfg, resolvedEnv); err == nil {
		opts.Environment = environment.NewContainer(container)
	} else {
		opts.Environment = environment.None()
	}

	if _, err := orchestrator.Build(c.app.dir, cfg, m, opts, resolvedEnv, modes, c.app.logger); err != nil {
		c.app.logError(err)
		return exitCode(err)
	}
	return 0
}
