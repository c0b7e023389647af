package main

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lalbuild/lal/internal/lalerrors"
)

// ExportCommand implements `lal export <name[=ver]> [-o dir]`.
type ExportCommand struct{ app *app }

func (c *ExportCommand) Synopsis() string { return "Copy a cached tarball out of the store" }

func (c *ExportCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal export <name[=version]> [-o dir] [--env=<name>]

  Copy a published tarball out of the cache without touching INPUT/.
`)
}

func (c *ExportCommand) Run(args []string) int {
	var spec, outDir, envFlag string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-o":
			if i+1 >= len(args) {
				c.app.ui.Error("-o requires a directory argument")
				return 1
			}
			i++
			outDir = args[i]
		case strings.HasPrefix(arg, "--env="):
			envFlag = arg[len("--env="):]
		default:
			spec = arg
		}
	}
	if spec == "" {
		c.app.ui.Error("usage: lal export <name[=version]> [-o dir]")
		return 1
	}
	if outDir == "" {
		outDir = "."
	}

	name, versionStr, hasVersion := strings.Cut(spec, "=")

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

	var version *int
	if hasVersion {
		n, err := strconv.Atoi(versionStr)
		if err != nil {
			c.app.logError(lalerrors.InvalidComponentName(spec))
			return 1
		}
		version = &n
	}

	tarPath, component, err := cached.RetrievePublishedComponent(name, version, env)
	if err != nil {
		c.app.logError(err)
		return 1
	}
	dest := filepath.Join(outDir, name+".tar.gz")
	if err := copyToDir(tarPath, dest); err != nil {
		c.app.logError(err)
		return 1
	}
	c.app.ui.Output("exported " + name + "=" + strconv.Itoa(component.Version) + " to " + dest)
	return 0
}
