package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/backend"
	"github.com/lalbuild/lal/internal/cachedbackend"
	"github.com/lalbuild/lal/internal/lalconfig"
	"github.com/lalbuild/lal/internal/lalerrors"
	"github.com/lalbuild/lal/internal/logging"
	"github.com/lalbuild/lal/internal/manifest"
	"github.com/lalbuild/lal/internal/opts"
	"github.com/mitchellh/cli"
)

// globalFlags are the flags every command accepts, stripped from args before
// the command-specific parser sees them, matching the turbo entrypoint's
// strings.HasPrefix loop over --heap=/--trace=/--cpuprofile=.
type globalFlags struct {
	verbosity int
	home      string
}

func parseGlobalFlags(args []string) (globalFlags, []string) {
	var gf globalFlags
	out := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "-v":
			gf.verbosity = max(gf.verbosity, 1)
		case arg == "-vv":
			gf.verbosity = max(gf.verbosity, 2)
		case arg == "-vvv":
			gf.verbosity = max(gf.verbosity, 3)
		case strings.HasPrefix(arg, "--home="):
			gf.home = arg[len("--home="):]
		default:
			out = append(out, arg)
		}
	}
	return gf, out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// app bundles the state every command needs: colored UI, logger, config
// home and working directory. The global config and manifest are read on
// demand by loadConfig/loadManifest; nothing is cached between calls.
type app struct {
	ui     *cli.ColoredUi
	logger hclog.Logger
	home   string
	dir    string
}

func newApp(verbosity int, home string) *app {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	logger := logging.New(verbosity)
	logger.Debug("starting invocation", "invocation", logging.InvocationID(logger))
	return &app{
		ui:     newUI(),
		logger: logger,
		home:   home,
		dir:    dir,
	}
}

func newUI() *cli.ColoredUi {
	return &cli.ColoredUi{
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		OutputColor: cli.UiColorNone,
		InfoColor:   cli.UiColorNone,
		WarnColor:   cli.UiColorYellow,
		ErrorColor:  cli.UiColorRed,
	}
}

// logError prints err the way the teacher's PruneCommand.logError does: a
// reverse-video " ERROR " badge plus the message, and logs it structured.
func (a *app) logError(err error) {
	a.logger.Error("command failed", "error", err)
	pref := color.New(color.Bold, color.FgRed, color.ReverseVideo).Sprint(" ERROR ")
	a.ui.Error(fmt.Sprintf("%s %s", pref, color.RedString("%v", err)))
}

func (a *app) loadManifest() (*manifest.Manifest, error) {
	return manifest.Read(a.dir)
}

func (a *app) loadConfig() (*lalconfig.Config, error) {
	return lalconfig.Read(a.home)
}

// effectiveEnv resolves the environment a command should run in: explicit
// flag, then the sticky .lal/opts value, then the manifest's own default.
func (a *app) effectiveEnv(m *manifest.Manifest, flagEnv string) (string, error) {
	if flagEnv != "" {
		if _, err := manifest.GetEnvironment(m, flagEnv); err != nil {
			return "", err
		}
		return flagEnv, nil
	}
	sticky, err := opts.Read(a.dir)
	if err != nil {
		return "", err
	}
	if sticky.Env != "" {
		return sticky.Env, nil
	}
	return m.Environment, nil
}

// backendFor builds the cached backend described by cfg.Backend.
func backendFor(cfg *lalconfig.Config, logger hclog.Logger) (*cachedbackend.CachedBackend, error) {
	switch cfg.Backend.Name {
	case "local", "":
		b, err := backend.NewLocal(cfg.Cache)
		if err != nil {
			return nil, err
		}
		return cachedbackend.New(b, logger), nil
	case "http":
		return cachedbackend.New(backend.NewHTTP(cfg.Backend.URL, cfg.Backend.Token, cfg.Cache, logger), logger), nil
	default:
		return nil, lalerrors.BackendFailure("unknown backend " + cfg.Backend.Name)
	}
}

// exitCode maps an error to the process exit code described in spec §6:
// a SubprocessFailure propagates its own code, everything else is 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *lalerrors.CliError
	if errors.As(err, &ce) && ce.Kind == lalerrors.KindSubprocessFailure {
		return ce.Code
	}
	return 1
}
