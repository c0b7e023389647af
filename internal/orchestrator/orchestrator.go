// Package orchestrator implements C9: the `lal build` lifecycle - verify,
// locate the BUILD script, invoke the environment runner, and optionally
// package OUTPUT/ into a release tarball. Grounded on the original lal's
// src/build.rs.
package orchestrator

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/cachedbackend"
	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalconfig"
	"github.com/lalbuild/lal/internal/lalerrors"
	"github.com/lalbuild/lal/internal/lockfile"
	"github.com/lalbuild/lal/internal/manifest"
	"github.com/lalbuild/lal/internal/resolve"
	"github.com/lalbuild/lal/internal/runner"
)

// Options configures a single `lal build` invocation.
type Options struct {
	Name          string // component to build; defaults to manifest.Name
	Configuration string // defaults to the component's defaultConfig
	Environment   environment.Environment
	Release       bool
	Version       string
	Sha           string
	Force         bool
	SimpleVerify  bool
}

// ensureDirFreshly removes and recreates dir, matching the original's
// ensure_dir_exists_fresh used for both OUTPUT/ and ARTIFACT/.
func ensureDirFreshly(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return lalerrors.IO(err, "clearing "+dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return lalerrors.IO(err, "creating "+dir)
	}
	return nil
}

func findBuildScript(componentDir string, logger hclog.Logger) (string, error) {
	newPath := filepath.Join(componentDir, ".lal", "BUILD")
	oldPath := filepath.Join(componentDir, "BUILD")

	var chosen string
	if _, err := os.Stat(newPath); err == nil {
		if _, err := os.Stat(oldPath); err == nil {
			logger.Warn("BUILD found in both .lal/ and current directory")
			logger.Warn("using the default: .lal/BUILD")
		}
		chosen = newPath
	} else if _, err := os.Stat(oldPath); err == nil {
		chosen = oldPath
	} else {
		return "", lalerrors.BuildScriptMissing()
	}

	info, err := os.Stat(chosen)
	if err != nil {
		return "", lalerrors.IO(err, "statting build script")
	}
	rel, err := filepath.Rel(componentDir, chosen)
	if err != nil {
		return "", lalerrors.IO(err, "resolving build script path")
	}
	buildString := "./" + rel
	if info.Mode().Perm()&0o111 == 0 {
		return "", lalerrors.BuildScriptNotExecutable(buildString)
	}
	return buildString, nil
}

// Build runs the full build lifecycle in componentDir and returns the
// lockfile written to OUTPUT/lockfile.json.
func Build(componentDir string, cfg *lalconfig.Config, m *manifest.Manifest, opts Options, envName string, modes runner.ShellModes, logger hclog.Logger) (*lockfile.Lockfile, error) {
	if err := ensureDirFreshly(filepath.Join(componentDir, "OUTPUT")); err != nil {
		logger.Error("failed to clean out OUTPUT dir", "error", err)
		return nil, err
	}

	verifyFailed := false
	if err := resolve.Verify(componentDir, m, envName, opts.SimpleVerify, logger); err != nil {
		if !opts.Force {
			return nil, err
		}
		verifyFailed = true
		logger.Warn("verify failed - build will fail on CI, but continuing")
	}

	component := opts.Name
	if component == "" {
		component = m.Name
	}
	settings, ok := m.Components[component]
	if !ok {
		return nil, lalerrors.ComponentUnknown(component)
	}
	configuration := opts.Configuration
	if configuration == "" {
		configuration = settings.DefaultConfig
	}
	found := false
	for _, c := range settings.Configurations {
		if c == configuration {
			found = true
			break
		}
	}
	if !found {
		return nil, lalerrors.ConfigurationUnknown(configuration)
	}

	lf := lockfile.New(component, opts.Environment, envName, opts.Version, configuration)
	lf.SetDefaultEnv(m.Environment)
	lf.AttachRevisionID(opts.Sha)
	lf, err := lf.PopulateFromInput(componentDir)
	if err != nil {
		return nil, err
	}

	lockPath := filepath.Join(componentDir, "OUTPUT", "lockfile.json")
	if err := lockfile.Write(lf, lockPath); err != nil {
		return nil, err
	}

	buildScript, err := findBuildScript(componentDir, logger)
	if err != nil {
		return nil, err
	}
	cmd := []string{buildScript, component, configuration}

	if opts.Version != "" {
		modes.EnvVars = append(modes.EnvVars, fmt.Sprintf("BUILD_VERSION=%s", opts.Version))
	}

	logger.Debug("build script", "cmd", cmd, "dir", componentDir)
	if !modes.PrintOnly {
		logger.Info("running build script", "environment", envName)
	}

	flags := runner.DockerRunFlags{Interactive: cfg.Interactive, Privileged: false}
	if err := runner.Run(cfg, opts.Environment, cmd, flags, modes, componentDir, logger); err != nil {
		return nil, err
	}

	if modes.PrintOnly {
		return lf, nil
	}

	if verifyFailed {
		logger.Warn("build succeeded - but `lal verify` failed")
		logger.Warn("please make sure you are using correct dependencies before pushing")
	} else {
		logger.Info("build succeeded with verified dependencies")
	}
	if envName != m.Environment {
		logger.Warn("build used a non-default environment", "environment", envName)
	}

	if opts.Release {
		artifactDir := filepath.Join(componentDir, "ARTIFACT")
		if err := ensureDirFreshly(artifactDir); err != nil {
			return nil, err
		}
		data, err := ioutil.ReadFile(lockPath)
		if err != nil {
			return nil, lalerrors.IO(err, "reading OUTPUT/lockfile.json")
		}
		if err := ioutil.WriteFile(filepath.Join(artifactDir, "lockfile.json"), data, 0644); err != nil {
			return nil, lalerrors.IO(err, "writing ARTIFACT/lockfile.json")
		}
		tarPath := filepath.Join(artifactDir, component+".tar.gz")
		if err := cachedbackend.TarOutputDirectory(componentDir, tarPath); err != nil {
			return nil, err
		}
	}

	return lf, nil
}
