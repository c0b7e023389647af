// Package resolve implements C6: the INPUT-mutating operations (fetch,
// update, update-all, remove, verify) that bring a working directory's
// INPUT/ tree in line with the manifest and CLI arguments. Grounded on the
// original lal's src/{fetch,update,verify}.rs and src/util/input.rs.
package resolve

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/lalbuild/lal/internal/cachedbackend"
	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalerrors"
	"github.com/lalbuild/lal/internal/lockfile"
	"github.com/lalbuild/lal/internal/manifest"
)

// Fetch materializes INPUT/ from the manifest (spec §4.6).
func Fetch(dir string, m *manifest.Manifest, backend *cachedbackend.CachedBackend, coreOnly bool, env string, logger hclog.Logger) error {
	if err := manifest.Verify(m); err != nil {
		return err
	}

	target := mapset.NewSet()
	for name := range m.Dependencies {
		target.Add(name)
	}
	if !coreOnly {
		for name := range m.DevDependencies {
			target.Add(name)
		}
	}

	lf := lockfile.New(m.Name, environment.None(), env, "", "")
	lf, err := lf.PopulateFromInput(dir)
	if err != nil {
		logger.Warn("populating INPUT data failed - your INPUT may be corrupt")
		logger.Warn("this can happen if you CTRL-C during `lal fetch`")
		logger.Warn("try `rm -rf INPUT` and `lal fetch` again")
		return err
	}

	present := mapset.NewSet()
	for name := range lf.Dependencies {
		present.Add(name)
	}

	reusable := mapset.NewSet()
	for nameI := range present.Iter() {
		name := nameI.(string)
		child := lf.Dependencies[name]
		candI, ok := dependencyVersion(m, name)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(child.Version); err == nil && n == candI && child.Environment == env {
			logger.Info("reuse", "env", env, "name", name, "version", n)
			reusable.Add(name)
		}
	}

	toFetch := target.Difference(reusable)
	extraneous := present.Difference(target)

	var errs *multierror.Error
	for nameI := range toFetch.Iter() {
		name := nameI.(string)
		version := mustDependencyVersion(m, name)
		logger.Info("fetch", "env", env, "name", name, "version", version)

		componentInput := filepath.Join(dir, "INPUT", name)
		if _, err := os.Stat(componentInput); err == nil {
			if err := os.RemoveAll(componentInput); err != nil {
				logger.Warn("failed to remove INPUT/"+name, "error", err)
				errs = multierror.Append(errs, err)
				continue
			}
		}
		v := version
		if _, err := backend.UnpackPublishedComponent(dir, name, &v, env); err != nil {
			logger.Warn("failed to completely install "+name, "error", err)
			errs = multierror.Append(errs, err)
		}
	}

	for nameI := range extraneous.Iter() {
		name := nameI.(string)
		logger.Info("remove", "name", name)
		pth := filepath.Join(dir, "INPUT", name)
		if _, err := os.Stat(pth); err == nil {
			if err := os.RemoveAll(pth); err != nil {
				return lalerrors.IO(err, "removing extraneous INPUT/"+name)
			}
		}
	}

	if errs.ErrorOrNil() != nil {
		logger.Warn("cleaning potentially broken INPUT")
		_ = os.RemoveAll(filepath.Join(dir, "INPUT"))
		return lalerrors.InstallFailure()
	}
	return nil
}

// UpdatedComponent is a dependency that update() actually installed, used to
// populate save/save-dev.
type UpdatedComponent struct {
	Name    string
	Version int
}

// Update updates the named dependencies (spec §4.6). specs are
// "name[=version]" strings; a string version targets the stash.
func Update(dir string, m *manifest.Manifest, backend *cachedbackend.CachedBackend, specs []string, save, saveDev bool, env string, logger hclog.Logger) error {
	var errs *multierror.Error
	var updated []UpdatedComponent

	for _, spec := range specs {
		name, versionSpec, hasVersion := strings.Cut(spec, "=")
		if strings.ToLower(name) != name {
			return lalerrors.InvalidComponentName(name)
		}

		if hasVersion {
			if n, err := strconv.Atoi(versionSpec); err == nil {
				logger.Info("fetch", "env", env, "name", name, "version", n)
				if _, err := backend.UnpackPublishedComponent(dir, name, &n, env); err != nil {
					logger.Warn("failed to update "+name, "error", err)
					errs = multierror.Append(errs, err)
					continue
				}
				updated = append(updated, UpdatedComponent{Name: name, Version: n})
			} else {
				logger.Info("fetch from stash", "name", name, "tag", versionSpec)
				if err := backend.UnpackStashedComponent(dir, name, versionSpec); err != nil {
					logger.Warn("failed to update "+name+" from stash", "error", err)
					errs = multierror.Append(errs, err)
				}
			}
			continue
		}

		supported, err := backend.GetLatestSupportedVersions(name, []string{env})
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if len(supported) == 0 {
			errs = multierror.Append(errs, lalerrors.NoIntersectedVersion(name))
			continue
		}
		ver := supported[len(supported)-1]
		logger.Info("fetch", "env", env, "name", name, "version", ver)
		if _, err := backend.UnpackPublishedComponent(dir, name, &ver, env); err != nil {
			logger.Warn("failed to update "+name, "error", err)
			errs = multierror.Append(errs, err)
			continue
		}
		updated = append(updated, UpdatedComponent{Name: name, Version: ver})
	}

	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	if save || saveDev {
		target := m.Dependencies
		if saveDev {
			target = m.DevDependencies
		}
		for _, c := range updated {
			if old, ok := target[c.Name]; ok {
				switch {
				case c.Version > old:
					logger.Info("upgrading", "name", c.Name, "from", old, "to", c.Version)
				case c.Version < old:
					logger.Warn("downgrading", "name", c.Name, "from", old, "to", c.Version)
				default:
					logger.Info("maintaining", "name", c.Name, "at", c.Version)
				}
			}
			target[c.Name] = c.Version
		}
		return manifest.Write(m, dir, logger)
	}
	return nil
}

// UpdateAll updates every devDependency (dev == true) or every core dependency.
func UpdateAll(dir string, m *manifest.Manifest, backend *cachedbackend.CachedBackend, save, dev bool, env string, logger hclog.Logger) error {
	var names []string
	if dev {
		for name := range m.DevDependencies {
			names = append(names, name)
		}
	} else {
		for name := range m.Dependencies {
			names = append(names, name)
		}
	}
	return Update(dir, m, backend, names, save && !dev, save && dev, env, logger)
}

// Remove drops INPUT/<name>/ for each name, optionally updating the manifest.
func Remove(dir string, m *manifest.Manifest, names []string, save, saveDev bool, logger hclog.Logger) error {
	for _, name := range names {
		pth := filepath.Join(dir, "INPUT", name)
		if _, err := os.Stat(pth); err == nil {
			if err := os.RemoveAll(pth); err != nil {
				return lalerrors.IO(err, "removing INPUT/"+name)
			}
		}
	}
	if save || saveDev {
		target := m.Dependencies
		if saveDev {
			target = m.DevDependencies
		}
		for _, name := range names {
			delete(target, name)
		}
		return manifest.Write(m, dir, logger)
	}
	return nil
}

// Verify enforces the invariants in spec §4.2 on the current INPUT/ tree.
func Verify(dir string, m *manifest.Manifest, env string, simple bool, logger hclog.Logger) error {
	if err := manifest.Verify(m); err != nil {
		return err
	}

	if len(m.Dependencies) == 0 {
		if _, err := os.Stat(filepath.Join(dir, "INPUT")); os.IsNotExist(err) {
			return nil
		}
	}

	if err := verifyDependenciesPresent(dir, m); err != nil {
		return err
	}

	lf := lockfile.New(m.Name, environment.None(), env, "", "")
	lf, err := lf.PopulateFromInput(dir)
	if err != nil {
		return err
	}

	if !simple {
		if err := lockfile.VerifyGlobalVersions(lf, m); err != nil {
			return err
		}
		if err := lockfile.VerifyConsistentDependencyVersions(lf, m); err != nil {
			return err
		}
	}

	if err := lockfile.VerifyEnvironmentConsistency(lf, env); err != nil {
		return err
	}

	logger.Info("dependencies fully verified")
	return nil
}

func verifyDependenciesPresent(dir string, m *manifest.Manifest) error {
	for name := range m.Dependencies {
		pth := filepath.Join(dir, "INPUT", name)
		info, err := os.Stat(pth)
		if err != nil || !info.IsDir() {
			return lalerrors.ManifestInvalid("dependency " + name + " is declared but missing from INPUT")
		}
	}
	return nil
}

func dependencyVersion(m *manifest.Manifest, name string) (int, bool) {
	all := manifest.AllDependencies(m)
	v, ok := all[name]
	return v, ok
}

func mustDependencyVersion(m *manifest.Manifest, name string) int {
	v, _ := dependencyVersion(m, name)
	return v
}
