// Package cachedbackend implements C5: it wraps any backend.Backend with the
// extract-to-INPUT, stash, cache-hit short-circuit, and cross-environment
// version intersection logic that most callers actually want, rather than
// talking to backend.Backend directly. Grounded on the original lal's
// src/storage/download.rs (impl<T: Backend> CachedBackend for T).
package cachedbackend

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/backend"
	"github.com/lalbuild/lal/internal/cachepath"
	"github.com/lalbuild/lal/internal/lalerrors"
	"golang.org/x/sync/errgroup"
)

// CachedBackend decorates a backend.Backend. All resolver (C6) and build (C9)
// code should depend on this type, not backend.Backend directly.
type CachedBackend struct {
	backend.Backend
	logger hclog.Logger
}

// New wraps b.
func New(b backend.Backend, logger hclog.Logger) *CachedBackend {
	return &CachedBackend{Backend: b, logger: logger}
}

func isCached(cacheRoot, env, name string, version int) bool {
	info, err := os.Stat(cachepath.PublishedTarball(cacheRoot, env, name, version))
	return err == nil && info.Size() > 0
}

// RetrievePublishedComponent resolves (name, version?, env) via the wrapped
// backend, ensures the cache cell is populated (downloading if necessary),
// and returns the tarball path plus the resolved component info. After a
// successful call the cache cell exists and contains a non-empty tarball.
func (c *CachedBackend) RetrievePublishedComponent(name string, version *int, env string) (string, backend.Component, error) {
	component, err := c.GetComponentInfo(name, version, env)
	if err != nil {
		return "", backend.Component{}, err
	}

	cacheRoot := c.GetCacheDir()
	if !isCached(cacheRoot, env, component.Name, component.Version) {
		dest := cachepath.PublishedTarball(cacheRoot, env, component.Name, component.Version)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return "", backend.Component{}, lalerrors.IO(err, "creating cache cell")
		}
		c.logger.Info("fetching", "name", component.Name, "version", component.Version, "env", env)
		if err := c.RawFetch(component.Location, dest); err != nil {
			return "", backend.Component{}, err
		}
	}
	if !isCached(cacheRoot, env, component.Name, component.Version) {
		return "", backend.Component{}, lalerrors.BackendFailure("cache cell empty after fetch for " + name)
	}
	return cachepath.PublishedTarball(cacheRoot, env, component.Name, component.Version), component, nil
}

// UnpackPublishedComponent fetches and extracts into dir/INPUT/<name>/,
// replacing any prior contents atomically (remove, recreate, extract).
func (c *CachedBackend) UnpackPublishedComponent(dir, name string, version *int, env string) (backend.Component, error) {
	tarPath, component, err := c.RetrievePublishedComponent(name, version, env)
	if err != nil {
		return backend.Component{}, err
	}
	if err := extractTarballToInput(tarPath, dir, name); err != nil {
		return backend.Component{}, err
	}
	return component, nil
}

// UnpackStashedComponent extracts a stashed artifact into dir/INPUT/<name>/.
func (c *CachedBackend) UnpackStashedComponent(dir, name, tag string) error {
	tarPath, err := c.RetrieveStashedComponent(name, tag)
	if err != nil {
		return err
	}
	return extractTarballToInput(tarPath, dir, name)
}

// RetrieveStashedComponent returns the tarball path for a stashed artifact.
func (c *CachedBackend) RetrieveStashedComponent(name, tag string) (string, error) {
	tarPath := cachepath.StashTarball(c.GetCacheDir(), name, tag)
	if _, err := os.Stat(tarPath); err != nil {
		return "", lalerrors.MissingStashArtifact(name + "/" + tag)
	}
	return tarPath, nil
}

// StashOutput tars dir/OUTPUT/ into the stash cell and copies the sibling
// lockfile.json, matching stash_output in the original source.
func (c *CachedBackend) StashOutput(dir, name, tag string) error {
	destDir := cachepath.StashDir(c.GetCacheDir(), name, tag)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return lalerrors.IO(err, "creating stash directory")
	}
	if err := tarDirectory(filepath.Join(dir, "OUTPUT"), cachepath.StashTarball(c.GetCacheDir(), name, tag)); err != nil {
		return err
	}
	lockSrc := filepath.Join(dir, "OUTPUT", "lockfile.json")
	data, err := ioutil.ReadFile(lockSrc)
	if err != nil {
		return lalerrors.IO(err, "reading OUTPUT/lockfile.json")
	}
	return ioutil.WriteFile(cachepath.StashLockfile(c.GetCacheDir(), name, tag), data, 0644)
}

// GetLatestSupportedVersions returns the sorted intersection of GetVersions
// across all supplied environments, bounded to the last 100 per environment.
// Queries run concurrently (one goroutine per environment, matching the
// teacher's errgroup fan-out in internal/cache.cacheMultiplexer.storeUntil)
// but the call is synchronous from the caller's perspective - no long-lived
// parallelism is introduced, preserving spec §5's single-threaded model.
func (c *CachedBackend) GetLatestSupportedVersions(name string, envs []string) ([]int, error) {
	perEnv := make([][]int, len(envs))
	var g errgroup.Group
	for i, env := range envs {
		i, env := i, env
		g.Go(func() error {
			versions, err := c.GetVersions(name, env)
			if err != nil {
				return err
			}
			if len(versions) > 100 {
				versions = versions[len(versions)-100:]
			}
			perEnv[i] = versions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	present := map[int]int{}
	for _, versions := range perEnv {
		seen := map[int]bool{}
		for _, v := range versions {
			if !seen[v] {
				present[v]++
				seen[v] = true
			}
		}
	}
	var result []int
	for v, count := range present {
		if count == len(envs) {
			result = append(result, v)
		}
	}
	sort.Ints(result)
	return result, nil
}

func extractTarballToInput(tarPath, componentDir, component string) error {
	extractPath := filepath.Join(componentDir, "INPUT", component)
	if err := os.RemoveAll(extractPath); err != nil {
		return lalerrors.IO(err, "clearing INPUT/"+component)
	}
	if err := os.MkdirAll(extractPath, 0755); err != nil {
		return lalerrors.IO(err, "creating INPUT/"+component)
	}

	f, err := os.Open(tarPath)
	if err != nil {
		return lalerrors.IO(err, "opening "+tarPath)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return lalerrors.IO(err, "decompressing "+tarPath)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return lalerrors.IO(err, "reading tar entry")
		}
		target := filepath.Join(extractPath, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return lalerrors.IO(err, "creating "+target)
			}
		case tar.TypeSymlink:
			// Symlinks are preserved as-is, never dereferenced, per spec §4.5.
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return lalerrors.IO(err, "creating parent of "+target)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return lalerrors.IO(err, "symlinking "+target)
			}
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return lalerrors.IO(err, "creating parent of "+target)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return lalerrors.IO(err, "creating "+target)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return lalerrors.IO(err, "writing "+target)
			}
			out.Close()
		}
	}
	return nil
}

// tarDirectory archives srcDir into destTarball (gzip, POSIX tar), rooted at
// ".", with symlinks stored verbatim (never followed), matching the
// original lal's src/core/output.rs `tar` helper.
func tarDirectory(srcDir, destTarball string) error {
	if err := os.MkdirAll(filepath.Dir(destTarball), 0755); err != nil {
		return lalerrors.IO(err, "creating tarball directory")
	}
	out, err := os.Create(destTarball)
	if err != nil {
		return lalerrors.IO(err, "creating "+destTarball)
	}
	defer out.Close()
	gz := gzip.NewWriter(out)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			link, err = os.Readlink(path)
			if err != nil {
				return lalerrors.IO(err, "reading symlink "+path)
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash("./" + rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			f, err := os.Open(path)
			if err != nil {
				return lalerrors.IO(err, "opening "+path)
			}
			defer f.Close()
			if _, err := io.Copy(tw, f); err != nil {
				return lalerrors.IO(err, "archiving "+path)
			}
		}
		return nil
	})
}

// TarOutputDirectory is the exported form of tarDirectory used by the build
// orchestrator (C9) to package OUTPUT/ into ARTIFACT/<name>.tar.gz.
func TarOutputDirectory(componentDir, destTarball string) error {
	return tarDirectory(filepath.Join(componentDir, "OUTPUT"), destTarball)
}
