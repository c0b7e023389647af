// Package cachepath implements C3: the deterministic on-disk path scheme for
// published and stashed artifacts under a cache root. Pure functions only -
// no I/O beyond what callers choose to do with the returned paths. Grounded
// on the path strings built in the original lal's src/storage/{local,
// download}.rs ("{cache}/environments/{env}/{name}/{version}/...", "{cache}/
// stash/{name}/{tag}/...").
package cachepath

import (
	"path/filepath"
	"strconv"
)

// PublishedDir returns <cache_root>/environments/<env>/<name>/<version>.
func PublishedDir(cacheRoot, env, name string, version int) string {
	return filepath.Join(cacheRoot, "environments", env, name, strconv.Itoa(version))
}

// PublishedTarball returns the tarball path inside PublishedDir.
func PublishedTarball(cacheRoot, env, name string, version int) string {
	return filepath.Join(PublishedDir(cacheRoot, env, name, version), name+".tar.gz")
}

// PublishedLockfile returns the sibling lockfile path inside PublishedDir.
func PublishedLockfile(cacheRoot, env, name string, version int) string {
	return filepath.Join(PublishedDir(cacheRoot, env, name, version), "lockfile.json")
}

// StashDir returns <cache_root>/stash/<name>/<tag>.
func StashDir(cacheRoot, name, tag string) string {
	return filepath.Join(cacheRoot, "stash", name, tag)
}

// StashTarball returns the tarball path inside StashDir.
func StashTarball(cacheRoot, name, tag string) string {
	return filepath.Join(StashDir(cacheRoot, name, tag), name+".tar.gz")
}

// StashLockfile returns the sibling lockfile path inside StashDir.
func StashLockfile(cacheRoot, name, tag string) string {
	return filepath.Join(StashDir(cacheRoot, name, tag), "lockfile.json")
}
