// Package backend implements C4: the capability set any artifact store must
// expose, plus two concrete implementors (local filesystem, remote HTTP).
// Polymorphism is expressed as a plain Go interface, matching the teacher's
// own Cache interface in internal/cache/cache.go - no plugin registry, just
// an interface and its implementors. Grounded on the original lal's
// src/storage/{mod,local,download}.rs for the contract shape and path math.
package backend

import "github.com/lalbuild/lal/internal/lalerrors"

// Component is a resolved (name, version, location) triple. Location is a
// backend-specific fetchable string: a URL for the HTTP backend, a
// filesystem path for the local backend.
type Component struct {
	Name     string
	Version  int
	Location string
}

// Backend is the capability set described in spec §4.4. Both the local and
// HTTP implementations below satisfy it; CachedBackend (package
// cachedbackend) wraps any Backend with extraction/stash/reuse logic.
type Backend interface {
	// GetVersions returns ascending published versions, truncated to the
	// most recent 100.
	GetVersions(name, env string) ([]int, error)
	// GetLatestVersion fails with NoVersionsFound-equivalent if none exist.
	GetLatestVersion(name, env string) (int, error)
	// GetComponentInfo resolves (name, version?, env) to a fetchable
	// location. version == nil resolves to latest.
	GetComponentInfo(name string, version *int, env string) (Component, error)
	// PublishArtifact copies dir/ARTIFACT/<name>.tar.gz and
	// dir/ARTIFACT/lockfile.json into the cache cell for (env, name, version).
	PublishArtifact(dir, name string, version int, env string) error
	// RawFetch fetches src into dest; transport is backend-specific.
	RawFetch(src, dest string) error
	// GetCacheDir returns this backend's cache root.
	GetCacheDir() string
}

// errNoVersionsFound is returned by GetLatestVersion when a component has no
// published versions in the requested environment.
func errNoVersionsFound(name, env string) error {
	return lalerrors.BackendFailure("no versions found for " + name + " in environment " + env)
}
