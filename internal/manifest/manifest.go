// Package manifest implements C1: the declared identity of a component, its
// environments, dependencies and buildable configurations, persisted as
// manifest.json. Grounded on the original lal's manifest model (referenced
// from src/core/mod.rs and exercised by src/{fetch,update,verify,build}.rs)
// and on the teacher's JSON-over-pkg/errors idiom in internal/util/json.go.
package manifest

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/lalerrors"
)

// ComponentConfiguration is the set of build configurations for one buildable
// name declared under manifest.components.
type ComponentConfiguration struct {
	Configurations []string `json:"configurations"`
	DefaultConfig  string   `json:"defaultConfig"`
}

// Manifest is the on-disk declaration read from .lal/manifest.json (preferred)
// or the legacy ./manifest.json.
type Manifest struct {
	Name                  string                            `json:"name"`
	Environment           string                            `json:"environment"`
	SupportedEnvironments []string                          `json:"supportedEnvironments"`
	Components            map[string]ComponentConfiguration `json:"components"`
	Dependencies          map[string]int                    `json:"dependencies"`
	DevDependencies       map[string]int                    `json:"devDependencies"`
}

const (
	legacyFilename   = "manifest.json"
	lalDir           = ".lal"
	preferredSubpath = ".lal/manifest.json"
)

// New returns a blank manifest for the given name and default environment,
// as constructed by `lal init`.
func New(name, env string) *Manifest {
	return &Manifest{
		Name:                  name,
		Environment:           env,
		SupportedEnvironments: []string{env},
		Components:            map[string]ComponentConfiguration{},
		Dependencies:          map[string]int{},
		DevDependencies:       map[string]int{},
	}
}

// Read searches dir/.lal/manifest.json then dir/manifest.json.
func Read(dir string) (*Manifest, error) {
	preferred := filepath.Join(dir, lalDir, "manifest.json")
	legacy := filepath.Join(dir, legacyFilename)

	path := preferred
	if _, err := os.Stat(preferred); err != nil {
		if _, err2 := os.Stat(legacy); err2 != nil {
			return nil, lalerrors.ManifestMissing(dir)
		}
		path = legacy
	}
	return readFrom(path)
}

func readFrom(path string) (*Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, lalerrors.IO(err, "reading manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, lalerrors.JSON(err, "parsing manifest")
	}
	if m.Components == nil {
		m.Components = map[string]ComponentConfiguration{}
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]int{}
	}
	if m.DevDependencies == nil {
		m.DevDependencies = map[string]int{}
	}
	return &m, nil
}

// Write always writes to dir/.lal/manifest.json, creating the subdirectory.
// If a legacy manifest.json coexists, the caller gets a warning (not an
// error) via the supplied logger so they can delete it themselves.
func Write(m *Manifest, dir string, logger hclog.Logger) error {
	subdir := filepath.Join(dir, lalDir)
	if err := os.MkdirAll(subdir, 0755); err != nil {
		return lalerrors.IO(err, "creating .lal directory")
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return lalerrors.JSON(err, "encoding manifest")
	}
	path := filepath.Join(subdir, "manifest.json")
	if err := ioutil.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return lalerrors.IO(err, "writing manifest")
	}
	legacy := filepath.Join(dir, legacyFilename)
	if _, err := os.Stat(legacy); err == nil {
		logger.Warn("legacy manifest.json coexists with .lal/manifest.json, delete it to avoid confusion", "path", legacy)
	}
	return nil
}

// Verify enforces the defaultConfig membership invariant on every buildable,
// and rejects non-lowercase component names.
func Verify(m *Manifest) error {
	for name, cfg := range m.Components {
		if strings.ToLower(name) != name {
			return lalerrors.ManifestInvalid("component name '" + name + "' must be lowercase")
		}
		found := false
		for _, c := range cfg.Configurations {
			if c == cfg.DefaultConfig {
				found = true
				break
			}
		}
		if !found {
			return lalerrors.ManifestInvalid("defaultConfig '" + cfg.DefaultConfig + "' for component '" + name + "' is not a member of its configurations list")
		}
	}
	return nil
}

// AllDependencies is the union of dependencies and devDependencies; entries
// that appear in both resolve in favor of devDependencies, matching the
// merge order in the original fetch() (deps cloned first, then devDeps
// inserted on top when core is false).
func AllDependencies(m *Manifest) map[string]int {
	out := make(map[string]int, len(m.Dependencies)+len(m.DevDependencies))
	for k, v := range m.Dependencies {
		out[k] = v
	}
	for k, v := range m.DevDependencies {
		out[k] = v
	}
	return out
}

// GetEnvironment resolves name against supportedEnvironments.
func GetEnvironment(m *Manifest, name string) (string, error) {
	for _, e := range m.SupportedEnvironments {
		if e == name {
			return e, nil
		}
	}
	return "", lalerrors.EnvironmentUnknown(name)
}

// SortedDependencyNames returns dependency keys in sorted order, used
// wherever output needs to be deterministic (logging, golden tests).
func SortedDependencyNames(deps map[string]int) []string {
	names := make([]string, 0, len(deps))
	for k := range deps {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
