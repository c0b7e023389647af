// Package lockfile implements C2: the lockfile is the realized dependency
// tree snapshot, read from and written to lockfile.json, and the traversals
// over that tree (global-version check, consistent-tree check, environment
// consistency) that back `lal verify`. Grounded on the original lal's
// src/{fetch,update,verify,build}.rs (which construct/populate/traverse
// Lockfile) even though the Rust lockfile.rs source itself was filtered out
// of the retrieval pack; its shape is fully implied by those call sites plus
// spec.md §3-§4.2.
package lockfile

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalerrors"
	"github.com/lalbuild/lal/internal/manifest"
)

// ToolVersion is embedded in every lockfile's "tool" field.
const ToolVersion = "lal-go/1.0.0"

// Lockfile is a recursive snapshot of a realized build tree.
type Lockfile struct {
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	Config       string               `json:"config,omitempty"`
	Container    environment.Container `json:"container"`
	Environment  string               `json:"environment"`
	DefaultEnv   string               `json:"defaultEnv,omitempty"`
	Sha          string               `json:"sha,omitempty"`
	Tool         string               `json:"tool"`
	Built        string               `json:"built"`
	Dependencies map[string]*Lockfile `json:"dependencies"`
}

// nowRFC3339 is overridable in tests so golden output is deterministic.
var nowRFC3339 = func() string { return time.Now().UTC().Format(time.RFC3339) }

// New constructs a blank lockfile stamped with the current tool version and
// a UTC timestamp, as in the original Lockfile::new + attach_revision_id.
func New(name string, env environment.Environment, envName string, version, config string) *Lockfile {
	lf := &Lockfile{
		Name:         name,
		Version:      version,
		Config:       config,
		Environment:  envName,
		Tool:         ToolVersion,
		Built:        nowRFC3339(),
		Dependencies: map[string]*Lockfile{},
	}
	if env.Container != nil {
		lf.Container = *env.Container
	}
	return lf
}

// SetDefaultEnv records the manifest's original default environment.
func (lf *Lockfile) SetDefaultEnv(env string) *Lockfile {
	lf.DefaultEnv = env
	return lf
}

// AttachRevisionID records an optional sha/changeset id.
func (lf *Lockfile) AttachRevisionID(sha string) *Lockfile {
	lf.Sha = sha
	return lf
}

// PopulateFromInput walks dir/INPUT/*/lockfile.json, attaching each as an
// immediate child. Non-directories and missing lockfiles are skipped;
// malformed JSON is fatal. A child's "name" field must match its directory
// name.
func (lf *Lockfile) PopulateFromInput(dir string) (*Lockfile, error) {
	inputDir := filepath.Join(dir, "INPUT")
	entries, err := ioutil.ReadDir(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, lalerrors.IO(err, "reading INPUT")
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		childPath := filepath.Join(inputDir, e.Name(), "lockfile.json")
		if _, err := os.Stat(childPath); err != nil {
			continue
		}
		child, err := Read(childPath)
		if err != nil {
			return nil, err
		}
		if child.Name != e.Name() {
			return nil, lalerrors.ManifestInvalid("INPUT/" + e.Name() + "/lockfile.json declares name " + child.Name)
		}
		lf.Dependencies[e.Name()] = child
	}
	return lf, nil
}

// Read deserializes a lockfile from path.
func Read(path string) (*Lockfile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, lalerrors.IO(err, "reading lockfile")
	}
	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, lalerrors.JSON(err, "parsing lockfile "+path)
	}
	if lf.Dependencies == nil {
		lf.Dependencies = map[string]*Lockfile{}
	}
	return &lf, nil
}

// ReleaseBuild reads dir/OUTPUT/lockfile.json, used by `publish`.
func ReleaseBuild(dir string) (*Lockfile, error) {
	path := filepath.Join(dir, "OUTPUT", "lockfile.json")
	if _, err := os.Stat(path); err != nil {
		return nil, lalerrors.MissingReleaseBuild()
	}
	return Read(path)
}

// Write serializes lf as pretty JSON to path. Go's encoding/json already
// sorts map[string]* keys alphabetically on marshal, which is what keeps
// golden-file tests of the recursive Dependencies map stable.
func Write(lf *Lockfile, path string) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return lalerrors.JSON(err, "encoding lockfile")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return lalerrors.IO(err, "creating lockfile directory")
		}
	}
	if err := ioutil.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return lalerrors.IO(err, "writing lockfile")
	}
	return nil
}

// VerifyGlobalVersions checks that each immediate child's recorded version
// matches the manifest's declared version for that dependency.
func VerifyGlobalVersions(lf *Lockfile, m *manifest.Manifest) error {
	deps := manifest.AllDependencies(m)
	for _, name := range manifest.SortedDependencyNames(deps) {
		expected := deps[name]
		child, ok := lf.Dependencies[name]
		if !ok {
			continue // missing-dependency is caught by resolve's verifyDependenciesPresent
		}
		found, err := parseIntVersion(child.Version)
		if err != nil {
			continue // non-integer (stashed) versions are not subject to this check
		}
		if found != expected {
			return lalerrors.VersionMismatch(name, expected, found)
		}
	}
	return nil
}

// VerifyConsistentDependencyVersions walks the transitive closure and
// requires every distinct name to resolve to a single version, and every
// transitively-seen dependency consumed by more than one subtree to also be
// a direct dependency of the manifest.
func VerifyConsistentDependencyVersions(lf *Lockfile, m *manifest.Manifest) error {
	versions := map[string]map[string]bool{}  // name -> set of versions seen
	consumers := map[string]map[string]bool{} // name -> set of parent names that depend on it directly

	var walk func(node *Lockfile, parent string)
	walk = func(node *Lockfile, parent string) {
		for name, child := range node.Dependencies {
			if versions[name] == nil {
				versions[name] = map[string]bool{}
			}
			versions[name][child.Version] = true
			if consumers[name] == nil {
				consumers[name] = map[string]bool{}
			}
			consumers[name][parent] = true
			walk(child, name)
		}
	}
	walk(lf, lf.Name)

	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)

	direct := manifest.AllDependencies(m)
	for _, name := range names {
		vs := versions[name]
		if len(vs) > 1 {
			list := make([]string, 0, len(vs))
			for v := range vs {
				list = append(list, v)
			}
			sort.Strings(list)
			return lalerrors.MultipleVersions(name, list)
		}
		if _, isDirect := direct[name]; isDirect {
			continue
		}
		if len(consumers[name]) > 1 {
			return lalerrors.NonGlobalDependencies(name)
		}
	}
	return nil
}

// VerifyEnvironmentConsistency requires every node in the tree to have been
// built in the expected environment.
func VerifyEnvironmentConsistency(lf *Lockfile, expectedEnv string) error {
	var walk func(node *Lockfile) error
	walk = func(node *Lockfile) error {
		for name, child := range node.Dependencies {
			if child.Environment != expectedEnv {
				return lalerrors.EnvironmentMismatch(name, child.Environment)
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(lf)
}

func parseIntVersion(s string) (int, error) {
	return strconv.Atoi(s)
}
