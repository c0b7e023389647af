// Package opts implements C10: the sticky per-directory options persisted
// at .lal/opts. Grounded on the original lal's src/core/sticky.rs.
package opts

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/lalbuild/lal/internal/lalerrors"
)

// Options is the content of .lal/opts: directory-wide sticky overrides.
type Options struct {
	Env string `json:"env,omitempty"`
}

func path(dir string) string {
	return filepath.Join(dir, ".lal", "opts")
}

// Read returns the sticky options for dir, or the zero value if .lal/opts
// does not exist.
func Read(dir string) (Options, error) {
	data, err := ioutil.ReadFile(path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, nil
		}
		return Options{}, lalerrors.IO(err, "reading .lal/opts")
	}
	var o Options
	if err := json.Unmarshal(data, &o); err != nil {
		return Options{}, lalerrors.JSON(err, "parsing .lal/opts")
	}
	return o, nil
}

// Write overwrites dir/.lal/opts, creating the .lal subdirectory if needed.
func Write(o Options, dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, ".lal"), 0755); err != nil {
		return lalerrors.IO(err, "creating .lal directory")
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return lalerrors.JSON(err, "encoding .lal/opts")
	}
	if err := ioutil.WriteFile(path(dir), append(data, '\n'), 0644); err != nil {
		return lalerrors.IO(err, "writing .lal/opts")
	}
	return nil
}

// DeleteLocal removes dir/.lal/opts, if present.
func DeleteLocal(dir string) error {
	if err := os.Remove(path(dir)); err != nil && !os.IsNotExist(err) {
		return lalerrors.IO(err, "removing .lal/opts")
	}
	return nil
}
