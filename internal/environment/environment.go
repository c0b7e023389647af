// Package environment models lal's execution environment: either a docker
// container image or the bare host. Grounded on the original lal's
// src/core/{environment,container}.rs, which use an untagged serde enum; Go
// has no sum types, so it is hand-rolled with custom JSON (de)serialization.
package environment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lalbuild/lal/internal/lalerrors"
)

// Container identifies a docker image by name and tag.
type Container struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// String renders "name:tag", the form used on the docker command line.
func (c Container) String() string {
	return fmt.Sprintf("%s:%s", c.Name, c.Tag)
}

// ParseContainer splits "name:tag" into a Container, defaulting tag to
// "latest" if absent, matching Container::new in the original source.
func ParseContainer(s string) Container {
	if name, tag, ok := strings.Cut(s, ":"); ok {
		return Container{Name: name, Tag: tag}
	}
	return Container{Name: s, Tag: "latest"}
}

// Environment is the sum type Container(name, tag) | None.
type Environment struct {
	Container *Container // nil means None (native host execution)
}

// None is the host-execution environment.
func None() Environment { return Environment{} }

// NewContainer builds a container-backed environment.
func NewContainer(c Container) Environment { return Environment{Container: &c} }

// IsContainer reports whether this environment runs inside docker.
func (e Environment) IsContainer() bool { return e.Container != nil }

func (e Environment) String() string {
	if e.Container != nil {
		return e.Container.String()
	}
	return "no environment"
}

// MarshalJSON mirrors the Rust #[serde(untagged)] encoding: a container
// environment serializes as {"name":...,"tag":...}, None as the string "none".
func (e Environment) MarshalJSON() ([]byte, error) {
	if e.Container != nil {
		return json.Marshal(e.Container)
	}
	return json.Marshal("none")
}

// UnmarshalJSON accepts either a container object or the "none" string.
func (e *Environment) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString != "none" && asString != "" {
			return lalerrors.ManifestInvalid(fmt.Sprintf("unrecognized environment value %q", asString))
		}
		e.Container = nil
		return nil
	}
	var c Container
	if err := json.Unmarshal(data, &c); err != nil {
		return lalerrors.JSON(err, "decoding environment")
	}
	e.Container = &c
	return nil
}
