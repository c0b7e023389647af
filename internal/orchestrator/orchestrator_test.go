package orchestrator

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalconfig"
	"github.com/lalbuild/lal/internal/manifest"
	"github.com/lalbuild/lal/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0755))
}

func TestBuildRunsScriptAndWritesLockfile(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, ".lal", "BUILD"), "#!/bin/sh\necho built > OUTPUT/marker\n")

	m := manifest.New("widget", "default")
	m.Components["widget"] = manifest.ComponentConfiguration{Configurations: []string{"release"}, DefaultConfig: "release"}

	cfg := &lalconfig.Config{Interactive: false}
	logger := hclog.NewNullLogger()

	_, err := Build(dir, cfg, m, Options{Environment: environment.None()}, "default", runner.ShellModes{}, logger)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "OUTPUT", "lockfile.json"))
	require.NoError(t, err)
	data, err := ioutil.ReadFile(filepath.Join(dir, "OUTPUT", "marker"))
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data))
}

func TestBuildRejectsUnknownComponent(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New("widget", "default")

	cfg := &lalconfig.Config{}
	_, err := Build(dir, cfg, m, Options{Name: "nope", Environment: environment.None()}, "default", runner.ShellModes{}, hclog.NewNullLogger())
	require.Error(t, err)
}

func TestBuildRejectsMissingBuildScript(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New("widget", "default")
	m.Components["widget"] = manifest.ComponentConfiguration{Configurations: []string{"release"}, DefaultConfig: "release"}

	cfg := &lalconfig.Config{}
	_, err := Build(dir, cfg, m, Options{Environment: environment.None()}, "default", runner.ShellModes{}, hclog.NewNullLogger())
	require.Error(t, err)
}

func TestBuildReleasePackagesArtifact(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, ".lal", "BUILD"), "#!/bin/sh\necho hi > OUTPUT/payload.txt\n")

	m := manifest.New("widget", "default")
	m.Components["widget"] = manifest.ComponentConfiguration{Configurations: []string{"release"}, DefaultConfig: "release"}

	cfg := &lalconfig.Config{}
	_, err := Build(dir, cfg, m, Options{Environment: environment.None(), Release: true}, "default", runner.ShellModes{}, hclog.NewNullLogger())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "ARTIFACT", "widget.tar.gz"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ARTIFACT", "lockfile.json"))
	require.NoError(t, err)
}
