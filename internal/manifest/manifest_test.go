package manifest

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() hclog.Logger {
	return hclog.NewNullLogger()
}

func TestReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := New("helloworld", "default")
	m.Dependencies["heylib"] = 2
	m.Components["helloworld"] = ComponentConfiguration{
		Configurations: []string{"release", "debug"},
		DefaultConfig:  "release",
	}

	require.NoError(t, Write(m, dir, testLogger()))

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Environment, got.Environment)
	assert.Equal(t, m.Dependencies, got.Dependencies)
	assert.Equal(t, m.Components, got.Components)
}

func TestReadPrefersLalSubdir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".lal"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, ".lal", "manifest.json"), []byte(`{"name":"new"}`), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{"name":"old"}`), 0644))

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
}

func TestReadMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Read(dir)
	require.Error(t, err)
}

func TestVerifyRejectsBadDefaultConfig(t *testing.T) {
	m := New("foo", "default")
	m.Components["foo"] = ComponentConfiguration{
		Configurations: []string{"release"},
		DefaultConfig:  "debug",
	}
	err := Verify(m)
	require.Error(t, err)
}

func TestVerifyRejectsUppercaseComponentName(t *testing.T) {
	m := New("foo", "default")
	m.Components["Foo"] = ComponentConfiguration{
		Configurations: []string{"release"},
		DefaultConfig:  "release",
	}
	err := Verify(m)
	require.Error(t, err)
}

func TestAllDependenciesPrefersDevDependencies(t *testing.T) {
	m := New("foo", "default")
	m.Dependencies["heylib"] = 1
	m.DevDependencies["heylib"] = 2
	m.DevDependencies["testlib"] = 5

	got := AllDependencies(m)
	assert.Equal(t, 2, got["heylib"])
	assert.Equal(t, 5, got["testlib"])
}

func TestGetEnvironmentUnknown(t *testing.T) {
	m := New("foo", "default")
	_, err := GetEnvironment(m, "alpine")
	require.Error(t, err)
}
