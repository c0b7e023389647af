package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChildLockfile(t *testing.T, dir, name, version, env string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "INPUT", name), 0755))
	child := New(name, environment.None(), env, version, "")
	require.NoError(t, Write(child, filepath.Join(dir, "INPUT", name, "lockfile.json")))
}

func TestPopulateFromInput(t *testing.T) {
	dir := t.TempDir()
	writeChildLockfile(t, dir, "heylib", "1", "default")

	lf := New("helloworld", environment.None(), "default", "", "release")
	lf, err := lf.PopulateFromInput(dir)
	require.NoError(t, err)

	require.Contains(t, lf.Dependencies, "heylib")
	assert.Equal(t, "1", lf.Dependencies["heylib"].Version)
	assert.Equal(t, "default", lf.Dependencies["heylib"].Environment)
}

func TestPopulateFromInputMissingIsNotError(t *testing.T) {
	dir := t.TempDir()
	lf := New("leaf", environment.None(), "default", "", "release")
	lf, err := lf.PopulateFromInput(dir)
	require.NoError(t, err)
	assert.Empty(t, lf.Dependencies)
}

func TestVerifyGlobalVersionsMismatch(t *testing.T) {
	dir := t.TempDir()
	writeChildLockfile(t, dir, "heylib", "1", "default")

	m := manifest.New("helloworld", "default")
	m.Dependencies["heylib"] = 2

	lf := New("helloworld", environment.None(), "default", "", "release")
	lf, err := lf.PopulateFromInput(dir)
	require.NoError(t, err)

	err = VerifyGlobalVersions(lf, m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heylib")
}

func TestVerifyGlobalVersionsOK(t *testing.T) {
	dir := t.TempDir()
	writeChildLockfile(t, dir, "heylib", "2", "default")

	m := manifest.New("helloworld", "default")
	m.Dependencies["heylib"] = 2

	lf := New("helloworld", environment.None(), "default", "", "release")
	lf, err := lf.PopulateFromInput(dir)
	require.NoError(t, err)

	require.NoError(t, VerifyGlobalVersions(lf, m))
}

func TestVerifyConsistentDependencyVersionsDetectsMultipleVersions(t *testing.T) {
	a := New("mid-a", environment.None(), "default", "", "")
	a.Dependencies["leaf"] = New("leaf", environment.None(), "default", "1", "")
	b := New("mid-b", environment.None(), "default", "", "")
	b.Dependencies["leaf"] = New("leaf", environment.None(), "default", "2", "")

	root := New("base", environment.None(), "default", "", "")
	root.Dependencies["mid-a"] = a
	root.Dependencies["mid-b"] = b

	m := manifest.New("base", "default")
	m.Dependencies["mid-a"] = 0
	m.Dependencies["mid-b"] = 0
	m.Dependencies["leaf"] = 0

	err := VerifyConsistentDependencyVersions(root, m)
	require.Error(t, err)
}

func TestVerifyConsistentDependencyVersionsRequiresGlobalListing(t *testing.T) {
	a := New("mid-a", environment.None(), "default", "", "")
	a.Dependencies["leaf"] = New("leaf", environment.None(), "default", "1", "")
	b := New("mid-b", environment.None(), "default", "", "")
	b.Dependencies["leaf"] = New("leaf", environment.None(), "default", "1", "")

	root := New("base", environment.None(), "default", "", "")
	root.Dependencies["mid-a"] = a
	root.Dependencies["mid-b"] = b

	m := manifest.New("base", "default")
	m.Dependencies["mid-a"] = 0
	m.Dependencies["mid-b"] = 0
	// "leaf" deliberately missing from direct dependencies but consumed by two subtrees

	err := VerifyConsistentDependencyVersions(root, m)
	require.Error(t, err)
}

func TestVerifyEnvironmentConsistency(t *testing.T) {
	root := New("base", environment.None(), "default", "", "")
	root.Dependencies["heylib"] = New("heylib", environment.None(), "alpine", "1", "")

	err := VerifyEnvironmentConsistency(root, "default")
	require.Error(t, err)
}
