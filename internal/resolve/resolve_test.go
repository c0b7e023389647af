package resolve

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/backend"
	"github.com/lalbuild/lal/internal/cachedbackend"
	"github.com/lalbuild/lal/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, cacheRoot, name string, version int, env string) {
	t.Helper()
	componentDir := t.TempDir()
	lockJSON := []byte(`{"name":"` + name + `","version":"` + strconv.Itoa(version) + `","environment":"` + env + `"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(componentDir, "ARTIFACT", "OUTPUT"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(componentDir, "OUTPUT"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(componentDir, "OUTPUT", "hello.txt"), []byte(name), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(componentDir, "OUTPUT", "lockfile.json"), lockJSON, 0644))
	require.NoError(t, cachedbackend.TarOutputDirectory(componentDir, filepath.Join(componentDir, "ARTIFACT", name+".tar.gz")))
	require.NoError(t, ioutil.WriteFile(filepath.Join(componentDir, "ARTIFACT", "lockfile.json"), lockJSON, 0644))

	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	require.NoError(t, l.PublishArtifact(componentDir, name, version, env))
}

func newCached(t *testing.T, cacheRoot string) *cachedbackend.CachedBackend {
	t.Helper()
	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	return cachedbackend.New(l, hclog.NewNullLogger())
}

func TestFetchInstallsDeclaredDependencies(t *testing.T) {
	cacheRoot := t.TempDir()
	publish(t, cacheRoot, "heylib", 1, "default")
	cb := newCached(t, cacheRoot)

	dir := t.TempDir()
	m := manifest.New("consumer", "default")
	m.Dependencies["heylib"] = 1

	require.NoError(t, Fetch(dir, m, cb, false, "default", hclog.NewNullLogger()))

	data, err := ioutil.ReadFile(filepath.Join(dir, "INPUT", "heylib", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "heylib", string(data))
}

func TestFetchReusesMatchingVersion(t *testing.T) {
	cacheRoot := t.TempDir()
	publish(t, cacheRoot, "heylib", 1, "default")
	cb := newCached(t, cacheRoot)

	dir := t.TempDir()
	m := manifest.New("consumer", "default")
	m.Dependencies["heylib"] = 1

	require.NoError(t, Fetch(dir, m, cb, false, "default", hclog.NewNullLogger()))
	marker := filepath.Join(dir, "INPUT", "heylib", "marker")
	require.NoError(t, ioutil.WriteFile(marker, []byte("untouched"), 0644))

	require.NoError(t, Fetch(dir, m, cb, false, "default", hclog.NewNullLogger()))
	data, err := ioutil.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(data))
}

func TestFetchRemovesExtraneousDependencies(t *testing.T) {
	cacheRoot := t.TempDir()
	publish(t, cacheRoot, "heylib", 1, "default")
	cb := newCached(t, cacheRoot)

	dir := t.TempDir()
	m := manifest.New("consumer", "default")
	m.Dependencies["heylib"] = 1
	require.NoError(t, Fetch(dir, m, cb, false, "default", hclog.NewNullLogger()))

	delete(m.Dependencies, "heylib")
	require.NoError(t, Fetch(dir, m, cb, false, "default", hclog.NewNullLogger()))

	_, err := os.Stat(filepath.Join(dir, "INPUT", "heylib"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateByExplicitVersion(t *testing.T) {
	cacheRoot := t.TempDir()
	publish(t, cacheRoot, "heylib", 1, "default")
	publish(t, cacheRoot, "heylib", 2, "default")
	cb := newCached(t, cacheRoot)

	dir := t.TempDir()
	m := manifest.New("consumer", "default")
	m.Dependencies["heylib"] = 1

	require.NoError(t, Update(dir, m, cb, []string{"heylib=2"}, true, false, "default", hclog.NewNullLogger()))
	assert.Equal(t, 2, m.Dependencies["heylib"])
}

func TestUpdateRejectsUppercaseName(t *testing.T) {
	cacheRoot := t.TempDir()
	cb := newCached(t, cacheRoot)
	dir := t.TempDir()
	m := manifest.New("consumer", "default")

	err := Update(dir, m, cb, []string{"HeyLib=1"}, false, false, "default", hclog.NewNullLogger())
	require.Error(t, err)
}

func TestRemoveDropsInputAndManifestEntry(t *testing.T) {
	cacheRoot := t.TempDir()
	publish(t, cacheRoot, "heylib", 1, "default")
	cb := newCached(t, cacheRoot)

	dir := t.TempDir()
	m := manifest.New("consumer", "default")
	m.Dependencies["heylib"] = 1
	require.NoError(t, Fetch(dir, m, cb, false, "default", hclog.NewNullLogger()))

	require.NoError(t, Remove(dir, m, []string{"heylib"}, true, false, hclog.NewNullLogger()))

	_, err := os.Stat(filepath.Join(dir, "INPUT", "heylib"))
	assert.True(t, os.IsNotExist(err))
	_, ok := m.Dependencies["heylib"]
	assert.False(t, ok)
}

func TestVerifyPassesForWellFormedTree(t *testing.T) {
	cacheRoot := t.TempDir()
	publish(t, cacheRoot, "heylib", 1, "default")
	cb := newCached(t, cacheRoot)

	dir := t.TempDir()
	m := manifest.New("consumer", "default")
	m.Dependencies["heylib"] = 1
	require.NoError(t, Fetch(dir, m, cb, false, "default", hclog.NewNullLogger()))

	require.NoError(t, Verify(dir, m, "default", false, hclog.NewNullLogger()))
}

func TestVerifyFailsWhenDependencyMissingFromInput(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New("consumer", "default")
	m.Dependencies["heylib"] = 1

	err := Verify(dir, m, "default", false, hclog.NewNullLogger())
	require.Error(t, err)
}
