package backend

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishFixture(t *testing.T, dir, name string) {
	t.Helper()
	artifactDir := filepath.Join(dir, "ARTIFACT")
	require.NoError(t, os.MkdirAll(artifactDir, 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(artifactDir, name+".tar.gz"), []byte("tarball"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(artifactDir, "lockfile.json"), []byte("{}"), 0644))
}

func TestLocalPublishAndFetch(t *testing.T) {
	cacheRoot := t.TempDir()
	componentDir := t.TempDir()
	publishFixture(t, componentDir, "heylib")

	l, err := NewLocal(cacheRoot)
	require.NoError(t, err)

	require.NoError(t, l.PublishArtifact(componentDir, "heylib", 1, "default"))

	versions, err := l.GetVersions("heylib", "default")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)

	info, err := l.GetComponentInfo("heylib", nil, "default")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Version)

	dest := filepath.Join(t.TempDir(), "heylib.tar.gz")
	require.NoError(t, l.RawFetch(info.Location, dest))
	data, err := ioutil.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "tarball", string(data))
}

func TestLocalGetLatestVersionNoVersions(t *testing.T) {
	cacheRoot := t.TempDir()
	l, err := NewLocal(cacheRoot)
	require.NoError(t, err)
	_, err = l.GetLatestVersion("nothing", "default")
	require.Error(t, err)
}
