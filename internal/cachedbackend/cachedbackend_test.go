package cachedbackend

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, cacheRoot, componentDir, name string, version int, env string) {
	t.Helper()
	artifactDir := filepath.Join(componentDir, "ARTIFACT")
	require.NoError(t, os.MkdirAll(filepath.Join(artifactDir, "OUTPUT"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(componentDir, "OUTPUT"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(componentDir, "OUTPUT", "hello.txt"), []byte("hi"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(componentDir, "OUTPUT", "lockfile.json"), []byte(`{"name":"`+name+`"}`), 0644))
	require.NoError(t, TarOutputDirectory(componentDir, filepath.Join(artifactDir, name+".tar.gz")))
	require.NoError(t, ioutil.WriteFile(filepath.Join(artifactDir, "lockfile.json"), []byte(`{"name":"`+name+`"}`), 0644))

	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	require.NoError(t, l.PublishArtifact(componentDir, name, version, env))
}

func TestUnpackPublishedComponentExtractsFiles(t *testing.T) {
	cacheRoot := t.TempDir()
	publishDir := t.TempDir()
	publish(t, cacheRoot, publishDir, "heylib", 1, "default")

	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	cb := New(l, hclog.NewNullLogger())

	consumerDir := t.TempDir()
	v := 1
	comp, err := cb.UnpackPublishedComponent(consumerDir, "heylib", &v, "default")
	require.NoError(t, err)
	assert.Equal(t, 1, comp.Version)

	data, err := ioutil.ReadFile(filepath.Join(consumerDir, "INPUT", "heylib", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestUnpackPublishedComponentIsIdempotent(t *testing.T) {
	cacheRoot := t.TempDir()
	publishDir := t.TempDir()
	publish(t, cacheRoot, publishDir, "heylib", 1, "default")

	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	cb := New(l, hclog.NewNullLogger())

	consumerDir := t.TempDir()
	v := 1
	_, err = cb.UnpackPublishedComponent(consumerDir, "heylib", &v, "default")
	require.NoError(t, err)
	_, err = cb.UnpackPublishedComponent(consumerDir, "heylib", &v, "default")
	require.NoError(t, err)

	data, err := ioutil.ReadFile(filepath.Join(consumerDir, "INPUT", "heylib", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestGetLatestSupportedVersionsIntersects(t *testing.T) {
	cacheRoot := t.TempDir()
	publishDir := t.TempDir()
	publish(t, cacheRoot, publishDir, "heylib", 1, "default")
	publish(t, cacheRoot, publishDir, "heylib", 2, "default")
	publish(t, cacheRoot, publishDir, "heylib", 1, "alpine")

	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	cb := New(l, hclog.NewNullLogger())

	versions, err := cb.GetLatestSupportedVersions("heylib", []string{"default", "alpine"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)
}

func TestStashAndRetrieve(t *testing.T) {
	cacheRoot := t.TempDir()
	componentDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(componentDir, "OUTPUT"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(componentDir, "OUTPUT", "lockfile.json"), []byte(`{"name":"heylib"}`), 0644))

	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	cb := New(l, hclog.NewNullLogger())

	require.NoError(t, cb.StashOutput(componentDir, "heylib", "blah"))

	consumerDir := t.TempDir()
	require.NoError(t, cb.UnpackStashedComponent(consumerDir, "heylib", "blah"))

	_, err = ioutil.ReadFile(filepath.Join(consumerDir, "INPUT", "heylib", "lockfile.json"))
	require.NoError(t, err)
}

func TestRetrieveStashedComponentMissing(t *testing.T) {
	cacheRoot := t.TempDir()
	l, err := backend.NewLocal(cacheRoot)
	require.NoError(t, err)
	cb := New(l, hclog.NewNullLogger())

	_, err = cb.RetrieveStashedComponent("nope", "blah")
	require.Error(t, err)
}
