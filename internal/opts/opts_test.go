package opts

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMissingReturnsZeroValue(t *testing.T) {
	o, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Options{}, o)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(Options{Env: "alpine"}, dir))

	o, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "alpine", o.Env)
}

func TestDeleteLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(Options{Env: "alpine"}, dir))
	require.NoError(t, DeleteLocal(dir))

	_, err := os.Stat(path(dir))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteLocalMissingIsNotError(t *testing.T) {
	require.NoError(t, DeleteLocal(t.TempDir()))
}
