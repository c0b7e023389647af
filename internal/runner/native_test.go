package runner

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/lalerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeRunSetsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	err := NativeRun([]string{"sh", "-c", "pwd > marker"}, nil, dir, hclog.NewNullLogger())
	require.NoError(t, err)

	data, err := ioutil.ReadFile(marker)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, string(data), resolved)
}

func TestNativeRunPropagatesExitCode(t *testing.T) {
	err := NativeRun([]string{"sh", "-c", "exit 3"}, nil, t.TempDir(), hclog.NewNullLogger())
	require.Error(t, err)
	var ce *lalerrors.CliError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.Code)
}

func TestNativeRunEmptyCommandIsNoop(t *testing.T) {
	require.NoError(t, NativeRun(nil, nil, t.TempDir(), hclog.NewNullLogger()))
}

func TestNativeRunPassesExtraEnv(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	err := NativeRun([]string{"sh", "-c", "echo $FOO > marker"}, []string{"FOO=bar"}, dir, hclog.NewNullLogger())
	require.NoError(t, err)

	data, err := ioutil.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "bar\n", string(data))
}
