package cachepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathsAreDeterministic(t *testing.T) {
	a := PublishedTarball("/cache", "default", "heylib", 2)
	b := PublishedTarball("/cache", "default", "heylib", 2)
	assert.Equal(t, a, b)
	assert.Equal(t, "/cache/environments/default/heylib/2/heylib.tar.gz", a)
}

func TestStashPaths(t *testing.T) {
	assert.Equal(t, "/cache/stash/heylib/blah/heylib.tar.gz", StashTarball("/cache", "heylib", "blah"))
	assert.Equal(t, "/cache/stash/heylib/blah/lockfile.json", StashLockfile("/cache", "heylib", "blah"))
}
