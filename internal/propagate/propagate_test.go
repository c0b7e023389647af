package propagate

import (
	"testing"

	"github.com/lalbuild/lal/internal/lockfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string, children ...*lockfile.Lockfile) *lockfile.Lockfile {
	lf := &lockfile.Lockfile{Name: name, Dependencies: map[string]*lockfile.Lockfile{}}
	for _, c := range children {
		lf.Dependencies[c.Name] = c
	}
	return lf
}

// prop-base -> {prop-mid-1, prop-mid-2} -> prop-leaf
func buildTree() *lockfile.Lockfile {
	leaf := node("prop-leaf")
	mid1 := node("prop-mid-1", leaf)
	mid2 := node("prop-mid-2", leaf)
	return node("prop-base", mid1, mid2)
}

func TestPlanTwoStageDiamond(t *testing.T) {
	root := buildTree()
	stages, found := Plan(root, "prop-leaf")
	require.True(t, found)
	require.Len(t, stages, 2)

	assert.Len(t, stages[0], 2)
	assert.Equal(t, "prop-mid-1", stages[0][0].Repo)
	assert.Equal(t, []string{"prop-leaf"}, stages[0][0].Dependencies)
	assert.Equal(t, "prop-mid-2", stages[0][1].Repo)
	assert.Equal(t, []string{"prop-leaf"}, stages[0][1].Dependencies)

	require.Len(t, stages[1], 1)
	assert.Equal(t, "prop-base", stages[1][0].Repo)
	assert.Equal(t, []string{"prop-mid-1", "prop-mid-2"}, stages[1][0].Dependencies)
}

func TestPlanLeafNotFound(t *testing.T) {
	root := buildTree()
	stages, found := Plan(root, "nope")
	assert.False(t, found)
	assert.Nil(t, stages)
}

func TestPlanLeafIsDirectDependencyOfRoot(t *testing.T) {
	leaf := node("only-dep")
	root := node("solo", leaf)
	stages, found := Plan(root, "only-dep")
	require.True(t, found)
	require.Len(t, stages, 1)
	assert.Equal(t, "solo", stages[0][0].Repo)
	assert.Equal(t, []string{"only-dep"}, stages[0][0].Dependencies)
}
