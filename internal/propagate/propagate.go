// Package propagate implements C7: given a root lockfile and a leaf
// component name, compute the staged plan of rebuilds required to carry a
// new leaf version up to the root. Grounded on spec §4.7 and on the
// teacher's internal/context/context.go + internal/core/scheduler.go, which
// build a dag.AcyclicGraph with edges running consumer -> dependency
// (`Connect(dag.BasicEdge(pkg.Name, dependencyName))`) and then query it with
// Ancestors/DownEdges/UpEdges rather than hand-rolled traversal; the BFS
// depth-layering on top of that graph has no teacher precedent and is
// original to this package.
package propagate

import (
	"sort"

	"github.com/lalbuild/lal/internal/lockfile"
	"github.com/pyr-sh/dag"
)

// Entry is one component's position within a stage: its name and the names
// of the stage-previous dependencies it must consume to rebuild.
type Entry struct {
	Repo         string   `json:"repo"`
	Dependencies []string `json:"dependencies"`
}

// Stage is a group of entries that may be rebuilt together because none of
// them depends, even transitively, on another entry in the same stage.
type Stage []Entry

// Plan computes the propagation plan for leaf over root's populated lockfile
// tree (dir/INPUT/*, already attached via lockfile.PopulateFromInput). leaf
// must name some node reachable in that tree; if it is absent, Plan returns
// a nil plan and found=false rather than an error, per spec §4.7.
func Plan(root *lockfile.Lockfile, leaf string) (plan []Stage, found bool) {
	g := &dag.AcyclicGraph{}
	g.Add(root.Name)

	leafSeen := leaf == root.Name
	var walk func(node *lockfile.Lockfile)
	walk = func(node *lockfile.Lockfile) {
		for name, child := range node.Dependencies {
			if name == leaf {
				leafSeen = true
			}
			g.Add(name)
			g.Add(node.Name)
			// node depends on name: edge points from consumer to dependency,
			// matching the teacher's TopologicalGraph convention.
			g.Connect(dag.BasicEdge(node.Name, name))
			walk(child)
		}
	}
	walk(root)

	if !leafSeen {
		return nil, false
	}

	// Descendents(leaf) walks UpEdges transitively: every vertex with a path
	// to leaf, i.e. every component that (directly or transitively) depends
	// on leaf. That is exactly the reverse-dependency subgraph to rebuild.
	// (Ancestors walks DownEdges instead and would yield leaf's own deps.)
	consumers, err := g.Descendents(leaf)
	if err != nil {
		return nil, false
	}

	reachable := map[string]bool{leaf: true}
	for _, v := range consumers.List() {
		reachable[dag.VertexName(v)] = true
	}

	// Depth = length of the longest path back to leaf along reverse edges,
	// computed by relaxing distances while walking consumers outward from
	// leaf (BFS layering, re-enqueuing a node whenever a longer path to it
	// is found so the final depth is the longest, not the shortest, path).
	depth := map[string]int{leaf: 0}
	queue := []string{leaf}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, up := range g.UpEdges(name).List() {
			consumer := dag.VertexName(up)
			if !reachable[consumer] {
				continue
			}
			candidate := depth[name] + 1
			if existing, ok := depth[consumer]; !ok || candidate > existing {
				depth[consumer] = candidate
				queue = append(queue, consumer)
			}
		}
	}

	maxDepth := 0
	for name, d := range depth {
		if name == leaf {
			continue
		}
		if d > maxDepth {
			maxDepth = d
		}
	}

	stages := make([]Stage, maxDepth)
	for name, d := range depth {
		if name == leaf {
			continue
		}
		var deps []string
		if d == 1 {
			deps = []string{leaf}
		} else {
			for _, down := range g.DownEdges(name).List() {
				dep := dag.VertexName(down)
				if reachable[dep] && depth[dep] == d-1 {
					deps = append(deps, dep)
				}
			}
		}
		sort.Strings(deps)
		stages[d-1] = append(stages[d-1], Entry{Repo: name, Dependencies: deps})
	}
	for i := range stages {
		sort.Slice(stages[i], func(a, b int) bool { return stages[i][a].Repo < stages[i][b].Repo })
	}

	return stages, true
}
