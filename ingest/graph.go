package ingest

import (
	"sync"

	"github.com/dominikbraun/graph"
)

// ancestorGraph is a directed acyclic graph of slot -> parent edges,
// generalizing the teacher's depdag.MakeDAG (graph.New with a string
// hash over dependency names) to a uint64 slot hash used for orphan
// detection: a competing Rooted slot at the same height orphans the
// local slot unless the local slot is its ancestor.
type ancestorGraph struct {
	mu sync.RWMutex
	g  graph.Graph[uint64, uint64]
}

func newAncestorGraph() *ancestorGraph {
	return &ancestorGraph{
		g: graph.New(func(v uint64) uint64 { return v }, graph.Directed(), graph.Acyclic()),
	}
}

// addEdge records slot's parent link. Both vertices are added
// idempotently; AddVertex/AddEdge errors on an already-present
// vertex/edge are expected on replays and ignored.
func (a *ancestorGraph) addEdge(slot, parent uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_ = a.g.AddVertex(slot)
	_ = a.g.AddVertex(parent)
	_ = a.g.AddEdge(slot, parent)
}

// isAncestor reports whether candidate is reachable from slot by
// walking parent edges, i.e. candidate is an ancestor of slot (or
// candidate == slot).
func (a *ancestorGraph) isAncestor(slot, candidate uint64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	adjacency, err := a.g.AdjacencyMap()
	if err != nil {
		return false
	}

	cur := slot
	for i := 0; i < maxAncestorWalk; i++ {
		if cur == candidate {
			return true
		}
		edges := adjacency[cur]
		if len(edges) == 0 {
			return false
		}
		// a slot has exactly one parent edge by construction
		for parent := range edges {
			cur = parent
			break
		}
	}
	return false
}

// maxAncestorWalk bounds the ancestor walk so a corrupted or
// maliciously long parent chain can't hang the ISM event loop.
const maxAncestorWalk = 1 << 20
