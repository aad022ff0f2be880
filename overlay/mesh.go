package overlay

import (
	"math/rand"
	"sync"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/solindex/geyser-indexer/event"
)

// MeshSize is the D_mesh bound from spec §4.5: a peer maintains up to
// this many mesh members per topic.
type MeshSize struct {
	Low, High, Max int
}

// DefaultMeshSize matches the recommended 6 low / 8 high / 12 max.
var DefaultMeshSize = MeshSize{Low: 6, High: 8, Max: 12}

// topicMesh tracks mesh membership for one topic (one event kind).
// Graft adds a peer if there's room; prune removes the slowest
// consumer on backpressure overflow, per spec §4.5.
type topicMesh struct {
	mu      sync.RWMutex
	members map[peer.ID]struct{}
	size    MeshSize
}

func newTopicMesh(size MeshSize) *topicMesh {
	return &topicMesh{
		members: make(map[peer.ID]struct{}),
		size:    size,
	}
}

func (m *topicMesh) graft(id peer.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[id]; ok {
		return false
	}
	if len(m.members) >= m.size.Max {
		return false
	}
	m.members[id] = struct{}{}
	return true
}

func (m *topicMesh) prune(id peer.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, id)
}

func (m *topicMesh) needsMore() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members) < m.size.Low
}

func (m *topicMesh) memberList() []peer.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]peer.ID, 0, len(m.members))
	for id := range m.members {
		out = append(out, id)
	}
	return out
}

// meshSet is one topicMesh per event kind plus a larger lazy-announce
// fanout used to propagate bare message-ids beyond the mesh.
type meshSet struct {
	byKind      map[event.Kind]*topicMesh
	lazyFanout  int
}

func newMeshSet(size MeshSize, lazyFanout int) *meshSet {
	s := &meshSet{
		byKind:     make(map[event.Kind]*topicMesh),
		lazyFanout: lazyFanout,
	}
	for _, k := range event.AllKinds() {
		s.byKind[k] = newTopicMesh(size)
	}
	return s
}

func (s *meshSet) mesh(kind event.Kind) *topicMesh {
	return s.byKind[kind]
}

// lazyTargets picks up to lazyFanout peers outside the mesh from
// candidates, used to announce message-ids without paying the full
// envelope bandwidth to every peer.
func (s *meshSet) lazyTargets(kind event.Kind, candidates []peer.ID) []peer.ID {
	mesh := s.byKind[kind]
	mesh.mu.RLock()
	outside := make([]peer.ID, 0, len(candidates))
	for _, id := range candidates {
		if _, inMesh := mesh.members[id]; !inMesh {
			outside = append(outside, id)
		}
	}
	mesh.mu.RUnlock()

	rand.Shuffle(len(outside), func(i, j int) { outside[i], outside[j] = outside[j], outside[i] })
	if len(outside) > s.lazyFanout {
		outside = outside[:s.lazyFanout]
	}
	return outside
}
