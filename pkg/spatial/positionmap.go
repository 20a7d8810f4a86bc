package spatial

import (
	"container/heap"
	"sync"

	"github.com/RazeLighter777/melon/pkg/components"
	"github.com/RazeLighter777/melon/pkg/ecs"
)

// PositionMap is a reactive spatial index: a resource that stays current
// with every entity's Position component via PositionIndexHook, so callers
// never need to rebuild or poll it.
type PositionMap struct {
	mu    sync.RWMutex
	tree  *Quadtree
	known map[ecs.EntityID]point
}

type point struct{ x, y float64 }

// NewPositionMap creates a position map covering bounds, subdividing a
// quadtree node once it holds more than capacity entries.
func NewPositionMap(bounds Bounds, capacity int) *PositionMap {
	return &PositionMap{
		tree:  NewQuadtree(bounds, capacity),
		known: make(map[ecs.EntityID]point),
	}
}

func (m *PositionMap) upsert(id ecs.EntityID, x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.known[id]; ok {
		m.tree.Remove(id, prev.x, prev.y)
	}
	m.tree.Insert(id, x, y)
	m.known[id] = point{x, y}
}

func (m *PositionMap) remove(id ecs.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.known[id]
	if !ok {
		return
	}
	m.tree.Remove(id, prev.x, prev.y)
	delete(m.known, id)
}

// QueryRadius returns every indexed entity within radius of (x, y).
func (m *PositionMap) QueryRadius(x, y, radius float64) []ecs.EntityID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.QueryRadius(x, y, radius)
}

// Count reports how many entities are currently indexed.
func (m *PositionMap) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Count()
}

type neighbor struct {
	entity ecs.EntityID
	distSq float64
}

// neighborHeap is a max-heap on distance, so the single worst of the
// current best-n candidates sits at the root and can be evicted in
// O(log n) when a closer candidate is found.
type neighborHeap []neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].distSq > h[j].distSq }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// GetNearest returns up to n entities nearest to (x, y), nearest first. It
// starts from a search radius of one sixteenth of the larger side of the
// tree's bounds and doubles it until the radius holds at least n entities
// (or every indexed entity), which is enough to be sure the result is
// correct. The order of entities at equal distance is not defined.
func (m *PositionMap) GetNearest(x, y float64, n int) []ecs.EntityID {
	if n <= 0 {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.tree.Count()
	if total == 0 {
		return nil
	}

	radius := initialRadius(m.tree.bounds)
	var candidates []ecs.EntityID
	for {
		candidates = m.tree.QueryRadius(x, y, radius)
		if len(candidates) >= n || len(candidates) >= total {
			break
		}
		radius *= 2
	}

	h := &neighborHeap{}
	heap.Init(h)
	for _, id := range candidates {
		p := m.known[id]
		dx, dy := p.x-x, p.y-y
		distSq := dx*dx + dy*dy
		if h.Len() < n {
			heap.Push(h, neighbor{entity: id, distSq: distSq})
		} else if distSq < (*h)[0].distSq {
			heap.Pop(h)
			heap.Push(h, neighbor{entity: id, distSq: distSq})
		}
	}

	out := make([]ecs.EntityID, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(neighbor).entity
	}
	return out
}

func initialRadius(b Bounds) float64 {
	span := b.Width
	if b.Height > span {
		span = b.Height
	}
	r := span / 16
	if r <= 0 {
		r = 1
	}
	return r
}

// PositionIndexHook reacts to components.Position changes and keeps a
// *PositionMap resource current. Register it on the world builder with
// ecs.WithTypedHook[components.Position] alongside
// ecs.WithResource(builder, positionMap).
func PositionIndexHook(change ecs.Change, view ecs.WorldView, writer *ecs.ResourceWriter) []ecs.Change {
	entity := change.Component.Entity()

	switch change.Type {
	case ecs.AddComponent, ecs.UpdateComponent:
		pos, ok := ecs.Get[components.Position](change.Component)
		if !ok {
			return nil
		}
		ecs.WriteResourceDeferred(writer, func(m *PositionMap) {
			m.upsert(entity, float64(pos.X), float64(pos.Y))
		})
	case ecs.RemoveComponent, ecs.UnloadComponent:
		ecs.WriteResourceDeferred(writer, func(m *PositionMap) {
			m.remove(entity)
		})
	}
	return nil
}
