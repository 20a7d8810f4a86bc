package spatial

import (
	"testing"

	"github.com/RazeLighter777/melon/pkg/components"
	"github.com/RazeLighter777/melon/pkg/ecs"
)

func newSpatialWorld() (*ecs.World, *PositionMap) {
	pm := NewPositionMap(Bounds{X: 0, Y: 0, Width: 1000, Height: 1000}, 4)
	wb := ecs.NewWorldBuilder()
	ecs.WithResource(wb, pm)
	ecs.WithTypedHook[components.Position](wb, PositionIndexHook)
	return wb.Build(), pm
}

func TestPositionIndexTracksAdd(t *testing.T) {
	w, pm := newSpatialWorld()

	b := w.AddEntity()
	ecs.WithComponent(b, components.Position{X: 10, Y: 10})
	id, err := b.Spawn()
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	if pm.Count() != 1 {
		t.Fatalf("expected 1 indexed entity, got %d", pm.Count())
	}
	nearby := pm.QueryRadius(10, 10, 5)
	if len(nearby) != 1 || nearby[0] != id {
		t.Errorf("expected entity %d nearby, got %v", id, nearby)
	}
}

func TestPositionIndexTracksMoveAndRemove(t *testing.T) {
	w, pm := newSpatialWorld()

	b := w.AddEntity()
	ecs.WithComponent(b, components.Position{X: 0, Y: 0})
	id, _ := b.Spawn()

	q := ecs.NewQueryBuilder()
	ecs.With[components.Position](q)
	result := w.Query(q.Build())
	for _, g := range result.Groups() {
		p, _ := ecs.Write[components.Position](g)
		p.X = 500
		p.Y = 500
	}
	if err := w.Commit(result.Changes()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if near := pm.QueryRadius(0, 0, 5); len(near) != 0 {
		t.Errorf("expected no entities near the old position, got %v", near)
	}
	if near := pm.QueryRadius(500, 500, 5); len(near) != 1 || near[0] != id {
		t.Errorf("expected entity at new position, got %v", near)
	}

	if err := w.RemoveEntity(id); err != nil {
		t.Fatalf("remove entity failed: %v", err)
	}
	if pm.Count() != 0 {
		t.Errorf("expected index empty after removal, got count %d", pm.Count())
	}
}

func TestGetNearestOrdersByDistance(t *testing.T) {
	w, pm := newSpatialWorld()

	type placement struct{ x, y int32 }
	placements := []placement{{0, 0}, {100, 0}, {200, 0}, {300, 0}}
	ids := make([]ecs.EntityID, len(placements))
	for i, p := range placements {
		b := w.AddEntity()
		ecs.WithComponent(b, components.Position{X: p.x, Y: p.y})
		id, err := b.Spawn()
		if err != nil {
			t.Fatalf("spawn failed: %v", err)
		}
		ids[i] = id
	}

	nearest := pm.GetNearest(0, 0, 2)
	if len(nearest) != 2 {
		t.Fatalf("expected 2 nearest, got %d", len(nearest))
	}
	if nearest[0] != ids[0] || nearest[1] != ids[1] {
		t.Errorf("expected nearest order %v, got %v", ids[:2], nearest)
	}
}
