package ecs

import (
	"sync"
	"testing"
)

type Position struct {
	X, Y int32
}

type Velocity struct {
	DX, DY int32
}

type Name struct {
	Name string
}

func TestAddEntitySpawnsComponents(t *testing.T) {
	w := NewWorld()
	builder := w.AddEntity()
	WithComponent(builder, Position{X: 1, Y: 2})
	WithComponent(builder, Velocity{DX: 1, DY: 0})
	id, err := builder.Spawn()
	if err != nil {
		t.Fatalf("Spawn returned error: %v", err)
	}

	pos, ok := GetComponent[Position](w, id)
	if !ok {
		t.Fatal("expected entity to have Position")
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Errorf("unexpected Position %+v", pos)
	}
	if w.NumberOfEntities() != 1 {
		t.Errorf("expected 1 entity, got %d", w.NumberOfEntities())
	}
}

func TestQueryEmptyMatchesEverything(t *testing.T) {
	w := NewWorld()
	b1 := w.AddEntity()
	WithComponent(b1, Position{})
	b1.Spawn()
	b2 := w.AddEntity()
	WithComponent(b2, Velocity{})
	b2.Spawn()

	result := w.Query(Query{})
	if result.Len() != 2 {
		t.Errorf("expected 2 entities matched by empty query, got %d", result.Len())
	}
}

func TestQueryIsSoundAndComplete(t *testing.T) {
	w := NewWorld()
	b1 := w.AddEntity()
	WithComponent(b1, Position{X: 1})
	WithComponent(b1, Velocity{DX: 1})
	both, _ := b1.Spawn()

	b2 := w.AddEntity()
	WithComponent(b2, Position{X: 2})
	posOnly, _ := b2.Spawn()

	q := NewQueryBuilder()
	With[Position](q)
	With[Velocity](q)
	result := w.Query(q.Build())

	if result.Len() != 1 {
		t.Fatalf("expected exactly 1 match, got %d", result.Len())
	}
	if result.Groups()[0].ID() != both {
		t.Errorf("expected matched entity %d, got %d", both, result.Groups()[0].ID())
	}

	qPos := NewQueryBuilder()
	With[Position](qPos)
	resultPos := w.Query(qPos.Build())
	if resultPos.Len() != 2 {
		t.Errorf("expected 2 entities with Position, got %d", resultPos.Len())
	}
	seen := map[EntityID]bool{}
	for _, g := range resultPos.Groups() {
		seen[g.ID()] = true
	}
	if !seen[both] || !seen[posOnly] {
		t.Errorf("expected both entities in Position query result")
	}
}

func TestReadEmitsNoChange(t *testing.T) {
	w := NewWorld()
	b := w.AddEntity()
	WithComponent(b, Position{X: 5})
	id, _ := b.Spawn()

	q := NewQueryBuilder()
	With[Position](q)
	result := w.Query(q.Build())
	for _, g := range result.Groups() {
		Read[Position](g)
	}
	if len(result.changes()) != 0 {
		t.Errorf("expected no changes from a read-only pass, got %d", len(result.changes()))
	}

	pos, _ := GetComponent[Position](w, id)
	if pos.X != 5 {
		t.Errorf("component should be untouched, got %+v", pos)
	}
}

func TestWriteEmitsExactlyOneUpdate(t *testing.T) {
	w := NewWorld()
	b := w.AddEntity()
	WithComponent(b, Position{X: 5})
	id, _ := b.Spawn()

	q := NewQueryBuilder()
	With[Position](q)
	result := w.Query(q.Build())
	for _, g := range result.Groups() {
		p, _ := Write[Position](g)
		p.X = 99
	}
	changes := result.changes()
	if len(changes) != 1 {
		t.Fatalf("expected exactly 1 change, got %d", len(changes))
	}
	if changes[0].Type != UpdateComponent {
		t.Errorf("expected UpdateComponent, got %v", changes[0].Type)
	}

	if err := w.Commit(changes); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	pos, _ := GetComponent[Position](w, id)
	if pos.X != 99 {
		t.Errorf("expected committed write to land, got %+v", pos)
	}
}

func TestAddThenRemoveLeavesWorldIdentical(t *testing.T) {
	w := NewWorld()
	b := w.AddEntity()
	WithComponent(b, Position{X: 1})
	id, _ := b.Spawn()

	before := w.NumberOfEntities()

	q := NewQueryBuilder()
	With[Velocity](q)
	result := w.Query(q.Build())
	newEntity := result.AddEntity(w.NewEntityID())
	AddToGroup(newEntity, Velocity{DX: 1})
	RemoveFromGroup[Velocity](newEntity)

	if err := w.Commit(result.changes()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if w.NumberOfEntities() != before {
		t.Errorf("expected entity count unchanged, got %d want %d", w.NumberOfEntities(), before)
	}
	if _, ok := GetComponent[Position](w, id); !ok {
		t.Error("unrelated entity should be untouched")
	}
}

func TestRemoveEntityDecomposesIntoRemoveComponents(t *testing.T) {
	removed := map[ComponentTypeID]int{}
	var mu sync.Mutex

	wb := NewWorldBuilder()
	wb.WithHook(func(c Change, view WorldView, writer *ResourceWriter) []Change {
		if c.Type == RemoveComponent {
			mu.Lock()
			removed[c.Component.Type()]++
			mu.Unlock()
		}
		return nil
	})
	w := wb.Build()

	b := w.AddEntity()
	WithComponent(b, Position{X: 1})
	WithComponent(b, Velocity{DX: 1})
	id, _ := b.Spawn()

	if err := w.RemoveEntity(id); err != nil {
		t.Fatalf("RemoveEntity failed: %v", err)
	}
	if w.NumberOfEntities() != 0 {
		t.Errorf("expected entity fully removed, got count %d", w.NumberOfEntities())
	}
	if removed[TypeID[Position]()] != 1 || removed[TypeID[Velocity]()] != 1 {
		t.Errorf("expected one RemoveComponent hook firing per component, got %+v", removed)
	}
}

func TestHookQueuedResourceWriteIsApplied(t *testing.T) {
	type Counter struct{ N int }

	wb := NewWorldBuilder()
	WithResource(wb, &Counter{})
	WithTypedHook[Position](wb, func(c Change, view WorldView, writer *ResourceWriter) []Change {
		WriteResourceDeferred(writer, func(counter *Counter) {
			counter.N++
		})
		return nil
	})
	w := wb.Build()

	b := w.AddEntity()
	WithComponent(b, Position{X: 1})
	b.Spawn()

	var got int
	if err := ReadResource[*Counter](w, func(counter *Counter) { got = counter.N }); err != nil {
		t.Fatalf("ReadResource failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected hook-queued resource write to apply, got N=%d", got)
	}
}

func TestStageExecutesSystemsAndCommitsChanges(t *testing.T) {
	w := NewWorld()
	b := w.AddEntity()
	WithComponent(b, Position{X: 0})
	WithComponent(b, Velocity{DX: 3, DY: 4})
	id, _ := b.Spawn()

	stage := NewStageBuilder().WithSystem(moveSystem{}).Build()
	if err := w.ExecuteStage(stage); err != nil {
		t.Fatalf("ExecuteStage failed: %v", err)
	}

	pos, _ := GetComponent[Position](w, id)
	if pos.X != 3 || pos.Y != 4 {
		t.Errorf("expected position updated by velocity, got %+v", pos)
	}
}

type moveSystem struct{}

func (moveSystem) Query() Query {
	q := NewQueryBuilder()
	With[Position](q)
	With[Velocity](q)
	return q.Build()
}

func (moveSystem) Execute(result *QueryResult, view WorldView, writer *ResourceWriter) error {
	for _, g := range result.Groups() {
		vel, _ := Read[Velocity](g)
		pos, _ := Write[Position](g)
		pos.X += vel.DX
		pos.Y += vel.DY
	}
	return nil
}

func TestSpawnTenThousandEntitiesAndCount(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 10000; i++ {
		b := w.AddEntity()
		WithComponent(b, Position{X: int32(i)})
		if _, err := b.Spawn(); err != nil {
			t.Fatalf("spawn %d failed: %v", i, err)
		}
	}
	if w.NumberOfEntities() != 10000 {
		t.Errorf("expected 10000 entities, got %d", w.NumberOfEntities())
	}

	q := NewQueryBuilder()
	With[Position](q)
	result := w.Query(q.Build())
	if result.Len() != 10000 {
		t.Errorf("expected query to match all 10000 entities, got %d", result.Len())
	}
}
