package components

import (
	"testing"

	"github.com/RazeLighter777/melon/pkg/ecs"
)

func newParentChildWorld() *ecs.World {
	wb := ecs.NewWorldBuilder()
	ecs.WithTypedHook[Children](wb, ChildrenHook)
	ecs.WithTypedHook[Parent](wb, ParentRemovedHook)
	return wb.Build()
}

func TestChildrenAddPopulatesParent(t *testing.T) {
	w := newParentChildWorld()

	childBuilder := w.AddEntity()
	ecs.WithComponent(childBuilder, Name{Name: "child"})
	childID, err := childBuilder.Spawn()
	if err != nil {
		t.Fatalf("spawn child: %v", err)
	}

	parentBuilder := w.AddEntity()
	ecs.WithComponent(parentBuilder, Children{Entities: []ecs.EntityID{childID}})
	parentID, err := parentBuilder.Spawn()
	if err != nil {
		t.Fatalf("spawn parent: %v", err)
	}

	parent, ok := ecs.GetComponent[Parent](w, childID)
	if !ok || parent.Entity != parentID {
		t.Errorf("expected child's Parent to be %d, got %+v (ok=%v)", parentID, parent, ok)
	}
}

// TestReparentAndRemoveParent exercises spec §8 scenario 3: a child is
// claimed by successive parents via their Children component, and removing
// the current parent clears the child's Parent back-reference.
func TestReparentAndRemoveParent(t *testing.T) {
	w := newParentChildWorld()

	childBuilder := w.AddEntity()
	ecs.WithComponent(childBuilder, Name{Name: "child"})
	child, err := childBuilder.Spawn()
	if err != nil {
		t.Fatalf("spawn child: %v", err)
	}

	p1Builder := w.AddEntity()
	ecs.WithComponent(p1Builder, Children{Entities: []ecs.EntityID{child}})
	p1, err := p1Builder.Spawn()
	if err != nil {
		t.Fatalf("spawn parent1: %v", err)
	}
	if parent, ok := ecs.GetComponent[Parent](w, child); !ok || parent.Entity != p1 {
		t.Fatalf("expected child's Parent to be parent1 (%d), got %+v (ok=%v)", p1, parent, ok)
	}

	p2Builder := w.AddEntity()
	ecs.WithComponent(p2Builder, Children{Entities: []ecs.EntityID{child}})
	p2, err := p2Builder.Spawn()
	if err != nil {
		t.Fatalf("spawn parent2: %v", err)
	}
	if parent, ok := ecs.GetComponent[Parent](w, child); !ok || parent.Entity != p2 {
		t.Fatalf("expected child's Parent to be parent2 (%d), got %+v (ok=%v)", p2, parent, ok)
	}

	if err := w.RemoveEntity(p2); err != nil {
		t.Fatalf("remove parent2: %v", err)
	}

	if _, ok := ecs.GetComponent[Parent](w, child); ok {
		t.Error("expected child's Parent to be cleared after parent2 was removed")
	}
	if _, ok := ecs.GetComponent[Children](w, p2); ok {
		t.Error("expected parent2 to no longer exist")
	}
}

func TestRemovingChildClearsItFromParentsChildren(t *testing.T) {
	w := newParentChildWorld()

	childBuilder := w.AddEntity()
	ecs.WithComponent(childBuilder, Name{Name: "child"})
	child, _ := childBuilder.Spawn()

	parentBuilder := w.AddEntity()
	ecs.WithComponent(parentBuilder, Children{Entities: []ecs.EntityID{child}})
	parent, _ := parentBuilder.Spawn()

	if err := w.RemoveEntity(child); err != nil {
		t.Fatalf("remove entity: %v", err)
	}

	children, ok := ecs.GetComponent[Children](w, parent)
	if ok && len(children.Entities) != 0 {
		t.Errorf("expected no children left, got %+v", children.Entities)
	}
}
