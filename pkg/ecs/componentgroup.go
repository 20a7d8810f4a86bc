package ecs

// snapshotFunc captures the concrete component type T at the call site that
// created a groupSlot, so dissolve can later turn the slot's boxed *T back
// into an UntypedComponent without the ComponentGroup itself knowing T.
type snapshotFunc func(mutPtr any, entity EntityID, tid ComponentTypeID) UntypedComponent

func makeSnapshot[T any]() snapshotFunc {
	return func(mutPtr any, entity EntityID, tid ComponentTypeID) UntypedComponent {
		v := *(mutPtr.(*T))
		return UntypedComponent{typeID: tid, instanceID: ComponentInstanceID{Entity: entity, Type: tid}, payload: v}
	}
}

// groupSlot is one component's writeback state within a ComponentGroup.
//
// The correctness property this encodes (spec §4.3): a read emits no
// change; a write emits exactly one UpdateComponent. Languages with cheap
// reference counting can use a "last reference owns it" trick; here we use
// the explicit alternative the spec sanctions: a dirty bit set the moment a
// caller asks to mutate, never by diffing before/after values.
type groupSlot struct {
	original    UntypedComponent
	hasOriginal bool
	mutPtr      any // *T once cloned for writeback or created fresh by AddToGroup
	dirty       bool
	snapshot    snapshotFunc
}

// ComponentGroup is the per-entity mutable view a query hands to a system:
// all of the entity's components, plus any newly-spawned or removed ones
// accumulated during the system's Execute call.
type ComponentGroup struct {
	id      EntityID
	isNew   bool
	slots   map[ComponentTypeID]*groupSlot
	removed []UntypedComponent
}

func newComponentGroup(id EntityID, components []UntypedComponent) *ComponentGroup {
	g := &ComponentGroup{id: id, slots: make(map[ComponentTypeID]*groupSlot, len(components))}
	for _, c := range components {
		g.slots[c.Type()] = &groupSlot{original: c, hasOriginal: true}
	}
	return g
}

func newSpawningGroup(id EntityID) *ComponentGroup {
	return &ComponentGroup{id: id, isNew: true, slots: make(map[ComponentTypeID]*groupSlot)}
}

// ID returns the entity this group describes.
func (g *ComponentGroup) ID() EntityID { return g.id }

// Read returns a read-only copy of component T on this group's entity. It
// never marks the component dirty, so a system that only reads emits no
// change for it.
func Read[T any](g *ComponentGroup) (T, bool) {
	var zero T
	slot, ok := g.slots[TypeID[T]()]
	if !ok {
		return zero, false
	}
	if slot.mutPtr != nil {
		return *(slot.mutPtr.(*T)), true
	}
	return Get[T](slot.original)
}

// Write returns a mutable pointer to component T, cloning the shared
// payload on first access within this group and marking it dirty. The
// pointer stays valid, and further writes keep mutating the same clone,
// for the life of this ComponentGroup.
func Write[T any](g *ComponentGroup) (*T, bool) {
	tid := TypeID[T]()
	slot, ok := g.slots[tid]
	if !ok {
		return nil, false
	}
	if slot.mutPtr == nil {
		v, _ := Get[T](slot.original)
		boxed := new(T)
		*boxed = v
		slot.mutPtr = boxed
		slot.snapshot = makeSnapshot[T]()
	}
	slot.dirty = true
	return slot.mutPtr.(*T), true
}

// AddToGroup spawns a brand new component T onto this group. Used both for
// QueryResult.AddEntity() groups (isNew, everything becomes AddComponent)
// and, via the entity builder, for World.AddEntity().
func AddToGroup[T any](g *ComponentGroup, value T) {
	tid := TypeID[T]()
	boxed := new(T)
	*boxed = value
	g.slots[tid] = &groupSlot{mutPtr: boxed, dirty: true, snapshot: makeSnapshot[T]()}
}

// RemoveFromGroup removes component T from the group. If it existed, it is
// accumulated on the group's removed side-list and dissolves into a
// RemoveComponent change.
func RemoveFromGroup[T any](g *ComponentGroup) {
	tid := TypeID[T]()
	slot, ok := g.slots[tid]
	if !ok {
		return
	}
	if slot.hasOriginal {
		g.removed = append(g.removed, slot.original)
	}
	delete(g.slots, tid)
}

// changes dissolves the group into the Changes it implies: AddComponent for
// every slot of a newly-spawned group, UpdateComponent for every dirty slot
// of an existing group, and RemoveComponent for every entry on the removed
// side-list.
func (g *ComponentGroup) changes() []Change {
	out := make([]Change, 0, len(g.slots)+len(g.removed))
	for tid, slot := range g.slots {
		switch {
		case g.isNew:
			out = append(out, Change{Component: slot.snapshot(slot.mutPtr, g.id, tid), Type: AddComponent})
		case slot.dirty:
			out = append(out, Change{Component: slot.snapshot(slot.mutPtr, g.id, tid), Type: UpdateComponent})
		}
	}
	for _, comp := range g.removed {
		out = append(out, Change{Component: comp, Type: RemoveComponent})
	}
	return out
}
