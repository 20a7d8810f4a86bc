package components

import "github.com/RazeLighter777/melon/pkg/ecs"

// ChildrenHook keeps every listed child's Parent component in sync with the
// Children component naming it. Children is the side callers edit; Parent
// is derived and should be treated as read-only by everything else.
// Register it with ecs.WithTypedHook[Children] on the world builder.
func ChildrenHook(change ecs.Change, view ecs.WorldView, writer *ecs.ResourceWriter) []ecs.Change {
	this := change.Component.Entity()

	switch change.Type {
	case ecs.AddComponent, ecs.UpdateComponent:
		children, ok := ecs.Get[Children](change.Component)
		if !ok {
			return nil
		}
		var derived []ecs.Change
		for _, child := range children.Entities {
			existing, ok := ecs.ViewGet[Parent](view, child)
			switch {
			case !ok:
				derived = append(derived, ecs.Change{
					Component: ecs.NewComponent(child, Parent{Entity: this}),
					Type:      ecs.AddComponent,
				})
			case existing.Entity != this:
				derived = append(derived, ecs.Change{
					Component: ecs.NewComponent(child, Parent{Entity: this}),
					Type:      ecs.UpdateComponent,
				})
			}
		}
		return derived

	case ecs.RemoveComponent, ecs.UnloadComponent:
		// The parent itself is going away (or its Children link is being
		// dropped); clear the stale back-reference on every child that
		// still points at it rather than leave a dangling Parent.
		children, ok := ecs.Get[Children](change.Component)
		if !ok {
			return nil
		}
		var derived []ecs.Change
		for _, child := range children.Entities {
			if p, ok := ecs.ViewGet[Parent](view, child); ok && p.Entity == this {
				derived = append(derived, ecs.Change{
					Component: ecs.NewComponent(child, Parent{Entity: this}),
					Type:      ecs.RemoveComponent,
				})
			}
		}
		return derived
	}
	return nil
}

// ParentRemovedHook keeps a parent's Children in sync when a child's Parent
// component is removed directly. Register it with ecs.WithTypedHook[Parent].
func ParentRemovedHook(change ecs.Change, view ecs.WorldView, writer *ecs.ResourceWriter) []ecs.Change {
	if change.Type != ecs.RemoveComponent && change.Type != ecs.UnloadComponent {
		return nil
	}
	child := change.Component.Entity()
	oldParent, ok := ecs.Get[Parent](change.Component)
	if !ok {
		return nil
	}
	return removeChild(view, oldParent.Entity, child)
}

func removeChild(view ecs.WorldView, parent, child ecs.EntityID) []ecs.Change {
	existing, ok := ecs.ViewGet[Children](view, parent)
	if !ok {
		return nil
	}
	idx := -1
	for i, e := range existing.Entities {
		if e == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	updated := make([]ecs.EntityID, 0, len(existing.Entities)-1)
	updated = append(updated, existing.Entities[:idx]...)
	updated = append(updated, existing.Entities[idx+1:]...)
	return []ecs.Change{{
		Component: ecs.NewComponent(parent, Children{Entities: updated}),
		Type:      ecs.UpdateComponent,
	}}
}
