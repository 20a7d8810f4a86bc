package ecs

// ChangeType tags the kind of mutation a Change describes.
type ChangeType int

const (
	// AddComponent introduces a new component instance.
	AddComponent ChangeType = iota
	// UpdateComponent replaces an existing component instance in place.
	UpdateComponent
	// RemoveComponent removes a component instance.
	RemoveComponent
	// UnloadComponent removes a component instance for eviction by a
	// persistence layer. It is identical to RemoveComponent in the store;
	// hooks may still distinguish it (e.g. a cache should forget on
	// Unload but a spatial index should drop on either).
	UnloadComponent
)

func (t ChangeType) String() string {
	switch t {
	case AddComponent:
		return "AddComponent"
	case UpdateComponent:
		return "UpdateComponent"
	case RemoveComponent:
		return "RemoveComponent"
	case UnloadComponent:
		return "UnloadComponent"
	default:
		return "ChangeType(?)"
	}
}

// Change is the algebraic description of one component-level world
// mutation, emitted by query dissolution and by hooks.
type Change struct {
	Component UntypedComponent
	Type      ChangeType
}
