// Package components provides the small set of general-purpose component
// types that ship with the runtime: spatial position, a display name,
// player ownership, and parent/child entity links.
package components

import "github.com/RazeLighter777/melon/pkg/ecs"

// Position is an entity's location in integer world-space units.
type Position struct {
	X, Y int32
}

// Name is a human-readable label for an entity.
type Name struct {
	Name string
}

// Player marks an entity as owned by a connected player.
type Player struct {
	PlayerName string
	PlayerID   uint64
}

// Children lists the entities this entity claims as children. It is the
// side callers edit; adding or updating it drives each listed entity's
// Parent component via the reactive hooks in parentchild.go.
type Children struct {
	Entities []ecs.EntityID
}

// Parent names the entity that last claimed this one via its Children
// component. It is derived by the hooks in parentchild.go and should be
// treated as read-only; removing it directly also updates the former
// parent's Children.
type Parent struct {
	Entity ecs.EntityID
}
