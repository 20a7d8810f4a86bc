package ecs

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// EntityID is a stable 64-bit identifier, unique across the lifetime of a
// World. Equality and hashing are by value.
type EntityID uint64

// ComponentTypeID is derived by hashing a component's canonical Go type
// name. Two values of the same underlying type map to the same id on every
// process run, which is what lets the world's type indices be plain maps.
type ComponentTypeID uint64

// ComponentInstanceID names one component instance: at most one component
// of a given type may exist per entity, so the pair is unique.
type ComponentInstanceID struct {
	Entity EntityID
	Type   ComponentTypeID
}

// ResourceKey is the hash of a canonical resource type name, used to key
// the resource registry.
type ResourceKey uint64

var typeIDCache sync.Map // reflect.Type -> ComponentTypeID

func canonicalTypeName(t reflect.Type) string {
	return t.String()
}

func typeIDOf(t reflect.Type) ComponentTypeID {
	if cached, ok := typeIDCache.Load(t); ok {
		return cached.(ComponentTypeID)
	}
	id := ComponentTypeID(xxhash.Sum64String(canonicalTypeName(t)))
	typeIDCache.Store(t, id)
	return id
}

// TypeID returns the stable ComponentTypeID for T, hashing its canonical
// type name with xxhash. It is the Go analogue of hashing
// std::any::type_name::<T>() at compile time.
func TypeID[T any]() ComponentTypeID {
	var zero T
	return typeIDOf(reflect.TypeOf(&zero).Elem())
}

// ResourceID returns the stable ResourceKey for T, using the same hashing
// scheme as TypeID so that a resource and a component sharing a Go type
// name never collide in practice (they live in separate maps).
func ResourceID[T any]() ResourceKey {
	var zero T
	return ResourceKey(typeIDOf(reflect.TypeOf(&zero).Elem()))
}

// IDGenerator produces successive EntityID values. The world uses one to
// mint ids for World.AddEntity and World.NewEntityID; QueryResult.AddEntity
// takes its id from the caller.
type IDGenerator func() EntityID

// NewAtomicIDGenerator returns the default generator: a monotonic counter
// starting at 1, safe for concurrent use from parallel systems spawning
// entities via their QueryResult builder.
func NewAtomicIDGenerator() IDGenerator {
	var next atomic.Uint64
	return func() EntityID {
		return EntityID(next.Add(1))
	}
}

// NewUUIDEntityIDGenerator returns a generator whose ids are derived from a
// random UUID rather than a process-local counter. Hosts that persist
// entities across runs (see pkg/kvstore) and need ids that stay globally
// unique after a restart should use this instead of the default counter.
func NewUUIDEntityIDGenerator() IDGenerator {
	return func() EntityID {
		id := uuid.New()
		return EntityID(xxhash.Sum64(id[:]))
	}
}
