// Package ecs provides the core Entity-Component-System runtime: a
// data-oriented store of entities, components, queries, systems, and the
// reactive change pipeline that applies system output back onto the world.
//
// The package is organized around three tightly-coupled subsystems:
//
//   - the world store (ids.go, component.go, world.go): inverted indices
//     from component type to entity and from entity to component
//     instances, maintained under concurrent read during system execution;
//   - the change pipeline (change.go, hook.go, pipeline.go, resourcewriter.go):
//     hook fan-out with fixed-point iteration and deferred resource writes;
//   - the query engine (query.go, componentgroup.go): set intersection over
//     type indices producing a mutable view whose writeback turns into
//     changes.
//
// Entities are bare 64-bit identifiers. Components are opaque typed values
// registered by their Go type; the package never imports a concrete
// component type. Systems are stateless query+execute pairs bundled into a
// Stage and run in parallel against a shared pre-stage snapshot of the
// world; their output is serialized into one change-application phase per
// stage.
package ecs
