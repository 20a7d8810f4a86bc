package ecs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Loader is notified when a component is first attached to an entity,
// giving a persistence layer the chance to fill in a component the caller
// only partially specified (spec §6). Optional; a World with no Loader
// passes components through unchanged.
type Loader interface {
	Load(c UntypedComponent) UntypedComponent
}

// Unloader is notified when a component is evicted from an entity via an
// UnloadComponent change, giving a persistence layer the chance to persist
// it before it is dropped from memory.
type Unloader interface {
	Unload(c UntypedComponent)
}

// World is the central store: every component, indexed three ways (spec
// §4.1) so that lookups by instance, by owning entity, and by type are all
// O(1)/O(matching set). It also owns the resource registry, the hook
// registry, and the entity id generator.
type World struct {
	mu sync.RWMutex

	components     map[ComponentInstanceID]UntypedComponent
	entities       map[EntityID]map[ComponentTypeID]struct{}
	componentTypes map[ComponentTypeID]map[EntityID]struct{}

	resources *resourceRegistry
	hooks     *hookRegistry

	loader   Loader
	unloader Unloader
	idGen    IDGenerator

	logger *logrus.Entry
}

// WorldBuilder assembles a World's initial resources, hooks, and
// persistence wiring before any entity exists.
type WorldBuilder struct {
	w *World
}

// NewWorldBuilder starts a builder for a world using the atomic entity id
// generator and no logging.
func NewWorldBuilder() *WorldBuilder {
	return &WorldBuilder{w: newWorld(nil)}
}

// NewWorldBuilderWithLogger starts a builder that logs world operations
// through logger, following this module's convention of a nil-safe
// *logrus.Entry threaded through every subsystem.
func NewWorldBuilderWithLogger(logger *logrus.Logger) *WorldBuilder {
	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithFields(logrus.Fields{"subsystem": "ecs"})
	}
	return &WorldBuilder{w: newWorld(entry)}
}

func newWorld(logger *logrus.Entry) *World {
	return &World{
		components:     make(map[ComponentInstanceID]UntypedComponent),
		entities:       make(map[EntityID]map[ComponentTypeID]struct{}),
		componentTypes: make(map[ComponentTypeID]map[EntityID]struct{}),
		resources:      newResourceRegistry(),
		hooks:          newHookRegistry(),
		idGen:          NewAtomicIDGenerator(),
		logger:         logger,
	}
}

// WithIDGenerator overrides the default atomic entity id generator, e.g.
// with NewUUIDEntityIDGenerator.
func (b *WorldBuilder) WithIDGenerator(gen IDGenerator) *WorldBuilder {
	b.w.idGen = gen
	return b
}

// WithLoader registers a Loader invoked whenever a component is added.
func (b *WorldBuilder) WithLoader(l Loader) *WorldBuilder {
	b.w.loader = l
	return b
}

// WithUnloader registers an Unloader invoked whenever a component is
// unloaded.
func (b *WorldBuilder) WithUnloader(u Unloader) *WorldBuilder {
	b.w.unloader = u
	return b
}

// WithResource registers value as the world's singleton instance of T.
func WithResource[T any](b *WorldBuilder, value T) *WorldBuilder {
	b.w.resources.register(ResourceID[T](), value)
	return b
}

// WithHook registers fn to run against every change, regardless of the
// changed component's type.
func (b *WorldBuilder) WithHook(fn HookFunc) *WorldBuilder {
	b.w.hooks.add(registeredHook{fn: fn})
	return b
}

// WithTypedHook registers fn to run only against changes to component
// type T.
func WithTypedHook[T any](b *WorldBuilder, fn HookFunc) *WorldBuilder {
	b.w.hooks.add(registeredHook{fn: fn, filterSet: map[ComponentTypeID]struct{}{TypeID[T](): {}}})
	return b
}

// Build finalizes the world.
func (b *WorldBuilder) Build() *World {
	return b.w
}

// NewWorld returns an empty world with no resources or hooks, equivalent to
// NewWorldBuilder().Build().
func NewWorld() *World {
	return NewWorldBuilder().Build()
}

// NumberOfEntities reports how many distinct entities currently hold at
// least one component.
func (w *World) NumberOfEntities() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// GetComponent returns a copy of entity's component of type T, if present.
func GetComponent[T any](w *World, entity EntityID) (T, bool) {
	var zero T
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.components[ComponentInstanceID{Entity: entity, Type: TypeID[T]()}]
	if !ok {
		return zero, false
	}
	return Get[T](c)
}

// query runs q against the store under a read lock and returns the
// matching entity ids sorted for reproducible iteration order, along with
// the matched components bucketed per entity, honoring §8's soundness
// (every returned entity has all of q's types) and completeness (every
// entity with all of q's types is returned) properties.
func (w *World) query(q Query) []*ComponentGroup {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(q.types) == 0 {
		ids := make([]EntityID, 0, len(w.entities))
		for id := range w.entities {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		groups := make([]*ComponentGroup, len(ids))
		for i, id := range ids {
			groups[i] = newComponentGroup(id, w.componentsOfLocked(id))
		}
		return groups
	}

	// Start from the smallest type bucket: intersecting against it first
	// minimizes the number of candidate entities checked against the rest.
	smallest := q.types[0]
	for _, t := range q.types[1:] {
		if len(w.componentTypes[t]) < len(w.componentTypes[smallest]) {
			smallest = t
		}
	}

	var candidates []EntityID
	for id := range w.componentTypes[smallest] {
		candidates = append(candidates, id)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	var groups []*ComponentGroup
	for _, id := range candidates {
		if w.hasAllLocked(id, q.types) {
			groups = append(groups, newComponentGroup(id, w.componentsOfLocked(id)))
		}
	}
	return groups
}

func (w *World) hasAllLocked(id EntityID, types []ComponentTypeID) bool {
	owned := w.entities[id]
	for _, t := range types {
		if _, ok := owned[t]; !ok {
			return false
		}
	}
	return true
}

func (w *World) componentsOfLocked(id EntityID) []UntypedComponent {
	owned := w.entities[id]
	out := make([]UntypedComponent, 0, len(owned))
	for t := range owned {
		out = append(out, w.components[ComponentInstanceID{Entity: id, Type: t}])
	}
	return out
}

// Query runs q against the world and returns a QueryResult the caller can
// inspect and mutate; call World.Commit with its Changes() (or run it inside
// a Stage, which commits automatically) to make the edits durable.
func (w *World) Query(q Query) *QueryResult {
	return &QueryResult{groups: w.query(q)}
}

// NewEntityID allocates a fresh entity id without attaching any component.
func (w *World) NewEntityID() EntityID {
	return w.idGen()
}

// AddEntity starts building a new entity with a freshly allocated id.
func (w *World) AddEntity() *EntityBuilder {
	return newEntityBuilder(w, w.NewEntityID())
}

// RemoveEntity decomposes entity into RemoveComponent changes for every
// component it currently holds and commits them, so that parent/child and
// spatial-index hooks observe the removal exactly as they would observe
// removing each component individually (spec §4.4's "remove_entity is
// decomposition, not a special case").
func (w *World) RemoveEntity(entity EntityID) error {
	w.mu.RLock()
	owned, ok := w.entities[entity]
	if !ok {
		w.mu.RUnlock()
		return fmt.Errorf("%w: entity %d", ErrEntityNotFound, entity)
	}
	changes := make([]Change, 0, len(owned))
	for t := range owned {
		changes = append(changes, Change{Component: w.components[ComponentInstanceID{Entity: entity, Type: t}], Type: RemoveComponent})
	}
	w.mu.RUnlock()

	if w.logger != nil {
		w.logger.WithField("entity", entity).Debug("removing entity")
	}
	return w.Commit(changes)
}

// Commit runs changes through the hook pipeline: whatever further changes
// hooks produce are applied first (recursively), then changes themselves
// are written to the store, following the fixed-point ordering in
// pipeline.go. It is the single entry point both Stage execution and
// RemoveEntity use to mutate the world.
func (w *World) Commit(changes []Change) error {
	return w.applyChanges(changes)
}

func (w *World) applyOne(c Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch c.Type {
	case AddComponent, UpdateComponent:
		comp := c.Component
		if c.Type == AddComponent && w.loader != nil {
			comp = w.loader.Load(comp)
		}
		entity := comp.Entity()
		tid := comp.Type()
		w.components[comp.InstanceID()] = comp
		if w.entities[entity] == nil {
			w.entities[entity] = make(map[ComponentTypeID]struct{})
		}
		w.entities[entity][tid] = struct{}{}
		if w.componentTypes[tid] == nil {
			w.componentTypes[tid] = make(map[EntityID]struct{})
		}
		w.componentTypes[tid][entity] = struct{}{}
	case RemoveComponent, UnloadComponent:
		comp := c.Component
		entity := comp.Entity()
		tid := comp.Type()
		if c.Type == UnloadComponent && w.unloader != nil {
			w.unloader.Unload(comp)
		}
		delete(w.components, comp.InstanceID())
		if owned := w.entities[entity]; owned != nil {
			delete(owned, tid)
			if len(owned) == 0 {
				delete(w.entities, entity)
			}
		}
		if byType := w.componentTypes[tid]; byType != nil {
			delete(byType, entity)
			if len(byType) == 0 {
				delete(w.componentTypes, tid)
			}
		}
	}
}
