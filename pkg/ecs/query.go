package ecs

// Query names a conjunctive set of component types: the entities it matches
// are exactly those holding every named type (the type-set intersection
// from spec §4.2). A zero-type Query matches every entity in the world.
type Query struct {
	types []ComponentTypeID
}

// QueryBuilder accumulates component-type constraints for a Query.
type QueryBuilder struct {
	types []ComponentTypeID
}

// NewQueryBuilder starts an empty query.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// With adds component type T to the query's required set.
func With[T any](b *QueryBuilder) *QueryBuilder {
	b.types = append(b.types, TypeID[T]())
	return b
}

// Build finalizes the query.
func (b *QueryBuilder) Build() Query {
	types := make([]ComponentTypeID, len(b.types))
	copy(types, b.types)
	return Query{types: types}
}

// QueryResult is the output of running a Query against a World: one
// ComponentGroup per matching entity, plus the ability to spawn entirely
// new entities within the same stage.
type QueryResult struct {
	groups  []*ComponentGroup
	spawned []*ComponentGroup
}

// Groups returns the matched entities' mutable views, in query order.
func (r *QueryResult) Groups() []*ComponentGroup { return r.groups }

// Len reports how many entities matched.
func (r *QueryResult) Len() int { return len(r.groups) }

// AddEntity starts a brand-new entity's ComponentGroup. Its components are
// added with AddToGroup and dissolve into AddComponent changes once the
// owning stage commits.
func (r *QueryResult) AddEntity(id EntityID) *ComponentGroup {
	g := newSpawningGroup(id)
	r.spawned = append(r.spawned, g)
	return g
}

// Changes returns every change the result's groups imply, ready to pass to
// World.Commit.
func (r *QueryResult) Changes() []Change { return r.changes() }

// changes collects every change implied by every group this result touched,
// matched groups first, then newly spawned ones, preserving query order
// within each half.
func (r *QueryResult) changes() []Change {
	var out []Change
	for _, g := range r.groups {
		out = append(out, g.changes()...)
	}
	for _, g := range r.spawned {
		out = append(out, g.changes()...)
	}
	return out
}
