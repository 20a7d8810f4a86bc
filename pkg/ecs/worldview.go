package ecs

// WorldView is the read-only facet of World passed to hooks and systems.
// Go has no borrow checker to enforce this at compile time, so the
// restriction is by API surface alone: WorldView exposes queries and
// resource reads but no Commit, no AddEntity, no RemoveEntity.
type WorldView struct {
	w *World
}

func newWorldView(w *World) WorldView {
	return WorldView{w: w}
}

// Query runs q and returns a read-only snapshot of the matching entities.
// Callers should not call AddEntity on the result; a WorldView-scoped
// query result exists for symmetry with World.Query and for component
// reads via ViewGet, not to accumulate changes.
func (v WorldView) Query(q Query) *QueryResult {
	return &QueryResult{groups: v.w.query(q)}
}

// ViewGet returns a copy of entity's component of type T, if present.
func ViewGet[T any](v WorldView, entity EntityID) (T, bool) {
	return GetComponent[T](v.w, entity)
}

// NumberOfEntities reports the live entity count.
func (v WorldView) NumberOfEntities() int {
	return v.w.NumberOfEntities()
}

// ViewReadResource acquires a shared read lease on resource T.
func ViewReadResource[T any](v WorldView, fn func(T)) error {
	return ReadResource[T](v.w, fn)
}
