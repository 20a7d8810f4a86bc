package ecs

// HookFunc reacts to a single Change against a read-only snapshot of the
// world, optionally producing further Changes (applied before the change
// that triggered the hook, see pipeline.go) and optionally queuing resource
// writes through writer.
type HookFunc func(change Change, world WorldView, writer *ResourceWriter) []Change

// registeredHook pairs a hook with an optional component-type filter. A
// hook with filterSet == nil fires on every change; otherwise it only fires
// when the change's component type is in the set, so the pipeline can
// skip invoking ones that can't possibly match.
type registeredHook struct {
	fn        HookFunc
	filterSet map[ComponentTypeID]struct{}
}

func (h registeredHook) matches(tid ComponentTypeID) bool {
	if h.filterSet == nil {
		return true
	}
	_, ok := h.filterSet[tid]
	return ok
}

// hookRegistry keeps every registered hook in a single registration-order
// list. Hooks are filtered by component type on lookup rather than bucketed
// up front, so that a catch-all hook registered before a typed hook still
// runs before it, matching the order callers registered them in.
type hookRegistry struct {
	hooks []registeredHook
}

func newHookRegistry() *hookRegistry {
	return &hookRegistry{}
}

func (r *hookRegistry) add(h registeredHook) {
	r.hooks = append(r.hooks, h)
}

// hooksFor returns every hook that could fire for a change on tid, in the
// order they were registered.
func (r *hookRegistry) hooksFor(tid ComponentTypeID) []registeredHook {
	var out []registeredHook
	for _, h := range r.hooks {
		if h.matches(tid) {
			out = append(out, h)
		}
	}
	return out
}
