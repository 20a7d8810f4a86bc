package ecs

import "golang.org/x/sync/errgroup"

// applyChanges is the world's change pipeline (spec §4.4). Hooks see each
// incoming change before any of the batch lands in the store: their
// reactions are computed and, if they produced any, fully committed first
// (recursively, since a hook's own changes can themselves trigger further
// hooks), and only then does the original batch get written. This mirrors
// the ordering used by the system this pipeline was modeled on and is kept
// deliberately rather than "simplified" to commit-then-react, since
// reordering it changes which snapshot a second-order hook observes.
func (w *World) applyChanges(changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	view := newWorldView(w)

	derivedPerChange := make([][]Change, len(changes))
	writers := make([]*ResourceWriter, len(changes))
	var g errgroup.Group
	for i, c := range changes {
		i, c := i, c
		hooks := w.hooks.hooksFor(c.Component.Type())
		if len(hooks) == 0 {
			continue
		}
		g.Go(func() error {
			writer := NewResourceWriter()
			var out []Change
			for _, h := range hooks {
				out = append(out, h.fn(c, view, writer)...)
			}
			derivedPerChange[i] = out
			writers[i] = writer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var derived []Change
	for _, d := range derivedPerChange {
		derived = append(derived, d...)
	}
	if len(derived) > 0 {
		if err := w.applyChanges(derived); err != nil {
			return err
		}
	}

	for _, c := range changes {
		w.applyOne(c)
	}

	for _, writer := range writers {
		w.applyResourceWriter(writer)
	}
	return nil
}

// applyResourceWriter drains writer and applies every queued write in
// enqueue order, on the caller's goroutine. This always runs after a
// stage's systems (and any hook fan-out) have finished, so no other
// goroutine is reading or writing resources concurrently with it.
func (w *World) applyResourceWriter(writer *ResourceWriter) {
	for _, apply := range writer.drain() {
		apply(w)
	}
}
