package ecs

import "golang.org/x/sync/errgroup"

// System is a stateless query-and-transform unit: it names the component
// types it needs via Query, and Execute mutates the matched entities'
// ComponentGroups (and, through view and writer, reads the rest of the
// world and queues resource writes).
type System interface {
	Query() Query
	Execute(result *QueryResult, view WorldView, writer *ResourceWriter) error
}

// Stage is a batch of systems that run concurrently against the same
// world snapshot, spec §4.4's unit of parallelism: every system in a stage
// sees the world as it was when the stage started, and their changes are
// collected and committed together once every system in the stage has
// returned.
type Stage struct {
	systems []System
}

// StageBuilder accumulates systems for a Stage.
type StageBuilder struct {
	systems []System
}

// NewStageBuilder starts an empty stage.
func NewStageBuilder() *StageBuilder {
	return &StageBuilder{}
}

// WithSystem appends sys to the stage.
func (b *StageBuilder) WithSystem(sys System) *StageBuilder {
	b.systems = append(b.systems, sys)
	return b
}

// Build finalizes the stage.
func (b *StageBuilder) Build() Stage {
	systems := make([]System, len(b.systems))
	copy(systems, b.systems)
	return Stage{systems: systems}
}

// ExecuteStage runs every system in stage concurrently, each against its
// own Query result, then commits every resulting change through the
// world's change pipeline and applies any resource writes the systems
// queued. System order in the stage has no bearing on the outcome beyond
// the order changes are committed in, since commit itself is a batch.
func (w *World) ExecuteStage(stage Stage) error {
	results := make([]*QueryResult, len(stage.systems))
	writers := make([]*ResourceWriter, len(stage.systems))
	view := newWorldView(w)

	var g errgroup.Group
	for i, sys := range stage.systems {
		i, sys := i, sys
		writer := NewResourceWriter()
		writers[i] = writer
		g.Go(func() error {
			result := w.Query(sys.Query())
			if err := sys.Execute(result, view, writer); err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var changes []Change
	for _, r := range results {
		changes = append(changes, r.changes()...)
	}

	if err := w.applyChanges(changes); err != nil {
		return err
	}
	for _, writer := range writers {
		w.applyResourceWriter(writer)
	}
	return nil
}
