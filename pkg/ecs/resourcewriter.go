package ecs

// ResourceWriter is a FIFO accumulator of closures over the world's
// resources. Systems and hooks never mutate the world directly; instead
// they enqueue a write here, and the world applies every queued write in
// enqueue order once the owning stage's changes have landed.
type ResourceWriter struct {
	writes []func(*World)
}

// NewResourceWriter returns an empty writer.
func NewResourceWriter() *ResourceWriter {
	return &ResourceWriter{}
}

// WriteResourceDeferred enqueues a write to resource T, to be applied by the
// world once this writer is drained.
func WriteResourceDeferred[T any](rw *ResourceWriter, fn func(T)) {
	rw.writes = append(rw.writes, func(w *World) {
		_ = WriteResource(w, fn)
	})
}

// drain returns the queued writes and resets the writer.
func (rw *ResourceWriter) drain() []func(*World) {
	if rw == nil {
		return nil
	}
	writes := rw.writes
	rw.writes = nil
	return writes
}
