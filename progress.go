package carta

// ProgressObserver receives advisory progress updates during a parse.
// Progress is reported once per row at row-group boundaries as a
// monotonically increasing (completed, total) pair and has no effect on
// results. Implementations must be fast; they are called synchronously.
type ProgressObserver interface {
	Progress(completed, total int)
}

// NopObserver is a ProgressObserver that discards all updates. It is the
// default when no observer is injected.
type NopObserver struct{}

// Progress discards the update
func (NopObserver) Progress(int, int) {}

// ProgressFunc adapts a plain function to the ProgressObserver interface
type ProgressFunc func(completed, total int)

// Progress calls the wrapped function
func (f ProgressFunc) Progress(completed, total int) {
	f(completed, total)
}
