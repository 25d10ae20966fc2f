// Package pool recycles copies of a template so that hot paths can stop
// instantiating and destroying host objects.
package pool

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/hxkhan/scenepool/ds"
	"github.com/hxkhan/scenepool/host"
)

type Options[T comparable] struct {
	// Template is copied to produce new elements. It must not be changed by
	// the caller afterwards.
	Template T

	// Instantiate is the host primitive copying Template. It must not be nil.
	Instantiate host.InstantiateFunc[T]

	// Logger is used for diagnostics. If nil, logs are discarded.
	Logger *slog.Logger

	// Metrics is used to report acquisitions and releases. If nil,
	// [EmptyMetrics] is used.
	Metrics Metrics

	// Name identifies the factory in logs.
	Name string
}

// Factory hands out elements derived from a template, reusing released ones
// before instantiating new ones. Every element it produced is either enabled
// or disabled, never both.
//
// Predicates and the instantiation function are called with the factory
// locked, so they must not call back into it.
type Factory[T comparable] struct {
	logger      *slog.Logger
	metrics     Metrics
	instantiate host.InstantiateFunc[T]
	template    T

	// mu protects everything below.
	mu       sync.Mutex
	driver   driver[T]
	enabled  ds.Slice[T]
	disabled ds.Slice[T]
	kind     host.Kind
}

func New[T comparable](opts Options[T]) (f *Factory[T]) {
	f = &Factory[T]{
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		instantiate: opts.Instantiate,
		template:    opts.Template,
		enabled:     ds.Slice[T]{},
		disabled:    ds.Slice[T]{},
	}

	if f.logger == nil {
		f.logger = slogutil.NewDiscardLogger()
	}

	if opts.Name != "" {
		f.logger = f.logger.With("pool", opts.Name)
	}

	if f.metrics == nil {
		f.metrics = EmptyMetrics{}
	}

	return f
}

// Template returns the value elements are copied from.
func (f *Factory[T]) Template() T { return f.template }

// Kind returns how elements are driven. It is [host.KindUnset] until the
// first mutating call.
func (f *Factory[T]) Kind() host.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.kind
}

// Enabled returns a copy of the elements currently handed out, oldest first.
func (f *Factory[T]) Enabled() []T {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.enabled.Clone()
}

// Disabled returns a copy of the elements waiting for reuse, in reuse order.
func (f *Factory[T]) Disabled() []T {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.disabled.Clone()
}

// Counts returns the lengths of both sequences.
func (f *Factory[T]) Counts() (enabled, disabled int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.enabled.Len(), f.disabled.Len()
}

// Acquire returns a disabled element if there is one, otherwise a fresh copy
// of the template. The element ends up under parent, activated and, if
// atEnd, last among its siblings.
func (f *Factory[T]) Acquire(parent host.Node, atEnd bool) (elem T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := f.resolve()

	reused := !f.disabled.IsEmpty()
	if reused {
		elem = f.disabled.PopFront()
		d.setParent(elem, parent)
	} else {
		elem = f.instantiate(f.template, parent)
	}

	if atEnd {
		d.setLast(elem)
	}

	d.setActive(elem, true)
	f.enabled.Push(elem)

	f.report(func(ctx context.Context, m Metrics) {
		m.IncrementAcquired(ctx, reused)
	})

	return elem
}

// Release deactivates elem and queues it for reuse. Elements which are not
// currently enabled are ignored.
func (f *Factory[T]) Release(elem T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := ds.Index(f.enabled, elem)
	if i < 0 {
		return
	}

	d := f.resolve()

	f.enabled.RemoveAt(i)
	d.setActive(elem, false)
	f.disabled.Push(elem)

	f.report(func(ctx context.Context, m Metrics) {
		m.IncrementReleased(ctx, 1)
	})
}

// ReleaseAll releases every enabled element, keeping their order.
func (f *Factory[T]) ReleaseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disable(f.enabled.Clear())
}

// ReleaseWhere releases the enabled elements matching pred. Both the released
// and the remaining elements keep their relative order.
func (f *Factory[T]) ReleaseWhere(pred func(elem T) (release bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disable(f.enabled.Partition(func(elem T) bool {
		return !pred(elem)
	}))
}

// disable moves elems, which must already be gone from f.enabled, to the end
// of f.disabled.  f.mu must be locked.
func (f *Factory[T]) disable(elems ds.Slice[T]) {
	if elems.IsEmpty() {
		return
	}

	d := f.resolve()
	for _, elem := range elems.Forwards() {
		d.setActive(elem, false)
	}

	f.disabled.Push(elems...)

	f.report(func(ctx context.Context, m Metrics) {
		m.IncrementReleased(ctx, elems.Len())
	})
}

// report passes m to fn and updates the size gauges.  f.mu must be locked.
func (f *Factory[T]) report(fn func(ctx context.Context, m Metrics)) {
	ctx := context.Background()

	fn(ctx, f.metrics)
	f.metrics.SetElements(ctx, f.enabled.Len(), f.disabled.Len())
}
