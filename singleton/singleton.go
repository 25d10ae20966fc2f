// Package singleton resolves the one live instance of a component type,
// finding it in the host graph or spawning it on first use.
//
// Slots live in a [Registry] owned by whoever plays the host lifecycle role,
// there is no package level state.
package singleton

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/hxkhan/scenepool/host"
)

// Initializer is implemented by singleton types which need setup.  Init is
// called once per instance, right after the instance enters its slot.
type Initializer interface {
	Init()
}

// Base is embedded by singleton types and carries the per-instance state the
// registry needs.
type Base struct {
	init        sync.Once
	initialized atomic.Bool

	// hooked is protected by the mutex of the registry.
	hooked bool
}

// Initialized reports whether the instance has been through initialization.
func (b *Base) Initialized() bool { return b.initialized.Load() }

func (b *Base) singletonBase() *Base { return b }

// Instance is the constraint for singleton types: components embedding
// [Base].
type Instance interface {
	host.Component
	singletonBase() *Base
}

type Options struct {
	// Graph is searched for existing instances and used to spawn new ones.
	// It must not be nil.
	Graph host.Graph

	// Logger is used to report slot changes. If nil, logs are discarded.
	Logger *slog.Logger
}

// Registry holds at most one live instance per type.  It is safe for
// concurrent use as long as Graph is only used through it.
type Registry struct {
	graph  host.Graph
	logger *slog.Logger

	// mu protects slots.
	mu    *sync.Mutex
	slots map[reflect.Type]host.Component
}

func New(opts Options) (r *Registry) {
	r = &Registry{
		graph:  opts.Graph,
		logger: opts.Logger,
		mu:     &sync.Mutex{},
		slots:  map[reflect.Type]host.Component{},
	}

	if r.logger == nil {
		r.logger = slogutil.NewDiscardLogger()
	}

	return r
}

// Get returns the live instance of T, finding or spawning one if the slot is
// empty or holds a destroyed instance.  Whenever an uninitialized instance
// enters the slot, it is marked and its Init method, if any, is called before
// Get returns.  Concurrent callers wait for Init to finish, so Init must not
// call Get for its own type.
func Get[T Instance](r *Registry) (inst T) {
	inst = get[T](r)

	b := inst.singletonBase()
	b.init.Do(func() {
		b.initialized.Store(true)
		if i, ok := any(inst).(Initializer); ok {
			i.Init()
		}
	})

	return inst
}

// get resolves the slot of T.
func get[T Instance](r *Registry) (inst T) {
	t := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.slots[t]; ok {
		if host.IsAlive(c) {
			return c.(T)
		}

		delete(r.slots, t)
	}

	c, found := r.graph.Find(t)
	if !found {
		c = r.graph.Spawn(t)
	}

	r.logger.Debug("singleton slot filled", "type", t, "found", found)

	inst = c.(T)
	r.slots[t] = c

	b := inst.singletonBase()
	if !b.hooked {
		b.hooked = true
		r.graph.OnDestroy(c.Container(), func() { r.Teardown(c) })
	}

	return inst
}

// Lookup returns the cached instance of T without finding or spawning one.
func Lookup[T Instance](r *Registry) (inst T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.slots[reflect.TypeFor[T]()]
	if !ok || !host.IsAlive(c) {
		return inst, false
	}

	return c.(T), true
}

// Teardown empties the slot holding c, so that the next [Get] resolves a new
// instance.  It is registered as the destruction hook of every instance and
// does nothing if c is not in a slot.
func (r *Registry) Teardown(c host.Component) {
	if c == nil {
		return
	}

	t := reflect.TypeOf(c)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slots[t] == c {
		delete(r.slots, t)
		r.logger.Debug("singleton slot cleared", "type", t)
	}
}

// Len returns the number of filled slots.
func (r *Registry) Len() (n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.slots)
}
