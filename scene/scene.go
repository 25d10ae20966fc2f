// Package scene is an in-memory host: a graph of named objects with ordered
// children, active flags, positions and components. It implements the
// [host.Graph] and [host.Node] capabilities and is what the tests and the
// command line tool run pools and singletons against.
package scene

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/hxkhan/scenepool/host"
)

type Options struct {
	// Logger is used for warnings about misuse of the graph. If nil, logs
	// are discarded.
	Logger *slog.Logger
}

// Scene is a live object graph. It is not safe for concurrent use.
type Scene struct {
	logger *slog.Logger
	hooks  map[*Object][]func()
	roots  []*Object
}

var _ host.Graph = (*Scene)(nil)

// New returns an empty scene.
func New(opts Options) (s *Scene) {
	s = &Scene{
		logger: opts.Logger,
		hooks:  map[*Object][]func(){},
	}

	if s.logger == nil {
		s.logger = slogutil.NewDiscardLogger()
	}

	return s
}

// NewObject creates an active object named name at the end of parent's
// children, or at the root when parent is nil.
func (s *Scene) NewObject(name string, parent *Object) (o *Object) {
	o = &Object{
		scene:  s,
		name:   name,
		active: true,
	}
	s.attach(o, parent)

	return o
}

// Roots returns the parentless live objects in order.
func (s *Scene) Roots() []*Object { return slices.Clone(s.roots) }

// Walk calls fn for every live object depth first, in sibling order, until
// fn returns false.
func (s *Scene) Walk(fn func(o *Object) (cont bool)) {
	var walk func(objs []*Object) bool
	walk = func(objs []*Object) bool {
		for _, o := range objs {
			if !fn(o) || !walk(o.children) {
				return false
			}
		}
		return true
	}

	walk(s.roots)
}

// FindObject returns the first live object called name.
func (s *Scene) FindObject(name string) (found *Object, ok bool) {
	s.Walk(func(o *Object) bool {
		if o.name == name {
			found = o
			return false
		}
		return true
	})

	return found, found != nil
}

// Find implements the [host.Graph] interface for *Scene.
func (s *Scene) Find(t reflect.Type) (c host.Component, ok bool) {
	s.Walk(func(o *Object) bool {
		c, ok = o.Component(t)
		return !ok
	})

	return c, ok
}

// Spawn implements the [host.Graph] interface for *Scene. t must be a pointer
// to a struct embedding [Behaviour]. The new object is named after the
// struct.
func (s *Scene) Spawn(t reflect.Type) (c host.Component) {
	if t.Kind() != reflect.Pointer {
		panic(fmt.Errorf("spawning %s: %w", t, ErrNotAttachable))
	}

	c, ok := reflect.New(t.Elem()).Interface().(host.Component)
	if !ok {
		panic(fmt.Errorf("spawning %s: %w", t, ErrNotAttachable))
	}

	o := s.NewObject(t.Elem().Name(), nil)
	err := o.AddComponent(c)
	if err != nil {
		panic(fmt.Errorf("spawning %s: %w", t, err))
	}

	return c
}

// OnDestroy implements the [host.Graph] interface for *Scene.
func (s *Scene) OnDestroy(n host.Node, fn func()) {
	o := s.mustObject(n)
	if o == nil || o.destroyed {
		return
	}

	s.hooks[o] = append(s.hooks[o], fn)
}

// Destroy removes o and its subtree from the graph. Registered hooks and
// [host.Destroyer] components run once the subtree is detached. Destroying a
// dead object does nothing.
func (s *Scene) Destroy(o *Object) {
	if o == nil || o.destroyed {
		return
	}

	var dead []*Object
	var mark func(o *Object)
	mark = func(o *Object) {
		o.destroyed = true
		dead = append(dead, o)
		for _, ch := range o.children {
			mark(ch)
		}
	}

	mark(o)
	s.detach(o)

	for _, d := range dead {
		for _, c := range d.components {
			if des, ok := c.(host.Destroyer); ok {
				des.OnDestroy()
			}
		}

		hooks := s.hooks[d]
		delete(s.hooks, d)
		for _, fn := range hooks {
			fn()
		}
	}
}

// Instantiate deep copies o's subtree under parent. Components are copied
// shallowly. The copy of o is suffixed with "(Clone)".
func (s *Scene) Instantiate(o *Object, parent *Object) (clone *Object) {
	clone = s.clone(o, parent)
	clone.name = o.name + "(Clone)"

	return clone
}

func (s *Scene) clone(o *Object, parent *Object) (c *Object) {
	c = &Object{
		scene:  s,
		name:   o.name,
		local:  o.local,
		active: o.active,
	}
	s.attach(c, parent)

	for _, comp := range o.components {
		v := reflect.ValueOf(comp)
		nv := reflect.New(v.Elem().Type())
		nv.Elem().Set(v.Elem())

		a := nv.Interface().(attachable)
		a.behaviour().object = c
		c.components = append(c.components, a)
	}

	for _, ch := range o.children {
		s.clone(ch, c)
	}

	return c
}

// Instantiator returns the host instantiation primitive for T. Objects and
// components are copied into the graph, a component template yields the
// matching component of the copied object. Any other pointer is copied
// shallowly and stays outside the graph.
func Instantiator[T any](s *Scene) host.InstantiateFunc[T] {
	return func(template T, parent host.Node) T {
		p := s.mustObject(parent)

		switch v := any(template).(type) {
		case *Object:
			return any(s.Instantiate(v, p)).(T)
		case host.Component:
			src := s.mustObject(v.Container())
			idx := slices.Index(src.components, v)
			clone := s.Instantiate(src, p)

			return clone.components[idx].(T)
		}

		rv := reflect.ValueOf(template)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return template
		}

		nv := reflect.New(rv.Elem().Type())
		nv.Elem().Set(rv.Elem())

		return nv.Interface().(T)
	}
}

// siblings returns the ordering parent's children live in.
func (s *Scene) siblings(parent *Object) (sib *[]*Object) {
	if parent == nil {
		return &s.roots
	}
	return &parent.children
}

func (s *Scene) attach(o, parent *Object) {
	o.parent = parent
	sib := s.siblings(parent)
	*sib = append(*sib, o)
}

func (s *Scene) detach(o *Object) {
	sib := s.siblings(o.parent)
	if i := slices.Index(*sib, o); i >= 0 {
		*sib = slices.Delete(*sib, i, i+1)
	}
	o.parent = nil
}

// mustObject converts n into an object of s. nil nodes are the root.
func (s *Scene) mustObject(n host.Node) (o *Object) {
	if n == nil {
		return nil
	}

	o, ok := n.(*Object)
	if !ok || (o != nil && o.scene != s) {
		panic(fmt.Errorf("node %q does not belong to this scene", n.Name()))
	}

	return o
}

// Contains reports whether o is currently part of s.
func (s *Scene) Contains(o *Object) bool {
	return o != nil && o.scene == s && !o.destroyed
}
