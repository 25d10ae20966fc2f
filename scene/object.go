package scene

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/hxkhan/scenepool/host"
)

// ErrNotAttachable is returned when a component does not embed [Behaviour].
const ErrNotAttachable errors.Error = "component does not embed scene.Behaviour"

// Vec2 is a position in the plane.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Object is a node of the scene graph. It implements [host.Node].
type Object struct {
	scene      *Scene
	parent     *Object
	name       string
	children   []*Object
	components []host.Component
	local      Vec2
	active     bool
	destroyed  bool
}

var _ host.Node = (*Object)(nil)

func (o *Object) Name() string { return o.name }

func (o *Object) Active() bool { return o.active }

func (o *Object) SetActive(active bool) { o.active = active }

func (o *Object) Alive() bool { return !o.destroyed }

// ActiveInHierarchy reports whether o and all of its ancestors are active.
func (o *Object) ActiveInHierarchy() bool {
	for cur := o; cur != nil; cur = cur.parent {
		if !cur.active {
			return false
		}
	}
	return true
}

// Parent returns nil for root objects.
func (o *Object) Parent() *Object { return o.parent }

func (o *Object) Children() []*Object { return slices.Clone(o.children) }

func (o *Object) Components() []host.Component { return slices.Clone(o.components) }

// SiblingIndex is the position of o in its parent's (or the scene root's)
// ordering.
func (o *Object) SiblingIndex() int {
	return slices.Index(*o.scene.siblings(o.parent), o)
}

func (o *Object) LocalPosition() Vec2 { return o.local }

func (o *Object) SetLocalPosition(p Vec2) { o.local = p }

func (o *Object) WorldPosition() Vec2 {
	if o.parent == nil {
		return o.local
	}
	return o.parent.WorldPosition().Add(o.local)
}

// SetParent implements the [host.Node] interface for *Object. o is moved to
// the end of the new parent's children.
func (o *Object) SetParent(parent host.Node, keepWorld bool) {
	np := o.scene.mustObject(parent)
	if np == o.parent {
		return
	}

	for cur := np; cur != nil; cur = cur.parent {
		if cur == o {
			o.scene.logger.Warn("refusing to parent object under itself", "object", o.name)
			return
		}
	}

	world := o.WorldPosition()
	o.scene.detach(o)
	o.scene.attach(o, np)

	if keepWorld {
		if np == nil {
			o.local = world
		} else {
			o.local = world.Sub(np.WorldPosition())
		}
	}
}

// SetAsLastSibling implements the [host.Node] interface for *Object.
func (o *Object) SetAsLastSibling() {
	sib := o.scene.siblings(o.parent)
	i := slices.Index(*sib, o)
	if i < 0 || i == len(*sib)-1 {
		return
	}

	*sib = append(slices.Delete(*sib, i, i+1), o)
}

// AddComponent attaches c to o. c must embed [Behaviour] and must not be
// attached elsewhere.
func (o *Object) AddComponent(c host.Component) (err error) {
	a, ok := c.(attachable)
	if !ok {
		return ErrNotAttachable
	}

	if cur := a.behaviour().object; cur != nil {
		return fmt.Errorf("component is already attached to %q", cur.name)
	}

	a.behaviour().object = o
	o.components = append(o.components, c)

	return nil
}

// Component returns the first component of o with the exact type t.
func (o *Object) Component(t reflect.Type) (c host.Component, ok bool) {
	for _, c = range o.components {
		if reflect.TypeOf(c) == t {
			return c, true
		}
	}
	return nil, false
}

// GetComponent is the typed version of [Object.Component].
func GetComponent[T host.Component](o *Object) (c T, ok bool) {
	found, ok := o.Component(reflect.TypeFor[T]())
	if !ok {
		return c, false
	}
	return found.(T), true
}

// Behaviour is embedded by component types so that they can be attached to
// an [Object].
type Behaviour struct {
	object *Object
}

// Container implements the [host.Component] interface for *Behaviour.
func (b *Behaviour) Container() host.Node {
	if b.object == nil {
		return nil
	}
	return b.object
}

// Object returns the object b is attached to, if any.
func (b *Behaviour) Object() *Object { return b.object }

func (b *Behaviour) behaviour() *Behaviour { return b }

type attachable interface {
	host.Component
	behaviour() *Behaviour
}
