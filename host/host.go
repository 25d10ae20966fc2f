// Package host describes what an embedding engine hands to the pool and
// singleton packages.
package host

import "reflect"

// Node is an object in the host's live graph.
type Node interface {
	Name() string

	Active() bool
	SetActive(active bool)

	// nil parent means the graph root
	SetParent(parent Node, keepWorld bool)

	SetAsLastSibling()
	Alive() bool
}

type Component interface {
	Container() Node
}

type Destroyer interface {
	OnDestroy()
}

// InstantiateFunc copies template and places the copy under parent.
type InstantiateFunc[T any] func(template T, parent Node) T

// Graph is the part of the host used to resolve singletons.
type Graph interface {
	Find(t reflect.Type) (c Component, ok bool)
	Spawn(t reflect.Type) (c Component)

	// fn is called once n gets destroyed
	OnDestroy(n Node, fn func())
}

func IsAlive(c Component) bool {
	if c == nil {
		return false
	}

	n := c.Container()

	return n != nil && n.Alive()
}
