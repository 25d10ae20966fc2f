package pool

import (
	"reflect"

	"github.com/hxkhan/scenepool/host"
)

// driver applies host state changes to elements of one kind.
type driver[T any] interface {
	setActive(elem T, active bool)
	setParent(elem T, parent host.Node)
	setLast(elem T)
}

// resolve classifies the template on first use and returns the matching
// driver.  f.mu must be locked.
func (f *Factory[T]) resolve() (d driver[T]) {
	if f.driver != nil {
		return f.driver
	}

	f.kind = host.Classify(f.template)
	switch f.kind {
	case host.KindComponent:
		f.driver = componentDriver[T]{}
	case host.KindContainer:
		f.driver = containerDriver[T]{}
	default:
		f.logger.Warn(
			"template is neither a component nor a node; active state, parent and order will not be managed",
			"type", reflect.TypeOf(f.template),
		)
		f.driver = nopDriver[T]{}
	}

	return f.driver
}

// containerDriver drives elements which are nodes themselves.
type containerDriver[T any] struct{}

func (containerDriver[T]) setActive(elem T, active bool) {
	any(elem).(host.Node).SetActive(active)
}

func (containerDriver[T]) setParent(elem T, parent host.Node) {
	any(elem).(host.Node).SetParent(parent, false)
}

func (containerDriver[T]) setLast(elem T) {
	any(elem).(host.Node).SetAsLastSibling()
}

// componentDriver drives elements through their container.
type componentDriver[T any] struct{}

func (componentDriver[T]) setActive(elem T, active bool) {
	any(elem).(host.Component).Container().SetActive(active)
}

func (componentDriver[T]) setParent(elem T, parent host.Node) {
	any(elem).(host.Component).Container().SetParent(parent, false)
}

func (componentDriver[T]) setLast(elem T) {
	any(elem).(host.Component).Container().SetAsLastSibling()
}

// nopDriver leaves elements of unknown kinds alone.
type nopDriver[T any] struct{}

func (nopDriver[T]) setActive(T, bool) {}

func (nopDriver[T]) setParent(T, host.Node) {}

func (nopDriver[T]) setLast(T) {}
