package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/hxkhan/scenepool/host"
	"github.com/hxkhan/scenepool/metrics"
	"github.com/hxkhan/scenepool/pool"
	"github.com/hxkhan/scenepool/scene"
	"github.com/hxkhan/scenepool/singleton"
	"github.com/prometheus/client_golang/prometheus"
)

// sprite is the component attached to "component" templates.
type sprite struct {
	scene.Behaviour
}

// asset is what "data" templates are made of.  It is neither a node nor a
// component.
type asset struct {
	name string
}

// Singleton types are named after their scenario names, so that the objects
// spawned for them can be destroyed by name.

type manager struct {
	scene.Behaviour
	singleton.Base

	inits int
}

func (m *manager) Init() { m.inits++ }

type audio struct {
	scene.Behaviour
	singleton.Base

	inits int
}

func (a *audio) Init() { a.inits++ }

// singletonGetters maps the names a scenario can declare to accessors
// returning the instance and the number of times it was initialized.
var singletonGetters = map[string]func(r *singleton.Registry) (c host.Component, inits int){
	"manager": func(r *singleton.Registry) (host.Component, int) {
		m := singleton.Get[*manager](r)
		return m, m.inits
	},
	"audio": func(r *singleton.Registry) (host.Component, int) {
		a := singleton.Get[*audio](r)
		return a, a.inits
	},
}

// poolRunner drives a factory of any element type by alias.
type poolRunner interface {
	acquire(parent *scene.Object, atEnd bool, alias string) (reused bool)
	release(alias string) (err error)
	releaseAll()
	releaseWhere(prefix string)
	state() string

	// node returns the scene object of the element called alias.
	node(alias string) (o *scene.Object, err error)
}

type typedPool[T comparable] struct {
	factory *pool.Factory[T]
	aliases map[string]T
	names   map[T]string
}

func newTypedPool[T comparable](
	name string,
	tmpl T,
	s *scene.Scene,
	logger *slog.Logger,
	reg prometheus.Registerer,
) (p *typedPool[T], err error) {
	m, err := metrics.NewPool(metrics.Namespace, name, reg)
	if err != nil {
		return nil, err
	}

	return &typedPool[T]{
		factory: pool.New(pool.Options[T]{
			Template:    tmpl,
			Instantiate: scene.Instantiator[T](s),
			Logger:      logger,
			Metrics:     m,
			Name:        name,
		}),
		aliases: map[string]T{},
		names:   map[T]string{},
	}, nil
}

func (p *typedPool[T]) acquire(parent *scene.Object, atEnd bool, alias string) (reused bool) {
	_, disabled := p.factory.Counts()

	var node host.Node
	if parent != nil {
		node = parent
	}

	elem := p.factory.Acquire(node, atEnd)
	if old, ok := p.names[elem]; ok {
		delete(p.aliases, old)
	}

	p.aliases[alias] = elem
	p.names[elem] = alias

	return disabled > 0
}

func (p *typedPool[T]) release(alias string) (err error) {
	elem, ok := p.aliases[alias]
	if !ok {
		return fmt.Errorf("unknown element %q", alias)
	}

	p.factory.Release(elem)

	return nil
}

func (p *typedPool[T]) node(alias string) (o *scene.Object, err error) {
	elem, ok := p.aliases[alias]
	if !ok {
		return nil, fmt.Errorf("unknown element %q", alias)
	}

	var n host.Node
	switch v := any(elem).(type) {
	case host.Component:
		n = v.Container()
	case host.Node:
		n = v
	}

	o, ok = n.(*scene.Object)
	if !ok {
		return nil, fmt.Errorf("element %q is not a scene object", alias)
	}

	return o, nil
}

func (p *typedPool[T]) releaseAll() { p.factory.ReleaseAll() }

func (p *typedPool[T]) releaseWhere(prefix string) {
	p.factory.ReleaseWhere(func(elem T) bool {
		return strings.HasPrefix(p.names[elem], prefix)
	})
}

func (p *typedPool[T]) state() string {
	return fmt.Sprintf(
		"kind=%s enabled=%s disabled=%s",
		p.factory.Kind(),
		p.list(p.factory.Enabled()),
		p.list(p.factory.Disabled()),
	)
}

func (p *typedPool[T]) list(elems []T) string {
	names := make([]string, 0, len(elems))
	for _, e := range elems {
		names = append(names, p.names[e])
	}

	return "[" + strings.Join(names, " ") + "]"
}

// runner executes scenarios against a fresh scene.
type runner struct {
	logger     *slog.Logger
	reg        prometheus.Registerer
	out        io.Writer
	scene      *scene.Scene
	singletons *singleton.Registry
	pools      map[string]poolRunner
	poolNames  []string
	last       map[string]host.Component
}

func newRunner(logger *slog.Logger, reg prometheus.Registerer, out io.Writer) (r *runner) {
	s := scene.New(scene.Options{
		Logger: logger.With(slogutil.KeyPrefix, "scene"),
	})

	return &runner{
		logger: logger,
		reg:    reg,
		out:    out,
		scene:  s,
		singletons: singleton.New(singleton.Options{
			Graph:  s,
			Logger: logger.With(slogutil.KeyPrefix, "singleton"),
		}),
		pools: map[string]poolRunner{},
		last:  map[string]host.Component{},
	}
}

// run builds the scene described by sc and executes its steps in order.
func (r *runner) run(sc *scenario) (err error) {
	templates := map[string]any{}
	for _, o := range sc.Objects {
		templates[o.Name], err = r.buildObject(o)
		if err != nil {
			return fmt.Errorf("object %q: %w", o.Name, err)
		}
	}

	for _, pc := range sc.Pools {
		var p poolRunner
		switch tmpl := templates[pc.Template].(type) {
		case *scene.Object:
			p, err = newTypedPool(pc.Name, tmpl, r.scene, r.logger, r.reg)
		case *sprite:
			p, err = newTypedPool(pc.Name, tmpl, r.scene, r.logger, r.reg)
		case *asset:
			p, err = newTypedPool(pc.Name, tmpl, r.scene, r.logger, r.reg)
		}

		if err != nil {
			return fmt.Errorf("pool %q: %w", pc.Name, err)
		}

		r.pools[pc.Name] = p
		r.poolNames = append(r.poolNames, pc.Name)
	}

	for i, s := range sc.Steps {
		err = r.exec(s)
		if err != nil {
			return fmt.Errorf("step %d: %s: %w", i, s.Op, err)
		}
	}

	return nil
}

// buildObject creates the inactive template declared by o.
func (r *runner) buildObject(o *objectConf) (tmpl any, err error) {
	var parent *scene.Object
	if o.Parent != "" {
		var ok bool
		parent, ok = r.scene.FindObject(o.Parent)
		if !ok {
			return nil, fmt.Errorf("no parent object %q", o.Parent)
		}
	}

	if o.Kind == kindData {
		return &asset{name: o.Name}, nil
	}

	obj := r.scene.NewObject(o.Name, parent)
	obj.SetActive(false)

	if o.Kind == kindObject {
		return obj, nil
	}

	sp := &sprite{}
	errors.Check(obj.AddComponent(sp))

	return sp, nil
}

func (r *runner) exec(s *step) (err error) {
	p := r.pools[s.Pool]

	switch s.Op {
	case opAcquire:
		var parent *scene.Object
		if s.Parent != "" {
			var ok bool
			parent, ok = r.scene.FindObject(s.Parent)
			if !ok {
				return fmt.Errorf("no object %q", s.Parent)
			}
		}

		how := "new"
		if p.acquire(parent, s.atEnd(), s.As) {
			how = "reused"
		}

		r.printf("acquire %s %s (%s): %s", s.Pool, s.As, how, p.state())
	case opRelease:
		err = p.release(s.Ref)
		if err != nil {
			return err
		}

		r.printf("release %s %s: %s", s.Pool, s.Ref, p.state())
	case opReleaseAll:
		p.releaseAll()
		r.printf("release_all %s: %s", s.Pool, p.state())
	case opReleaseWhere:
		p.releaseWhere(s.Prefix)
		r.printf("release_where %s %q: %s", s.Pool, s.Prefix, p.state())
	case opSingleton:
		c, inits := singletonGetters[s.Name](r.singletons)

		how := "new"
		if r.last[s.Name] == c {
			how = "cached"
		}
		r.last[s.Name] = c

		r.printf("singleton %s (%s): object=%s inits=%d", s.Name, how, c.Container().Name(), inits)
	case opDestroy:
		var o *scene.Object
		o, err = r.destroyTarget(s)
		if err != nil {
			return err
		}

		r.scene.Destroy(o)
		r.printf("destroy %s: roots=%d", s.Name+s.Ref, len(r.scene.Roots()))
	}

	return nil
}

// destroyTarget returns the scene object named by s.Name or the pooled element
// aliased s.Ref.  Without s.Pool, the alias is looked up in every pool and
// must be unique.
func (r *runner) destroyTarget(s *step) (o *scene.Object, err error) {
	if s.Name != "" {
		var ok bool
		o, ok = r.scene.FindObject(s.Name)
		if !ok {
			return nil, fmt.Errorf("no object %q", s.Name)
		}

		return o, nil
	}

	if s.Pool != "" {
		return r.pools[s.Pool].node(s.Ref)
	}

	var found []string
	for _, name := range r.poolNames {
		n, nodeErr := r.pools[name].node(s.Ref)
		if nodeErr == nil {
			o = n
			found = append(found, name)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no pooled object %q", s.Ref)
	case 1:
		return o, nil
	default:
		return nil, fmt.Errorf("ref %q is in pools %q, set pool", s.Ref, found)
	}
}

func (r *runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}
