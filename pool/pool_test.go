package pool_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/hxkhan/scenepool/host"
	"github.com/hxkhan/scenepool/pool"
	"github.com/hxkhan/scenepool/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bullet struct {
	scene.Behaviour

	damage int
}

type material struct {
	color string
}

// newObjectPool returns a factory copying an inactive "bullet" object along
// with the parent its elements go to.
func newObjectPool(t testing.TB) (f *pool.Factory[*scene.Object], s *scene.Scene, world *scene.Object) {
	t.Helper()

	s = scene.New(scene.Options{})
	tmpl := s.NewObject("bullet", nil)
	tmpl.SetActive(false)
	world = s.NewObject("world", nil)

	f = pool.New(pool.Options[*scene.Object]{
		Template:    tmpl,
		Instantiate: scene.Instantiator[*scene.Object](s),
		Name:        "bullets",
	})

	return f, s, world
}

func TestFactory_reuse(t *testing.T) {
	f, _, world := newObjectPool(t)
	assert.Equal(t, host.KindUnset, f.Kind())

	e1 := f.Acquire(world, true)
	require.NotNil(t, e1)
	assert.Equal(t, host.KindContainer, f.Kind())
	assert.True(t, e1.Active())
	assert.Equal(t, world, e1.Parent())
	assert.Equal(t, []*scene.Object{e1}, f.Enabled())
	assert.Empty(t, f.Disabled())

	f.Release(e1)
	assert.False(t, e1.Active())
	assert.Empty(t, f.Enabled())
	assert.Equal(t, []*scene.Object{e1}, f.Disabled())

	got := f.Acquire(world, true)
	assert.Same(t, e1, got)
	assert.True(t, got.Active())
	assert.Equal(t, []*scene.Object{e1}, f.Enabled())
	assert.Empty(t, f.Disabled())
}

func TestFactory_Acquire_reparent(t *testing.T) {
	f, s, world := newObjectPool(t)
	other := s.NewObject("other", nil)
	other.SetLocalPosition(scene.Vec2{X: 100})

	e := f.Acquire(world, true)
	e.SetLocalPosition(scene.Vec2{X: 1})
	f.Release(e)

	s.NewObject("sibling", other)
	got := f.Acquire(other, false)
	require.Same(t, e, got)

	assert.Equal(t, other, got.Parent())
	assert.Equal(t, scene.Vec2{X: 1}, got.LocalPosition())
	assert.Equal(t, scene.Vec2{X: 101}, got.WorldPosition())
	assert.Empty(t, world.Children())
}

func TestFactory_Acquire_atEnd(t *testing.T) {
	f, s, world := newObjectPool(t)

	a := f.Acquire(world, true)
	f.Acquire(world, true)
	f.Release(a)

	later := s.NewObject("later", world)

	got := f.Acquire(world, true)
	require.Same(t, a, got)
	assert.Equal(t, 2, a.SiblingIndex())

	f.Release(a)
	later.SetAsLastSibling()
	got = f.Acquire(world, false)
	require.Same(t, a, got)
	assert.Equal(t, 2, later.SiblingIndex())
}

func TestFactory_Release_notEnabled(t *testing.T) {
	f, s, world := newObjectPool(t)

	a := f.Acquire(world, true)
	stranger := s.NewObject("stranger", world)

	f.Release(stranger)
	assert.True(t, stranger.Active())

	f.Release(a)
	f.Release(a)

	assert.Empty(t, f.Enabled())
	assert.Equal(t, []*scene.Object{a}, f.Disabled())
}

func TestFactory_ReleaseAll(t *testing.T) {
	f, _, world := newObjectPool(t)

	a := f.Acquire(world, true)
	b := f.Acquire(world, true)
	c := f.Acquire(world, true)
	f.Release(b)

	f.ReleaseAll()

	assert.Empty(t, f.Enabled())
	assert.Equal(t, []*scene.Object{b, a, c}, f.Disabled())
	for _, e := range []*scene.Object{a, b, c} {
		assert.False(t, e.Active())
	}

	f.ReleaseAll()
	assert.Len(t, f.Disabled(), 3)
}

func TestFactory_ReleaseWhere(t *testing.T) {
	f, _, world := newObjectPool(t)

	a := f.Acquire(world, true)
	b := f.Acquire(world, true)
	c := f.Acquire(world, true)

	f.ReleaseWhere(func(e *scene.Object) bool { return e == b })

	assert.Equal(t, []*scene.Object{a, c}, f.Enabled())
	assert.Equal(t, []*scene.Object{b}, f.Disabled())
	assert.False(t, b.Active())
	assert.True(t, a.Active())
	assert.True(t, c.Active())

	d := f.Acquire(world, true)
	require.Same(t, b, d)

	f.ReleaseWhere(func(e *scene.Object) bool { return e != c })

	assert.Equal(t, []*scene.Object{c}, f.Enabled())
	assert.Equal(t, []*scene.Object{a, b}, f.Disabled())
}

func TestFactory_component(t *testing.T) {
	s := scene.New(scene.Options{})
	holder := s.NewObject("bullet", nil)
	tmpl := &bullet{damage: 5}
	require.NoError(t, holder.AddComponent(tmpl))
	holder.SetActive(false)

	world := s.NewObject("world", nil)
	f := pool.New(pool.Options[*bullet]{
		Template:    tmpl,
		Instantiate: scene.Instantiator[*bullet](s),
	})

	b := f.Acquire(world, true)
	require.NotSame(t, tmpl, b)
	assert.Equal(t, host.KindComponent, f.Kind())
	assert.Equal(t, 5, b.damage)
	assert.True(t, b.Object().Active())
	assert.Equal(t, world, b.Object().Parent())

	f.Release(b)
	assert.False(t, b.Object().Active())

	other := s.NewObject("other", nil)
	got := f.Acquire(other, true)
	require.Same(t, b, got)
	assert.Equal(t, other, got.Object().Parent())
	assert.True(t, got.Object().Active())
}

func TestFactory_unknownKind(t *testing.T) {
	buf := &bytes.Buffer{}
	l := slog.New(slog.NewTextHandler(buf, nil))

	s := scene.New(scene.Options{})
	world := s.NewObject("world", nil)

	instantiated := 0
	inst := scene.Instantiator[*material](s)
	f := pool.New(pool.Options[*material]{
		Template: &material{color: "red"},
		Instantiate: func(m *material, parent host.Node) *material {
			instantiated++
			return inst(m, parent)
		},
		Logger: l,
		Name:   "materials",
	})

	m1 := f.Acquire(world, true)
	m2 := f.Acquire(world, true)
	assert.Equal(t, host.KindUnknown, f.Kind())
	assert.Equal(t, "red", m1.color)
	assert.NotSame(t, m1, m2)

	f.Release(m1)
	f.ReleaseAll()
	assert.Equal(t, []*material{m1, m2}, f.Disabled())

	got := f.Acquire(world, true)
	assert.Same(t, m1, got)
	assert.Equal(t, 2, instantiated)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "level=WARN"))
	assert.Contains(t, out, "pool=materials")
	assert.Empty(t, world.Children())
}

// testMetrics records calls to [pool.Metrics] methods.
type testMetrics struct {
	acquired     int
	reused       int
	released     int
	lastEnabled  int
	lastDisabled int
}

func (m *testMetrics) IncrementAcquired(_ context.Context, reused bool) {
	m.acquired++
	if reused {
		m.reused++
	}
}

func (m *testMetrics) IncrementReleased(_ context.Context, n int) { m.released += n }

func (m *testMetrics) SetElements(_ context.Context, enabled, disabled int) {
	m.lastEnabled, m.lastDisabled = enabled, disabled
}

func TestFactory_metrics(t *testing.T) {
	s := scene.New(scene.Options{})
	m := &testMetrics{}
	f := pool.New(pool.Options[*scene.Object]{
		Template:    s.NewObject("tmpl", nil),
		Instantiate: scene.Instantiator[*scene.Object](s),
		Metrics:     m,
	})

	a := f.Acquire(nil, true)
	f.Acquire(nil, true)
	f.Release(a)
	f.Acquire(nil, true)
	f.ReleaseAll()

	assert.Equal(t, 3, m.acquired)
	assert.Equal(t, 1, m.reused)
	assert.Equal(t, 3, m.released)
	assert.Equal(t, 0, m.lastEnabled)
	assert.Equal(t, 2, m.lastDisabled)
}

func TestFactory_invariants(t *testing.T) {
	f, s, world := newObjectPool(t)
	rng := rand.New(rand.NewPCG(1, 2))

	produced := map[*scene.Object]struct{}{}
	for range 2000 {
		_, disabled := f.Counts()

		switch op := rng.IntN(5); op {
		case 0, 1:
			before := len(world.Children())
			e := f.Acquire(world, rng.IntN(2) == 0)
			if disabled > 0 {
				require.Contains(t, produced, e)
				require.Len(t, world.Children(), before)
			}
			produced[e] = struct{}{}
		case 2:
			en := f.Enabled()
			if len(en) > 0 {
				f.Release(en[rng.IntN(len(en))])
			} else {
				f.Release(s.NewObject("stray", nil))
			}
		case 3:
			f.ReleaseWhere(func(*scene.Object) bool { return rng.IntN(3) == 0 })
		case 4:
			if rng.IntN(4) == 0 {
				f.ReleaseAll()
			}
		}

		en, dis := f.Enabled(), f.Disabled()
		require.Equal(t, len(produced), len(en)+len(dis))

		seen := map[*scene.Object]int{}
		for _, e := range en {
			seen[e]++
			require.True(t, e.Active())
		}
		for _, e := range dis {
			seen[e]++
			require.False(t, e.Active())
		}
		for e := range produced {
			require.Equal(t, 1, seen[e])
		}
	}
}
