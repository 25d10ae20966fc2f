package host_test

import (
	"testing"

	"github.com/hxkhan/scenepool/host"
	"github.com/stretchr/testify/assert"
)

type node struct {
	alive bool
}

func (n *node) Name() string { return "node" }
func (n *node) Active() bool { return true }
func (n *node) SetActive(bool) {}
func (n *node) SetParent(host.Node, bool) {}
func (n *node) SetAsLastSibling() {}
func (n *node) Alive() bool { return n.alive }
func (n *node) Container() host.Node { return n }

type component struct {
	n *node
}

func (c *component) Container() host.Node {
	if c.n == nil {
		return nil
	}

	return c.n
}

type bareNode struct {
	node
}

func (*bareNode) Container() {}

func TestClassify(t *testing.T) {
	testCases := []struct {
		in   any
		name string
		want host.Kind
	}{{
		in:   &component{},
		name: "component",
		want: host.KindComponent,
	}, {
		in:   &bareNode{},
		name: "node",
		want: host.KindContainer,
	}, {
		in:   &node{},
		name: "both",
		want: host.KindComponent,
	}, {
		in:   42,
		name: "int",
		want: host.KindUnknown,
	}, {
		in:   nil,
		name: "nil",
		want: host.KindUnknown,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, host.Classify(tc.in))
		})
	}
}

func TestIsAlive(t *testing.T) {
	assert.False(t, host.IsAlive(nil))
	assert.False(t, host.IsAlive(&component{}))
	assert.False(t, host.IsAlive(&component{n: &node{}}))
	assert.True(t, host.IsAlive(&component{n: &node{alive: true}}))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "unset", host.KindUnset.String())
	assert.Equal(t, "component", host.KindComponent.String())
	assert.Equal(t, "container", host.KindContainer.String())
	assert.Equal(t, "unknown", host.KindUnknown.String())
}
