package ir

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
)

func TestInputType_Literal(t *testing.T) {
	g := testGraph()
	n := mustAdd(g, "math/add")
	g.SetValue(n, "a", math32.Vector3{X: 1})

	res := g.InputType(n, "a")
	assert.Equal(t, Resolution{State: Resolved, Type: g.Types.Index(SigFloat3)}, res)
	assert.True(t, res.OK())
}

func TestInputType_FollowsConnection(t *testing.T) {
	g := testGraph()
	sin := mustAdd(g, "math/sin")
	add := mustAdd(g, "math/add")
	add.ConnectValue("a", sin, "value")

	assert.Equal(t, g.Types.Index(SigFloat), g.InputType(add, "a").Type)
	assert.Equal(t, g.Types.Index(SigFloat), g.OutputType(add, "value").Type)
}

func TestInputType_FollowsFromInputChain(t *testing.T) {
	g := testGraph()
	first := mustAdd(g, "math/add")
	second := mustAdd(g, "math/add")
	g.SetValue(first, "a", math32.Vector2{X: 1, Y: 2})
	second.ConnectValue("a", first, "value")

	assert.Equal(t, g.Types.Index(SigFloat2), g.InputType(second, "a").Type)
}

func TestInputType_SameAsRestriction(t *testing.T) {
	g := testGraph()
	add := mustAdd(g, "math/add")
	g.SetValue(add, "a", float32(2))
	add.Values.ValueByKey("b").Type = UnknownType

	assert.Equal(t, g.Types.Index(SigFloat), g.InputType(add, "b").Type)
}

func TestInputType_LimitToRestriction(t *testing.T) {
	g := testGraph()
	sin := mustAdd(g, "math/sin")

	assert.Equal(t, g.Types.Index(SigFloat), g.InputType(sin, "a").Type)
}

func TestInputType_ConnectionWithoutExpected(t *testing.T) {
	g := testGraph()
	get := mustAdd(g, "variable/get")
	add := mustAdd(g, "math/add")
	add.ConnectValue("a", get, "value")

	res := g.InputType(add, "a")
	assert.Equal(t, Unknown, res.State)
	assert.Equal(t, UnknownType, res.TypeOrUnknown())
}

func TestInputType_ReferenceCycle(t *testing.T) {
	g := testGraph()
	x := mustAdd(g, "math/add")
	y := mustAdd(g, "math/add")
	x.ConnectValue("a", y, "value")
	y.ConnectValue("a", x, "value")

	res := g.InputType(x, "a")
	assert.Equal(t, CycleDetected, res.State)
	assert.False(t, res.OK())
	assert.Equal(t, "CycleDetected", res.String())
}

func TestInputType_MissingSocket(t *testing.T) {
	g := testGraph()
	n := mustAdd(g, "math/sin")

	assert.Equal(t, Unknown, g.InputType(n, "nope").State)
	assert.Equal(t, Unknown, g.OutputType(n, "nope").State)
}
