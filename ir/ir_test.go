package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode_AppliesSchema(t *testing.T) {
	g := testGraph()

	n, err := g.AddNode("math/add")
	require.NoError(t, err)

	assert.Equal(t, 0, n.Index)
	assert.Equal(t, -1, n.Declaration)
	assert.Equal(t, []string{"a", "b"}, n.Values.Keys())

	a := n.Values.ValueByKey("a")
	assert.Equal(t, g.Types.Index(SigInt), a.Type)
	assert.False(t, a.Connected())
	assert.Nil(t, a.Restriction)

	b := n.Values.ValueByKey("b")
	require.NotNil(t, b.Restriction)
	assert.Equal(t, "a", b.Restriction.SameAs)

	out := n.Outputs.ValueByKey("value")
	require.NotNil(t, out.Expected)
	assert.Equal(t, "a", out.Expected.FromInput)
	assert.False(t, out.Expected.IsFixed())
}

func TestAddNode_ImplicitRestriction(t *testing.T) {
	g := testGraph()
	n := mustAdd(g, "math/sin")

	a := n.Values.ValueByKey("a")
	require.NotNil(t, a.Restriction)
	assert.Equal(t, SigFloat, a.Restriction.LimitTo)

	out := n.Outputs.ValueByKey("value")
	require.NotNil(t, out.Expected)
	assert.True(t, out.Expected.IsFixed())
	assert.Equal(t, g.Types.Index(SigFloat), out.Expected.Type)
}

func TestAddNode_UnknownOp(t *testing.T) {
	g := testGraph()

	_, err := g.AddNode("math/teleport")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, ErrUnknownOp, gerr.Kind)
	assert.True(t, errors.Is(err, &Error{Kind: ErrUnknownOp}))
}

func TestRegistry_LookupOp(t *testing.T) {
	reg := testRegistry()

	s, err := reg.LookupOp("math/sin")
	require.NoError(t, err)
	assert.Equal(t, "math/sin", s.Op)

	_, err = reg.LookupOp("math/nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &Error{Kind: ErrUnknownOp}))
}

func TestBindVariable_TypesOutput(t *testing.T) {
	g := testGraph()
	idx := g.AddVariable("count", 3, g.Types.Index(SigInt))
	get := mustAdd(g, "variable/get")
	assert.Nil(t, get.Outputs.ValueByKey("value").Expected)

	g.BindVariable(get, idx)
	assert.Equal(t, idx, get.Config(ConfigVariable))
	out := get.Outputs.ValueByKey("value")
	require.NotNil(t, out.Expected)
	assert.True(t, out.Expected.IsFixed())
	assert.Equal(t, g.Types.Index(SigInt), out.Expected.Type)

	eq := mustAdd(g, "math/eq")
	eq.ConnectValue("a", get, "value")
	res := g.InputType(eq, "a")
	require.True(t, res.OK())
	assert.Equal(t, SigInt, g.Types.Signature(res.Type))
}

func TestBindValueType_TypesOutput(t *testing.T) {
	g := testGraph()
	get := mustAdd(g, "pointer/get")
	get.SetConfig("pointer", "/nodes/{nodeIndex}/translation")

	g.BindValueType(get, g.Types.Index(SigFloat3))
	assert.Equal(t, int(g.Types.Index(SigFloat3)), get.Config(ConfigType))
	out := get.Outputs.ValueByKey("value")
	require.NotNil(t, out.Expected)
	assert.Equal(t, g.Types.Index(SigFloat3), out.Expected.Type)
}

func TestApplyConfigTypes(t *testing.T) {
	g := testGraph()
	floatVar := g.AddVariable("speed", float32(1), g.Types.Index(SigFloat))

	tests := []struct {
		name   string
		op     string
		config map[string]any
		want   TypeIndex
	}{
		{"variable", "variable/get", map[string]any{ConfigVariable: floatVar}, g.Types.Index(SigFloat)},
		{"unset variable", "variable/get", nil, UnknownType},
		{"variable out of range", "variable/get", map[string]any{ConfigVariable: 7}, UnknownType},
		{"type", "pointer/get", map[string]any{ConfigType: int(g.Types.Index(SigBool))}, g.Types.Index(SigBool)},
		{"type out of range", "pointer/get", map[string]any{ConfigType: 99}, UnknownType},
		{"schema rule wins", "math/sin", map[string]any{ConfigType: int(g.Types.Index(SigInt))}, g.Types.Index(SigFloat)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := mustAdd(g, tt.op)
			for k, v := range tt.config {
				n.SetConfig(k, v)
			}
			g.ApplyConfigTypes(n)

			out := n.Outputs.ValueByKey("value")
			if tt.want == UnknownType {
				assert.Nil(t, out.Expected)
				return
			}
			require.NotNil(t, out.Expected)
			assert.Equal(t, tt.want, out.Expected.Type)
		})
	}
}

func TestDefaultFlowSockets(t *testing.T) {
	g := testGraph()
	seq := mustAdd(g, "flow/sequence")
	start := mustAdd(g, "event/onStart")

	in, err := seq.FlowIn()
	require.NoError(t, err)
	assert.Equal(t, FlowInDefault, in)

	_, err = seq.FlowOut()
	assert.True(t, errors.Is(err, &Error{Kind: ErrMissingDefaultSocket}))

	_, err = start.FlowIn()
	assert.True(t, errors.Is(err, &Error{Kind: ErrMissingDefaultSocket}))

	out, err := start.FlowOut()
	require.NoError(t, err)
	assert.False(t, out.Connected())
}

func TestValueSocket_LiteralXorConnection(t *testing.T) {
	g := testGraph()
	src := mustAdd(g, "math/sin")
	dst := mustAdd(g, "math/sin")

	g.SetValue(dst, "a", float32(1))
	s := dst.Values.ValueByKey("a")
	assert.True(t, s.HasLiteral())

	dst.ConnectValue("a", src, "value")
	assert.True(t, s.Connected())
	assert.Nil(t, s.Value)
	assert.Equal(t, UnknownType, s.Type)

	g.SetValue(dst, "a", float32(2))
	assert.False(t, s.Connected())
	assert.Equal(t, "", s.Socket)
}

func TestAddVariableAndEvent_Dedup(t *testing.T) {
	g := testGraph()

	v1 := g.AddVariable("score", 0, g.Types.Index(SigInt))
	v2 := g.AddVariable("score", 5, g.Types.Index(SigInt))
	assert.Equal(t, v1, v2)
	assert.Len(t, g.Variables, 1)
	assert.Equal(t, -1, g.AddVariable("broken", nil, UnknownType))
	assert.Equal(t, 0, g.VariableIndex("score"))
	assert.Equal(t, -1, g.VariableIndex("missing"))

	e1 := g.AddEvent("ping", nil)
	e2 := g.AddEvent("ping", nil)
	assert.Equal(t, e1, e2)
	assert.Len(t, g.Events, 1)
	assert.NotNil(t, g.Events[0].Values)
}

func TestRemoveNode_SwapsLast(t *testing.T) {
	g := testGraph()
	a := mustAdd(g, "math/sin")
	b := mustAdd(g, "math/sin")
	c := mustAdd(g, "math/sin")
	d := mustAdd(g, "math/sin")
	// d reads from c, b reads from d
	d.ConnectValue("a", c, "value")
	b.ConnectValue("a", d, "value")

	require.NoError(t, g.RemoveNode(a))

	require.Len(t, g.Nodes, 3)
	assert.Same(t, d, g.Nodes[0])
	assert.Equal(t, 0, d.Index)
	assert.Equal(t, -1, a.Index)
	assert.Equal(t, 0, b.Values.ValueByKey("a").Node)
	assert.Equal(t, 2, d.Values.ValueByKey("a").Node)
	assertDense(t, g)
}

func TestRemoveNode_Last(t *testing.T) {
	g := testGraph()
	mustAdd(g, "math/sin")
	last := mustAdd(g, "math/sin")

	require.NoError(t, g.RemoveNode(last))
	assert.Len(t, g.Nodes, 1)
}

func TestRemoveNode_RefusesReferenced(t *testing.T) {
	g := testGraph()
	start := mustAdd(g, "event/onStart")
	log := mustAdd(g, "debug/log")
	start.ConnectFlow(FlowOutDefault, log, FlowInDefault)

	err := g.RemoveNode(log)
	assert.True(t, errors.Is(err, &Error{Kind: ErrNodeReferenced}))
	assert.Len(t, g.Nodes, 2)
	assert.Equal(t, 1, log.Index)

	assert.True(t, g.IsReferenced(log))
	assert.False(t, g.IsReferenced(start))
}

func TestConsumers(t *testing.T) {
	g := testGraph()
	src := mustAdd(g, "math/sin")
	c1 := mustAdd(g, "math/add")
	c2 := mustAdd(g, "math/sin")
	c1.ConnectValue("a", src, "value")
	c1.ConnectValue("b", src, "value")
	c2.ConnectValue("a", src, "value")

	assert.Equal(t, []*Node{c1, c2}, g.Consumers(src))
}

func TestError_Format(t *testing.T) {
	g := testGraph()
	n := mustAdd(g, "math/sin")

	err := NewNodeError(ErrValueCycle, n, "depends on node %d", 3)
	assert.Equal(t, "graph ValueCycle at node 0 (math/sin): depends on node 3", err.Error())
	assert.Equal(t, "graph UnknownOp (x/y): nope", NewError(ErrUnknownOp, "x/y", "nope").Error())
}

func assertDense(t *testing.T, g *Graph) {
	t.Helper()
	for i, n := range g.Nodes {
		require.Equal(t, i, n.Index)
		for _, kv := range n.Values.Order {
			if kv.Value.Connected() {
				assert.Less(t, kv.Value.Node, len(g.Nodes))
			}
		}
		for _, kv := range n.Flows.Order {
			if kv.Value.Connected() {
				assert.Less(t, kv.Value.Node, len(g.Nodes))
			}
		}
	}
}
