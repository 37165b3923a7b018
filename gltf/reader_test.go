package gltf

import (
	"errors"
	"testing"

	"cogentcore.org/core/base/ordmap"
	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

// richGraph exercises every literal kind and table of the wire format.
func richGraph(t *testing.T) *ir.Graph {
	g := ir.NewGraph(schema.Default())
	types := g.Types

	g.AddVariable("position", math32.Vec3(1, 2, 3), types.Index(ir.SigFloat3))
	values := ordmap.New[string, *ir.EventValue]()
	values.Add("count", &ir.EventValue{Type: types.Index(ir.SigInt), Value: 3})
	g.AddEvent("bump", values)

	start := mustAdd(t, g, schema.OpOnStart)
	set := mustAdd(t, g, schema.OpVariableSet)
	set.SetConfig(ir.ConfigVariables, []int{0})
	start.ConnectFlow(ir.FlowOutDefault, set, ir.FlowInDefault)

	mat := mustAdd(t, g, schema.OpTranspose)
	var m math32.Matrix4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	g.SetValue(mat, schema.SocketA, m)
	det := mustAdd(t, g, schema.OpDeterminant)
	det.ConnectValue(schema.SocketA, mat, schema.SocketValue)

	isNaN := mustAdd(t, g, "math/isNaN")
	g.SetValue(isNaN, schema.SocketA, math32.NaN())

	for i, n := range g.Nodes {
		g.Declarations = append(g.Declarations, &ir.Declaration{Op: n.Op})
		n.Declaration = i
	}
	return g
}

func TestRead_RoundTrip(t *testing.T) {
	first, err := Marshal(richGraph(t))
	require.NoError(t, err)

	g, err := Read(first, schema.Default())
	require.NoError(t, err)

	second, err := Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRead_Contents(t *testing.T) {
	data, err := Marshal(richGraph(t))
	require.NoError(t, err)

	g, err := Read(data, schema.Default())
	require.NoError(t, err)

	assert.Equal(t, len(ir.AllSignatures), g.Types.Len())
	require.Len(t, g.Variables, 1)
	assert.Equal(t, math32.Vec3(1, 2, 3), g.Variables[0].Value)
	require.Len(t, g.Events, 1)
	assert.Equal(t, 3, g.Events[0].Values.ValueByKey("count").Value)

	require.Len(t, g.Nodes, 5)
	for i, n := range g.Nodes {
		assert.Equal(t, i, n.Index)
		assert.NotNil(t, n.Schema, n.Op)
	}

	assert.Equal(t, []int{0}, g.Nodes[1].Config(ir.ConfigVariables))
	assert.Equal(t, 1, g.Nodes[0].Flow(ir.FlowOutDefault).Node)

	m, ok := g.Nodes[2].Values.ValueByKey(schema.SocketA).Value.(math32.Matrix4)
	require.True(t, ok)
	assert.Equal(t, float32(1), m[15])

	link := g.Nodes[3].Values.ValueByKey(schema.SocketA)
	assert.Equal(t, 2, link.Node)
	assert.Equal(t, schema.SocketValue, link.Socket)

	f, ok := g.Nodes[4].Values.ValueByKey(schema.SocketA).Value.(float32)
	require.True(t, ok)
	assert.True(t, math32.IsNaN(f))

	errs, err := ir.Validate(g)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestRead_WithoutRegistry(t *testing.T) {
	data, err := Marshal(richGraph(t))
	require.NoError(t, err)

	g, err := Read(data, nil)
	require.NoError(t, err)
	for _, n := range g.Nodes {
		assert.Nil(t, n.Schema)
	}
	// without the schema a one-element list reads back as a scalar
	assert.Equal(t, 0, g.Nodes[1].Config(ir.ConfigVariables))
}

func TestRead_Extensions(t *testing.T) {
	data := []byte(`{
  "types": [{"signature": "int"}, {"signature": "custom", "extensions": {"EXT_custom": {}}}],
  "declarations": [{"op": "video/play", "extension": "GOOG_video",
    "inputValueSockets": {"video": {"type": 0}}}],
  "nodes": [{"declaration": 0, "values": {"video": {"type": 0, "value": [4]}}}]
}`)

	g, err := Read(data, schema.Default())
	require.NoError(t, err)

	info, ok := g.Types.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "EXT_custom", info.Extension)

	d := g.Declarations[0]
	assert.Equal(t, schema.VideoExtension, d.Extension)
	assert.Equal(t, ir.TypeIndex(0), d.Inputs.ValueByKey("video").Type)
	assert.Nil(t, d.Outputs)

	n := g.Nodes[0]
	assert.Equal(t, schema.VideoExtension, n.Extension)
	assert.Equal(t, 4, n.Values.ValueByKey("video").Value)
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not an object", `[1, 2]`},
		{"declaration out of range", `{"declarations": [], "nodes": [{"declaration": 3}]}`},
		{"type without signature", `{"types": [{}]}`},
		{"wrong lane count", `{"types": [{"signature": "float2"}], "variables": [{"id": "v", "type": 0, "value": [1]}]}`},
		{"nodes not an array", `{"nodes": {}}`},
		{"bad integer", `{"declarations": [{"op": "event/onStart"}], "nodes": [{"declaration": "x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read([]byte(tt.data), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), err)
		})
	}
}
