package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

func echoRegistry() *ir.Registry {
	return ir.NewRegistry(
		ir.NewOpSchema("test/echo").
			WithExtension("EXT_echo").
			ValueIn("a", nil, ir.SigInt, ir.SigFloat).
			ValueOut("value", ir.FromInput("a")),
		ir.NewOpSchema(schema.OpOnStart).FlowOut(ir.FlowOutDefault),
	)
}

func TestCollectDeclarations_CoreOpsShareByName(t *testing.T) {
	g := newGraph()
	a := intSum(g, 1, 2)
	b := mustAdd(g, schema.OpAdd)
	g.SetValue(b, schema.SocketA, float32(1))
	start := mustAdd(g, schema.OpOnStart)

	CollectDeclarations(newContext(g))

	require.Len(t, g.Declarations, 2)
	assert.Equal(t, a.Declaration, b.Declaration)
	assert.Equal(t, 1, start.Declaration)
	assert.Equal(t, schema.OpAdd, g.Declarations[0].Op)
	assert.Nil(t, g.Declarations[0].Inputs)
	assert.Nil(t, g.Declarations[0].Outputs)
}

func TestCollectDeclarations_ExtensionKeyedByTypes(t *testing.T) {
	g := ir.NewGraph(echoRegistry())
	ints := mustAdd(g, "test/echo")
	floats := mustAdd(g, "test/echo")
	moreInts := mustAdd(g, "test/echo")
	g.SetValue(ints, "a", 1)
	g.SetValue(floats, "a", float32(1))
	g.SetValue(moreInts, "a", 7)

	ctx := newContext(g)
	CollectDeclarations(ctx)

	require.Len(t, g.Declarations, 2)
	assert.Equal(t, 0, ints.Declaration)
	assert.Equal(t, 1, floats.Declaration)
	assert.Equal(t, 0, moreInts.Declaration)

	d := g.Declarations[1]
	assert.Equal(t, "EXT_echo", d.Extension)
	assert.Equal(t, []string{"a"}, d.Inputs.Keys())
	assert.Equal(t, g.Types.Index(ir.SigFloat), d.Inputs.ValueByKey("a").Type)
	assert.Equal(t, g.Types.Index(ir.SigFloat), d.Outputs.ValueByKey("value").Type)
	assert.Empty(t, ctx.Diagnostics)
}

func TestCollectDeclarations_VideoPair(t *testing.T) {
	g := newGraph()
	first := mustAdd(g, schema.OpVideoPlay)
	second := mustAdd(g, schema.OpVideoPlay)
	g.SetValue(first, "video", 0)
	g.SetValue(second, "video", 1)
	g.SetValue(second, "playhead", float32(2))

	CollectDeclarations(newContext(g))

	require.Len(t, g.Declarations, 1)
	assert.Equal(t, first.Declaration, second.Declaration)
	d := g.Declarations[0]
	assert.Equal(t, schema.VideoExtension, d.Extension)
	assert.Equal(t, []string{"video", "playhead"}, d.Inputs.Keys())
	assert.Equal(t, g.Types.Index(ir.SigInt), d.Inputs.ValueByKey("video").Type)
	assert.Equal(t, g.Types.Index(ir.SigFloat), d.Inputs.ValueByKey("playhead").Type)
	assert.Equal(t, 0, d.Outputs.Len())
}

func TestCollectDeclarations_FallsBackToFirstSupportedType(t *testing.T) {
	g := ir.NewGraph(echoRegistry())
	n := mustAdd(g, "test/echo")
	n.Values.ValueByKey("a").Type = ir.UnknownType

	ctx := newContext(g)
	CollectDeclarations(ctx)

	d := g.Declarations[n.Declaration]
	assert.Equal(t, g.Types.Index(ir.SigInt), d.Inputs.ValueByKey("a").Type)
	assert.Empty(t, diagnosticsOf(ctx, ir.DiagInvalidDeclaration))
}

func TestCollectDeclarations_ReportsUnresolvedSocket(t *testing.T) {
	g := newGraph()
	n := g.AppendBareNode("custom/op", "EXT_custom")
	n.Value("x")

	ctx := newContext(g)
	CollectDeclarations(ctx)

	diags := diagnosticsOf(ctx, ir.DiagInvalidDeclaration)
	require.Len(t, diags, 1)
	assert.Equal(t, "x", diags[0].Socket)
	assert.Equal(t, ir.UnknownType, g.Declarations[0].Inputs.ValueByKey("x").Type)
}

func TestCollectDeclarations_Rebuilds(t *testing.T) {
	g := newGraph()
	n := mustAdd(g, schema.OpOnStart)
	ctx := newContext(g)

	CollectDeclarations(ctx)
	CollectDeclarations(ctx)

	assert.Len(t, g.Declarations, 1)
	assert.Equal(t, 0, n.Declaration)
}
