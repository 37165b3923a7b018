package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

func TestCycleEventID(t *testing.T) {
	assert.Equal(t, "CyclicDependency1from2", CycleEventID(1, 2))
}

func TestBreakFlowCycles_TwoNodeLoop(t *testing.T) {
	g := newGraph()
	start := mustAdd(g, schema.OpOnStart)
	x := mustAdd(g, schema.OpDebugLog)
	y := mustAdd(g, schema.OpDebugLog)
	start.ConnectFlow(ir.FlowOutDefault, x, ir.FlowInDefault)
	x.ConnectFlow(ir.FlowOutDefault, y, ir.FlowInDefault)
	y.ConnectFlow(ir.FlowOutDefault, x, ir.FlowInDefault)

	ctx := newContext(g)
	broken, err := BreakFlowCycles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, broken)

	require.Len(t, g.Events, 1)
	assert.Equal(t, CycleEventID(x.Index, y.Index), g.Events[0].ID)
	assert.Equal(t, 0, g.Events[0].Values.Len())

	require.Len(t, g.Nodes, 5)
	send, receive := g.Nodes[3], g.Nodes[4]
	assert.Equal(t, schema.OpEventSend, send.Op)
	assert.Equal(t, schema.OpEventReceive, receive.Op)
	assert.Equal(t, 0, send.Config(ir.ConfigEvent))
	assert.Equal(t, 0, receive.Config(ir.ConfigEvent))

	yOut := y.Flow(ir.FlowOutDefault)
	assert.Equal(t, send.Index, yOut.Node)
	assert.Equal(t, ir.FlowInDefault, yOut.Socket)

	recvOut := receive.Flow(ir.FlowOutDefault)
	assert.Equal(t, x.Index, recvOut.Node)
	assert.Equal(t, ir.FlowInDefault, recvOut.Socket)

	assert.False(t, send.Flow(ir.FlowOutDefault).Connected())
	assert.Nil(t, findFlowCycle(g))
	assert.Empty(t, diagnosticsOf(ctx, ir.DiagFlowCycle))
}

func TestBreakFlowCycles_SelfLoop(t *testing.T) {
	g := newGraph()
	x := mustAdd(g, schema.OpDebugLog)
	x.ConnectFlow(ir.FlowOutDefault, x, ir.FlowInDefault)

	broken, err := BreakFlowCycles(newContext(g))
	require.NoError(t, err)
	assert.Equal(t, 1, broken)
	assert.Equal(t, CycleEventID(0, 0), g.Events[0].ID)
	assert.Nil(t, findFlowCycle(g))
}

func TestBreakFlowCycles_Acyclic(t *testing.T) {
	g := newGraph()
	start := mustAdd(g, schema.OpOnStart)
	seq := mustAdd(g, schema.OpSequence)
	a := mustAdd(g, schema.OpDebugLog)
	b := mustAdd(g, schema.OpDebugLog)
	start.ConnectFlow(ir.FlowOutDefault, seq, ir.FlowInDefault)
	seq.ConnectFlow("0", a, ir.FlowInDefault)
	seq.ConnectFlow("1", b, ir.FlowInDefault)
	a.ConnectFlow(ir.FlowOutDefault, b, ir.FlowInDefault)

	broken, err := BreakFlowCycles(newContext(g))
	require.NoError(t, err)
	assert.Equal(t, 0, broken)
	assert.Empty(t, g.Events)
	assert.Len(t, g.Nodes, 4)
}

func TestBreakFlowCycles_ReusesEventForSameEdge(t *testing.T) {
	g := newGraph()
	x := mustAdd(g, schema.OpDebugLog)
	y := mustAdd(g, schema.OpDebugLog)
	x.ConnectFlow(ir.FlowOutDefault, y, ir.FlowInDefault)
	y.ConnectFlow(ir.FlowOutDefault, x, ir.FlowInDefault)
	g.AddEvent(CycleEventID(x.Index, y.Index), nil)

	_, err := BreakFlowCycles(newContext(g))
	require.NoError(t, err)
	assert.Len(t, g.Events, 1)
}

func TestBreakFlowCycles_NoRegistry(t *testing.T) {
	g := ir.NewGraph(nil)
	x := g.AppendNode(ir.NewOpSchema("custom/loop").FlowIn(ir.FlowInDefault).FlowOut(ir.FlowOutDefault))
	x.ConnectFlow(ir.FlowOutDefault, x, ir.FlowInDefault)

	_, err := BreakFlowCycles(newContext(g))
	require.Error(t, err)
}
