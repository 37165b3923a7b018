package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/khrgraph/ir"
)

func TestDefault_Shared(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.NotSame(t, Default(), NewRegistry())
}

func TestDefault_DefaultFlowSockets(t *testing.T) {
	reg := Default()
	for _, op := range []string{OpEventSend, OpDebugLog, OpVariableSet, OpPointerSet, OpVideoPlay} {
		s, ok := reg.Lookup(op)
		require.True(t, ok, op)
		assert.True(t, s.HasInputFlow(ir.FlowInDefault), op)
		assert.True(t, s.HasOutputFlow(ir.FlowOutDefault), op)
	}

	recv, ok := reg.Lookup(OpEventReceive)
	require.True(t, ok)
	assert.False(t, recv.HasInputFlow(ir.FlowInDefault))
	assert.True(t, recv.HasOutputFlow(ir.FlowOutDefault))
}

func TestDefault_ConversionOpsRegistered(t *testing.T) {
	reg := Default()
	scalars := []string{ir.SigBool, ir.SigInt, ir.SigFloat}
	for _, from := range scalars {
		for _, to := range append(scalars, ir.SigFloat2, ir.SigFloat3, ir.SigFloat4) {
			if from == to {
				continue
			}
			op := ConversionOp(from, to)
			require.NotEmpty(t, op, "%s -> %s", from, to)
			_, ok := reg.Lookup(op)
			assert.True(t, ok, op)
		}
	}
	assert.Empty(t, ConversionOp(ir.SigFloat4x4, ir.SigInt))
	assert.Equal(t, OpCombine3, ConversionOp(ir.SigFloat2, ir.SigFloat3))
}

func TestCombineAndExtractShapes(t *testing.T) {
	reg := Default()

	tests := []struct {
		sig   string
		lanes int
	}{
		{ir.SigFloat2, 2},
		{ir.SigFloat3, 3},
		{ir.SigFloat4, 4},
		{ir.SigFloat4x4, 16},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			c, ok := reg.Lookup(CombineOp(tt.sig))
			require.True(t, ok)
			assert.Equal(t, CombineInputs[:tt.lanes], c.InputValues.Keys())
			for _, in := range c.InputValues.Values() {
				require.NotNil(t, in.Restriction)
				assert.Equal(t, ir.SigFloat, in.Restriction.LimitTo)
			}
			out := c.OutputValues.ValueByKey(SocketValue)
			assert.Equal(t, tt.sig, out.Expected.Signature)

			e, ok := reg.Lookup(ExtractOp(tt.sig))
			require.True(t, ok)
			assert.Equal(t, tt.lanes, e.OutputValues.Len())
			assert.Equal(t, "0", e.OutputValues.KeyByIndex(0))
		})
	}
	assert.Empty(t, CombineOp(ir.SigInt))
	assert.Empty(t, ExtractOp(ir.SigBool))
}

func TestBinarySameRestrictions(t *testing.T) {
	s, ok := Default().Lookup(OpAdd)
	require.True(t, ok)

	a := s.InputValues.ValueByKey(SocketA)
	b := s.InputValues.ValueByKey(SocketB)
	assert.Equal(t, SocketB, a.Restriction.SameAs)
	assert.Equal(t, SocketA, b.Restriction.SameAs)
	assert.Equal(t, SocketA, s.OutputValues.ValueByKey(SocketValue).Expected.FromInput)
}

func TestVideoOpsAreExtensions(t *testing.T) {
	for _, op := range []string{OpVideoPlay, OpVideoPause, OpVideoState} {
		s, ok := Default().Lookup(op)
		require.True(t, ok)
		assert.Equal(t, VideoExtension, s.Extension)
	}
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(ir.NewOpSchema(OpAdd))
	var gerr *ir.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, ir.ErrDuplicateOp, gerr.Kind)
	assert.Equal(t, reg.Count(), len(reg.Ops()))
}
