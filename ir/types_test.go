package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTable_Deduplication(t *testing.T) {
	table := NewTypeTable()

	a := table.Add(TypeInfo{Signature: SigFloat})
	b := table.Add(TypeInfo{Signature: SigFloat})

	assert.Equal(t, a, b)
	assert.Equal(t, 1, table.Len())
}

func TestTypeTable_DefaultOrder(t *testing.T) {
	table := DefaultTypes()

	require.Equal(t, len(AllSignatures), table.Len())
	for i, sig := range AllSignatures {
		assert.Equal(t, TypeIndex(i), table.Index(sig), sig)
		assert.Equal(t, sig, table.Signature(TypeIndex(i)))
	}
	assert.Equal(t, UnknownType, table.Index("float3x3"))
	assert.Equal(t, "", table.Signature(UnknownType))
}

func TestTypeTable_TypeOf(t *testing.T) {
	table := DefaultTypes()

	assert.Equal(t, table.Index(SigInt), table.TypeOf(3))
	assert.Equal(t, table.Index(SigFloat), table.TypeOf(float32(3)))
	assert.Equal(t, table.Index(SigIntArray), table.TypeOf([]int{1}))
	assert.Equal(t, UnknownType, table.TypeOf("text"))
	assert.Equal(t, UnknownType, table.TypeOf(nil))
}

func TestTypeTable_CompactPreservesOrder(t *testing.T) {
	table := DefaultTypes()
	table.Add(TypeInfo{Signature: "video", Extension: "GOOG_video"})

	used := map[TypeIndex]bool{
		table.Index("video"):   true,
		table.Index(SigInt):    true,
		table.Index(SigFloat3): true,
		42:                     true,
	}
	compacted, remap := table.Compact(used)

	require.Equal(t, 3, compacted.Len())
	assert.Equal(t, []TypeInfo{
		{Signature: SigInt},
		{Signature: SigFloat3},
		{Signature: "video", Extension: "GOOG_video"},
	}, compacted.Entries())
	assert.Equal(t, TypeIndex(0), remap[table.Index(SigInt)])
	assert.Equal(t, TypeIndex(1), remap[table.Index(SigFloat3)])
	assert.Equal(t, TypeIndex(2), remap[table.Index("video")])
	_, kept := remap[42]
	assert.False(t, kept)
}

func TestTypeTable_PreferType(t *testing.T) {
	table := DefaultTypes()
	idx := table.Index

	tests := []struct {
		a, b, want string
	}{
		{SigFloat, SigFloat, SigFloat},
		{SigInt, SigFloat, SigFloat},
		{SigFloat, SigInt, SigFloat},
		{SigBool, SigInt, SigInt},
		{SigBool, SigFloat, SigFloat},
		{SigFloat, SigFloat3, SigFloat3},
		{SigFloat2, SigFloat4, SigFloat4},
		{SigFloat3, SigFloat2, SigFloat3},
		{SigInt, SigFloat2, SigFloat2},
		{SigFloat4x4, SigIntArray, SigFloat4x4},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, idx(tt.want), table.PreferType(idx(tt.a), idx(tt.b)))
		})
	}

	assert.Equal(t, UnknownType, table.PreferType(UnknownType, idx(SigInt)))
}

func TestComponentCount(t *testing.T) {
	assert.Equal(t, 1, ComponentCount(SigFloat))
	assert.Equal(t, 2, ComponentCount(SigFloat2))
	assert.Equal(t, 3, ComponentCount(SigFloat3))
	assert.Equal(t, 4, ComponentCount(SigFloat4))
	assert.Equal(t, 16, ComponentCount(SigFloat4x4))
	assert.True(t, IsVector(SigFloat3))
	assert.False(t, IsVector(SigFloat4x4))
}
