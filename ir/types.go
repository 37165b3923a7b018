package ir

import "slices"

// TypeIndex identifies an entry of a graph's type table.
// It is the only thing ever serialized to denote a type.
type TypeIndex int

// UnknownType marks a type that could not be resolved.
const UnknownType TypeIndex = -1

// Type signatures supported by the interactivity extension.
const (
	SigBool     = "bool"
	SigInt      = "int"
	SigFloat    = "float"
	SigFloat2   = "float2"
	SigFloat3   = "float3"
	SigFloat4   = "float4"
	SigFloat4x4 = "float4x4"
	SigIntArray = "int[]"
)

// AllSignatures lists the built-in signatures in type table order.
var AllSignatures = []string{
	SigBool,
	SigInt,
	SigFloat,
	SigFloat2,
	SigFloat3,
	SigFloat4,
	SigFloat4x4,
	SigIntArray,
}

// TypeInfo is one entry of a type table.
type TypeInfo struct {
	// Signature is the serialized type name, e.g. "float3".
	Signature string

	// Extension is set when the type is contributed by a glTF extension.
	Extension string
}

// TypeTable is an ordered catalogue of value types. Signatures are unique.
type TypeTable struct {
	types []TypeInfo
	bySig map[string]TypeIndex
}

// NewTypeTable creates an empty type table.
func NewTypeTable() *TypeTable {
	return &TypeTable{
		types: make([]TypeInfo, 0, len(AllSignatures)),
		bySig: make(map[string]TypeIndex, len(AllSignatures)),
	}
}

// DefaultTypes returns a table holding every built-in signature.
func DefaultTypes() *TypeTable {
	t := NewTypeTable()
	for _, sig := range AllSignatures {
		t.Add(TypeInfo{Signature: sig})
	}
	return t
}

// Add returns the index of an existing entry with the same signature,
// or appends a new one.
func (t *TypeTable) Add(info TypeInfo) TypeIndex {
	if idx, ok := t.bySig[info.Signature]; ok {
		return idx
	}
	idx := TypeIndex(len(t.types))
	t.types = append(t.types, info)
	t.bySig[info.Signature] = idx
	return idx
}

// Index returns the index for a signature, or UnknownType.
func (t *TypeTable) Index(sig string) TypeIndex {
	if idx, ok := t.bySig[sig]; ok {
		return idx
	}
	return UnknownType
}

// Lookup finds a type by its index.
func (t *TypeTable) Lookup(idx TypeIndex) (TypeInfo, bool) {
	if idx < 0 || int(idx) >= len(t.types) {
		return TypeInfo{}, false
	}
	return t.types[idx], true
}

// Signature returns the signature at idx, or "" when idx is not valid.
func (t *TypeTable) Signature(idx TypeIndex) string {
	info, _ := t.Lookup(idx)
	return info.Signature
}

// Entries returns all entries in index order.
func (t *TypeTable) Entries() []TypeInfo {
	return t.types
}

// Len returns the number of entries.
func (t *TypeTable) Len() int {
	return len(t.types)
}

// TypeOf returns the index of the native type of a literal value.
func (t *TypeTable) TypeOf(v any) TypeIndex {
	sig := SignatureOf(v)
	if sig == "" {
		return UnknownType
	}
	return t.Index(sig)
}

// Compact builds a table containing only the used indices, in their
// original relative order. The returned map sends old indices to new ones.
// Indices outside the table are dropped from the result and the map.
func (t *TypeTable) Compact(used map[TypeIndex]bool) (*TypeTable, map[TypeIndex]TypeIndex) {
	order := make([]TypeIndex, 0, len(used))
	for idx, ok := range used {
		if ok {
			order = append(order, idx)
		}
	}
	slices.Sort(order)

	compacted := NewTypeTable()
	remap := make(map[TypeIndex]TypeIndex, len(order))
	for _, old := range order {
		info, ok := t.Lookup(old)
		if !ok {
			continue
		}
		remap[old] = compacted.Add(info)
	}
	return compacted, remap
}

// ComponentCount returns the number of float lanes of a signature.
func ComponentCount(sig string) int {
	switch sig {
	case SigFloat2:
		return 2
	case SigFloat3:
		return 3
	case SigFloat4:
		return 4
	case SigFloat4x4:
		return 16
	default:
		return 1
	}
}

// IsVector reports whether sig is one of float2, float3 or float4.
func IsVector(sig string) bool {
	return sig == SigFloat2 || sig == SigFloat3 || sig == SigFloat4
}

// PreferType picks the common type two sockets should share.
// Any vector beats a scalar, float beats int and int beats bool.
// It returns UnknownType when either side is unknown.
func (t *TypeTable) PreferType(a, b TypeIndex) TypeIndex {
	if a == UnknownType || b == UnknownType {
		return UnknownType
	}
	sa, sb := t.Signature(a), t.Signature(b)
	if sa == sb {
		return a
	}
	has := func(sig string) bool { return sa == sig || sb == sig }

	switch {
	case has(SigFloat4):
		return t.Index(SigFloat4)
	case has(SigFloat3):
		return t.Index(SigFloat3)
	case has(SigFloat2):
		return t.Index(SigFloat2)
	case has(SigInt) && has(SigFloat):
		return t.Index(SigFloat)
	case has(SigInt) && has(SigBool):
		return t.Index(SigInt)
	case has(SigFloat) && has(SigBool):
		return t.Index(SigFloat)
	}
	// unsupported mix, keep the first
	return a
}
