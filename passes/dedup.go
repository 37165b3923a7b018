package passes

import (
	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

// DeduplicatePure merges nodes that compute the same value: same
// operation, same inputs, no flow sockets and no configuration. Readers
// of a duplicate are rewired to the node kept.
type DeduplicatePure struct{}

// Name implements CleanUp.
func (DeduplicatePure) Name() string { return "deduplicate-pure" }

// CleanUp implements CleanUp.
func (DeduplicatePure) CleanUp(t *Task) {
	nodes := append([]*ir.Node(nil), t.Graph().Nodes...)
	removed := make(map[*ir.Node]bool)

	for _, n := range nodes {
		if removed[n] || !isPure(n) {
			continue
		}
		for _, dup := range nodes {
			if dup == n || removed[dup] || !sameComputation(n, dup) {
				continue
			}
			t.Redirect(dup, n)
			if t.RemoveNode(dup) {
				removed[dup] = true
			}
		}
	}
}

func isPure(n *ir.Node) bool {
	if n.Values.Len() == 0 || n.Flows.Len() > 0 || n.Configuration.Len() > 0 {
		return false
	}
	return n.Schema == nil || len(n.Schema.InputFlows) == 0
}

func sameComputation(a, b *ir.Node) bool {
	if a.Op != b.Op || a.Extension != b.Extension ||
		a.Values.Len() != b.Values.Len() || a.Outputs.Len() != b.Outputs.Len() ||
		b.Flows.Len() > 0 || b.Configuration.Len() > 0 {
		return false
	}
	for _, kv := range a.Values.Order {
		other, ok := b.Values.ValueByKeyTry(kv.Key)
		if !ok {
			return false
		}
		s := kv.Value
		if s.Node != other.Node || s.Socket != other.Socket {
			return false
		}
		// a node reading itself is never merged
		if s.Node == a.Index || s.Node == b.Index {
			return false
		}
		if s.Type != other.Type || !ir.ValuesEqual(s.Value, other.Value) {
			return false
		}
	}
	return true
}

// DeduplicatePointerGets merges pointer/get nodes reading the same
// pointer template, type and single template input. Inputs match when
// they read the same output socket or hold equal literals.
type DeduplicatePointerGets struct{}

// Name implements CleanUp.
func (DeduplicatePointerGets) Name() string { return "deduplicate-pointer-gets" }

// CleanUp implements CleanUp.
func (DeduplicatePointerGets) CleanUp(t *Task) {
	nodes := append([]*ir.Node(nil), t.Graph().Nodes...)
	removed := make(map[*ir.Node]bool)

	for _, n := range nodes {
		if removed[n] || !isPointerGet(n) {
			continue
		}
		for _, dup := range nodes {
			if dup == n || removed[dup] || !isPointerGet(dup) || !samePointerRead(n, dup) {
				continue
			}
			t.Redirect(dup, n)
			if t.RemoveNode(dup) {
				removed[dup] = true
			}
		}
	}
}

func isPointerGet(n *ir.Node) bool {
	return n.Op == schema.OpPointerGet && n.Values.Len() == 1 && n.Flows.Len() == 0
}

func samePointerRead(a, b *ir.Node) bool {
	pa, ok := a.Config(schema.ConfigPointer).(string)
	if !ok || pa != b.Config(schema.ConfigPointer) {
		return false
	}
	if !ir.ValuesEqual(a.Config(ir.ConfigType), b.Config(ir.ConfigType)) {
		return false
	}
	key := a.Values.KeyByIndex(0)
	other, ok := b.Values.ValueByKeyTry(key)
	if !ok {
		return false
	}
	s := a.Values.ValueByIndex(0)
	switch {
	case s.Connected() && other.Connected():
		return s.Node == other.Node && s.Socket == other.Socket &&
			s.Node != a.Index && s.Node != b.Index
	case s.HasLiteral() && other.HasLiteral():
		return ir.ValuesEqual(s.Value, other.Value)
	}
	return false
}
