package passes

import (
	"slices"

	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

// ResolveConversions makes every type-restricted input socket carry the
// type its restriction asks for. Literals are converted in place; other
// mismatches get conversion nodes spliced between the source and the
// socket. Unset restricted sockets receive a poison placeholder.
//
// The pass runs to a fixpoint over a worklist of dirty nodes: a changed
// node, everything downstream of it and every inserted node are checked
// again in the next round. It returns the number of inserted nodes.
func ResolveConversions(ctx *Context) int {
	g := ctx.Graph
	inserted := 0

	dirty := make([]int, len(g.Nodes))
	for i := range dirty {
		dirty[i] = i
	}

	reported := make(map[socketRef]bool)
	rounds := 0
	for len(dirty) > 0 {
		if rounds == ctx.maxIterations() {
			ctx.Warn(ir.DiagFixpointLimit, nil, "", "type conversion stopped after %d rounds with %d nodes pending", rounds, len(dirty))
			break
		}
		rounds++

		changed := make(map[int]bool)
		for _, idx := range dirty {
			n := g.Nodes[idx]
			for _, key := range n.Values.Keys() {
				c, added := resolveSocket(ctx, n, key, reported)
				if !c {
					continue
				}
				changed[n.Index] = true
				for _, a := range added {
					changed[a.Index] = true
				}
				inserted += len(added)
			}
		}
		dirty = downstream(g, changed)
	}

	reportUnresolved(ctx)
	ctx.Logger.Debug("type conversion finished", "rounds", rounds, "inserted", inserted)
	return inserted
}

// socketRef names one input socket of one node.
type socketRef struct {
	node   int
	socket string
}

// resolveSocket fixes one input socket. It reports whether the graph
// changed and which nodes were appended. A socket with no conversion is
// reported once; reported remembers which ones already were.
func resolveSocket(ctx *Context, n *ir.Node, key string, reported map[socketRef]bool) (bool, []*ir.Node) {
	g := ctx.Graph
	s := n.Values.ValueByKey(key)
	r := s.Restriction
	if r == nil {
		return false, nil
	}

	changed := false
	if !s.Connected() && s.Value == nil {
		changed = fillPoison(g, n, s)
	}

	valueType := g.InputType(n, key)
	if !valueType.OK() {
		return changed, nil
	}

	var want ir.TypeIndex
	switch {
	case r.LimitTo != "":
		want = g.Types.Index(r.LimitTo)
		if want == ir.UnknownType || want == valueType.Type {
			return changed, nil
		}

	case r.SameAs != "":
		other := g.InputType(n, r.SameAs)
		if !other.OK() || other.Type == valueType.Type {
			return changed, nil
		}
		want = g.Types.PreferType(valueType.Type, other.Type)
		if want == ir.UnknownType || want == valueType.Type {
			return changed, nil
		}

	default:
		return changed, nil
	}

	if s.HasLiteral() {
		if v, ok := ir.ConvertValue(s.Value, ctx.sig(want)); ok {
			s.SetLiteral(v, want)
			return true, nil
		}
	}

	added := insertConversion(ctx, n, key, valueType.Type, want)
	if len(added) == 0 {
		ref := socketRef{n.Index, key}
		if reported[ref] {
			return changed, nil
		}
		reported[ref] = true
		ctx.Warn(ir.DiagNoConversion, n, key, "no conversion from %s to %s", ctx.sig(valueType.Type), ctx.sig(want))
		return changed, nil
	}
	return true, added
}

// fillPoison gives an unset restricted socket the placeholder value of
// the type it is bound to.
func fillPoison(g *ir.Graph, n *ir.Node, s *ir.ValueSocket) bool {
	t := ir.UnknownType
	switch {
	case s.Restriction.LimitTo != "":
		t = g.Types.Index(s.Restriction.LimitTo)
	case s.Restriction.SameAs != "":
		t = g.InputType(n, s.Restriction.SameAs).TypeOrUnknown()
	}
	if t == ir.UnknownType {
		return false
	}
	v := ir.NullValue(g.Types.Signature(t))
	if v == nil {
		return false
	}
	s.SetLiteral(v, t)
	return true
}

// insertConversion splices conversion nodes between the current source of
// n's socket and the socket itself. Scalar pairs use one single-input
// conversion node, a scalar widens into a vector through a combine node
// reading the scalar on every lane, and vectors of different width go
// through an extract node feeding a combine node with zero-filled lanes.
func insertConversion(ctx *Context, n *ir.Node, key string, from, to ir.TypeIndex) []*ir.Node {
	g := ctx.Graph
	fromSig, toSig := ctx.sig(from), ctx.sig(to)
	if fromSig == toSig || g.Registry == nil {
		return nil
	}

	op := schema.ConversionOp(fromSig, toSig)
	if op == "" {
		return nil
	}
	convSchema, ok := g.Registry.Lookup(op)
	if !ok || convSchema.InputValues.Len() == 0 {
		return nil
	}
	target := n.Value(key)

	if convSchema.InputValues.Len() == 1 {
		conv := g.AppendNode(convSchema)
		conv.Value(convSchema.InputValues.KeyByIndex(0)).CopySource(target)
		target.Connect(conv.Index, schema.SocketValue)
		return []*ir.Node{conv}
	}

	fromCount := ir.ComponentCount(fromSig)
	switch {
	case fromCount == 1 && isScalar(fromSig):
		conv := g.AppendNode(convSchema)
		for _, kv := range conv.Values.Order {
			kv.Value.CopySource(target)
		}
		target.Connect(conv.Index, schema.SocketValue)
		return []*ir.Node{conv}

	case ir.IsVector(fromSig):
		extractSchema, ok := g.Registry.Lookup(schema.ExtractOp(fromSig))
		if !ok {
			return nil
		}
		conv := g.AppendNode(convSchema)
		extract := g.AppendNode(extractSchema)
		extract.Value(schema.SocketA).CopySource(target)

		floatType := g.Types.Index(ir.SigFloat)
		for i, kv := range conv.Values.Order {
			if i < fromCount {
				kv.Value.Connect(extract.Index, schema.ExtractOutput(i))
			} else {
				kv.Value.SetLiteral(float32(0), floatType)
			}
		}
		target.Connect(conv.Index, schema.SocketValue)
		return []*ir.Node{conv, extract}
	}
	return nil
}

func isScalar(sig string) bool {
	return sig == ir.SigBool || sig == ir.SigInt || sig == ir.SigFloat
}

// downstream returns, sorted, the changed nodes plus every node that
// reads from them directly or transitively.
func downstream(g *ir.Graph, changed map[int]bool) []int {
	if len(changed) == 0 {
		return nil
	}
	readers := make(map[int][]int)
	for _, n := range g.Nodes {
		for _, dep := range dependencies(n) {
			readers[dep] = append(readers[dep], n.Index)
		}
	}

	seen := make(map[int]bool, len(changed))
	var stack []int
	for idx := range changed {
		seen[idx] = true
		stack = append(stack, idx)
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, r := range readers[idx] {
			if !seen[r] {
				seen[r] = true
				stack = append(stack, r)
			}
		}
	}

	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// reportUnresolved records restricted sockets whose type is still unknown.
func reportUnresolved(ctx *Context) {
	g := ctx.Graph
	for _, n := range g.Nodes {
		for _, kv := range n.Values.Order {
			if kv.Value.Restriction == nil {
				continue
			}
			if res := g.InputType(n, kv.Key); !res.OK() {
				ctx.Warn(ir.DiagUnresolvedType, n, kv.Key, "type could not be resolved (%s)", res.State)
			}
		}
	}
}
