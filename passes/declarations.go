package passes

import (
	"cogentcore.org/core/base/ordmap"

	"github.com/gogpu/khrgraph/ir"
)

// CollectDeclarations rebuilds the declaration table and points every
// node at its declaration.
//
// Core operations share one declaration per operation name. Extension
// operations are also keyed by the resolved type of every input and
// output socket, so two instances with different socket types get
// separate declarations.
func CollectDeclarations(ctx *Context) {
	g := ctx.Graph
	g.Declarations = nil

	for _, n := range g.Nodes {
		d := &ir.Declaration{Op: n.Op, Extension: n.Extension}
		if n.Extension != "" {
			d.Inputs = declarationInputs(ctx, n)
			d.Outputs = declarationOutputs(ctx, n)
		}
		n.Declaration = findOrAddDeclaration(g, d)
	}
	ctx.Logger.Debug("declarations collected", "nodes", len(g.Nodes), "declarations", len(g.Declarations))
}

func declarationInputs(ctx *Context, n *ir.Node) *ordmap.Map[string, *ir.DeclarationSocket] {
	g := ctx.Graph
	sockets := ordmap.New[string, *ir.DeclarationSocket]()
	for _, kv := range n.Values.Order {
		t := g.InputType(n, kv.Key).TypeOrUnknown()
		if t == ir.UnknownType {
			t = restrictionType(ctx, n, kv.Key, kv.Value)
		}
		if t == ir.UnknownType {
			t = firstSupportedInput(g, n, kv.Key)
		}
		if t == ir.UnknownType {
			ctx.Warn(ir.DiagInvalidDeclaration, n, kv.Key, "declaration invalid: input type unresolved")
		}
		sockets.Add(kv.Key, &ir.DeclarationSocket{Type: t})
	}
	return sockets
}

func restrictionType(ctx *Context, n *ir.Node, socket string, s *ir.ValueSocket) ir.TypeIndex {
	r := s.Restriction
	switch {
	case r == nil:
		return ir.UnknownType
	case r.LimitTo != "":
		return ctx.Graph.Types.Index(r.LimitTo)
	case r.SameAs != "" && r.SameAs != socket:
		return ctx.Graph.InputType(n, r.SameAs).TypeOrUnknown()
	}
	return ir.UnknownType
}

func firstSupportedInput(g *ir.Graph, n *ir.Node, socket string) ir.TypeIndex {
	if n.Schema == nil {
		return ir.UnknownType
	}
	in, ok := n.Schema.InputValues.ValueByKeyTry(socket)
	if !ok || len(in.SupportedTypes) == 0 {
		return ir.UnknownType
	}
	return g.Types.Index(in.SupportedTypes[0])
}

func declarationOutputs(ctx *Context, n *ir.Node) *ordmap.Map[string, *ir.DeclarationSocket] {
	g := ctx.Graph
	sockets := ordmap.New[string, *ir.DeclarationSocket]()
	for _, kv := range n.Outputs.Order {
		t := g.OutputType(n, kv.Key).TypeOrUnknown()
		if t == ir.UnknownType && n.Schema != nil {
			if out, ok := n.Schema.OutputValues.ValueByKeyTry(kv.Key); ok && len(out.SupportedTypes) > 0 {
				t = g.Types.Index(out.SupportedTypes[0])
			}
		}
		if t == ir.UnknownType {
			ctx.Warn(ir.DiagInvalidDeclaration, n, kv.Key, "declaration invalid: output type unresolved")
		}
		sockets.Add(kv.Key, &ir.DeclarationSocket{Type: t})
	}
	return sockets
}

// findOrAddDeclaration returns the index of a declaration equal to d,
// appending d when there is none.
func findOrAddDeclaration(g *ir.Graph, d *ir.Declaration) int {
	for i, other := range g.Declarations {
		if sameDeclaration(other, d) {
			return i
		}
	}
	g.Declarations = append(g.Declarations, d)
	return len(g.Declarations) - 1
}

func sameDeclaration(a, b *ir.Declaration) bool {
	return a.Op == b.Op && a.Extension == b.Extension &&
		sameSockets(a.Inputs, b.Inputs) && sameSockets(a.Outputs, b.Outputs)
}

func sameSockets(a, b *ordmap.Map[string, *ir.DeclarationSocket]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Len() != b.Len() {
		return false
	}
	for i, kv := range a.Order {
		other := b.Order[i]
		if kv.Key != other.Key || kv.Value.Type != other.Value.Type {
			return false
		}
	}
	return true
}
