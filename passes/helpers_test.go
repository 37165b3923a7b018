package passes

import (
	"io"
	"log/slog"

	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

func newGraph() *ir.Graph {
	return ir.NewGraph(schema.Default())
}

func newContext(g *ir.Graph) *Context {
	return NewContext(g, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustAdd(g *ir.Graph, op string) *ir.Node {
	n, err := g.AddNode(op)
	if err != nil {
		panic(err)
	}
	return n
}

func diagnosticsOf(ctx *Context, kind ir.DiagnosticKind) []ir.Diagnostic {
	var out []ir.Diagnostic
	for _, d := range ctx.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// intSum adds a math/add node with two int literals.
func intSum(g *ir.Graph, a, b int) *ir.Node {
	n := mustAdd(g, schema.OpAdd)
	g.SetValue(n, schema.SocketA, a)
	g.SetValue(n, schema.SocketB, b)
	return n
}
