// Package passes implements the compiler passes that lower a behavior
// graph into its serializable form.
//
// Every pass mutates the graph in place. Recoverable problems are logged
// and recorded as diagnostics on the Context; only structural failures
// are returned as errors.
package passes

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/khrgraph/ir"
)

// DefaultMaxIterations bounds every fixpoint loop.
const DefaultMaxIterations = 64

// Context carries the graph and the shared state of one compilation.
type Context struct {
	Graph  *ir.Graph
	Logger *slog.Logger

	// MaxIterations bounds fixpoint loops. Zero means DefaultMaxIterations.
	MaxIterations int

	Diagnostics []ir.Diagnostic
}

// NewContext creates a context for g. A nil logger uses slog.Default().
func NewContext(g *ir.Graph, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{Graph: g, Logger: logger, MaxIterations: DefaultMaxIterations}
}

func (c *Context) maxIterations() int {
	if c.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

// Warn logs a recoverable problem and records it as a diagnostic.
func (c *Context) Warn(kind ir.DiagnosticKind, n *ir.Node, socket, format string, args ...any) {
	d := ir.Diagnostic{Kind: kind, Node: -1, Socket: socket, Message: fmt.Sprintf(format, args...)}
	attrs := []any{"kind", kind.String()}
	if n != nil {
		d.Node = n.Index
		d.Op = n.Op
		attrs = append(attrs, "node", n.Index, "op", n.Op)
	}
	if socket != "" {
		attrs = append(attrs, "socket", socket)
	}
	c.Diagnostics = append(c.Diagnostics, d)
	c.Logger.Warn(d.Message, attrs...)
}

// sig returns the signature of t in the graph's type table.
func (c *Context) sig(t ir.TypeIndex) string {
	return c.Graph.Types.Signature(t)
}
