package passes

import (
	"errors"

	"github.com/gogpu/khrgraph/ir"
)

// CleanUp is one graph simplification run inside the clean-up fixpoint.
// It reports changes through the task.
type CleanUp interface {
	Name() string
	CleanUp(t *Task)
}

// Task is handed to each clean-up. It wraps the graph edits clean-ups
// need and tracks whether anything changed.
type Task struct {
	ctx     *Context
	changed bool
	removed int
}

// Graph returns the graph being cleaned.
func (t *Task) Graph() *ir.Graph {
	return t.ctx.Graph
}

// Context returns the compilation context.
func (t *Task) Context() *Context {
	return t.ctx
}

// MarkChanged records a change made directly on the graph.
func (t *Task) MarkChanged() {
	t.changed = true
}

// RemoveNode removes n. A removal of a still referenced node is refused
// and recorded as a diagnostic; it reports whether n was removed.
func (t *Task) RemoveNode(n *ir.Node) bool {
	err := t.ctx.Graph.RemoveNode(n)
	if err != nil {
		if errors.Is(err, &ir.Error{Kind: ir.ErrNodeReferenced}) {
			t.ctx.Warn(ir.DiagRemovalRefused, n, "", "%v", err)
		} else {
			t.ctx.Warn(ir.DiagRemovalRefused, n, "", "removal failed: %v", err)
		}
		return false
	}
	t.changed = true
	t.removed++
	return true
}

// BypassFlow makes every flow edge entering n at flowIn continue where
// n's flowOut socket points.
func (t *Task) BypassFlow(n *ir.Node, flowIn, flowOut string) {
	out, ok := n.Flows.ValueByKeyTry(flowOut)
	if !ok {
		return
	}
	for _, other := range t.ctx.Graph.Nodes {
		for _, kv := range other.Flows.Order {
			f := kv.Value
			if f.Node == n.Index && f.Socket == flowIn {
				f.Node = out.Node
				f.Socket = out.Socket
			}
		}
	}
	t.changed = true
}

// BypassValue makes every input reading n's valueOut read whatever feeds
// n's valueIn instead.
func (t *Task) BypassValue(n *ir.Node, valueIn, valueOut string) {
	in, ok := n.Values.ValueByKeyTry(valueIn)
	if !ok {
		return
	}
	for _, other := range t.ctx.Graph.Nodes {
		for _, kv := range other.Values.Order {
			s := kv.Value
			if s.Node == n.Index && s.Socket == valueOut {
				s.CopySource(in)
			}
		}
	}
	t.changed = true
}

// Redirect makes every input reading from node from read the same socket
// of node to.
func (t *Task) Redirect(from, to *ir.Node) {
	for _, other := range t.ctx.Graph.Nodes {
		for _, kv := range other.Values.Order {
			if kv.Value.Node == from.Index {
				kv.Value.Node = to.Index
				t.changed = true
			}
		}
	}
}

// DefaultCleanUps returns the clean-ups run by default, in order.
func DefaultCleanUps() []CleanUp {
	return []CleanUp{
		FoldConstantCombines{},
		FoldConstantMath{},
		DeduplicatePure{},
		DeduplicatePointerGets{},
		RemoveUnconnected{},
	}
}

// RunCleanUps applies the clean-ups until none of them changes the graph.
// It returns the number of removed nodes.
func RunCleanUps(ctx *Context, cleanUps ...CleanUp) int {
	removed := 0
	for i := 0; ; i++ {
		if i == ctx.maxIterations() {
			ctx.Warn(ir.DiagFixpointLimit, nil, "", "clean-up stopped after %d rounds", i)
			break
		}
		changed := false
		for _, c := range cleanUps {
			t := &Task{ctx: ctx}
			c.CleanUp(t)
			if t.changed {
				changed = true
				removed += t.removed
				ctx.Logger.Debug("clean-up applied", "cleanup", c.Name(), "removed", t.removed)
			}
		}
		if !changed {
			break
		}
	}
	return removed
}
