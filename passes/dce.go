package passes

import "github.com/gogpu/khrgraph/ir"

// RemoveUnconnected removes nodes that are neither the source nor the
// target of any flow or value edge.
type RemoveUnconnected struct{}

// Name implements CleanUp.
func (RemoveUnconnected) Name() string { return "remove-unconnected" }

// CleanUp implements CleanUp.
func (RemoveUnconnected) CleanUp(t *Task) {
	g := t.Graph()
	live := make(map[int]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		for _, kv := range n.Values.Order {
			if kv.Value.Connected() {
				live[kv.Value.Node] = true
				live[n.Index] = true
			}
		}
		for _, kv := range n.Flows.Order {
			if kv.Value.Connected() {
				live[kv.Value.Node] = true
				live[n.Index] = true
			}
		}
	}

	var dead []*ir.Node
	for _, n := range g.Nodes {
		if !live[n.Index] {
			dead = append(dead, n)
		}
	}
	for _, n := range dead {
		t.RemoveNode(n)
	}
}

// RemoveUnconnectedNodes runs RemoveUnconnected to a fixpoint and returns
// the number of removed nodes.
func RemoveUnconnectedNodes(ctx *Context) int {
	return RunCleanUps(ctx, RemoveUnconnected{})
}
