package passes

import (
	"fmt"

	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

// CycleEventID names the custom event that replaces the flow edge from
// node from to node to.
func CycleEventID(to, from int) string {
	return fmt.Sprintf("CyclicDependency%dfrom%d", to, from)
}

// BreakFlowCycles removes cycles from the flow graph. Each back edge
// u -> v found by a depth-first search is rerouted through a custom
// event: u now triggers an event/send node, and a new event/receive node
// continues at v's original socket.
//
// The search runs once over the nodes present when the pass starts and
// is followed by a verification search over the whole graph. It returns
// the number of edges broken.
func BreakFlowCycles(ctx *Context) (int, error) {
	g := ctx.Graph
	limit := len(g.Nodes)

	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]uint8, limit)
	broken := 0

	var visit func(u int) error
	visit = func(u int) error {
		state[u] = onStack
		n := g.Nodes[u]
		for _, kv := range n.Flows.Order {
			f := kv.Value
			if !f.Connected() || f.Node >= limit {
				continue
			}
			switch state[f.Node] {
			case onStack:
				if err := rerouteThroughEvent(ctx, n, f); err != nil {
					return err
				}
				broken++
			case unvisited:
				if err := visit(f.Node); err != nil {
					return err
				}
			}
		}
		state[u] = done
		return nil
	}

	for u := 0; u < limit; u++ {
		if state[u] == unvisited {
			if err := visit(u); err != nil {
				return broken, err
			}
		}
	}

	if n := findFlowCycle(g); n != nil {
		ctx.Warn(ir.DiagFlowCycle, n, "", "flow cycle remains after cycle breaking")
	}
	if broken > 0 {
		ctx.Logger.Debug("flow cycles broken", "edges", broken)
	}
	return broken, nil
}

// rerouteThroughEvent replaces the flow edge f of node from with an
// event/send, event/receive pair.
func rerouteThroughEvent(ctx *Context, from *ir.Node, f *ir.FlowSocket) error {
	g := ctx.Graph
	if g.Registry == nil {
		return ir.NewError(ir.ErrUnknownOp, schema.OpEventSend, "graph has no registry")
	}
	to, toSocket := f.Node, f.Socket
	event := g.AddEvent(CycleEventID(to, from.Index), nil)

	send, err := g.AddNode(schema.OpEventSend)
	if err != nil {
		return err
	}
	sendIn, err := send.FlowIn()
	if err != nil {
		return err
	}
	receive, err := g.AddNode(schema.OpEventReceive)
	if err != nil {
		return err
	}
	receiveOut, err := receive.FlowOut()
	if err != nil {
		return err
	}

	send.SetConfig(ir.ConfigEvent, event)
	receive.SetConfig(ir.ConfigEvent, event)

	receiveOut.Node = to
	receiveOut.Socket = toSocket
	f.Node = send.Index
	f.Socket = sendIn
	return nil
}

// findFlowCycle returns a node on a flow cycle, or nil.
func findFlowCycle(g *ir.Graph) *ir.Node {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]uint8, len(g.Nodes))

	var visit func(u int) *ir.Node
	visit = func(u int) *ir.Node {
		state[u] = onStack
		for _, kv := range g.Nodes[u].Flows.Order {
			f := kv.Value
			if !f.Connected() || f.Node < 0 || f.Node >= len(g.Nodes) {
				continue
			}
			switch state[f.Node] {
			case onStack:
				return g.Nodes[f.Node]
			case unvisited:
				if n := visit(f.Node); n != nil {
					return n
				}
			}
		}
		state[u] = done
		return nil
	}

	for u := range g.Nodes {
		if state[u] == unvisited {
			if n := visit(u); n != nil {
				return n
			}
		}
	}
	return nil
}
