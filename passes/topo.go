package passes

import (
	"slices"

	"github.com/gogpu/khrgraph/ir"
)

// TopologicalSort renumbers nodes so every node follows the sources of
// its value inputs. Flow edges are ignored. The order is a depth-first
// post-order over the current node order, so it is stable across runs.
//
// A value cycle cannot be lowered and is reported as ErrValueCycle.
func TopologicalSort(ctx *Context) error {
	g := ctx.Graph
	order, err := valueOrder(g)
	if err != nil {
		return err
	}

	remap := make(map[int]int, len(order))
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
	}
	g.RemapNodeIndices(remap)
	for _, n := range g.Nodes {
		n.Index = remap[n.Index]
	}
	slices.SortFunc(g.Nodes, func(a, b *ir.Node) int { return a.Index - b.Index })
	return nil
}

// valueOrder returns old node indices in dependency order.
func valueOrder(g *ir.Graph) ([]int, error) {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make([]uint8, len(g.Nodes))
	order := make([]int, 0, len(g.Nodes))

	var visit func(idx int) error
	visit = func(idx int) error {
		switch state[idx] {
		case done:
			return nil
		case inProgress:
			return ir.NewNodeError(ir.ErrValueCycle, g.Nodes[idx], "value connections form a cycle through this node")
		}
		state[idx] = inProgress

		n := g.Nodes[idx]
		for _, dep := range dependencies(n) {
			if dep < 0 || dep >= len(g.Nodes) {
				return ir.NewNodeError(ir.ErrInvalidGraph, n, "value connection to node %d out of range", dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		state[idx] = done
		order = append(order, idx)
		return nil
	}

	for idx := range g.Nodes {
		if err := visit(idx); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// dependencies returns the distinct value sources of n in socket order,
// without self references.
func dependencies(n *ir.Node) []int {
	var deps []int
	for _, kv := range n.Values.Order {
		s := kv.Value
		if !s.Connected() || s.Node == n.Index || slices.Contains(deps, s.Node) {
			continue
		}
		deps = append(deps, s.Node)
	}
	return deps
}
