package passes

import "github.com/gogpu/khrgraph/ir"

// CompactTypes shrinks the type table to the types the graph uses and
// rewrites every stored type index to the new table.
//
// Used types come from variables, event values, declaration sockets,
// "type" configuration entries, literal sockets and fixed output types.
// Variables and literals without a type get the type of their value
// first. Indices outside the table are reported and become -1.
func CompactTypes(ctx *Context) {
	g := ctx.Graph
	used := make(map[ir.TypeIndex]bool)
	mark := func(n *ir.Node, socket string, t ir.TypeIndex) ir.TypeIndex {
		if t == ir.UnknownType {
			return t
		}
		if _, ok := g.Types.Lookup(t); !ok {
			ctx.Warn(ir.DiagInvalidType, n, socket, "type index %d outside the type table (%d entries)", t, g.Types.Len())
			return ir.UnknownType
		}
		used[t] = true
		return t
	}

	for _, v := range g.Variables {
		if v.Type == ir.UnknownType && v.Value != nil {
			v.Type = g.Types.TypeOf(v.Value)
		}
		v.Type = mark(nil, "", v.Type)
	}
	for _, e := range g.Events {
		for _, kv := range e.Values.Order {
			kv.Value.Type = mark(nil, kv.Key, kv.Value.Type)
		}
	}
	for _, d := range g.Declarations {
		for _, sockets := range declarationSockets(d) {
			for _, s := range sockets {
				s.Type = mark(nil, "", s.Type)
			}
		}
	}
	for _, n := range g.Nodes {
		if c, ok := n.Configuration.ValueByKeyTry(ir.ConfigType); ok {
			if t, isInt := c.Value.(int); isInt && t != -1 {
				c.Value = int(mark(n, ir.ConfigType, ir.TypeIndex(t)))
			}
		}
		for _, kv := range n.Values.Order {
			s := kv.Value
			if !s.HasLiteral() {
				continue
			}
			if s.Type == ir.UnknownType {
				s.Type = g.Types.TypeOf(s.Value)
			}
			s.Type = mark(n, kv.Key, s.Type)
		}
		for _, kv := range n.Outputs.Order {
			if e := kv.Value.Expected; e != nil && e.IsFixed() {
				e.Type = mark(n, kv.Key, e.Type)
			}
		}
	}

	before := g.Types.Len()
	table, remap := g.Types.Compact(used)
	to := func(t ir.TypeIndex) ir.TypeIndex {
		if nt, ok := remap[t]; ok {
			return nt
		}
		return ir.UnknownType
	}

	for _, v := range g.Variables {
		v.Type = to(v.Type)
	}
	for _, e := range g.Events {
		for _, kv := range e.Values.Order {
			kv.Value.Type = to(kv.Value.Type)
		}
	}
	for _, d := range g.Declarations {
		for _, sockets := range declarationSockets(d) {
			for _, s := range sockets {
				s.Type = to(s.Type)
			}
		}
	}
	for _, n := range g.Nodes {
		if c, ok := n.Configuration.ValueByKeyTry(ir.ConfigType); ok {
			if t, isInt := c.Value.(int); isInt && t != -1 {
				c.Value = int(to(ir.TypeIndex(t)))
			}
		}
		for _, kv := range n.Values.Order {
			s := kv.Value
			if s.HasLiteral() {
				s.Type = to(s.Type)
			} else {
				s.Type = ir.UnknownType
			}
		}
		for _, kv := range n.Outputs.Order {
			if e := kv.Value.Expected; e != nil && e.IsFixed() {
				e.Type = to(e.Type)
			}
		}
	}

	g.Types = table
	ctx.Logger.Debug("type table compacted", "before", before, "after", table.Len())
}

// declarationSockets returns the socket types of d as one slice per map.
func declarationSockets(d *ir.Declaration) [][]*ir.DeclarationSocket {
	var out [][]*ir.DeclarationSocket
	if d.Inputs != nil {
		out = append(out, d.Inputs.Values())
	}
	if d.Outputs != nil {
		out = append(out, d.Outputs.Values())
	}
	return out
}
