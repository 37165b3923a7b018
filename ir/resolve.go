package ir

import "fmt"

// ResolveState tags the outcome of a type resolution.
type ResolveState uint8

const (
	// Unknown means no rule produced a type.
	Unknown ResolveState = iota

	// Resolved means Type holds the effective type.
	Resolved

	// CycleDetected means resolution reached a socket that was already
	// being resolved further up the chain.
	CycleDetected
)

// String returns the state name.
func (s ResolveState) String() string {
	switch s {
	case Resolved:
		return "Resolved"
	case CycleDetected:
		return "CycleDetected"
	default:
		return "Unknown"
	}
}

// Resolution is the tagged result of resolving a socket's type.
type Resolution struct {
	State ResolveState
	Type  TypeIndex
}

// OK reports whether the resolution produced a type.
func (r Resolution) OK() bool {
	return r.State == Resolved
}

// TypeOrUnknown returns the resolved type, or UnknownType.
func (r Resolution) TypeOrUnknown() TypeIndex {
	if r.State == Resolved {
		return r.Type
	}
	return UnknownType
}

func (r Resolution) String() string {
	if r.State == Resolved {
		return fmt.Sprintf("Resolved(%d)", r.Type)
	}
	return r.State.String()
}

func resolved(t TypeIndex) Resolution {
	if t == UnknownType {
		return Resolution{State: Unknown, Type: UnknownType}
	}
	return Resolution{State: Resolved, Type: t}
}

var (
	unknown       = Resolution{State: Unknown, Type: UnknownType}
	cycleDetected = Resolution{State: CycleDetected, Type: UnknownType}
)

type socketKey struct {
	node   int
	socket string
}

type color uint8

const (
	white color = iota
	grey
	black
)

// resolver walks socket dependencies with a colour map so a reference
// cycle terminates with CycleDetected instead of recursing forever.
type resolver struct {
	g      *Graph
	colors map[socketKey]color
	memo   map[socketKey]Resolution
}

func newResolver(g *Graph) *resolver {
	return &resolver{
		g:      g,
		colors: make(map[socketKey]color),
		memo:   make(map[socketKey]Resolution),
	}
}

// InputType resolves the effective type of an input value socket.
//
// The rules are tried in order: a literal whose declared type matches its
// native type; the type of the connected source output; the socket's
// restriction; the literal's native type; the socket's declared type.
func (g *Graph) InputType(n *Node, socket string) Resolution {
	return newResolver(g).input(n, socket)
}

// OutputType resolves the type an output value socket produces.
func (g *Graph) OutputType(n *Node, socket string) Resolution {
	return newResolver(g).output(n, socket)
}

func (r *resolver) input(n *Node, socket string) Resolution {
	s, ok := n.Values.ValueByKeyTry(socket)
	if !ok {
		return unknown
	}
	key := socketKey{n.Index, socket}
	switch r.colors[key] {
	case grey:
		return cycleDetected
	case black:
		return r.memo[key]
	}
	r.colors[key] = grey
	res := r.inputRules(n, s)
	r.colors[key] = black
	r.memo[key] = res
	return res
}

func (r *resolver) inputRules(n *Node, s *ValueSocket) Resolution {
	types := r.g.Types

	if s.Type != UnknownType && s.Value != nil && types.TypeOf(s.Value) == s.Type {
		return resolved(s.Type)
	}

	if s.Connected() {
		if s.Node < 0 || s.Node >= len(r.g.Nodes) {
			return unknown
		}
		return r.output(r.g.Nodes[s.Node], s.Socket)
	}

	cycle := false
	if rs := s.Restriction; rs != nil {
		if rs.LimitTo != "" {
			return resolved(types.Index(rs.LimitTo))
		}
		if rs.SameAs != "" {
			res := r.input(n, rs.SameAs)
			if res.OK() {
				return res
			}
			cycle = res.State == CycleDetected
		}
	}

	var res Resolution
	if s.Value != nil {
		res = resolved(types.TypeOf(s.Value))
	} else {
		res = resolved(s.Type)
	}
	if !res.OK() && cycle {
		return cycleDetected
	}
	return res
}

func (r *resolver) output(n *Node, socket string) Resolution {
	o, ok := n.Outputs.ValueByKeyTry(socket)
	if !ok || o.Expected == nil {
		return unknown
	}
	if o.Expected.IsFixed() {
		return resolved(o.Expected.Type)
	}
	return r.input(n, o.Expected.FromInput)
}
