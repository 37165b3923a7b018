package ir

import "cogentcore.org/core/base/ordmap"

// NoNode marks a socket without a connection.
const NoNode = -1

// Graph is a behavior graph: nodes plus the graph-scope tables they
// reference by index.
type Graph struct {
	// Types is the type table. Every TypeIndex in the graph points into it.
	Types *TypeTable

	// Nodes is dense: Nodes[i].Index == i.
	Nodes []*Node

	// Variables holds graph-scope variables.
	Variables []*Variable

	// Events holds custom events that can be sent and received.
	Events []*CustomEvent

	// Declarations is the deduplicated opcode table.
	Declarations []*Declaration

	// Registry describes the operations nodes are created from.
	Registry *Registry
}

// Node is one operation instance.
type Node struct {
	Index     int
	Op        string
	Extension string

	// Schema is nil for nodes read back from serialized form with an
	// operation the registry does not know.
	Schema *OpSchema

	// Declaration is the index into Graph.Declarations, or -1.
	Declaration int

	Configuration *ordmap.Map[string, *ConfigValue]
	Flows         *ordmap.Map[string, *FlowSocket]
	Values        *ordmap.Map[string, *ValueSocket]
	Outputs       *ordmap.Map[string, *OutputSocket]
}

// ConfigValue is a configuration literal.
type ConfigValue struct {
	Value any
}

// FlowSocket is an outgoing flow edge. Node is NoNode when unconnected.
type FlowSocket struct {
	Node   int
	Socket string
}

// Connected reports whether the flow socket has a target.
func (f *FlowSocket) Connected() bool {
	return f.Node != NoNode
}

// ValueSocket is an input value socket: either a literal (Value, Type)
// or a connection (Node, Socket), never both.
type ValueSocket struct {
	Node   int
	Socket string

	Value any
	Type  TypeIndex

	// Restriction is only used during type resolution and never serialized.
	Restriction *TypeRestriction
}

// Connected reports whether the socket reads from another node.
func (v *ValueSocket) Connected() bool {
	return v.Node != NoNode
}

// HasLiteral reports whether the socket holds a literal.
func (v *ValueSocket) HasLiteral() bool {
	return v.Node == NoNode && v.Value != nil
}

// SetLiteral stores a literal and clears any connection.
func (v *ValueSocket) SetLiteral(value any, t TypeIndex) {
	v.Node = NoNode
	v.Socket = ""
	v.Value = value
	v.Type = t
}

// Connect reads the socket from a node output and clears any literal.
func (v *ValueSocket) Connect(node int, socket string) {
	v.Node = node
	v.Socket = socket
	v.Value = nil
	v.Type = UnknownType
}

// CopySource copies the value source (connection or literal) of other.
func (v *ValueSocket) CopySource(other *ValueSocket) {
	v.Node = other.Node
	v.Socket = other.Socket
	v.Value = other.Value
	v.Type = other.Type
}

// ExpectedType is how an output socket's type is derived on a node:
// a fixed type index, or the type of a named input socket.
type ExpectedType struct {
	Type      TypeIndex
	FromInput string
}

// IsFixed reports whether the expected type is a fixed type index.
func (e *ExpectedType) IsFixed() bool {
	return e.FromInput == ""
}

// OutputSocket is an output value socket. It carries no literal.
type OutputSocket struct {
	Expected *ExpectedType
}

// Variable is a graph-scope variable.
type Variable struct {
	ID    string
	Type  TypeIndex
	Value any
}

// EventValue is one typed value carried by a custom event.
type EventValue struct {
	Type  TypeIndex
	Value any
}

// CustomEvent is an event that nodes can send and receive.
type CustomEvent struct {
	ID     string
	Values *ordmap.Map[string, *EventValue]
}

// DeclarationSocket is a typed socket of a declaration.
type DeclarationSocket struct {
	Type TypeIndex
}

// Declaration is a deduplicated instruction signature. Socket maps are
// only set for extension operations.
type Declaration struct {
	Op        string
	Extension string
	Inputs    *ordmap.Map[string, *DeclarationSocket]
	Outputs   *ordmap.Map[string, *DeclarationSocket]
}

// IDResolver maps a reference to an object owned by the host scene, such
// as a node or a material, to the integer index a graph literal stores.
type IDResolver interface {
	ResolveID(ref string) (int, bool)
}

// IDMap is an IDResolver backed by a map.
type IDMap map[string]int

// ResolveID implements IDResolver.
func (m IDMap) ResolveID(ref string) (int, bool) {
	idx, ok := m[ref]
	return idx, ok
}

// NewGraph creates an empty graph with the default type table.
func NewGraph(reg *Registry) *Graph {
	return &Graph{
		Types:    DefaultTypes(),
		Registry: reg,
	}
}

// AddVariable returns the index of the variable with id, adding it when
// it does not exist yet. It returns -1 for an unknown type.
func (g *Graph) AddVariable(id string, value any, t TypeIndex) int {
	if t == UnknownType {
		return -1
	}
	for i, v := range g.Variables {
		if v.ID == id {
			return i
		}
	}
	g.Variables = append(g.Variables, &Variable{ID: id, Type: t, Value: value})
	return len(g.Variables) - 1
}

// VariableIndex returns the index of the variable with id, or -1.
func (g *Graph) VariableIndex(id string) int {
	for i, v := range g.Variables {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// AddEvent returns the index of the event with id, adding it when it does
// not exist yet. values may be nil.
func (g *Graph) AddEvent(id string, values *ordmap.Map[string, *EventValue]) int {
	if idx := g.EventIndex(id); idx != -1 {
		return idx
	}
	if values == nil {
		values = ordmap.New[string, *EventValue]()
	}
	g.Events = append(g.Events, &CustomEvent{ID: id, Values: values})
	return len(g.Events) - 1
}

// EventIndex returns the index of the event with id, or -1.
func (g *Graph) EventIndex(id string) int {
	for i, e := range g.Events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Consumers returns the nodes with at least one value input reading from n.
func (g *Graph) Consumers(n *Node) []*Node {
	var out []*Node
	for _, other := range g.Nodes {
		for _, kv := range other.Values.Order {
			if kv.Value.Node == n.Index {
				out = append(out, other)
				break
			}
		}
	}
	return out
}

// IsReferenced reports whether any other node has a flow or value edge
// targeting n.
func (g *Graph) IsReferenced(n *Node) bool {
	return g.referencedBy(n.Index) != nil
}

func (g *Graph) referencedBy(idx int) *Node {
	for _, other := range g.Nodes {
		if other.Index == idx {
			continue
		}
		for _, kv := range other.Values.Order {
			if kv.Value.Node == idx {
				return other
			}
		}
		for _, kv := range other.Flows.Order {
			if kv.Value.Node == idx {
				return other
			}
		}
	}
	return nil
}

// RemapNodeIndices rewrites every edge through remap. Edges to indices
// missing from remap are left untouched.
func (g *Graph) RemapNodeIndices(remap map[int]int) {
	for _, n := range g.Nodes {
		for _, kv := range n.Values.Order {
			if to, ok := remap[kv.Value.Node]; ok && kv.Value.Connected() {
				kv.Value.Node = to
			}
		}
		for _, kv := range n.Flows.Order {
			if to, ok := remap[kv.Value.Node]; ok && kv.Value.Connected() {
				kv.Value.Node = to
			}
		}
	}
}

// RemoveNode removes n, keeping indices dense: the last node moves into
// n's slot and every edge to its old index is rewritten. It refuses with
// ErrNodeReferenced while another node still references n.
func (g *Graph) RemoveNode(n *Node) error {
	idx := n.Index
	if idx < 0 || idx >= len(g.Nodes) || g.Nodes[idx] != n {
		return NewNodeError(ErrInvalidGraph, n, "node is not part of the graph")
	}
	if by := g.referencedBy(idx); by != nil {
		return NewNodeError(ErrNodeReferenced, n, "still referenced by node %d (%s)", by.Index, by.Op)
	}

	last := len(g.Nodes) - 1
	if idx == last {
		g.Nodes[last] = nil
		g.Nodes = g.Nodes[:last]
		n.Index = -1
		return nil
	}

	moved := g.Nodes[last]
	g.Nodes[idx] = moved
	g.Nodes[last] = nil
	g.Nodes = g.Nodes[:last]
	moved.Index = idx
	n.Index = -1
	g.RemapNodeIndices(map[int]int{last: idx})
	return nil
}
