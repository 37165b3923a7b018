package ir

import "cogentcore.org/core/base/ordmap"

// socketValue is the conventional name of a node's result output.
const socketValue = "value"

// AddNode appends a node for a registered operation.
func (g *Graph) AddNode(op string) (*Node, error) {
	if g.Registry == nil {
		return nil, NewError(ErrUnknownOp, op, "graph has no registry")
	}
	s, err := g.Registry.LookupOp(op)
	if err != nil {
		return nil, err
	}
	return g.AppendNode(s), nil
}

// AppendNode appends a node shaped by schema and returns it.
func (g *Graph) AppendNode(s *OpSchema) *Node {
	n := g.newNode(s)
	n.Index = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return n
}

// AppendBareNode appends a node without schema. Used when reading
// serialized graphs whose operations are unknown.
func (g *Graph) AppendBareNode(op, ext string) *Node {
	n := &Node{
		Index:         len(g.Nodes),
		Op:            op,
		Extension:     ext,
		Declaration:   -1,
		Configuration: ordmap.New[string, *ConfigValue](),
		Flows:         ordmap.New[string, *FlowSocket](),
		Values:        ordmap.New[string, *ValueSocket](),
		Outputs:       ordmap.New[string, *OutputSocket](),
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

// newNode applies the socket descriptors of s: configuration defaults,
// input sockets typed with their first supported type, unconnected
// output flows and output expected types.
func (g *Graph) newNode(s *OpSchema) *Node {
	n := &Node{
		Op:            s.Op,
		Extension:     s.Extension,
		Schema:        s,
		Declaration:   -1,
		Configuration: ordmap.New[string, *ConfigValue](),
		Flows:         ordmap.New[string, *FlowSocket](),
		Values:        ordmap.New[string, *ValueSocket](),
		Outputs:       ordmap.New[string, *OutputSocket](),
	}
	for _, kv := range s.Configuration.Order {
		n.Configuration.Add(kv.Key, &ConfigValue{Value: kv.Value.Default})
	}
	for _, kv := range s.InputValues.Order {
		t := UnknownType
		if len(kv.Value.SupportedTypes) > 0 {
			t = g.Types.Index(kv.Value.SupportedTypes[0])
		}
		n.Values.Add(kv.Key, &ValueSocket{Node: NoNode, Type: t, Restriction: kv.Value.Restriction})
	}
	for _, name := range s.OutputFlows {
		n.Flows.Add(name, &FlowSocket{Node: NoNode})
	}
	for _, kv := range s.OutputValues.Order {
		n.Outputs.Add(kv.Key, &OutputSocket{Expected: g.expectedFromRule(kv.Value.Expected)})
	}
	return n
}

func (g *Graph) expectedFromRule(r *ExpectedRule) *ExpectedType {
	switch {
	case r == nil:
		return nil
	case r.FromInput != "":
		return &ExpectedType{Type: UnknownType, FromInput: r.FromInput}
	default:
		return &ExpectedType{Type: g.Types.Index(r.Signature)}
	}
}

// BindVariable points the variable configuration of n at variable idx
// and types the node's value output after it.
func (g *Graph) BindVariable(n *Node, idx int) {
	n.SetConfig(ConfigVariable, idx)
	g.ApplyConfigTypes(n)
}

// BindValueType sets the type configuration of n and types the node's
// value output after it.
func (g *Graph) BindValueType(n *Node, t TypeIndex) {
	n.SetConfig(ConfigType, int(t))
	g.ApplyConfigTypes(n)
}

// ApplyConfigTypes fixes the type of the value output of n when its schema
// leaves it open. The type comes from the variable named by the variable
// configuration, or else from the type configuration. Outputs stay as
// they are while neither names a known type.
func (g *Graph) ApplyConfigTypes(n *Node) {
	o, ok := n.Outputs.ValueByKeyTry(socketValue)
	if !ok {
		return
	}
	if n.Schema != nil {
		if d, ok := n.Schema.OutputValues.ValueByKeyTry(socketValue); ok && d.Expected != nil {
			return
		}
	}
	if t := g.configuredType(n); t != UnknownType {
		o.Expected = &ExpectedType{Type: t}
	}
}

func (g *Graph) configuredType(n *Node) TypeIndex {
	if idx, ok := configInt(n.Config(ConfigVariable)); ok && idx >= 0 && idx < len(g.Variables) {
		return g.Variables[idx].Type
	}
	if t, ok := configInt(n.Config(ConfigType)); ok && t >= 0 && t < g.Types.Len() {
		return TypeIndex(t)
	}
	return UnknownType
}

func configInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case TypeIndex:
		return int(x), true
	}
	return 0, false
}

// Value returns the input value socket name, creating an unset socket
// when the node does not have one yet.
func (n *Node) Value(name string) *ValueSocket {
	if s, ok := n.Values.ValueByKeyTry(name); ok {
		return s
	}
	s := &ValueSocket{Node: NoNode, Type: UnknownType}
	n.Values.Add(name, s)
	return s
}

// Flow returns the output flow socket name, creating an unconnected
// socket when the node does not have one yet.
func (n *Node) Flow(name string) *FlowSocket {
	if f, ok := n.Flows.ValueByKeyTry(name); ok {
		return f
	}
	f := &FlowSocket{Node: NoNode}
	n.Flows.Add(name, f)
	return f
}

// Output returns the output value socket name, creating one without an
// expected type when missing.
func (n *Node) Output(name string) *OutputSocket {
	if o, ok := n.Outputs.ValueByKeyTry(name); ok {
		return o
	}
	o := &OutputSocket{}
	n.Outputs.Add(name, o)
	return o
}

// SetConfig sets a configuration literal.
func (n *Node) SetConfig(name string, value any) {
	if c, ok := n.Configuration.ValueByKeyTry(name); ok {
		c.Value = value
		return
	}
	n.Configuration.Add(name, &ConfigValue{Value: value})
}

// Config returns a configuration literal, or nil.
func (n *Node) Config(name string) any {
	if c, ok := n.Configuration.ValueByKeyTry(name); ok {
		return c.Value
	}
	return nil
}

// FlowIn returns the conventional "in" flow socket name.
func (n *Node) FlowIn() (string, error) {
	if n.Schema == nil || !n.Schema.HasInputFlow(FlowInDefault) {
		return "", NewNodeError(ErrMissingDefaultSocket, n, "no default %q socket in input flow sockets", FlowInDefault)
	}
	return FlowInDefault, nil
}

// FlowOut returns the conventional "out" flow socket.
func (n *Node) FlowOut() (*FlowSocket, error) {
	if n.Schema == nil || !n.Schema.HasOutputFlow(FlowOutDefault) {
		return nil, NewNodeError(ErrMissingDefaultSocket, n, "no default %q socket in output flow sockets", FlowOutDefault)
	}
	return n.Flow(FlowOutDefault), nil
}

// ConnectFlow points the output flow socket at a target node's input
// flow socket.
func (n *Node) ConnectFlow(socket string, target *Node, targetSocket string) {
	f := n.Flow(socket)
	f.Node = target.Index
	f.Socket = targetSocket
}

// ConnectValue makes the input socket read from a source node's output.
func (n *Node) ConnectValue(socket string, source *Node, sourceSocket string) {
	n.Value(socket).Connect(source.Index, sourceSocket)
}

// SetValue stores a literal in an input socket, typed by the literal's
// native type.
func (g *Graph) SetValue(n *Node, socket string, value any) {
	n.Value(socket).SetLiteral(value, g.Types.TypeOf(value))
}
