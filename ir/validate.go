package ir

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a structural problem in a graph.
type ValidationError struct {
	Message string
	// Optional context
	Node   int
	Socket string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Node >= 0 {
		if e.Socket != "" {
			return fmt.Sprintf("node %d, socket %q: %s", e.Node, e.Socket, e.Message)
		}
		return fmt.Sprintf("node %d: %s", e.Node, e.Message)
	}
	return e.Message
}

// Validator validates graph structure before compilation.
type Validator struct {
	graph  *Graph
	errors []ValidationError
}

// Validate checks the graph invariants: dense node indices, edges inside
// the node range, no socket holding both a literal and a connection,
// every operation known to the registry and type indices inside the
// type table. Returns validation errors if any, or nil if the graph is valid.
func Validate(g *Graph) ([]ValidationError, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}
	if g.Types == nil {
		return nil, fmt.Errorf("graph has no type table")
	}

	v := &Validator{graph: g}
	v.ValidateGraph()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateGraph runs every check and collects the errors.
func (v *Validator) ValidateGraph() {
	for i, n := range v.graph.Nodes {
		if n == nil {
			v.addError(i, "", "nil node")
			continue
		}
		if n.Index != i {
			v.addError(i, "", fmt.Sprintf("node reports index %d", n.Index))
		}
		v.validateNode(i, n)
	}
	for _, variable := range v.graph.Variables {
		if !v.isValidType(variable.Type) {
			v.addError(-1, "", fmt.Sprintf("variable %q has invalid type %d", variable.ID, variable.Type))
		}
	}
	for _, e := range v.graph.Events {
		for _, kv := range e.Values.Order {
			if !v.isValidType(kv.Value.Type) {
				v.addError(-1, "", fmt.Sprintf("event %q value %q has invalid type %d", e.ID, kv.Key, kv.Value.Type))
			}
		}
	}
}

func (v *Validator) validateNode(i int, n *Node) {
	if n.Schema == nil && v.graph.Registry != nil {
		if _, ok := v.graph.Registry.Lookup(n.Op); !ok {
			v.addError(i, "", fmt.Sprintf("unknown operation %q", n.Op))
		}
	}

	for _, kv := range n.Values.Order {
		s := kv.Value
		if s.Connected() {
			if s.Value != nil {
				v.addError(i, kv.Key, "socket has both a literal and a connection")
			}
			if !v.isValidNode(s.Node) {
				v.addError(i, kv.Key, fmt.Sprintf("connection to node %d out of range", s.Node))
			}
			continue
		}
		if s.Value != nil && s.Type != UnknownType && !v.isValidType(s.Type) {
			v.addError(i, kv.Key, fmt.Sprintf("literal type %d out of range", s.Type))
		}
	}

	for _, kv := range n.Flows.Order {
		f := kv.Value
		if f.Connected() && !v.isValidNode(f.Node) {
			v.addError(i, kv.Key, fmt.Sprintf("flow to node %d out of range", f.Node))
		}
	}
}

func (v *Validator) isValidNode(idx int) bool {
	return idx >= 0 && idx < len(v.graph.Nodes)
}

func (v *Validator) isValidType(t TypeIndex) bool {
	return t >= 0 && int(t) < v.graph.Types.Len()
}

func (v *Validator) addError(node int, socket, msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Node: node, Socket: socket})
}

// Configuration keys checked by ValidateCompiled.
const (
	ConfigEvent     = "event"
	ConfigVariable  = "variable"
	ConfigVariables = "variables"
	ConfigMessage   = "message"
	ConfigType      = "type"
	SocketNodeIndex = "nodeIndex"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// ValidateCompiled inspects a compiled graph for problems that still let
// it serialize but make the output unreliable.
func ValidateCompiled(g *Graph) []Diagnostic {
	var diags []Diagnostic
	report := func(n *Node, socket, format string, args ...any) {
		d := Diagnostic{Kind: DiagValidation, Node: -1, Socket: socket, Message: fmt.Sprintf(format, args...)}
		if n != nil {
			d.Node = n.Index
			d.Op = n.Op
		}
		diags = append(diags, d)
	}

	for _, n := range g.Nodes {
		for _, kv := range n.Configuration.Order {
			if kv.Value == nil || kv.Value.Value == nil {
				report(n, "", "configuration %q has no value", kv.Key)
			}
		}

		for _, kv := range n.Values.Order {
			s := kv.Value
			switch {
			case s.Connected():
				continue
			case s.Value == nil:
				report(n, kv.Key, "socket has no connection and no value")
			case s.Type == UnknownType:
				report(n, kv.Key, "socket has invalid type (-1), value is %T", s.Value)
			}
		}

		switch n.Op {
		case "debug/log":
			validateLogTemplate(n, report)
		case "pointer/get", "pointer/set":
			if s, ok := n.Values.ValueByKeyTry(SocketNodeIndex); ok && s.Value != nil && !s.Connected() {
				idx, isInt := s.Value.(int)
				switch {
				case !isInt:
					report(n, SocketNodeIndex, "node index has type %T", s.Value)
				case idx == -1:
					report(n, SocketNodeIndex, "invalid node index -1")
				}
			}
		case "variable/get":
			if idx, ok := n.Config(ConfigVariable).(int); ok && idx == -1 {
				report(n, "", "invalid variable index -1")
			}
		case "variable/set":
			switch idx := n.Config(ConfigVariables).(type) {
			case nil:
			case []int:
				for _, i := range idx {
					if i == -1 {
						report(n, "", "variable indices contain -1")
						break
					}
				}
			default:
				report(n, "", "variable indices have type %T, want []int", idx)
			}
		case "event/send", "event/receive":
			if idx, ok := n.Config(ConfigEvent).(int); ok && idx == -1 {
				report(n, "", "invalid event index -1")
			}
		}
	}

	for _, variable := range g.Variables {
		if variable.Type == UnknownType {
			report(nil, "", "variable %q has invalid type (-1)", variable.ID)
		}
	}
	for _, e := range g.Events {
		for _, kv := range e.Values.Order {
			if kv.Value.Type == UnknownType {
				report(nil, "", "event %q value %q has invalid type (-1)", e.ID, kv.Key)
			}
		}
	}
	return diags
}

func validateLogTemplate(n *Node, report func(*Node, string, string, ...any)) {
	msg := n.Config(ConfigMessage)
	if msg == nil {
		return
	}
	template, ok := msg.(string)
	if !ok {
		report(n, "", "message has type %T, want string", msg)
		return
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		s, ok := n.Values.ValueByKeyTry(name)
		if !ok {
			report(n, name, "message placeholder has no matching value socket")
			continue
		}
		if !s.Connected() && s.Value == nil {
			report(n, name, "message placeholder socket has neither connection nor value")
		}
	}
}
