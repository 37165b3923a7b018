// Package source reads authoring documents into behavior graphs.
//
// An authoring document is YAML (JSON works as well) naming nodes by id
// instead of by index:
//
//	variables:
//	  - {id: speed, type: float, value: 1.5}
//	events:
//	  - id: bump
//	    values:
//	      count: {type: int, value: 3}
//	nodes:
//	  - id: start
//	    op: event/onStart
//	    flows:
//	      out: log
//	  - id: log
//	    op: debug/log
//	    configuration:
//	      message: "speed is {v}"
//	    values:
//	      v: {node: speed, socket: value}
//	  - id: speed
//	    op: variable/get
//	    configuration:
//	      variable: {var: speed}
//
// Value sockets hold a connection ({node, socket}), a typed literal
// ({value, type}), a host reference ({ref}) or a bare literal. Flow
// sockets name their target node, optionally as {node, socket}.
// Configuration entries may point at variables ({var} or {vars}),
// events ({event}), types ({type}) or host references ({ref}).
package source

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/khrgraph/ir"
)

// Options configures Parse.
type Options struct {
	// Registry provides the operations. Required.
	Registry *ir.Registry

	// Resolver maps {ref} literals to indices. Nil leaves every reference
	// unresolved.
	Resolver ir.IDResolver

	// Logger receives unresolved-reference warnings. Nil uses slog.Default().
	Logger *slog.Logger
}

type document struct {
	Variables []variableDoc `yaml:"variables"`
	Events    []eventDoc    `yaml:"events"`
	Nodes     []nodeDoc     `yaml:"nodes"`
}

type variableDoc struct {
	ID    string    `yaml:"id"`
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

type eventDoc struct {
	ID     string    `yaml:"id"`
	Values yaml.Node `yaml:"values"`
}

type nodeDoc struct {
	ID            string    `yaml:"id"`
	Op            string    `yaml:"op"`
	Configuration yaml.Node `yaml:"configuration"`
	Values        yaml.Node `yaml:"values"`
	Flows         yaml.Node `yaml:"flows"`
}

// Parse builds a graph from an authoring document. Structural problems
// (unknown operations, unknown node ids, malformed literals) are returned
// as errors. References that cannot be resolved become -1 and are
// reported as diagnostics.
func Parse(data []byte, opts Options) (*ir.Graph, []ir.Diagnostic, error) {
	if opts.Registry == nil {
		return nil, nil, fmt.Errorf("source: no registry")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("source: %w", err)
	}

	p := &parser{
		graph: ir.NewGraph(opts.Registry),
		opts:  opts,
		ids:   make(map[string]*ir.Node, len(doc.Nodes)),
	}
	if err := p.parse(&doc); err != nil {
		return nil, p.diags, err
	}
	return p.graph, p.diags, nil
}

type parser struct {
	graph *ir.Graph
	opts  Options
	ids   map[string]*ir.Node
	diags []ir.Diagnostic
}

func (p *parser) parse(doc *document) error {
	for _, v := range doc.Variables {
		if err := p.variable(v); err != nil {
			return err
		}
	}
	for _, e := range doc.Events {
		if err := p.event(e); err != nil {
			return err
		}
	}

	// create every node first so edges can point forward
	for i, nd := range doc.Nodes {
		n, err := p.graph.AddNode(nd.Op)
		if err != nil {
			return fmt.Errorf("source: node %d (%s): %w", i, nd.ID, err)
		}
		if nd.ID == "" {
			continue
		}
		if _, dup := p.ids[nd.ID]; dup {
			return fmt.Errorf("source: %w", ir.NewNodeError(ir.ErrInvalidGraph, n, "duplicate node id %q", nd.ID))
		}
		p.ids[nd.ID] = n
	}

	for i := range doc.Nodes {
		nd := &doc.Nodes[i]
		n := p.graph.Nodes[i]
		if err := p.configuration(n, &nd.Configuration); err != nil {
			return err
		}
		p.graph.ApplyConfigTypes(n)
		if err := p.values(n, &nd.Values); err != nil {
			return err
		}
		if err := p.flows(n, &nd.Flows); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) variable(v variableDoc) error {
	value, err := p.literal(&v.Value, v.Type)
	if err != nil {
		return fmt.Errorf("source: variable %q: %w", v.ID, err)
	}
	t := p.graph.Types.TypeOf(value)
	if v.Type != "" {
		t = p.graph.Types.Index(v.Type)
	}
	if t == ir.UnknownType {
		return fmt.Errorf("source: variable %q: unknown type %q", v.ID, v.Type)
	}
	p.graph.AddVariable(v.ID, value, t)
	return nil
}

func (p *parser) event(e eventDoc) error {
	idx := p.graph.AddEvent(e.ID, nil)
	values := p.graph.Events[idx].Values
	return eachPair(&e.Values, func(name string, v *yaml.Node) error {
		sig := stringField(v, "type")
		t := p.graph.Types.Index(sig)
		if t == ir.UnknownType {
			return fmt.Errorf("source: event %q value %q: unknown type %q", e.ID, name, sig)
		}
		value, err := p.literal(field(v, "value"), sig)
		if err != nil {
			return fmt.Errorf("source: event %q value %q: %w", e.ID, name, err)
		}
		values.Add(name, &ir.EventValue{Type: t, Value: value})
		return nil
	})
}

func (p *parser) configuration(n *ir.Node, cfg *yaml.Node) error {
	return eachPair(cfg, func(name string, v *yaml.Node) error {
		value, err := p.configValue(n, name, v)
		if err != nil {
			return fmt.Errorf("source: node %d (%s) configuration %q: %w", n.Index, n.Op, name, err)
		}
		n.SetConfig(name, value)
		return nil
	})
}

func (p *parser) configValue(n *ir.Node, name string, v *yaml.Node) (any, error) {
	if v.Kind != yaml.MappingNode {
		if v.Kind == yaml.SequenceNode {
			return intList(v)
		}
		return scalar(v)
	}

	switch {
	case field(v, "var") != nil:
		return p.variableIndex(n, name, stringField(v, "var")), nil

	case field(v, "vars") != nil:
		ids := field(v, "vars")
		if ids.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: vars must be a list", ids.Line)
		}
		out := make([]int, len(ids.Content))
		for i, id := range ids.Content {
			out[i] = p.variableIndex(n, name, id.Value)
		}
		return out, nil

	case field(v, "event") != nil:
		id := stringField(v, "event")
		idx := p.graph.EventIndex(id)
		if idx == -1 {
			p.warn(n, name, "unknown event %q", id)
		}
		return idx, nil

	case field(v, "type") != nil:
		sig := stringField(v, "type")
		t := p.graph.Types.Index(sig)
		if t == ir.UnknownType {
			p.warn(n, name, "unknown type %q", sig)
		}
		return int(t), nil

	case field(v, "ref") != nil:
		return p.reference(n, name, stringField(v, "ref")), nil
	}
	return nil, fmt.Errorf("line %d: unsupported configuration value", v.Line)
}

func (p *parser) variableIndex(n *ir.Node, socket, id string) int {
	idx := p.graph.VariableIndex(id)
	if idx == -1 {
		p.warn(n, socket, "unknown variable %q", id)
	}
	return idx
}

func (p *parser) reference(n *ir.Node, socket, ref string) int {
	if p.opts.Resolver != nil {
		if idx, ok := p.opts.Resolver.ResolveID(ref); ok {
			return idx
		}
	}
	p.warn(n, socket, "unresolved reference %q", ref)
	return -1
}

func (p *parser) values(n *ir.Node, values *yaml.Node) error {
	return eachPair(values, func(name string, v *yaml.Node) error {
		if v.Kind == yaml.MappingNode {
			switch {
			case field(v, "node") != nil:
				src, err := p.node(stringField(v, "node"))
				if err != nil {
					return fmt.Errorf("source: node %d (%s) socket %q: %w", n.Index, n.Op, name, err)
				}
				socket := stringField(v, "socket")
				if socket == "" {
					socket = "value"
				}
				n.ConnectValue(name, src, socket)
				return nil

			case field(v, "ref") != nil:
				p.graph.SetValue(n, name, p.reference(n, name, stringField(v, "ref")))
				return nil

			case field(v, "value") != nil:
				sig := stringField(v, "type")
				value, err := p.literal(field(v, "value"), sig)
				if err != nil {
					return fmt.Errorf("source: node %d (%s) socket %q: %w", n.Index, n.Op, name, err)
				}
				p.graph.SetValue(n, name, value)
				return nil
			}
			return fmt.Errorf("source: node %d (%s) socket %q: line %d: unsupported value", n.Index, n.Op, name, v.Line)
		}

		value, err := p.literal(v, "")
		if err != nil {
			return fmt.Errorf("source: node %d (%s) socket %q: %w", n.Index, n.Op, name, err)
		}
		p.graph.SetValue(n, name, value)
		return nil
	})
}

func (p *parser) flows(n *ir.Node, flows *yaml.Node) error {
	return eachPair(flows, func(name string, v *yaml.Node) error {
		id, socket := v.Value, ir.FlowInDefault
		if v.Kind == yaml.MappingNode {
			id = stringField(v, "node")
			if s := stringField(v, "socket"); s != "" {
				socket = s
			}
		}
		target, err := p.node(id)
		if err != nil {
			return fmt.Errorf("source: node %d (%s) flow %q: %w", n.Index, n.Op, name, err)
		}
		n.ConnectFlow(name, target, socket)
		return nil
	})
}

func (p *parser) node(id string) (*ir.Node, error) {
	n, ok := p.ids[id]
	if !ok {
		return nil, ir.NewError(ir.ErrInvalidGraph, "", fmt.Sprintf("unknown node id %q", id))
	}
	return n, nil
}

func (p *parser) warn(n *ir.Node, socket, format string, args ...any) {
	d := ir.Diagnostic{Kind: ir.DiagUnresolvedRef, Node: n.Index, Op: n.Op, Socket: socket, Message: fmt.Sprintf(format, args...)}
	p.diags = append(p.diags, d)
	p.opts.Logger.Warn(d.Message, "kind", d.Kind.String(), "node", n.Index, "op", n.Op, "socket", socket)
}
