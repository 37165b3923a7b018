package gltf

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cogentcore.org/core/base/indent"
	"cogentcore.org/core/math32"

	"github.com/gogpu/khrgraph/ir"
)

// Wire field names.
const (
	keyTypes        = "types"
	keyVariables    = "variables"
	keyEvents       = "events"
	keyDeclarations = "declarations"
	keyNodes        = "nodes"

	keySignature     = "signature"
	keyExtensions    = "extensions"
	keyID            = "id"
	keyType          = "type"
	keyValue         = "value"
	keyValues        = "values"
	keyOp            = "op"
	keyExtension     = "extension"
	keyInputSockets  = "inputValueSockets"
	keyOutputSockets = "outputValueSockets"
	keyDeclaration   = "declaration"
	keyConfiguration = "configuration"
	keyFlows         = "flows"
	keyNode          = "node"
	keySocket        = "socket"
)

// Options configures the writer.
type Options struct {
	// Indent is the number of spaces per nesting level. Zero writes
	// compact JSON.
	Indent int
}

// DefaultOptions returns compact output options.
func DefaultOptions() Options {
	return Options{}
}

// Compile encodes a compiled graph as KHR_interactivity graph JSON.
func Compile(g *ir.Graph, opts Options) ([]byte, error) {
	obj, err := Encode(g)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	if opts.Indent <= 0 {
		return data, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", indent.Spaces(1, opts.Indent)); err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	return out.Bytes(), nil
}

// Marshal encodes g as compact JSON.
func Marshal(g *ir.Graph) ([]byte, error) {
	return Compile(g, DefaultOptions())
}

// Encode builds the ordered wire object for g.
func Encode(g *ir.Graph) (*Object, error) {
	if g == nil || g.Types == nil {
		return nil, fmt.Errorf("gltf: graph has no type table")
	}
	w := &writer{graph: g}

	root := NewObject()
	root.Set(keyTypes, w.types())

	variables, err := w.variables()
	if err != nil {
		return nil, err
	}
	root.Set(keyVariables, variables)

	events, err := w.events()
	if err != nil {
		return nil, err
	}
	root.Set(keyEvents, events)
	root.Set(keyDeclarations, w.declarations())

	nodes, err := w.nodes()
	if err != nil {
		return nil, err
	}
	root.Set(keyNodes, nodes)
	return root, nil
}

type writer struct {
	graph *ir.Graph
}

func (w *writer) types() []any {
	out := make([]any, 0, w.graph.Types.Len())
	for _, info := range w.graph.Types.Entries() {
		t := NewObject().Set(keySignature, info.Signature)
		if info.Extension != "" {
			t.Set(keyExtensions, NewObject().Set(info.Extension, NewObject()))
		}
		out = append(out, t)
	}
	return out
}

func (w *writer) variables() ([]any, error) {
	out := make([]any, 0, len(w.graph.Variables))
	for _, v := range w.graph.Variables {
		value := v.Value
		if value == nil {
			value = ir.NullValue(w.graph.Types.Signature(v.Type))
		}
		lit, err := EncodeLiteral(value)
		if err != nil {
			return nil, fmt.Errorf("gltf: variable %q: %w", v.ID, err)
		}
		out = append(out, NewObject().
			Set(keyID, v.ID).
			Set(keyType, int(v.Type)).
			Set(keyValue, lit))
	}
	return out, nil
}

func (w *writer) events() ([]any, error) {
	out := make([]any, 0, len(w.graph.Events))
	for _, e := range w.graph.Events {
		values := NewObject()
		for _, kv := range e.Values.Order {
			value := kv.Value.Value
			if value == nil {
				value = ir.NullValue(w.graph.Types.Signature(kv.Value.Type))
			}
			lit, err := EncodeLiteral(value)
			if err != nil {
				return nil, fmt.Errorf("gltf: event %q value %q: %w", e.ID, kv.Key, err)
			}
			values.Set(kv.Key, NewObject().Set(keyType, int(kv.Value.Type)).Set(keyValue, lit))
		}
		out = append(out, NewObject().Set(keyID, e.ID).Set(keyValues, values))
	}
	return out, nil
}

func (w *writer) declarations() []any {
	out := make([]any, 0, len(w.graph.Declarations))
	for _, d := range w.graph.Declarations {
		obj := NewObject().Set(keyOp, d.Op)
		if d.Extension != "" {
			obj.Set(keyExtension, d.Extension)
		}
		if d.Inputs != nil {
			sockets := NewObject()
			for _, kv := range d.Inputs.Order {
				sockets.Set(kv.Key, NewObject().Set(keyType, int(kv.Value.Type)))
			}
			obj.Set(keyInputSockets, sockets)
		}
		if d.Outputs != nil {
			sockets := NewObject()
			for _, kv := range d.Outputs.Order {
				sockets.Set(kv.Key, NewObject().Set(keyType, int(kv.Value.Type)))
			}
			obj.Set(keyOutputSockets, sockets)
		}
		out = append(out, obj)
	}
	return out
}

func (w *writer) nodes() ([]any, error) {
	out := make([]any, 0, len(w.graph.Nodes))
	for _, n := range w.graph.Nodes {
		obj := NewObject().Set(keyDeclaration, n.Declaration)

		config := NewObject()
		for _, kv := range n.Configuration.Order {
			if kv.Value == nil || kv.Value.Value == nil {
				continue
			}
			lit, err := EncodeLiteral(kv.Value.Value)
			if err != nil {
				return nil, fmt.Errorf("gltf: node %d (%s) configuration %q: %w", n.Index, n.Op, kv.Key, err)
			}
			config.Set(kv.Key, NewObject().Set(keyValue, lit))
		}
		if config.Len() > 0 {
			obj.Set(keyConfiguration, config)
		}

		values := NewObject()
		for _, kv := range n.Values.Order {
			s := kv.Value
			switch {
			case s.Connected():
				values.Set(kv.Key, NewObject().Set(keyNode, s.Node).Set(keySocket, s.Socket))
			case s.Value != nil:
				lit, err := EncodeLiteral(s.Value)
				if err != nil {
					return nil, fmt.Errorf("gltf: node %d (%s) socket %q: %w", n.Index, n.Op, kv.Key, err)
				}
				values.Set(kv.Key, NewObject().Set(keyType, int(s.Type)).Set(keyValue, lit))
			}
		}
		if values.Len() > 0 {
			obj.Set(keyValues, values)
		}

		flows := NewObject()
		for _, kv := range n.Flows.Order {
			if f := kv.Value; f.Connected() {
				flows.Set(kv.Key, NewObject().Set(keyNode, f.Node).Set(keySocket, f.Socket))
			}
		}
		if flows.Len() > 0 {
			obj.Set(keyFlows, flows)
		}
		out = append(out, obj)
	}
	return out, nil
}

// EncodeLiteral returns the array form of a literal value.
func EncodeLiteral(v any) ([]any, error) {
	switch x := v.(type) {
	case bool:
		return []any{x}, nil
	case int:
		return []any{x}, nil
	case float32:
		return []any{finite(x)}, nil
	case string:
		return []any{x}, nil
	case math32.Vector2:
		return []any{finite(x.X), finite(x.Y)}, nil
	case math32.Vector3:
		return []any{finite(x.X), finite(x.Y), finite(x.Z)}, nil
	case math32.Vector4:
		return []any{finite(x.X), finite(x.Y), finite(x.Z), finite(x.W)}, nil
	case math32.Matrix4:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = finite(f)
		}
		return out, nil
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported literal %T", v)
}

// finite maps NaN and infinities to nil, which encodes as null.
func finite(f float32) any {
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return nil
	}
	return f
}
