package gltf

import (
	"errors"
	"fmt"
	"strconv"

	"cogentcore.org/core/base/ordmap"
	"cogentcore.org/core/math32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/khrgraph/ir"
)

// ErrMalformed is wrapped by every error Read returns for input that is
// not a well-formed graph object.
var ErrMalformed = errors.New("gltf: malformed graph")

// Read decodes a graph object written by Compile. Nodes whose operation
// is in reg get its schema attached; other nodes are kept without one.
// reg may be nil.
func Read(data []byte, reg *ir.Registry) (*ir.Graph, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed(root, "expected an object")
	}

	r := &reader{graph: &ir.Graph{Types: ir.NewTypeTable(), Registry: reg}}
	steps := []struct {
		key  string
		read func(*yaml.Node) error
	}{
		{keyTypes, r.types},
		{keyVariables, r.variables},
		{keyEvents, r.events},
		{keyDeclarations, r.declarations},
		{keyNodes, r.nodes},
	}
	for _, step := range steps {
		n := field(root, step.key)
		if n == nil {
			continue
		}
		if err := step.read(n); err != nil {
			return nil, err
		}
	}
	return r.graph, nil
}

type reader struct {
	graph *ir.Graph
}

func malformed(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, n.Line, fmt.Sprintf(format, args...))
}

// field returns the value of key in a mapping node, or nil.
func field(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// each calls fn for every key of a mapping node, in document order.
func each(n *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return malformed(n, "expected an object")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func items(n *yaml.Node) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, malformed(n, "expected an array")
	}
	return n.Content, nil
}

func intField(n *yaml.Node, key string) (int, error) {
	v := field(n, key)
	if v == nil {
		return 0, malformed(n, "missing %q", key)
	}
	i, err := strconv.Atoi(v.Value)
	if err != nil {
		return 0, malformed(v, "%q is not an integer", key)
	}
	return i, nil
}

func stringField(n *yaml.Node, key string) string {
	if v := field(n, key); v != nil {
		return v.Value
	}
	return ""
}

func (r *reader) types(n *yaml.Node) error {
	list, err := items(n)
	if err != nil {
		return err
	}
	for _, item := range list {
		info := ir.TypeInfo{Signature: stringField(item, keySignature)}
		if info.Signature == "" {
			return malformed(item, "type without signature")
		}
		if ext := field(item, keyExtensions); ext != nil && ext.Kind == yaml.MappingNode && len(ext.Content) > 0 {
			info.Extension = ext.Content[0].Value
		}
		r.graph.Types.Add(info)
	}
	return nil
}

func (r *reader) variables(n *yaml.Node) error {
	list, err := items(n)
	if err != nil {
		return err
	}
	for _, item := range list {
		t, err := intField(item, keyType)
		if err != nil {
			return err
		}
		value, err := r.literal(field(item, keyValue), ir.TypeIndex(t))
		if err != nil {
			return err
		}
		r.graph.Variables = append(r.graph.Variables, &ir.Variable{
			ID:    stringField(item, keyID),
			Type:  ir.TypeIndex(t),
			Value: value,
		})
	}
	return nil
}

func (r *reader) events(n *yaml.Node) error {
	list, err := items(n)
	if err != nil {
		return err
	}
	for _, item := range list {
		values := ordmap.New[string, *ir.EventValue]()
		if vs := field(item, keyValues); vs != nil {
			err := each(vs, func(name string, v *yaml.Node) error {
				t, err := intField(v, keyType)
				if err != nil {
					return err
				}
				value, err := r.literal(field(v, keyValue), ir.TypeIndex(t))
				if err != nil {
					return err
				}
				values.Add(name, &ir.EventValue{Type: ir.TypeIndex(t), Value: value})
				return nil
			})
			if err != nil {
				return err
			}
		}
		r.graph.Events = append(r.graph.Events, &ir.CustomEvent{ID: stringField(item, keyID), Values: values})
	}
	return nil
}

func (r *reader) declarations(n *yaml.Node) error {
	list, err := items(n)
	if err != nil {
		return err
	}
	for _, item := range list {
		d := &ir.Declaration{Op: stringField(item, keyOp), Extension: stringField(item, keyExtension)}
		if d.Op == "" {
			return malformed(item, "declaration without op")
		}
		if d.Inputs, err = declarationSockets(field(item, keyInputSockets)); err != nil {
			return err
		}
		if d.Outputs, err = declarationSockets(field(item, keyOutputSockets)); err != nil {
			return err
		}
		r.graph.Declarations = append(r.graph.Declarations, d)
	}
	return nil
}

func declarationSockets(n *yaml.Node) (*ordmap.Map[string, *ir.DeclarationSocket], error) {
	if n == nil {
		return nil, nil
	}
	sockets := ordmap.New[string, *ir.DeclarationSocket]()
	err := each(n, func(name string, v *yaml.Node) error {
		t, err := intField(v, keyType)
		if err != nil {
			return err
		}
		sockets.Add(name, &ir.DeclarationSocket{Type: ir.TypeIndex(t)})
		return nil
	})
	return sockets, err
}

func (r *reader) nodes(n *yaml.Node) error {
	list, err := items(n)
	if err != nil {
		return err
	}
	g := r.graph
	for _, item := range list {
		idx, err := intField(item, keyDeclaration)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(g.Declarations) {
			return malformed(item, "declaration %d out of range", idx)
		}
		d := g.Declarations[idx]
		node := g.AppendBareNode(d.Op, d.Extension)
		node.Declaration = idx
		if g.Registry != nil {
			node.Schema, _ = g.Registry.Lookup(d.Op)
		}

		if c := field(item, keyConfiguration); c != nil {
			err := each(c, func(name string, v *yaml.Node) error {
				value, err := configLiteral(field(v, keyValue), r.configDefault(node, name))
				if err != nil {
					return err
				}
				node.SetConfig(name, value)
				return nil
			})
			if err != nil {
				return err
			}
		}

		if vs := field(item, keyValues); vs != nil {
			err := each(vs, func(name string, v *yaml.Node) error {
				s := node.Value(name)
				if field(v, keyNode) != nil {
					src, err := intField(v, keyNode)
					if err != nil {
						return err
					}
					s.Connect(src, stringField(v, keySocket))
					return nil
				}
				t, err := intField(v, keyType)
				if err != nil {
					return err
				}
				value, err := r.literal(field(v, keyValue), ir.TypeIndex(t))
				if err != nil {
					return err
				}
				s.SetLiteral(value, ir.TypeIndex(t))
				return nil
			})
			if err != nil {
				return err
			}
		}

		if fs := field(item, keyFlows); fs != nil {
			err := each(fs, func(name string, v *yaml.Node) error {
				target, err := intField(v, keyNode)
				if err != nil {
					return err
				}
				f := node.Flow(name)
				f.Node = target
				f.Socket = stringField(v, keySocket)
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// configDefault returns the schema default of a configuration entry, used
// to tell a one-element int list apart from an int.
func (r *reader) configDefault(n *ir.Node, name string) any {
	if n.Schema == nil {
		return nil
	}
	if c, ok := n.Schema.Configuration.ValueByKeyTry(name); ok {
		return c.Default
	}
	return nil
}

// literal decodes a value array according to the signature of t.
func (r *reader) literal(n *yaml.Node, t ir.TypeIndex) (any, error) {
	if n == nil || n.Tag == "!!null" {
		return nil, nil
	}
	list, err := items(n)
	if err != nil {
		return nil, err
	}
	sig := r.graph.Types.Signature(t)
	switch sig {
	case ir.SigBool:
		if len(list) != 1 {
			return nil, malformed(n, "bool value needs 1 element, got %d", len(list))
		}
		return strconv.ParseBool(list[0].Value)
	case ir.SigInt:
		if len(list) != 1 {
			return nil, malformed(n, "int value needs 1 element, got %d", len(list))
		}
		return strconv.Atoi(list[0].Value)
	case ir.SigIntArray:
		return ints(list)
	case "":
		// unknown type, keep what the array holds
		return configLiteral(n, nil)
	}

	lanes, err := floats(list)
	if err != nil {
		return nil, err
	}
	if len(lanes) != ir.ComponentCount(sig) {
		return nil, malformed(n, "%s value needs %d elements, got %d", sig, ir.ComponentCount(sig), len(lanes))
	}
	return floatLiteral(lanes), nil
}

// configLiteral decodes a configuration value array. A one-element array
// is a scalar unless def is an int list.
func configLiteral(n *yaml.Node, def any) (any, error) {
	if n == nil || n.Tag == "!!null" {
		return nil, nil
	}
	list, err := items(n)
	if err != nil {
		return nil, err
	}
	if _, isList := def.([]int); isList {
		return ints(list)
	}
	if len(list) == 1 {
		return scalar(list[0])
	}
	if len(list) == 0 {
		return []int{}, nil
	}
	if v, err := ints(list); err == nil {
		return v, nil
	}
	lanes, err := floats(list)
	if err != nil {
		return nil, err
	}
	switch len(lanes) {
	case 2, 3, 4, 16:
		return floatLiteral(lanes), nil
	}
	return nil, malformed(n, "unsupported %d-element value", len(lanes))
}

func scalar(n *yaml.Node) (any, error) {
	switch n.Tag {
	case "!!int":
		return strconv.Atoi(n.Value)
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 32)
		return float32(f), err
	case "!!bool":
		return strconv.ParseBool(n.Value)
	case "!!null":
		return math32.NaN(), nil
	}
	return n.Value, nil
}

func ints(list []*yaml.Node) ([]int, error) {
	out := make([]int, len(list))
	for i, item := range list {
		if item.Tag != "!!int" {
			return nil, malformed(item, "expected an integer")
		}
		v, err := strconv.Atoi(item.Value)
		if err != nil {
			return nil, malformed(item, "%v", err)
		}
		out[i] = v
	}
	return out, nil
}

func floats(list []*yaml.Node) ([]float32, error) {
	out := make([]float32, len(list))
	for i, item := range list {
		if item.Tag == "!!null" {
			out[i] = math32.NaN()
			continue
		}
		f, err := strconv.ParseFloat(item.Value, 32)
		if err != nil {
			return nil, malformed(item, "expected a number")
		}
		out[i] = float32(f)
	}
	return out, nil
}

func floatLiteral(lanes []float32) any {
	switch len(lanes) {
	case 1:
		return lanes[0]
	case 2:
		return math32.Vec2(lanes[0], lanes[1])
	case 3:
		return math32.Vec3(lanes[0], lanes[1], lanes[2])
	case 4:
		return math32.Vec4(lanes[0], lanes[1], lanes[2], lanes[3])
	}
	var m math32.Matrix4
	copy(m[:], lanes)
	return m
}
