package source

import (
	"fmt"

	"cogentcore.org/core/math32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/khrgraph/ir"
)

func field(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func stringField(n *yaml.Node, key string) string {
	if v := field(n, key); v != nil {
		return v.Value
	}
	return ""
}

// eachPair calls fn for every entry of a mapping node in document order.
// An absent node has no entries.
func eachPair(n *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	if n == nil || n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("source: line %d: expected a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// literal decodes a value node. An empty sig infers the type from the
// node: scalars by their tag, lists of 2, 3, 4 or 16 numbers as vectors
// or a matrix and other lists of integers as int[]. Otherwise the decoded
// value is converted to sig.
func (p *parser) literal(n *yaml.Node, sig string) (any, error) {
	if n == nil || n.Kind == 0 || n.Tag == "!!null" {
		if sig == "" {
			return nil, nil
		}
		return ir.NullValue(sig), nil
	}

	var v any
	var err error
	switch n.Kind {
	case yaml.ScalarNode:
		v, err = scalar(n)
	case yaml.SequenceNode:
		v, err = sequence(n, sig)
	default:
		return nil, fmt.Errorf("line %d: unsupported literal", n.Line)
	}
	if err != nil || sig == "" {
		return v, err
	}

	if p.graph.Types.Index(sig) == ir.UnknownType {
		return nil, fmt.Errorf("line %d: unknown type %q", n.Line, sig)
	}
	converted, ok := ir.ConvertValue(v, sig)
	if !ok {
		return nil, fmt.Errorf("line %d: cannot use %T as %s", n.Line, v, sig)
	}
	return converted, nil
}

func scalar(n *yaml.Node) (any, error) {
	var v any
	var err error
	switch n.Tag {
	case "!!int":
		var i int
		err = n.Decode(&i)
		v = i
	case "!!float":
		var f float64
		err = n.Decode(&f)
		v = float32(f)
	case "!!bool":
		var b bool
		err = n.Decode(&b)
		v = b
	case "!!null":
		return nil, nil
	default:
		return n.Value, nil
	}
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func sequence(n *yaml.Node, sig string) (any, error) {
	if sig == ir.SigIntArray {
		return intList(n)
	}
	if sig == "" && allInts(n) && !vectorLength(len(n.Content)) {
		return intList(n)
	}

	lanes := make([]float32, len(n.Content))
	for i, item := range n.Content {
		v, err := scalar(item)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case int:
			lanes[i] = float32(x)
		case float32:
			lanes[i] = x
		default:
			return nil, fmt.Errorf("line %d: expected a number", item.Line)
		}
	}

	switch len(lanes) {
	case 2:
		return math32.Vec2(lanes[0], lanes[1]), nil
	case 3:
		return math32.Vec3(lanes[0], lanes[1], lanes[2]), nil
	case 4:
		return math32.Vec4(lanes[0], lanes[1], lanes[2], lanes[3]), nil
	case 16:
		var m math32.Matrix4
		copy(m[:], lanes)
		return m, nil
	}
	return nil, fmt.Errorf("line %d: no vector type has %d lanes", n.Line, len(lanes))
}

func vectorLength(n int) bool {
	return n == 2 || n == 3 || n == 4 || n == 16
}

func allInts(n *yaml.Node) bool {
	for _, item := range n.Content {
		if item.Tag != "!!int" {
			return false
		}
	}
	return true
}

func intList(n *yaml.Node) ([]int, error) {
	out := make([]int, len(n.Content))
	for i, item := range n.Content {
		if item.Tag != "!!int" {
			return nil, fmt.Errorf("line %d: expected an integer", item.Line)
		}
		if err := item.Decode(&out[i]); err != nil {
			return nil, fmt.Errorf("line %d: %w", item.Line, err)
		}
	}
	return out, nil
}
