package passes

import (
	"cogentcore.org/core/math32"

	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

// FoldConstantCombines replaces combine2/3/4 nodes whose lanes are all
// float literals with the vector literal in every reader.
type FoldConstantCombines struct{}

// Name implements CleanUp.
func (FoldConstantCombines) Name() string { return "fold-constant-combines" }

// CleanUp implements CleanUp.
func (FoldConstantCombines) CleanUp(t *Task) {
	g := t.Graph()
	for _, n := range append([]*ir.Node(nil), g.Nodes...) {
		if n.Index < 0 {
			continue
		}
		switch n.Op {
		case schema.OpCombine2, schema.OpCombine3, schema.OpCombine4:
		default:
			continue
		}
		lanes, ok := literalFloats(n)
		if !ok {
			continue
		}
		if v := vectorOf(lanes); v != nil {
			replaceWithLiteral(t, n, schema.SocketValue, v)
		}
	}
}

// literalFloats returns the float literals of every input in order.
func literalFloats(n *ir.Node) ([]float32, bool) {
	lanes := make([]float32, 0, n.Values.Len())
	for _, kv := range n.Values.Order {
		if kv.Value.Connected() {
			return nil, false
		}
		f, ok := kv.Value.Value.(float32)
		if !ok {
			return nil, false
		}
		lanes = append(lanes, f)
	}
	return lanes, true
}

func vectorOf(lanes []float32) any {
	switch len(lanes) {
	case 2:
		return math32.Vec2(lanes[0], lanes[1])
	case 3:
		return math32.Vec3(lanes[0], lanes[1], lanes[2])
	case 4:
		return math32.Vec4(lanes[0], lanes[1], lanes[2], lanes[3])
	}
	return nil
}

// replaceWithLiteral stores v in every input reading n's output socket,
// then removes n when nothing references it anymore.
func replaceWithLiteral(t *Task, n *ir.Node, output string, v any) {
	g := t.Graph()
	typ := g.Types.TypeOf(v)
	if typ == ir.UnknownType {
		return
	}
	for _, other := range g.Nodes {
		for _, kv := range other.Values.Order {
			s := kv.Value
			if s.Node == n.Index && s.Socket == output {
				s.SetLiteral(v, typ)
				t.MarkChanged()
			}
		}
	}
	if !g.IsReferenced(n) {
		t.RemoveNode(n)
	}
}

// FoldConstantMath evaluates math nodes whose inputs are all literals and
// stores the result in their readers. Only operations with one "value"
// output and float or float vector operands are folded.
type FoldConstantMath struct{}

// Name implements CleanUp.
func (FoldConstantMath) Name() string { return "fold-constant-math" }

// CleanUp implements CleanUp.
func (FoldConstantMath) CleanUp(t *Task) {
	g := t.Graph()
	for _, n := range append([]*ir.Node(nil), g.Nodes...) {
		if n.Index < 0 || n.Outputs.Len() != 1 || n.Flows.Len() > 0 {
			continue
		}
		if len(g.Consumers(n)) == 0 {
			continue
		}
		v, ok := evalMath(n)
		if !ok {
			continue
		}
		replaceWithLiteral(t, n, schema.SocketValue, v)
	}
}

func literal(n *ir.Node, socket string) (any, bool) {
	s, ok := n.Values.ValueByKeyTry(socket)
	if !ok || s.Connected() || s.Value == nil {
		return nil, false
	}
	return s.Value, true
}

// evalMath computes the result of a constant math node.
func evalMath(n *ir.Node) (any, bool) {
	a, ok := literal(n, schema.SocketA)
	if !ok {
		return nil, false
	}

	if n.Values.Len() == 1 {
		return evalUnary(n.Op, a)
	}
	if n.Values.Len() != 2 {
		return nil, false
	}
	b, ok := literal(n, schema.SocketB)
	if !ok {
		return nil, false
	}
	return evalBinary(n.Op, a, b)
}

func evalUnary(op string, a any) (any, bool) {
	switch x := a.(type) {
	case float32:
		switch op {
		case "math/abs":
			return math32.Abs(x), true
		case "math/neg":
			return -x, true
		case "math/sqrt":
			return math32.Sqrt(x), true
		case "math/sin":
			return math32.Sin(x), true
		case "math/cos":
			return math32.Cos(x), true
		case "math/rad":
			return math32.DegToRad(x), true
		case "math/deg":
			return math32.RadToDeg(x), true
		case "math/floor":
			return math32.Floor(x), true
		case "math/ceil":
			return math32.Ceil(x), true
		}
	case math32.Vector2:
		if op == "math/length" {
			return x.Length(), true
		}
	case math32.Vector3:
		if op == "math/length" {
			return x.Length(), true
		}
	case math32.Vector4:
		if op == "math/length" {
			return x.Length(), true
		}
	}
	return nil, false
}

func evalBinary(op string, a, b any) (any, bool) {
	switch x := a.(type) {
	case float32:
		y, ok := b.(float32)
		if !ok {
			return nil, false
		}
		switch op {
		case schema.OpAdd:
			return x + y, true
		case schema.OpSub:
			return x - y, true
		case schema.OpMul:
			return x * y, true
		case schema.OpDiv:
			return x / y, true
		}
	case math32.Vector2:
		y, ok := b.(math32.Vector2)
		if !ok {
			return nil, false
		}
		return vectorBinary(op, y, x.Add, x.Sub, x.Mul, x.Div, x.Dot)
	case math32.Vector3:
		y, ok := b.(math32.Vector3)
		if !ok {
			return nil, false
		}
		return vectorBinary(op, y, x.Add, x.Sub, x.Mul, x.Div, x.Dot)
	case math32.Vector4:
		y, ok := b.(math32.Vector4)
		if !ok {
			return nil, false
		}
		return vectorBinary(op, y, x.Add, x.Sub, x.Mul, x.Div, x.Dot)
	}
	return nil, false
}

func vectorBinary[V any](op string, y V, add, sub, mul, div func(V) V, dot func(V) float32) (any, bool) {
	switch op {
	case schema.OpAdd:
		return add(y), true
	case schema.OpSub:
		return sub(y), true
	case schema.OpMul:
		return mul(y), true
	case schema.OpDiv:
		return div(y), true
	case schema.OpDot:
		return dot(y), true
	}
	return nil, false
}
