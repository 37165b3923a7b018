package schema

import (
	"strconv"

	"github.com/gogpu/khrgraph/ir"
)

// Math operations referenced by the compiler passes.
const (
	OpAdd         = "math/add"
	OpSub         = "math/sub"
	OpMul         = "math/mul"
	OpDiv         = "math/div"
	OpMix         = "math/mix"
	OpClamp       = "math/clamp"
	OpSelect      = "math/select"
	OpEq          = "math/eq"
	OpLt          = "math/lt"
	OpDot         = "math/dot"
	OpCombine2    = "math/combine2"
	OpCombine3    = "math/combine3"
	OpCombine4    = "math/combine4"
	OpExtract2    = "math/extract2"
	OpExtract3    = "math/extract3"
	OpExtract4    = "math/extract4"
	OpCombine4x4  = "math/combine4x4"
	OpExtract4x4  = "math/extract4x4"
	OpMatMul      = "math/matMul"
	OpTranspose   = "math/transpose"
	OpDeterminant = "math/determinant"
)

// CombineInputs are the input sockets of the combine operations, in lane order.
var CombineInputs = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p"}

// ExtractOutput names the output socket of lane i of an extract operation.
func ExtractOutput(i int) string {
	return strconv.Itoa(i)
}

// CombineOp returns the combine operation producing sig, or "".
func CombineOp(sig string) string {
	switch sig {
	case ir.SigFloat2:
		return OpCombine2
	case ir.SigFloat3:
		return OpCombine3
	case ir.SigFloat4:
		return OpCombine4
	case ir.SigFloat4x4:
		return OpCombine4x4
	}
	return ""
}

// ExtractOp returns the extract operation splitting sig into floats, or "".
func ExtractOp(sig string) string {
	switch sig {
	case ir.SigFloat2:
		return OpExtract2
	case ir.SigFloat3:
		return OpExtract3
	case ir.SigFloat4:
		return OpExtract4
	case ir.SigFloat4x4:
		return OpExtract4x4
	}
	return ""
}

// binarySame describes a two-input operation whose inputs share one type
// and whose output has that type.
func binarySame(op string, types ...string) *ir.OpSchema {
	return ir.NewOpSchema(op).
		ValueIn(SocketA, ir.SameAsInput(SocketB), types...).
		ValueIn(SocketB, ir.SameAsInput(SocketA), types...).
		ValueOut(SocketValue, ir.FromInput(SocketA), types...)
}

// compare describes a two-input comparison producing a bool.
func compare(op string, types ...string) *ir.OpSchema {
	return ir.NewOpSchema(op).
		ValueIn(SocketA, ir.SameAsInput(SocketB), types...).
		ValueIn(SocketB, ir.SameAsInput(SocketA), types...).
		ValueOut(SocketValue, nil, ir.SigBool)
}

// unarySame describes a one-input operation whose output has the input type.
func unarySame(op string, types ...string) *ir.OpSchema {
	return ir.NewOpSchema(op).
		ValueIn(SocketA, nil, types...).
		ValueOut(SocketValue, ir.FromInput(SocketA), types...)
}

func ternarySame(op string, types ...string) *ir.OpSchema {
	return ir.NewOpSchema(op).
		ValueIn(SocketA, ir.SameAsInput(SocketB), types...).
		ValueIn(SocketB, ir.SameAsInput(SocketA), types...).
		ValueIn(SocketC, ir.SameAsInput(SocketA), types...).
		ValueOut(SocketValue, ir.FromInput(SocketA), types...)
}

func constant(op string) *ir.OpSchema {
	return ir.NewOpSchema(op).ValueOut(SocketValue, nil, ir.SigFloat)
}

func combine(op string, lanes int, out string) *ir.OpSchema {
	s := ir.NewOpSchema(op)
	for i := 0; i < lanes; i++ {
		s.ValueIn(CombineInputs[i], nil, ir.SigFloat)
	}
	return s.ValueOut(SocketValue, nil, out)
}

func extract(op string, lanes int, in string) *ir.OpSchema {
	s := ir.NewOpSchema(op).ValueIn(SocketA, nil, in)
	for i := 0; i < lanes; i++ {
		s.ValueOut(ExtractOutput(i), nil, ir.SigFloat)
	}
	return s
}

func mathOps() []*ir.OpSchema {
	ops := []*ir.OpSchema{
		binarySame(OpAdd, numeric...),
		binarySame(OpSub, numeric...),
		binarySame(OpMul, append(append([]string{}, numeric...), ir.SigFloat4x4)...),
		binarySame(OpDiv, numeric...),
		binarySame("math/rem", numeric...),
		binarySame("math/min", numeric...),
		binarySame("math/max", numeric...),
		binarySame("math/atan2", floatVectors...),

		ternarySame(OpMix, floatVectors...),
		ternarySame(OpClamp, numeric...),

		ir.NewOpSchema(OpSelect).
			ValueIn("condition", nil, ir.SigBool).
			ValueIn(SocketA, ir.SameAsInput(SocketB)).
			ValueIn(SocketB, ir.SameAsInput(SocketA)).
			ValueOut(SocketValue, ir.FromInput(SocketA)),

		compare(OpEq, ir.SigBool, ir.SigInt, ir.SigFloat, ir.SigFloat2, ir.SigFloat3, ir.SigFloat4, ir.SigFloat4x4),
		compare(OpLt, ir.SigInt, ir.SigFloat),
		compare("math/le", ir.SigInt, ir.SigFloat),
		compare("math/gt", ir.SigInt, ir.SigFloat),
		compare("math/ge", ir.SigInt, ir.SigFloat),

		binarySame("math/and", ir.SigBool, ir.SigInt),
		binarySame("math/or", ir.SigBool, ir.SigInt),
		binarySame("math/xor", ir.SigBool, ir.SigInt),
		unarySame("math/not", ir.SigBool, ir.SigInt),

		ir.NewOpSchema(OpDot).
			ValueIn(SocketA, ir.SameAsInput(SocketB), vectorsOnly...).
			ValueIn(SocketB, ir.SameAsInput(SocketA), vectorsOnly...).
			ValueOut(SocketValue, nil, ir.SigFloat),

		ir.NewOpSchema("math/cross").
			ValueIn(SocketA, nil, ir.SigFloat3).
			ValueIn(SocketB, nil, ir.SigFloat3).
			ValueOut(SocketValue, nil, ir.SigFloat3),

		ir.NewOpSchema("math/length").
			ValueIn(SocketA, nil, vectorsOnly...).
			ValueOut(SocketValue, nil, ir.SigFloat),

		ir.NewOpSchema("math/normalize").
			ValueIn(SocketA, nil, vectorsOnly...).
			ValueOut(SocketValue, ir.FromInput(SocketA), vectorsOnly...).
			ValueOut("isValid", nil, ir.SigBool),

		ir.NewOpSchema("math/isNaN").
			ValueIn(SocketA, nil, ir.SigFloat).
			ValueOut(SocketValue, nil, ir.SigBool),

		unarySame("math/abs", ir.SigInt, ir.SigFloat, ir.SigFloat2, ir.SigFloat3, ir.SigFloat4),
		unarySame("math/neg", ir.SigInt, ir.SigFloat, ir.SigFloat2, ir.SigFloat3, ir.SigFloat4),
		unarySame("math/sign", ir.SigInt, ir.SigFloat, ir.SigFloat2, ir.SigFloat3, ir.SigFloat4),

		constant("math/Pi"),
		constant("math/E"),
		constant("math/Inf"),
		constant("math/NaN"),

		combine(OpCombine2, 2, ir.SigFloat2),
		combine(OpCombine3, 3, ir.SigFloat3),
		combine(OpCombine4, 4, ir.SigFloat4),
		combine(OpCombine4x4, 16, ir.SigFloat4x4),
		extract(OpExtract2, 2, ir.SigFloat2),
		extract(OpExtract3, 3, ir.SigFloat3),
		extract(OpExtract4, 4, ir.SigFloat4),
		extract(OpExtract4x4, 16, ir.SigFloat4x4),

		ir.NewOpSchema(OpMatMul).
			ValueIn(SocketA, nil, ir.SigFloat4x4).
			ValueIn(SocketB, nil, ir.SigFloat4x4).
			ValueOut(SocketValue, nil, ir.SigFloat4x4),

		ir.NewOpSchema(OpTranspose).
			ValueIn(SocketA, nil, ir.SigFloat4x4).
			ValueOut(SocketValue, nil, ir.SigFloat4x4),

		ir.NewOpSchema(OpDeterminant).
			ValueIn(SocketA, nil, ir.SigFloat4x4).
			ValueOut(SocketValue, nil, ir.SigFloat),
	}

	for _, op := range []string{
		"math/sin", "math/cos", "math/tan", "math/asin", "math/acos", "math/atan",
		"math/exp", "math/log", "math/log2", "math/log10", "math/sqrt", "math/cbrt",
		"math/floor", "math/ceil", "math/round", "math/trunc", "math/fract", "math/saturate",
		"math/rad", "math/deg",
	} {
		ops = append(ops, unarySame(op, floatVectors...))
	}
	return ops
}
