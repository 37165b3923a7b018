package schema

import "github.com/gogpu/khrgraph/ir"

// Scalar type conversion operations.
const (
	OpIntToFloat  = "type/intToFloat"
	OpIntToBool   = "type/intToBool"
	OpFloatToInt  = "type/floatToInt"
	OpFloatToBool = "type/floatToBool"
	OpBoolToInt   = "type/boolToInt"
	OpBoolToFloat = "type/boolToFloat"
)

// ConversionOp returns the operation converting between two signatures,
// or "" when none exists. Scalar pairs map to a single-input type/*
// operation; any scalar to a vector maps to the combine operation of the
// target width.
func ConversionOp(from, to string) string {
	switch {
	case from == ir.SigInt && to == ir.SigFloat:
		return OpIntToFloat
	case from == ir.SigInt && to == ir.SigBool:
		return OpIntToBool
	case from == ir.SigFloat && to == ir.SigInt:
		return OpFloatToInt
	case from == ir.SigFloat && to == ir.SigBool:
		return OpFloatToBool
	case from == ir.SigBool && to == ir.SigInt:
		return OpBoolToInt
	case from == ir.SigBool && to == ir.SigFloat:
		return OpBoolToFloat
	case ir.IsVector(to):
		return CombineOp(to)
	}
	return ""
}

func conversion(op, from, to string) *ir.OpSchema {
	return ir.NewOpSchema(op).
		ValueIn(SocketA, nil, from).
		ValueOut(SocketValue, nil, to)
}

func typeOps() []*ir.OpSchema {
	return []*ir.OpSchema{
		conversion(OpIntToFloat, ir.SigInt, ir.SigFloat),
		conversion(OpIntToBool, ir.SigInt, ir.SigBool),
		conversion(OpFloatToInt, ir.SigFloat, ir.SigInt),
		conversion(OpFloatToBool, ir.SigFloat, ir.SigBool),
		conversion(OpBoolToInt, ir.SigBool, ir.SigInt),
		conversion(OpBoolToFloat, ir.SigBool, ir.SigFloat),
	}
}
