package schema

import "github.com/gogpu/khrgraph/ir"

// Variable, pointer and debug operations.
const (
	OpVariableGet = "variable/get"
	OpVariableSet = "variable/set"
	OpPointerGet  = "pointer/get"
	OpPointerSet  = "pointer/set"
	OpDebugLog    = "debug/log"
)

// ConfigPointer holds the JSON pointer template of pointer nodes.
const ConfigPointer = "pointer"

func variableOps() []*ir.OpSchema {
	return []*ir.OpSchema{
		ir.NewOpSchema(OpVariableGet).
			Config(ir.ConfigVariable, -1).
			ValueOut(SocketValue, nil),

		ir.NewOpSchema(OpVariableSet).
			Config(ir.ConfigVariables, []int{}).
			FlowIn(ir.FlowInDefault).
			FlowOut(ir.FlowOutDefault),
	}
}

func pointerOps() []*ir.OpSchema {
	return []*ir.OpSchema{
		ir.NewOpSchema(OpPointerGet).
			Config(ConfigPointer, "").
			Config(ir.ConfigType, -1).
			ValueOut(SocketValue, nil).
			ValueOut("isValid", nil, ir.SigBool),

		ir.NewOpSchema(OpPointerSet).
			Config(ConfigPointer, "").
			Config(ir.ConfigType, -1).
			FlowIn(ir.FlowInDefault).
			FlowOut(ir.FlowOutDefault, "err").
			ValueIn(SocketValue, nil),
	}
}

func debugOps() []*ir.OpSchema {
	return []*ir.OpSchema{
		// Value sockets for message placeholders are added per node.
		ir.NewOpSchema(OpDebugLog).
			Config(ir.ConfigMessage, "").
			Config("severity", 0).
			FlowIn(ir.FlowInDefault).
			FlowOut(ir.FlowOutDefault),
	}
}
