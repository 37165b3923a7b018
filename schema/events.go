package schema

import "github.com/gogpu/khrgraph/ir"

// Event operations.
const (
	OpOnStart      = "event/onStart"
	OpOnTick       = "event/onTick"
	OpEventSend    = "event/send"
	OpEventReceive = "event/receive"
)

func eventOps() []*ir.OpSchema {
	return []*ir.OpSchema{
		ir.NewOpSchema(OpOnStart).
			FlowOut(ir.FlowOutDefault),

		ir.NewOpSchema(OpOnTick).
			FlowOut(ir.FlowOutDefault).
			ValueOut("timeSinceStart", nil, ir.SigFloat).
			ValueOut("timeSinceLastTick", nil, ir.SigFloat),

		ir.NewOpSchema(OpEventSend).
			Config(ir.ConfigEvent, -1).
			FlowIn(ir.FlowInDefault).
			FlowOut(ir.FlowOutDefault),

		ir.NewOpSchema(OpEventReceive).
			Config(ir.ConfigEvent, -1).
			FlowOut(ir.FlowOutDefault),
	}
}
