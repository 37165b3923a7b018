package schema

import "github.com/gogpu/khrgraph/ir"

// Flow control operations.
const (
	OpSequence = "flow/sequence"
	OpBranch   = "flow/branch"
	OpForLoop  = "flow/forLoop"
	OpDoN      = "flow/doN"
)

func flowOps() []*ir.OpSchema {
	return []*ir.OpSchema{
		// Output flows of a sequence are added per node.
		ir.NewOpSchema(OpSequence).
			FlowIn(ir.FlowInDefault),

		ir.NewOpSchema(OpBranch).
			FlowIn(ir.FlowInDefault).
			FlowOut("true", "false").
			ValueIn("condition", nil, ir.SigBool),

		ir.NewOpSchema(OpForLoop).
			Config("initialIndex", 0).
			FlowIn(ir.FlowInDefault).
			FlowOut("loopBody", "completed").
			ValueIn("startIndex", nil, ir.SigInt).
			ValueIn("endIndex", nil, ir.SigInt).
			ValueOut("index", nil, ir.SigInt),

		ir.NewOpSchema(OpDoN).
			FlowIn(ir.FlowInDefault, "reset").
			FlowOut(ir.FlowOutDefault).
			ValueIn("n", nil, ir.SigInt).
			ValueOut("currentCount", nil, ir.SigInt),
	}
}
