package ir

// testRegistry holds a few operations shaped like the built-in catalogue.
func testRegistry() *Registry {
	return NewRegistry(
		NewOpSchema("event/onStart").FlowOut(FlowOutDefault),
		NewOpSchema("flow/sequence").FlowIn(FlowInDefault).FlowOut("0", "1"),
		NewOpSchema("debug/log").FlowIn(FlowInDefault).FlowOut(FlowOutDefault).Config(ConfigMessage, ""),
		NewOpSchema("math/add").
			ValueIn("a", nil, SigInt, SigFloat, SigFloat2, SigFloat3, SigFloat4).
			ValueIn("b", SameAsInput("a"), SigInt, SigFloat, SigFloat2, SigFloat3, SigFloat4).
			ValueOut("value", FromInput("a")),
		NewOpSchema("math/sin").
			ValueIn("a", nil, SigFloat).
			ValueOut("value", nil, SigFloat),
		NewOpSchema("math/eq").
			ValueIn("a", nil).
			ValueIn("b", SameAsInput("a")).
			ValueOut("value", nil, SigBool),
		NewOpSchema("variable/get").Config(ConfigVariable, -1).ValueOut("value", nil),
		NewOpSchema("pointer/get").Config("pointer", "").Config(ConfigType, -1).ValueOut("value", nil),
		NewOpSchema("event/send").FlowIn(FlowInDefault).FlowOut(FlowOutDefault).Config(ConfigEvent, -1),
	)
}

func testGraph() *Graph {
	return NewGraph(testRegistry())
}

func mustAdd(g *Graph, op string) *Node {
	n, err := g.AddNode(op)
	if err != nil {
		panic(err)
	}
	return n
}
