// Package ir defines the intermediate representation for khrgraph.
//
// The IR is a behavior graph: nodes that sequence execution through flow
// sockets and exchange typed data through value sockets.
//
// # Structure
//
// A Graph contains:
//   - Types: the type table; a TypeIndex is the only identity of a type
//   - Nodes: operation instances, dense by index
//   - Variables: graph-scope variables
//   - Events: custom events that nodes send and receive
//   - Declarations: the deduplicated opcode table
//
// Socket and configuration maps are insertion ordered, since the order
// in which they are serialized is observable.
//
// # Operations
//
// Nodes are created from an OpSchema held by a Registry. The schema
// fixes the socket shape, the types a socket accepts and how the type of
// an output follows from the inputs.
//
// # Compilation Pipeline
//
// The typical pipeline is:
//
//	Authoring graph → IR → passes → KHR_interactivity JSON
//
// The passes package mutates the IR in place; Validate and
// ValidateCompiled check it before and after.
package ir
