// Package gltf implements the KHR_interactivity graph encoding.
//
// The writer turns a compiled graph into the JSON object stored under
// the extension's "graphs" array. The reader decodes that object back
// into an ir.Graph so compiled output can be inspected and compared.
//
// # Usage
//
//	data, err := gltf.Compile(graph, gltf.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
//	back, err := gltf.Read(data, schema.Default())
//
// # Wire Shape
//
// The top-level object holds, in this order:
//
//	types         [{signature, extensions?}]
//	variables     [{id, type, value}]
//	events        [{id, values: {name: {type, value}}}]
//	declarations  [{op, extension?, inputValueSockets?, outputValueSockets?}]
//	nodes         [{declaration, configuration?, values?, flows?}]
//
// Literal values are always arrays: a float3 is [x, y, z], a float4x4 is
// sixteen floats in column-major order, an int[] is the list of ints and
// a string configuration is a one-element array. Non-finite floats are
// written as null.
package gltf
