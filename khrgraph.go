// Package khrgraph compiles behavior graphs into KHR_interactivity graph JSON.
//
// A behavior graph is a set of operation nodes joined by flow edges
// (control flow) and value edges (data flow). Compilation makes the graph
// serializable: value inputs get the types their operations demand
// (conversion nodes are inserted where needed), flow cycles are broken
// through custom events, unused nodes are removed, and the declaration
// and type tables are built and compacted.
//
// Example usage:
//
//	doc := []byte(`
//	nodes:
//	  - {id: start, op: event/onStart, flows: {out: log}}
//	  - {id: log, op: debug/log, configuration: {message: "hello"}}
//	`)
//	data, err := khrgraph.Compile(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Graphs built in code go through Lower directly:
//
//	g := ir.NewGraph(schema.Default())
//	// ... add nodes ...
//	result, err := khrgraph.Lower(g, khrgraph.DefaultOptions())
package khrgraph

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/khrgraph/gltf"
	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/passes"
	"github.com/gogpu/khrgraph/schema"
	"github.com/gogpu/khrgraph/source"
)

// CompileOptions configures graph compilation.
type CompileOptions struct {
	// Registry describes the operations. Nil uses schema.Default().
	Registry *ir.Registry

	// Resolver maps host references in authoring documents to indices.
	Resolver ir.IDResolver

	// Logger receives pass summaries and degraded-output warnings.
	// Nil uses slog.Default().
	Logger *slog.Logger

	// Validate checks the structural invariants before compiling.
	Validate bool

	// FoldConstants replaces constant combine and math nodes with literals.
	FoldConstants bool

	// Deduplicate merges pure nodes computing the same value and
	// pointer/get nodes reading the same property.
	Deduplicate bool

	// RemoveUnconnected removes nodes without any edge.
	RemoveUnconnected bool

	// MaxFixpointIterations bounds the conversion and clean-up loops.
	// Zero means passes.DefaultMaxIterations.
	MaxFixpointIterations int

	// BeforeSerialize runs after declarations are collected and before the
	// type table is compacted.
	BeforeSerialize func(*ir.Graph)

	// Indent is the JSON indent width. Zero writes compact JSON.
	Indent int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Validate:              true,
		FoldConstants:         true,
		Deduplicate:           true,
		RemoveUnconnected:     true,
		MaxFixpointIterations: passes.DefaultMaxIterations,
	}
}

// Stats summarizes what compilation did to a graph.
type Stats struct {
	NodesIn             int
	NodesOut            int
	ConversionsInserted int
	CyclesBroken        int
	NodesRemoved        int
	Declarations        int
	Types               int
}

// Result is the output of a compilation.
type Result struct {
	// Graph is the compiled graph.
	Graph *ir.Graph

	// JSON is the serialized graph.
	JSON []byte

	// Diagnostics lists recoverable problems. The output is still written,
	// but the parts they name may be unreliable.
	Diagnostics []ir.Diagnostic

	Stats Stats
}

// Compile compiles an authoring document using default options and
// returns the serialized graph.
func Compile(doc []byte) ([]byte, error) {
	result, err := CompileWithOptions(doc, DefaultOptions())
	if err != nil {
		return nil, err
	}
	return result.JSON, nil
}

// CompileWithOptions compiles an authoring document.
//
// The compilation pipeline is:
//  1. Parse the document into a graph
//  2. Lower the graph (see Lower)
//  3. Serialize it
func CompileWithOptions(doc []byte, opts CompileOptions) (*Result, error) {
	g, diags, err := Parse(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	result, err := Lower(g, opts)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = append(diags, result.Diagnostics...)
	return result, nil
}

// Parse reads an authoring document into a graph.
func Parse(doc []byte, opts CompileOptions) (*ir.Graph, []ir.Diagnostic, error) {
	return source.Parse(doc, source.Options{
		Registry: registry(opts),
		Resolver: opts.Resolver,
		Logger:   opts.Logger,
	})
}

// Lower compiles g in place and serializes it.
//
// The pipeline is:
//  1. Validate the graph (if enabled)
//  2. Order nodes so value sources come first
//  3. Insert type conversions
//  4. Break flow cycles
//  5. Run the clean-ups to a fixpoint
//  6. Order nodes again
//  7. Collect declarations
//  8. Run BeforeSerialize
//  9. Compact the type table
//  10. Check the compiled graph and serialize it
//
// Only structural failures are returned as errors. Everything the passes
// can degrade around is logged and reported in Result.Diagnostics.
func Lower(g *ir.Graph, opts CompileOptions) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("lowering error: %w", ir.NewError(ir.ErrInvalidGraph, "", "graph is nil"))
	}
	if g.Registry == nil {
		g.Registry = registry(opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Validate {
		validationErrors, err := Validate(g)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if len(validationErrors) > 0 {
			return nil, fmt.Errorf("validation failed: %w",
				ir.NewError(ir.ErrInvalidGraph, "", validationErrors[0].Error()))
		}
	}

	ctx := passes.NewContext(g, logger)
	ctx.MaxIterations = opts.MaxFixpointIterations
	stats := Stats{NodesIn: len(g.Nodes)}

	if err := passes.TopologicalSort(ctx); err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	stats.ConversionsInserted = passes.ResolveConversions(ctx)

	broken, err := passes.BreakFlowCycles(ctx)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	stats.CyclesBroken = broken

	if cleanUps := cleanUpsFor(opts); len(cleanUps) > 0 {
		stats.NodesRemoved = passes.RunCleanUps(ctx, cleanUps...)
	}
	if err := passes.TopologicalSort(ctx); err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}

	passes.CollectDeclarations(ctx)
	if opts.BeforeSerialize != nil {
		opts.BeforeSerialize(g)
	}
	passes.CompactTypes(ctx)

	for _, d := range ir.ValidateCompiled(g) {
		logger.Warn(d.Message, "kind", d.Kind.String(), "node", d.Node, "op", d.Op, "socket", d.Socket)
		ctx.Diagnostics = append(ctx.Diagnostics, d)
	}

	data, err := gltf.Compile(g, gltf.Options{Indent: opts.Indent})
	if err != nil {
		return nil, fmt.Errorf("serialization error: %w", err)
	}

	stats.NodesOut = len(g.Nodes)
	stats.Declarations = len(g.Declarations)
	stats.Types = g.Types.Len()
	logger.Debug("graph compiled",
		"nodes_in", stats.NodesIn, "nodes_out", stats.NodesOut,
		"conversions", stats.ConversionsInserted, "cycles", stats.CyclesBroken,
		"removed", stats.NodesRemoved, "diagnostics", len(ctx.Diagnostics))

	return &Result{Graph: g, JSON: data, Diagnostics: ctx.Diagnostics, Stats: stats}, nil
}

// Validate checks the structural invariants of a graph.
//
// Returns a slice of validation errors. If the slice is empty, validation passed.
func Validate(g *ir.Graph) ([]ir.ValidationError, error) {
	return ir.Validate(g)
}

func registry(opts CompileOptions) *ir.Registry {
	if opts.Registry != nil {
		return opts.Registry
	}
	return schema.Default()
}

func cleanUpsFor(opts CompileOptions) []passes.CleanUp {
	var out []passes.CleanUp
	if opts.FoldConstants {
		out = append(out, passes.FoldConstantCombines{}, passes.FoldConstantMath{})
	}
	if opts.Deduplicate {
		out = append(out, passes.DeduplicatePure{}, passes.DeduplicatePointerGets{})
	}
	if opts.RemoveUnconnected {
		out = append(out, passes.RemoveUnconnected{})
	}
	return out
}
