package ir

import (
	"fmt"
	"slices"
	"sync"

	"cogentcore.org/core/base/ordmap"
)

// Default flow socket names.
const (
	FlowInDefault  = "in"
	FlowOutDefault = "out"
)

// TypeRestriction constrains the type an input socket must carry.
// Exactly one of LimitTo and SameAs is set.
type TypeRestriction struct {
	// LimitTo is the signature the socket must have.
	LimitTo string

	// SameAs names a sibling input socket whose type this socket follows.
	SameAs string
}

// LimitToType restricts a socket to one signature.
func LimitToType(sig string) *TypeRestriction {
	return &TypeRestriction{LimitTo: sig}
}

// SameAsInput restricts a socket to the type of a sibling input socket.
func SameAsInput(socket string) *TypeRestriction {
	return &TypeRestriction{SameAs: socket}
}

// ExpectedRule describes, at schema level, how an output socket's type
// is derived: a fixed signature or the type of a named input socket.
type ExpectedRule struct {
	Signature string
	FromInput string
}

// FixedType is an ExpectedRule with a fixed signature.
func FixedType(sig string) *ExpectedRule {
	return &ExpectedRule{Signature: sig}
}

// FromInput is an ExpectedRule following the named input socket.
func FromInput(socket string) *ExpectedRule {
	return &ExpectedRule{FromInput: socket}
}

// ConfigDescriptor describes a configuration entry.
type ConfigDescriptor struct {
	Default any
}

// InputDescriptor describes an input value socket.
type InputDescriptor struct {
	SupportedTypes []string
	Restriction    *TypeRestriction
}

// OutputDescriptor describes an output value socket.
type OutputDescriptor struct {
	SupportedTypes []string
	Expected       *ExpectedRule
}

// OpSchema is the fixed socket shape of one operation.
type OpSchema struct {
	Op        string
	Extension string

	Configuration *ordmap.Map[string, ConfigDescriptor]
	InputFlows    []string
	OutputFlows   []string
	InputValues   *ordmap.Map[string, InputDescriptor]
	OutputValues  *ordmap.Map[string, OutputDescriptor]
}

// NewOpSchema starts an empty schema for op.
func NewOpSchema(op string) *OpSchema {
	return &OpSchema{
		Op:            op,
		Configuration: ordmap.New[string, ConfigDescriptor](),
		InputValues:   ordmap.New[string, InputDescriptor](),
		OutputValues:  ordmap.New[string, OutputDescriptor](),
	}
}

// WithExtension marks the operation as namespaced by a glTF extension.
func (s *OpSchema) WithExtension(ext string) *OpSchema {
	s.Extension = ext
	return s
}

// Config adds a configuration entry with a default value.
func (s *OpSchema) Config(name string, def any) *OpSchema {
	s.Configuration.Add(name, ConfigDescriptor{Default: def})
	return s
}

// FlowIn adds input flow sockets.
func (s *OpSchema) FlowIn(names ...string) *OpSchema {
	s.InputFlows = append(s.InputFlows, names...)
	return s
}

// FlowOut adds output flow sockets.
func (s *OpSchema) FlowOut(names ...string) *OpSchema {
	s.OutputFlows = append(s.OutputFlows, names...)
	return s
}

// ValueIn adds an input value socket. With no types every signature is
// allowed; with exactly one type and no explicit restriction the socket
// is limited to that type.
func (s *OpSchema) ValueIn(name string, r *TypeRestriction, types ...string) *OpSchema {
	if len(types) == 0 {
		types = AllSignatures
	}
	if r == nil && len(types) == 1 {
		r = LimitToType(types[0])
	}
	s.InputValues.Add(name, InputDescriptor{SupportedTypes: types, Restriction: r})
	return s
}

// ValueOut adds an output value socket. With exactly one type and no
// explicit rule the output has that fixed type.
func (s *OpSchema) ValueOut(name string, e *ExpectedRule, types ...string) *OpSchema {
	if len(types) == 0 {
		types = AllSignatures
	}
	if e == nil && len(types) == 1 {
		e = FixedType(types[0])
	}
	s.OutputValues.Add(name, OutputDescriptor{SupportedTypes: types, Expected: e})
	return s
}

// HasInputFlow reports whether the schema declares the input flow socket.
func (s *OpSchema) HasInputFlow(name string) bool {
	return slices.Contains(s.InputFlows, name)
}

// HasOutputFlow reports whether the schema declares the output flow socket.
func (s *OpSchema) HasOutputFlow(name string) bool {
	return slices.Contains(s.OutputFlows, name)
}

// Registry maps operation names to schemas. It is safe for concurrent
// use, so one registry can serve several compilations at once.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*OpSchema
}

// NewRegistry creates a registry holding the given schemas.
// It panics on duplicate ops, which are programming errors.
func NewRegistry(schemas ...*OpSchema) *Registry {
	r := &Registry{schemas: make(map[string]*OpSchema, len(schemas))}
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a schema. Registering an op twice is an error.
func (r *Registry) Register(s *OpSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[s.Op]; exists {
		return NewError(ErrDuplicateOp, s.Op, "operation already registered")
	}
	r.schemas[s.Op] = s
	return nil
}

// Lookup finds the schema for op.
func (r *Registry) Lookup(op string) (*OpSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[op]
	return s, ok
}

// LookupOp finds the schema for op or returns an ErrUnknownOp error.
func (r *Registry) LookupOp(op string) (*OpSchema, error) {
	s, ok := r.Lookup(op)
	if !ok {
		return nil, NewError(ErrUnknownOp, op, fmt.Sprintf("operation %q is not registered", op))
	}
	return s, nil
}

// Ops returns all registered operation names, sorted.
func (r *Registry) Ops() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops := make([]string, 0, len(r.schemas))
	for op := range r.schemas {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// Count returns the number of registered operations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
