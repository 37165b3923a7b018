package ir

import "fmt"

// ErrorKind categorizes graph compilation errors.
type ErrorKind uint8

const (
	// ErrMissingDefaultSocket indicates an operation lacks its conventional
	// "in" or "out" flow socket while one was requested without a name.
	ErrMissingDefaultSocket ErrorKind = iota

	// ErrUnknownOp indicates the graph references an operation the
	// registry does not describe.
	ErrUnknownOp

	// ErrValueCycle indicates value connections form a cycle.
	ErrValueCycle

	// ErrInvalidGraph indicates the graph breaks a structural invariant.
	ErrInvalidGraph

	// ErrNodeReferenced indicates a removal request on a node that other
	// nodes still reference.
	ErrNodeReferenced

	// ErrDuplicateOp indicates an operation was registered twice.
	ErrDuplicateOp
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrMissingDefaultSocket:
		return "MissingDefaultSocket"
	case ErrUnknownOp:
		return "UnknownOp"
	case ErrValueCycle:
		return "ValueCycle"
	case ErrInvalidGraph:
		return "InvalidGraph"
	case ErrNodeReferenced:
		return "NodeReferenced"
	case ErrDuplicateOp:
		return "DuplicateOp"
	default:
		return "Unknown"
	}
}

// Error represents a graph compilation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Op is the operation involved, if any.
	Op string

	// Node is the node index involved, or -1.
	Node int

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Node >= 0 && e.Op != "":
		return fmt.Sprintf("graph %s at node %d (%s): %s", e.Kind, e.Node, e.Op, e.Message)
	case e.Op != "":
		return fmt.Sprintf("graph %s (%s): %s", e.Kind, e.Op, e.Message)
	default:
		return fmt.Sprintf("graph %s: %s", e.Kind, e.Message)
	}
}

// Is matches errors of the same kind, so errors.Is(err, &Error{Kind: k})
// works regardless of the other fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError creates an error that is not tied to a node.
func NewError(kind ErrorKind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Node: -1, Message: message}
}

// NewNodeError creates an error for a specific node.
func NewNodeError(kind ErrorKind, n *Node, format string, args ...any) *Error {
	e := &Error{Kind: kind, Node: -1, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Node = n.Index
		e.Op = n.Op
	}
	return e
}

// DiagnosticKind categorizes recoverable problems.
type DiagnosticKind uint8

const (
	// DiagUnresolvedType marks a socket whose type could not be resolved.
	DiagUnresolvedType DiagnosticKind = iota

	// DiagNoConversion marks a type mismatch with no synthesizable conversion.
	DiagNoConversion

	// DiagRemovalRefused marks a refused node removal.
	DiagRemovalRefused

	// DiagInvalidDeclaration marks a declaration socket with type -1.
	DiagInvalidDeclaration

	// DiagInvalidType marks a type index outside the type table.
	DiagInvalidType

	// DiagFixpointLimit marks a fixpoint loop stopped by its iteration bound.
	DiagFixpointLimit

	// DiagFlowCycle marks a flow cycle left after cycle breaking.
	DiagFlowCycle

	// DiagValidation marks a post-compile validation finding.
	DiagValidation

	// DiagUnresolvedRef marks an external reference that could not be resolved.
	DiagUnresolvedRef
)

// String returns a human-readable diagnostic kind name.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagUnresolvedType:
		return "UnresolvedType"
	case DiagNoConversion:
		return "NoConversion"
	case DiagRemovalRefused:
		return "RemovalRefused"
	case DiagInvalidDeclaration:
		return "InvalidDeclaration"
	case DiagInvalidType:
		return "InvalidType"
	case DiagFixpointLimit:
		return "FixpointLimit"
	case DiagFlowCycle:
		return "FlowCycle"
	case DiagValidation:
		return "Validation"
	case DiagUnresolvedRef:
		return "UnresolvedRef"
	default:
		return "Unknown"
	}
}

// Diagnostic is a recoverable problem. The export continues, but the
// affected part of the output may be unreliable.
type Diagnostic struct {
	Kind    DiagnosticKind
	Node    int // -1 when not tied to a node
	Op      string
	Socket  string
	Message string
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	switch {
	case d.Node >= 0 && d.Socket != "":
		return fmt.Sprintf("%s: node %d (%s) socket %q: %s", d.Kind, d.Node, d.Op, d.Socket, d.Message)
	case d.Node >= 0:
		return fmt.Sprintf("%s: node %d (%s): %s", d.Kind, d.Node, d.Op, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
}
