// Package schema provides the built-in operation catalogue.
//
// The catalogue is constructed statically. Hosts call Default once and
// hand the registry to every compilation.
package schema

import (
	"sync"

	"github.com/gogpu/khrgraph/ir"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *ir.Registry
)

// Default returns the shared registry holding every built-in operation.
// The registry is fully populated before it is returned.
func Default() *ir.Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry builds a fresh registry holding every built-in operation.
func NewRegistry() *ir.Registry {
	var all []*ir.OpSchema
	all = append(all, eventOps()...)
	all = append(all, flowOps()...)
	all = append(all, variableOps()...)
	all = append(all, pointerOps()...)
	all = append(all, debugOps()...)
	all = append(all, mathOps()...)
	all = append(all, typeOps()...)
	all = append(all, videoOps()...)
	return ir.NewRegistry(all...)
}

// Commonly used socket names.
const (
	SocketA     = "a"
	SocketB     = "b"
	SocketC     = "c"
	SocketD     = "d"
	SocketValue = "value"
)

// Signature groups used across the catalogue.
var (
	floatVectors = []string{ir.SigFloat, ir.SigFloat2, ir.SigFloat3, ir.SigFloat4}
	vectorsOnly  = []string{ir.SigFloat2, ir.SigFloat3, ir.SigFloat4}
	numeric      = []string{ir.SigInt, ir.SigFloat, ir.SigFloat2, ir.SigFloat3, ir.SigFloat4}
)
