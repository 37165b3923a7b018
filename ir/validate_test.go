package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidGraph(t *testing.T) {
	g := testGraph()
	start := mustAdd(g, "event/onStart")
	log := mustAdd(g, "debug/log")
	start.ConnectFlow(FlowOutDefault, log, FlowInDefault)
	sin := mustAdd(g, "math/sin")
	g.SetValue(sin, "a", float32(1))

	errs, err := Validate(g)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidate_NilGraph(t *testing.T) {
	_, err := Validate(nil)
	assert.Error(t, err)
}

func TestValidate_StructuralErrors(t *testing.T) {
	g := testGraph()
	a := mustAdd(g, "math/sin")
	b := mustAdd(g, "event/onStart")

	a.Values.ValueByKey("a").Node = 9
	a.Values.ValueByKey("a").Value = float32(1)
	b.Flow(FlowOutDefault).Node = 5
	g.AppendBareNode("vendor/unknown", "")
	g.Variables = append(g.Variables, &Variable{ID: "v", Type: 99})

	errs, err := Validate(g)
	require.NoError(t, err)

	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	assert.Contains(t, msgs, `node 0, socket "a": socket has both a literal and a connection`)
	assert.Contains(t, msgs, `node 0, socket "a": connection to node 9 out of range`)
	assert.Contains(t, msgs, `node 1, socket "out": flow to node 5 out of range`)
	assert.Contains(t, msgs, `node 2: unknown operation "vendor/unknown"`)
	assert.Contains(t, msgs, `variable "v" has invalid type 99`)
}

func TestValidate_IndexMismatch(t *testing.T) {
	g := testGraph()
	n := mustAdd(g, "math/sin")
	n.Index = 4

	errs, err := Validate(g)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "node 0: node reports index 4", errs[0].Error())
}

func TestValidateCompiled(t *testing.T) {
	g := testGraph()

	log := mustAdd(g, "debug/log")
	log.SetConfig(ConfigMessage, "hp={hp} mp={mp} {}")
	g.SetValue(log, "hp", 10)

	sin := mustAdd(g, "math/sin")
	sin.Values.ValueByKey("a").Value = nil

	get := mustAdd(g, "variable/get")
	get.SetConfig(ConfigVariable, -1)

	send := mustAdd(g, "event/send")
	send.SetConfig(ConfigEvent, nil)

	g.Variables = append(g.Variables, &Variable{ID: "lost", Type: UnknownType})

	diags := ValidateCompiled(g)

	var msgs []string
	for _, d := range diags {
		assert.Equal(t, DiagValidation, d.Kind)
		msgs = append(msgs, d.String())
	}
	assert.Contains(t, msgs, `Validation: node 0 (debug/log) socket "mp": message placeholder has no matching value socket`)
	assert.Contains(t, msgs, `Validation: node 1 (math/sin) socket "a": socket has no connection and no value`)
	assert.Contains(t, msgs, `Validation: node 2 (variable/get): invalid variable index -1`)
	assert.Contains(t, msgs, `Validation: node 3 (event/send): configuration "event" has no value`)
	assert.Contains(t, msgs, `Validation: variable "lost" has invalid type (-1)`)
	assert.Len(t, msgs, 5)
}
