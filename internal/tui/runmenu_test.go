package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunAction_ScopeShapes(t *testing.T) {
	assert.Equal(t, "orders", RunModel.Scope("orders"))
	assert.Equal(t, "+orders", RunWithUpstream.Scope("orders"))
	assert.Equal(t, "orders+", RunWithDownstream.Scope("orders"))
	assert.Equal(t, "+orders+", RunAllConnected.Scope("orders"))
	assert.Equal(t, "orders", RunTest.Scope("orders"))
}

func TestRunMenuActions_FixedOrder(t *testing.T) {
	assert.Len(t, RunMenuActions, 5)
	assert.Equal(t, RunModel, RunMenuActions[0])
	assert.Equal(t, RunTest, RunMenuActions[len(RunMenuActions)-1])
}
