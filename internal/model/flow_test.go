package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagram(nodes []FlowNode, conns []FlowConnection) *FlowDiagram {
	return &FlowDiagram{
		Title:    "Fluxo de Teste",
		FlowData: FlowData{Nodes: nodes, Connections: conns},
	}
}

func TestFlowDiagramValidate_OK(t *testing.T) {
	d := diagram(
		[]FlowNode{
			{ID: "start", Type: NodeTrigger, Name: "Venda"},
			{ID: "check", Type: NodeCondition, Name: "Dados OK?"},
			{ID: "emit", Type: NodeAction, Name: "Emitir NFe"},
		},
		[]FlowConnection{
			{From: "start", To: "check"},
			{From: "check", To: "emit", Condition: "sim"},
		},
	)
	require.NoError(t, d.Validate())
}

func TestFlowDiagramValidate_Empty(t *testing.T) {
	d := diagram(nil, nil)
	assert.ErrorContains(t, d.Validate(), "no nodes")
}

func TestFlowDiagramValidate_EmptyNodeID(t *testing.T) {
	d := diagram([]FlowNode{{ID: "", Type: NodeTrigger, Name: "X"}}, nil)
	assert.ErrorContains(t, d.Validate(), "empty id")
}

func TestFlowDiagramValidate_DuplicateNodeID(t *testing.T) {
	d := diagram(
		[]FlowNode{
			{ID: "a", Type: NodeTrigger, Name: "A"},
			{ID: "a", Type: NodeAction, Name: "B"},
		},
		nil,
	)
	assert.ErrorContains(t, d.Validate(), "duplicate node id")
}

func TestFlowDiagramValidate_TriggerCount(t *testing.T) {
	// Zero triggers.
	d := diagram([]FlowNode{{ID: "a", Type: NodeAction, Name: "A"}}, nil)
	assert.ErrorContains(t, d.Validate(), "exactly one trigger")

	// Two triggers.
	d = diagram(
		[]FlowNode{
			{ID: "a", Type: NodeTrigger, Name: "A"},
			{ID: "b", Type: NodeTrigger, Name: "B"},
		},
		[]FlowConnection{{From: "a", To: "b"}},
	)
	assert.ErrorContains(t, d.Validate(), "exactly one trigger")
}

func TestFlowDiagramValidate_ConnectionToUnknownNode(t *testing.T) {
	d := diagram(
		[]FlowNode{
			{ID: "a", Type: NodeTrigger, Name: "A"},
			{ID: "b", Type: NodeAction, Name: "B"},
		},
		[]FlowConnection{{From: "a", To: "ghost"}},
	)
	assert.ErrorContains(t, d.Validate(), "unknown node")
}

func TestFlowDiagramValidate_Disconnected(t *testing.T) {
	d := diagram(
		[]FlowNode{
			{ID: "a", Type: NodeTrigger, Name: "A"},
			{ID: "b", Type: NodeAction, Name: "B"},
			{ID: "c", Type: NodeAction, Name: "C"},
		},
		[]FlowConnection{{From: "a", To: "b"}},
	)
	assert.ErrorContains(t, d.Validate(), "not connected")
}

func TestFlowDiagramValidate_BranchAndMergeCycle(t *testing.T) {
	// Retry loops back through the condition; still one connected component.
	d := diagram(
		[]FlowNode{
			{ID: "start", Type: NodeTrigger, Name: "Início"},
			{ID: "try", Type: NodeAction, Name: "Tentar"},
			{ID: "ok", Type: NodeCondition, Name: "Sucesso?"},
		},
		[]FlowConnection{
			{From: "start", To: "try"},
			{From: "try", To: "ok"},
			{From: "ok", To: "try", Condition: "não"},
		},
	)
	require.NoError(t, d.Validate())
}

func TestSingleTriggerOnlyCountsTriggerType(t *testing.T) {
	// Conditions and actions never count toward the trigger budget.
	d := diagram(
		[]FlowNode{
			{ID: "t", Type: NodeTrigger, Name: "T"},
			{ID: "c1", Type: NodeCondition, Name: "C1"},
			{ID: "c2", Type: NodeCondition, Name: "C2"},
		},
		[]FlowConnection{
			{From: "t", To: "c1"},
			{From: "t", To: "c2"},
		},
	)
	require.NoError(t, d.Validate())
}
