package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapping", `Segue o resultado: {"a":1} conforme pedido.`, `{"a":1}`},
		{"no object", "sem json aqui", "sem json aqui"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}

func TestParseRecommendations(t *testing.T) {
	text := "```json\n" + `{
		"recommendations": [
			{
				"id": 99,
				"title": "Automação de Relatórios",
				"description": "Relatórios automáticos",
				"priority": "Alta",
				"tools": [{"name": "Zapier", "cost": "Pago", "difficulty": "Fácil"}]
			},
			{
				"title": "Backup Automático",
				"description": "Cópias diárias",
				"tools": []
			}
		]
	}` + "\n```"

	records, err := parseRecommendations(text)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// IDs are reassigned in order, response-carried IDs discarded.
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, 2, records[1].ID)
	assert.Equal(t, model.PriorityHigh, records[0].Priority)
	// Missing priority defaults to Média.
	assert.Equal(t, model.PriorityMedium, records[1].Priority)
	for _, r := range records {
		assert.Equal(t, model.ProvenanceExternalAI, r.Provenance)
	}
}

func TestParseRecommendations_Malformed(t *testing.T) {
	_, err := parseRecommendations("not json at all")
	require.Error(t, err)
}

func TestParseRecommendations_Empty(t *testing.T) {
	_, err := parseRecommendations(`{"recommendations": []}`)
	require.Error(t, err)
}

func TestParseRecommendations_MissingTitle(t *testing.T) {
	_, err := parseRecommendations(`{"recommendations": [{"title": "  ", "priority": "Alta"}]}`)
	require.Error(t, err)
}

func TestParseRecommendations_UnknownPriority(t *testing.T) {
	_, err := parseRecommendations(`{"recommendations": [{"title": "t", "priority": "Urgente"}]}`)
	require.Error(t, err)
}

func TestParseRecommendations_InvalidFlow(t *testing.T) {
	// Two trigger nodes violate the diagram invariant.
	_, err := parseRecommendations(`{"recommendations": [{
		"title": "t",
		"priority": "Alta",
		"flow_example": {
			"title": "f",
			"flow_data": {
				"nodes": [
					{"id": "a", "type": "trigger", "name": "A"},
					{"id": "b", "type": "trigger", "name": "B"}
				],
				"connections": [{"from": "a", "to": "b"}]
			}
		}
	}]}`)
	require.Error(t, err)
}
