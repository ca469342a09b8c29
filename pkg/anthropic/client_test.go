package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: `{"recommendations":`},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: `[]}`},
		},
	}
	assert.Equal(t, `{"recommendations":[]}`, resp.Text())
}

func TestTokenUsage_EstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost := usage.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 0.0001)

	assert.Zero(t, usage.EstimateCost("unknown-model"))
}
