package advisor

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// parseRecommendations decodes a generation response into records. Any
// structural problem is an error; callers fall back to rule generation.
func parseRecommendations(text string) ([]model.RecommendationRecord, error) {
	var envelope struct {
		Recommendations []model.RecommendationRecord `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &envelope); err != nil {
		return nil, eris.Wrap(err, "advisor: parse response")
	}
	if len(envelope.Recommendations) == 0 {
		return nil, eris.New("advisor: response contains no recommendations")
	}

	for i := range envelope.Recommendations {
		rec := &envelope.Recommendations[i]
		if strings.TrimSpace(rec.Title) == "" {
			return nil, eris.Errorf("advisor: recommendation %d has no title", i+1)
		}
		switch rec.Priority {
		case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
		case "":
			rec.Priority = model.PriorityMedium
		default:
			return nil, eris.Errorf("advisor: recommendation %d has unknown priority %q", i+1, rec.Priority)
		}
		if rec.FlowExample != nil {
			if err := rec.FlowExample.Validate(); err != nil {
				return nil, eris.Wrapf(err, "advisor: recommendation %d", i+1)
			}
		}
		// Ordinal IDs are assigned in emission order regardless of what the
		// response carried.
		rec.ID = i + 1
		rec.Provenance = model.ProvenanceExternalAI
	}
	return envelope.Recommendations, nil
}
