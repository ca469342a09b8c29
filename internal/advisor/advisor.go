// Package advisor turns free-text process descriptions into automation
// recommendations, preferring external generation and falling back to the
// local rule pack when that path fails.
package advisor

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/advisor/fallback"
	"github.com/Mayconxzdev/automation-advisor/internal/config"
	"github.com/Mayconxzdev/automation-advisor/internal/model"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
	"github.com/Mayconxzdev/automation-advisor/pkg/anthropic"
)

// ErrInvalidInput is returned when the process description is empty.
var ErrInvalidInput = eris.New("advisor: empty process description")

// Advisor orchestrates generation, fallback and persistence.
type Advisor struct {
	client    anthropic.Client // nil when external generation is not configured
	generator *fallback.Generator
	store     store.Store
	model     string
	maxTokens int64
	timeout   time.Duration
}

// Result is the response envelope for one generation request.
type Result struct {
	Records []model.RecommendationRecord `json:"recommendations"`
	// AIGenerated is true for every response the advisor produces,
	// including rule-generated ones.
	AIGenerated    bool `json:"ai_generated"`
	ExternalAIUsed bool `json:"external_ai_used"`
}

// New creates an Advisor. client may be nil, in which case every request is
// served by the rule generator.
func New(cfg *config.Config, client anthropic.Client, st store.Store) (*Advisor, error) {
	gen, err := fallback.New()
	if err != nil {
		return nil, err
	}
	return &Advisor{
		client:    client,
		generator: gen,
		store:     st,
		model:     cfg.Anthropic.Model,
		maxTokens: int64(cfg.Generate.MaxTokens),
		timeout:   cfg.Generate.Timeout(),
	}, nil
}

// Produce generates recommendations for the description, persists them under
// userID and returns the response envelope. The request degrades to rule
// generation on any external failure; the only surfaced errors are invalid
// input and persistence failure.
func (a *Advisor) Produce(ctx context.Context, userID int64, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrInvalidInput
	}

	records, external := a.generate(ctx, description)

	if _, err := a.store.SaveRecommendations(ctx, userID, description, records); err != nil {
		return nil, eris.Wrap(err, "advisor: persist recommendations")
	}

	return &Result{
		Records:        records,
		AIGenerated:    true,
		ExternalAIUsed: external,
	}, nil
}

func (a *Advisor) generate(ctx context.Context, description string) ([]model.RecommendationRecord, bool) {
	if a.client == nil {
		return a.generator.Generate(description), false
	}

	outcome := callBounded(ctx, a.client, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildUserPrompt(description)},
		},
	}, a.timeout)

	if outcome.Disposition != DispositionSuccess {
		zap.L().Warn("external generation failed, using rule generator",
			zap.String("disposition", string(outcome.Disposition)),
			zap.Error(outcome.Err),
		)
		return a.generator.Generate(description), false
	}

	outcome.Usage.LogCost(a.model)

	records, err := parseRecommendations(outcome.Text)
	if err != nil {
		zap.L().Warn("unusable generation response, using rule generator",
			zap.Error(err),
		)
		return a.generator.Generate(description), false
	}
	return records, true
}
