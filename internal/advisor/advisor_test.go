package advisor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayconxzdev/automation-advisor/internal/config"
	"github.com/Mayconxzdev/automation-advisor/internal/model"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{Model: "claude-haiku-4-5-20251001"},
		Generate:  config.GenerateConfig{TimeoutSecs: 120, MaxTokens: 4096},
	}
}

func newTestStore(t *testing.T) (store.Store, int64) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "advisor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))
	u, err := st.CreateUser(ctx, "demo", "demo@example.com", "hash", "Empresa Demo")
	require.NoError(t, err)
	return st, u.ID
}

func TestProduce_EmptyDescription(t *testing.T) {
	st, userID := newTestStore(t)
	a, err := New(newTestConfig(), nil, st)
	require.NoError(t, err)

	_, err = a.Produce(context.Background(), userID, "   ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestProduce_NoClient_UsesRules(t *testing.T) {
	st, userID := newTestStore(t)
	a, err := New(newTestConfig(), nil, st)
	require.NoError(t, err)

	res, err := a.Produce(context.Background(), userID, "Preciso automatizar emissão de nota fiscal")
	require.NoError(t, err)
	require.NotEmpty(t, res.Records)
	assert.True(t, res.AIGenerated)
	assert.False(t, res.ExternalAIUsed)
	assert.Equal(t, "Automação Completa de Emissão de Nota Fiscal", res.Records[0].Title)

	// The records were persisted under the user.
	stored, err := st.ListRecommendations(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Len(t, stored, len(res.Records))
	for _, r := range stored {
		assert.True(t, r.AIGenerated)
		assert.False(t, r.ExternalAIUsed)
	}
}

func TestProduce_ExternalSuccess(t *testing.T) {
	st, userID := newTestStore(t)
	client := &fakeClient{response: textResponse(`{
		"recommendations": [
			{"title": "Integração de Pedidos", "priority": "Alta", "tools": []},
			{"title": "Alertas de Estoque", "priority": "Baixa", "tools": []}
		]
	}`)}
	a, err := New(newTestConfig(), client, st)
	require.NoError(t, err)

	res, err := a.Produce(context.Background(), userID, "controle de estoque da loja")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.True(t, res.AIGenerated)
	assert.True(t, res.ExternalAIUsed)
	assert.Equal(t, 1, res.Records[0].ID)
	assert.Equal(t, model.ProvenanceExternalAI, res.Records[0].Provenance)

	stored, err := st.ListRecommendations(context.Background(), userID, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, r := range stored {
		assert.True(t, r.ExternalAIUsed)
	}
}

func TestProduce_MalformedResponse_FallsBack(t *testing.T) {
	st, userID := newTestStore(t)
	client := &fakeClient{response: textResponse("desculpe, não consigo")}
	a, err := New(newTestConfig(), client, st)
	require.NoError(t, err)

	res, err := a.Produce(context.Background(), userID, "gerar relatório de vendas")
	require.NoError(t, err)
	require.NotEmpty(t, res.Records)
	assert.True(t, res.AIGenerated)
	assert.False(t, res.ExternalAIUsed)
	assert.Equal(t, model.ProvenanceFallback, res.Records[0].Provenance)
}

func TestProduce_TransportError_FallsBack(t *testing.T) {
	st, userID := newTestStore(t)
	client := &fakeClient{err: context.DeadlineExceeded}
	a, err := New(newTestConfig(), client, st)
	require.NoError(t, err)

	res, err := a.Produce(context.Background(), userID, "backup dos arquivos")
	require.NoError(t, err)
	assert.False(t, res.ExternalAIUsed)
	assert.NotEmpty(t, res.Records)
}

func TestProduce_PersistenceFailure(t *testing.T) {
	st, userID := newTestStore(t)
	a, err := New(newTestConfig(), nil, st)
	require.NoError(t, err)

	require.NoError(t, st.Close())

	_, err = a.Produce(context.Background(), userID, "emissão de nota fiscal")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}
