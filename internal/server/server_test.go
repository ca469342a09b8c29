package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayconxzdev/automation-advisor/internal/advisor"
	"github.com/Mayconxzdev/automation-advisor/internal/analytics"
	"github.com/Mayconxzdev/automation-advisor/internal/auth"
	"github.com/Mayconxzdev/automation-advisor/internal/config"
	"github.com/Mayconxzdev/automation-advisor/internal/model"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

type testEnv struct {
	srv    *httptest.Server
	store  store.Store
	cookie *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Store:     config.StoreConfig{Driver: "sqlite"},
		Server:    config.ServerConfig{AllowedOrigins: []string{"*"}},
		Anthropic: config.AnthropicConfig{Model: "claude-haiku-4-5-20251001"},
		Generate:  config.GenerateConfig{TimeoutSecs: 120, MaxTokens: 4096},
		Auth:      config.AuthConfig{SessionTTLHours: 24, LoginRatePerMin: 600, LoginBurst: 100},
	}

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	hash, err := auth.HashPassword("demo123")
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, "demo", "demo@example.com", hash, "Empresa Demo")
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, "other", "other@example.com", hash, "Outra Empresa")
	require.NoError(t, err)

	adv, err := advisor.New(cfg, nil, st)
	require.NoError(t, err)
	authSvc := auth.NewService(st, cfg.Auth.SessionTTL(), cfg.Auth.LoginRatePerMin, cfg.Auth.LoginBurst)

	s := New(cfg, st, adv, authSvc, analytics.NewService(st))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	env := &testEnv{srv: srv, store: st}
	env.cookie = env.login(t, "demo", "demo123")
	return env
}

func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	resp, err := http.Post(e.srv.URL+"/api/login", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck

	var decoded map[string]any
	if resp.Header.Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/user/recommendations", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/login",
		map[string]string{"username": "demo", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/logout", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/me", nil, env.cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGenerateRecommendations(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/generate-recommendations",
		map[string]string{"description": "Preciso automatizar emissão de nota fiscal"}, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "success", body["status"])
	assert.Equal(t, true, body["ai_generated"])
	assert.Equal(t, false, body["external_ai_used"])
	recs, ok := body["recommendations"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, recs)
	first := recs[0].(map[string]any)
	assert.Equal(t, "Automação Completa de Emissão de Nota Fiscal", first["title"])
	assert.Equal(t, "Alta", first["priority"])
}

func TestGenerateRecommendations_EmptyDescription(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/generate-recommendations",
		map[string]string{"description": "  "}, env.cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
}

func TestRecommendationListAndDelete(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/generate-recommendations",
		map[string]string{"description": "relatório de vendas"}, env.cookie)

	resp, body := env.do(t, http.MethodGet, "/api/user/recommendations?limit=1", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := body["recommendations"].([]any)
	require.Len(t, recs, 1)
	id := int64(recs[0].(map[string]any)["id"].(float64))

	// Another user cannot delete it.
	otherCookie := env.login(t, "other", "demo123")
	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recommendations/%d", id), nil, otherCookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recommendations/%d", id), nil, env.cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClearAllRecommendations(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/generate-recommendations",
		map[string]string{"description": "backup de arquivos"}, env.cookie)

	resp, body := env.do(t, http.MethodDelete, "/api/recommendations/clear-all", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, body["deleted"].(float64), 0.0)
}

func TestProjectCRUDAndComments(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title":       "Automatizar NFe",
		"description": "Emissão automática",
		"priority":    "Alta",
	}, env.cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	project := body["project"].(map[string]any)
	id := int64(project["id"].(float64))
	assert.Equal(t, "Pendente", project["status"])

	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/projects/%d", id),
		map[string]any{"status": "Em Andamento"}, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/projects/%d", id),
		map[string]any{"status": "Inexistente"}, env.cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, fmt.Sprintf("/api/projects/%d/comments", id),
		map[string]any{"comment": "bom progresso"}, env.cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "demo", body["comment"].(map[string]any)["username"])

	resp, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/projects/%d/comments", id), nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["comments"].([]any), 1)

	// Other users see neither the project nor its comments.
	otherCookie := env.login(t, "other", "demo123")
	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil, otherCookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/projects/%d/comments", id), nil, otherCookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, env.cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFlowValidation(t *testing.T) {
	env := newTestEnv(t)

	// No trigger node: rejected.
	resp, _ := env.do(t, http.MethodPost, "/api/flows", map[string]any{
		"title":     "quebrado",
		"flow_type": "custom",
		"flow_data": map[string]any{
			"nodes": []map[string]any{{"id": "a", "type": "action", "name": "A"}},
		},
	}, env.cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/flows", map[string]any{
		"title":     "válido",
		"flow_type": "custom",
		"flow_data": map[string]any{
			"nodes": []map[string]any{
				{"id": "a", "type": "trigger", "name": "A"},
				{"id": "b", "type": "action", "name": "B"},
			},
			"connections": []map[string]any{{"from": "a", "to": "b"}},
		},
	}, env.cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	flowID := int64(body["flow"].(map[string]any)["id"].(float64))

	resp, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/flows/%d", flowID), nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "válido", body["flow"].(map[string]any)["title"])
}

func TestTagsSeededAndListed(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.store.GetUserByUsername(context.Background(), "demo")
	require.NoError(t, err)
	require.NoError(t, env.store.SeedTags(context.Background(), u.ID))

	resp, body := env.do(t, http.MethodGet, "/api/tags", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["tags"].([]any), 5)
}

func TestAnalyticsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/generate-recommendations",
		map[string]string{"description": "nota fiscal"}, env.cookie)
	_, _ = env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title": "p1", "description": "d", "roi_percentage": 300, "monthly_savings": 2000,
	}, env.cookie)

	resp, body := env.do(t, http.MethodGet, "/api/analytics", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := body["analytics"].(map[string]any)
	assert.Equal(t, 1.0, summary["total_projects"])
	assert.Greater(t, summary["total_recommendations"].(float64), 0.0)

	resp, body = env.do(t, http.MethodGet, "/api/analytics/roi", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	roi := body["roi"].(map[string]any)
	assert.InDelta(t, 24000, roi["projected_annual_savings"].(float64), 0.001)
}

func TestExportProjects(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title": "p1", "description": "d",
	}, env.cookie)

	resp, _ := env.do(t, http.MethodGet, "/api/export/projects.xlsx", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "projetos.xlsx")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "1.0.0", body["version"])

	services := body["services"].(map[string]any)
	assert.Equal(t, "healthy", services["database"])
	assert.Equal(t, "healthy", services["authentication"])
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/status", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "sqlite", body["store_driver"])
	assert.Equal(t, false, body["external_configured"])
}

func TestAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, body := env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title":       "Emissão de NFe",
		"description": "Automatizar emissão de notas",
	}, env.cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := int64(body["project"].(map[string]any)["id"].(float64))

	resp, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/projects/%d/comments", projectID),
		map[string]any{"comment": "priorizar este"}, env.cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/flows", map[string]any{
		"title":     "fluxo auditado",
		"flow_type": "custom",
		"flow_data": map[string]any{
			"nodes": []map[string]any{
				{"id": "a", "type": "trigger", "name": "A"},
				{"id": "b", "type": "action", "name": "B"},
			},
			"connections": []map[string]any{{"from": "a", "to": "b"}},
		},
	}, env.cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, _ = env.do(t, http.MethodPost, "/api/generate-recommendations",
		map[string]any{"description": "emitir nota fiscal"}, env.cookie)
	resp, body = env.do(t, http.MethodGet, "/api/user/recommendations?limit=1", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := body["recommendations"].([]any)
	require.NotEmpty(t, recs)
	recID := int64(recs[0].(map[string]any)["id"].(float64))
	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recommendations/%d", recID), nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/logout", nil, env.cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	u, err := env.store.GetUserByUsername(ctx, "demo")
	require.NoError(t, err)
	entries, err := env.store.ListAudit(ctx, u.ID, 0)
	require.NoError(t, err)

	actions := make(map[string]bool, len(entries))
	for _, e := range entries {
		actions[e.EntityType+"/"+e.Action] = true
	}
	assert.True(t, actions["user/"+model.AuditActionLogin])
	assert.True(t, actions["user/"+model.AuditActionLogout])
	assert.True(t, actions["project/"+model.AuditActionCreate])
	assert.True(t, actions["project_comment/"+model.AuditActionCreate])
	assert.True(t, actions["automation_flow/"+model.AuditActionCreate])
	assert.True(t, actions["recommendation/"+model.AuditActionDelete])
}

func TestSessionExpiryHonored(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.store.GetUserByUsername(context.Background(), "demo")
	require.NoError(t, err)
	sess, err := env.store.CreateSession(context.Background(), u.ID, -time.Minute)
	require.NoError(t, err)

	expired := &http.Cookie{Name: sessionCookie, Value: sess.Token}
	resp, _ := env.do(t, http.MethodGet, "/api/me", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
