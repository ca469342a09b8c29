package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/advisor"
	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user := userFrom(r.Context())
	result, err := s.advisor.Produce(r.Context(), user.ID, req.Description)
	if eris.Is(err, advisor.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "descreva o processo a automatizar")
		return
	}
	if err != nil {
		zap.L().Error("generate recommendations", zap.Error(err), zap.Int64("user_id", user.ID))
		writeError(w, http.StatusInternalServerError, "erro ao gerar recomendações")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"recommendations":  result.Records,
		"ai_generated":     result.AIGenerated,
		"external_ai_used": result.ExternalAIUsed,
	})
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limite inválido")
			return
		}
		limit = n
	}

	recs, err := s.store.ListRecommendations(r.Context(), user.ID, limit)
	if err != nil {
		zap.L().Error("list recommendations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao listar recomendações")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := s.store.GetRecommendation(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("get recommendation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao buscar recomendação")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "recomendação não encontrada")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"recommendation": rec})
}

func (s *Server) handleDeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteRecommendation(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("delete recommendation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao excluir recomendação")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "recomendação não encontrada")
		return
	}

	s.audit(r, user.ID, "recommendation", id, model.AuditActionDelete, nil, nil)
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleClearRecommendations(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	n, err := s.store.DeleteAllRecommendations(r.Context(), user.ID)
	if err != nil {
		zap.L().Error("clear recommendations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao limpar recomendações")
		return
	}
	if n > 0 {
		s.audit(r, user.ID, "recommendation", 0, model.AuditActionDelete, nil, map[string]int{"deleted": n})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": n})
}

// pathID parses the {id} route parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "identificador inválido")
		return 0, false
	}
	return id, true
}
