package server

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	filter := store.FlowFilter{
		TemplatesOnly: r.URL.Query().Get("templates") == "true",
	}
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, "project_id inválido")
			return
		}
		filter.ProjectID = &id
	}

	flows, err := s.store.ListFlows(r.Context(), user.ID, filter)
	if err != nil {
		zap.L().Error("list flows", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao listar fluxos")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"flows": flows})
}

func (s *Server) handleCreateFlow(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var f model.AutomationFlow
	if !decodeBody(w, r, &f) {
		return
	}
	if f.Title == "" || f.FlowType == "" {
		writeError(w, http.StatusBadRequest, "título e tipo do fluxo são obrigatórios")
		return
	}
	diagram := model.FlowDiagram{Title: f.Title, FlowData: f.FlowData}
	if err := diagram.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "diagrama inválido: "+err.Error())
		return
	}
	f.UserID = user.ID

	created, err := s.store.CreateFlow(r.Context(), &f)
	if err != nil {
		zap.L().Error("create flow", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao criar fluxo")
		return
	}

	s.audit(r, user.ID, "automation_flow", created.ID, model.AuditActionCreate, nil, created)
	writeSuccess(w, http.StatusCreated, map[string]any{"flow": created})
}

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	f, err := s.store.GetFlow(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("get flow", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao buscar fluxo")
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "fluxo não encontrado")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"flow": f})
}

func (s *Server) handleUpdateFlow(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var f model.AutomationFlow
	if !decodeBody(w, r, &f) {
		return
	}
	if f.Title == "" || f.FlowType == "" {
		writeError(w, http.StatusBadRequest, "título e tipo do fluxo são obrigatórios")
		return
	}
	diagram := model.FlowDiagram{Title: f.Title, FlowData: f.FlowData}
	if err := diagram.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "diagrama inválido: "+err.Error())
		return
	}
	if f.Difficulty == "" {
		f.Difficulty = model.DifficultyMedium
	}
	f.ID = id

	updated, err := s.store.UpdateFlow(r.Context(), user.ID, &f)
	if err != nil {
		zap.L().Error("update flow", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao atualizar fluxo")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "fluxo não encontrado")
		return
	}

	s.audit(r, user.ID, "automation_flow", id, model.AuditActionUpdate, nil, &f)
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteFlow(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("delete flow", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao excluir fluxo")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "fluxo não encontrado")
		return
	}

	s.audit(r, user.ID, "automation_flow", id, model.AuditActionDelete, nil, nil)
	writeSuccess(w, http.StatusOK, nil)
}
