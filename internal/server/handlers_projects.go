package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	projects, err := s.store.ListProjects(r.Context(), user.ID)
	if err != nil {
		zap.L().Error("list projects", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao listar projetos")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var p model.Project
	if !decodeBody(w, r, &p) {
		return
	}
	if p.Title == "" || p.Description == "" {
		writeError(w, http.StatusBadRequest, "título e descrição são obrigatórios")
		return
	}
	p.UserID = user.ID

	created, err := s.store.CreateProject(r.Context(), &p)
	if err != nil {
		zap.L().Error("create project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao criar projeto")
		return
	}

	s.audit(r, user.ID, "project", created.ID, model.AuditActionCreate, nil, created)
	writeSuccess(w, http.StatusCreated, map[string]any{"project": created})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := s.store.GetProject(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("get project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao buscar projeto")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "projeto não encontrado")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"project": p})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var upd model.ProjectUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	if upd.Empty() {
		writeError(w, http.StatusBadRequest, "nenhum campo para atualizar")
		return
	}
	if upd.Status != nil && !validStatus(*upd.Status) {
		writeError(w, http.StatusBadRequest, "status inválido")
		return
	}

	before, err := s.store.GetProject(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("get project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao atualizar projeto")
		return
	}
	if before == nil {
		writeError(w, http.StatusNotFound, "projeto não encontrado")
		return
	}

	updated, err := s.store.UpdateProject(r.Context(), user.ID, id, &upd)
	if err != nil {
		zap.L().Error("update project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao atualizar projeto")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "projeto não encontrado")
		return
	}

	after, err := s.store.GetProject(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("get project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao atualizar projeto")
		return
	}

	s.audit(r, user.ID, "project", id, model.AuditActionUpdate, before, after)
	writeSuccess(w, http.StatusOK, map[string]any{"project": after})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	before, err := s.store.GetProject(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("get project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao excluir projeto")
		return
	}
	if before == nil {
		writeError(w, http.StatusNotFound, "projeto não encontrado")
		return
	}

	deleted, err := s.store.DeleteProject(r.Context(), user.ID, id)
	if err != nil {
		zap.L().Error("delete project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao excluir projeto")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "projeto não encontrado")
		return
	}

	s.audit(r, user.ID, "project", id, model.AuditActionDelete, before, nil)
	writeSuccess(w, http.StatusOK, nil)
}

// --- Comments ---

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	projectID, ok := pathID(w, r)
	if !ok {
		return
	}
	if !s.projectVisible(w, r, user.ID, projectID) {
		return
	}

	comments, err := s.store.ListComments(r.Context(), projectID)
	if err != nil {
		zap.L().Error("list comments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao listar comentários")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"comments": comments})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	projectID, ok := pathID(w, r)
	if !ok {
		return
	}
	if !s.projectVisible(w, r, user.ID, projectID) {
		return
	}

	var req struct {
		Comment  string `json:"comment"`
		ParentID *int64 `json:"parent_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Comment == "" {
		writeError(w, http.StatusBadRequest, "comentário vazio")
		return
	}

	comment, err := s.store.AddComment(r.Context(), projectID, user.ID, req.Comment, req.ParentID)
	if err != nil {
		zap.L().Error("add comment", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao adicionar comentário")
		return
	}

	s.audit(r, user.ID, "project_comment", projectID, model.AuditActionCreate, nil, comment)
	writeSuccess(w, http.StatusCreated, map[string]any{"comment": comment})
}

// projectVisible checks that the project exists and belongs to the user,
// writing the 404 itself when it does not.
func (s *Server) projectVisible(w http.ResponseWriter, r *http.Request, userID, projectID int64) bool {
	p, err := s.store.GetProject(r.Context(), userID, projectID)
	if err != nil {
		zap.L().Error("get project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro interno")
		return false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "projeto não encontrado")
		return false
	}
	return true
}

// --- Tags ---

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		zap.L().Error("list tags", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao listar tags")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"tags": tags})
}

// --- Audit ---

// audit appends an audit entry. Failures are logged, never surfaced.
func (s *Server) audit(r *http.Request, userID int64, entity string, entityID int64, action string, oldValue, newValue any) {
	entry := &model.AuditEntry{
		UserID:     &userID,
		EntityType: entity,
		EntityID:   entityID,
		Action:     action,
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
	}
	if oldValue != nil {
		if b, err := json.Marshal(oldValue); err == nil {
			entry.OldValues = b
		}
	}
	if newValue != nil {
		if b, err := json.Marshal(newValue); err == nil {
			entry.NewValues = b
		}
	}
	if err := s.store.AppendAudit(r.Context(), entry); err != nil {
		zap.L().Error("append audit", zap.Error(err),
			zap.String("entity", entity),
			zap.Int64("entity_id", entityID),
		)
	}
}

func validStatus(st model.ProjectStatus) bool {
	switch st {
	case model.StatusPending, model.StatusInProgress, model.StatusComplete, model.StatusCanceled:
		return true
	}
	return false
}
