package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/export"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	summary, err := s.analytics.ForUser(r.Context(), user.ID)
	if err != nil {
		zap.L().Error("analytics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao calcular métricas")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"analytics": summary})
}

func (s *Server) handleROIAnalytics(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	roi, err := s.analytics.ROIForUser(r.Context(), user.ID)
	if err != nil {
		zap.L().Error("roi analytics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao calcular ROI")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"roi": roi})
}

func (s *Server) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	projects, err := s.store.ListProjects(r.Context(), user.ID)
	if err != nil {
		zap.L().Error("export projects", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao exportar projetos")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="projetos.xlsx"`)
	if err := export.WriteProjects(w, projects); err != nil {
		zap.L().Error("write projects workbook", zap.Error(err))
	}
}

func (s *Server) handleExportROI(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	roi, err := s.analytics.ROIForUser(r.Context(), user.ID)
	if err != nil {
		zap.L().Error("export roi", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao exportar ROI")
		return
	}
	projects, err := s.store.ListProjects(r.Context(), user.ID)
	if err != nil {
		zap.L().Error("export roi", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro ao exportar ROI")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="roi.xlsx"`)
	if err := export.WriteROI(w, roi, projects); err != nil {
		zap.L().Error("write roi workbook", zap.Error(err))
	}
}
