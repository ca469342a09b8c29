package server

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/auth"
	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

const version = "1.0.0"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "usuário e senha são obrigatórios")
		return
	}

	user, sess, err := s.auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	switch {
	case eris.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "usuário ou senha inválidos")
		return
	case eris.Is(err, auth.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "muitas tentativas de login, aguarde")
		return
	case err != nil:
		zap.L().Error("login", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "erro interno")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.audit(r, user.ID, "user", user.ID, model.AuditActionLogin, nil, nil)
	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if user, err := s.auth.Resolve(r.Context(), cookie.Value); err == nil && user != nil {
			s.audit(r, user.ID, "user", user.ID, model.AuditActionLogout, nil, nil)
		}
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			zap.L().Error("logout", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"user": userFrom(r.Context())})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		zap.L().Error("health check", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "banco de dados indisponível")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]string{
			"database":       "healthy",
			"authentication": "healthy",
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"version":             version,
		"store_driver":        s.cfg.Store.Driver,
		"external_configured": s.cfg.Anthropic.Key != "",
		"model":               s.cfg.Anthropic.Model,
		"generate_timeout_s":  s.cfg.Generate.TimeoutSecs,
	})
}
