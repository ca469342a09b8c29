package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

type contextKey string

const userContextKey contextKey = "user"

// sessionCookie is the cookie carrying the session token.
const sessionCookie = "advisor_session"

// userFrom returns the authenticated user stored by requireAuth.
func userFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userContextKey).(*model.User)
	return u
}

// requireAuth resolves the session cookie and rejects unauthenticated
// requests.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "não autenticado")
			return
		}
		user, err := s.auth.Resolve(r.Context(), cookie.Value)
		if err != nil {
			zap.L().Error("resolve session", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "erro interno")
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "sessão inválida ou expirada")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

// logRequests emits one structured log line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// clientIP extracts the remote address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
