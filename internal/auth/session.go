package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and
// deactivated accounts alike, so responses leak nothing about which it was.
var ErrInvalidCredentials = eris.New("auth: invalid credentials")

// ErrRateLimited is returned when a client's login attempt budget is spent.
var ErrRateLimited = eris.New("auth: too many login attempts")

// Service issues and resolves sessions against the store. Login attempts
// are throttled per remote IP so one client cannot lock everyone out.
type Service struct {
	store store.Store
	ttl   time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewService creates a session service. loginPerMin and burst bound the
// login attempt rate for each remote IP.
func NewService(st store.Store, ttl time.Duration, loginPerMin, burst int) *Service {
	return &Service{
		store:    st,
		ttl:      ttl,
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(loginPerMin) / 60.0),
		burst:    burst,
	}
}

func (s *Service) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(s.rate, s.burst)
		s.limiters[ip] = lim
	}
	return lim.Allow()
}

// Login verifies credentials and creates a session. remoteIP keys the
// attempt throttle.
func (s *Service) Login(ctx context.Context, username, password, remoteIP string) (*model.User, *model.Session, error) {
	if !s.allow(remoteIP) {
		return nil, nil, ErrRateLimited
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.IsActive || !CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.store.CreateSession(ctx, user.ID, s.ttl)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, nil, err
	}

	zap.L().Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, sess, nil
}

// Logout deletes the session for the token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// Resolve maps a session token to its user. Expired or unknown sessions
// resolve to nil without error.
func (s *Service) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Expired(time.Now()) {
		return nil, nil
	}
	return s.store.GetUserByID(ctx, sess.UserID)
}
