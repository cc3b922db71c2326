// Package session ties a browser cookie to the API token of its user.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"maplebudget/internal/api"
	"maplebudget/internal/log"
	"maplebudget/internal/storage"
)

// CookieName is the session cookie.
const CookieName = "mb_session"

// Config configures a Manager.
type Config struct {
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

// Manager loads and creates sessions.
type Manager struct {
	store  storage.SessionStore
	ttl    time.Duration
	secure bool
	now    func() time.Time
	logger *log.Logger
}

func NewManager(store storage.SessionStore, cfg Config, logger *log.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &Manager{
		store:  store,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		now:    cfg.Now,
		logger: logger.WithComponent(log.ComponentSession),
	}
}

// Load returns the session named by r's cookie. A missing, unknown or expired
// session is replaced by a new one and the cookie is set on w. A stored token
// that has expired is cleared, so the user is shown as logged out.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*storage.Session, error) {
	ctx := r.Context()
	now := m.now()

	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		s, err := m.store.GetSession(ctx, c.Value)
		switch {
		case err == nil && !s.Expired(now):
			return m.dropExpiredToken(ctx, s, now), nil
		case err == nil, errors.Is(err, storage.ErrNotFound):
		default:
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	s := storage.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	http.SetCookie(w, m.cookie(s.ID, s.ExpiresAt))
	m.logger.DebugContext(ctx, "Session created", log.FieldSessionID, s.ID)
	return &s, nil
}

func (m *Manager) dropExpiredToken(ctx context.Context, s *storage.Session, now time.Time) *storage.Session {
	if s.Token == "" {
		return s
	}
	claims, err := InspectToken(s.Token)
	if err != nil || !claims.Expired(now) {
		return s
	}
	if err := m.store.ClearSessionToken(ctx, s.ID); err != nil {
		m.logger.WarnContext(ctx, "Failed to clear expired token", log.FieldSessionID, s.ID, log.FieldError, err)
		return s
	}
	m.logger.InfoContext(ctx, "Expired API token cleared", log.FieldSessionID, s.ID)
	s.Token, s.Subject = "", ""
	return s
}

// Destroy deletes the session and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, id string) error {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0)))
	if err := m.store.DeleteSession(r.Context(), id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// TokenStore returns the API token store of session id.
func (m *Manager) TokenStore(id string) api.TokenStore {
	return &tokenStore{store: m.store, id: id}
}

func (m *Manager) cookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}

// Subject identifies whose activity a session records: the token subject when
// logged in, otherwise the session itself.
func Subject(s *storage.Session) string {
	if s == nil {
		return ""
	}
	if s.Subject != "" {
		return "user:" + s.Subject
	}
	return "session:" + s.ID
}

// LoggedIn reports whether s holds an API token.
func LoggedIn(s *storage.Session) bool {
	return s != nil && s.Token != ""
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *storage.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by the middleware, or nil.
func FromContext(ctx context.Context) *storage.Session {
	s, _ := ctx.Value(ctxKey{}).(*storage.Session)
	return s
}

// Middleware loads the session of every request into its context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(w, r)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "Session unavailable", log.FieldError, err)
			http.Error(w, "Session indisponible", http.StatusServiceUnavailable)
			return
		}
		ctx := NewContext(r.Context(), s)
		ctx = log.NewContext(ctx, log.FromContext(ctx).WithSession(s.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
