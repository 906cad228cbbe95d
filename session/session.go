// Package session keeps per-browser UI state: pending two-click
// confirmations and flash messages shown on the next page render.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/giygas/medication-catalog/interfaces"
	"github.com/giygas/medication-catalog/logging"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session id.
const CookieName = "catalog_session"

// Compile-time check to ensure Session implements Confirmer
var _ interfaces.Confirmer = (*Session)(nil)

// Flash levels
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-shot message rendered on the next page.
type Flash struct {
	Level   string
	Message string
}

type confirmKey struct {
	action string
	target string
}

// Session is the state of one browser.
type Session struct {
	ID string

	mu       sync.Mutex
	armed    map[confirmKey]struct{}
	flashes  []Flash
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		armed:    make(map[confirmKey]struct{}),
		lastSeen: now,
	}
}

// Confirm implements the two-click protocol: the first call for an
// (action, target) pair arms it and returns false, the second call clears
// it and returns true. Pairs are independent of each other.
func (s *Session) Confirm(action, target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := confirmKey{action, target}
	if _, ok := s.armed[k]; ok {
		delete(s.armed, k)
		return true
	}
	s.armed[k] = struct{}{}
	return false
}

// IsArmed reports whether the pair is waiting for its second click.
func (s *Session) IsArmed(action, target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armed[confirmKey{action, target}]
	return ok
}

// Disarm cancels a pending confirmation.
func (s *Session) Disarm(action, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.armed, confirmKey{action, target})
}

// AddFlash queues a message for the next render.
func (s *Session) AddFlash(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Manager owns every live session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a manager whose sessions expire after ttl of inactivity.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session with the given id, creating a fresh one when the id
// is unknown or empty.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if s, ok := m.sessions[id]; ok && id != "" {
		s.touch(now)
		return s
	}

	s := newSession(uuid.NewString(), now)
	m.sessions[s.ID] = s
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed. Their pending confirmations are lost with them.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logging.Debug("Expired sessions swept", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

type contextKey struct{}

// Middleware attaches the caller's session to the request context, setting
// the cookie when a new session is created.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(CookieName); err == nil {
			id = c.Value
		}

		s := m.Get(id)
		if s.ID != id {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or a detached throwaway
// session when the middleware did not run.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return newSession("", time.Now())
}
