package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 2 * time.Second

// SessionResponse is the session as scripts in the page see it. The token
// is never included.
type SessionResponse struct {
	Status        auth.Status    `json:"status"`
	Authenticated bool           `json:"authenticated"`
	User          *sessions.User `json:"user,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

func newSessionResponse(snap auth.Snapshot) SessionResponse {
	resp := SessionResponse{
		Status:        snap.Status,
		Authenticated: snap.Status == auth.StatusAuthenticated,
		User:          snap.User,
	}
	if !snap.ExpiresAt.IsZero() {
		expiresAt := snap.ExpiresAt.UTC()
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// SessionHandler reports the current session (GET /api/session)
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newSessionResponse(s.store.Snapshot()))
	}
}

// ResumeHandler rechecks the session when the page becomes visible again
// (POST /api/session/resume).
func (s *Server) ResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.Resume(r.Context())
		writeJSON(w, http.StatusOK, newSessionResponse(s.store.Snapshot()))
	}
}

type healthResponse struct {
	Status  string      `json:"status"`
	Mode    string      `json:"mode"`
	Session auth.Status `json:"session"`
	Backend string      `json:"backend"`
}

// HealthHandler reports the shell as up. An unreachable backend is
// reported, not failed on.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:  "ok",
			Mode:    string(s.mode),
			Session: s.store.Snapshot().Status,
			Backend: "unreachable",
		}

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if health, err := s.backend.Health(ctx); err != nil {
			log.Debug().Err(err).Msg("Backend health check failed")
		} else {
			resp.Backend = health.Status
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
