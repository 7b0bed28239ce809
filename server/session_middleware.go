package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/routeguard"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the auth.Snapshot a guarded request was let in with
const ContextKeySession ContextKey = "session"

// SessionFromContext returns the snapshot RequireSession admitted the
// request with.
func SessionFromContext(ctx context.Context) (auth.Snapshot, bool) {
	snap, ok := ctx.Value(ContextKeySession).(auth.Snapshot)
	return snap, ok
}

// RequireSession runs guard for every request. While the session is still
// being restored it answers 503 with a page that retries; a denied request
// is sent to the login screen.
func (s *Server) RequireSession(guard routeguard.Guard) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			snap := s.store.Snapshot()
			decision := guard(snap, r.URL)

			switch decision.Outcome {
			case routeguard.Loading:
				w.Header().Set("Retry-After", "1")
				s.render(w, http.StatusServiceUnavailable, pageLoading, s.newPage(r, nil))
				return
			case routeguard.Deny:
				redirectTo := decision.RedirectTo
				if snap.Status == auth.StatusExpired {
					s.store.CheckExpiry(r.Context())
					redirectTo = routeguard.LoginURL(decision.From, auth.MsgSessionExpired)
				}
				redirectSuccess(w, r, redirectTo)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, snap)
			next(w, r.WithContext(ctx))
		}
	}
}
