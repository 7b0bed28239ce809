package auth

import (
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	store *SessionStore
}

// TokenSource hands the current bearer to backend collaborators. It fails
// with ErrNotAuthenticated whenever the store is not authenticated, so a
// request is never sent with an expired or cleared token.
func (s *SessionStore) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	snap := ts.store.Snapshot()
	if snap.Status != StatusAuthenticated {
		return nil, errors.Wrapf(apperrors.ErrNotAuthenticated, "[TokenSource.Token] session %s", snap.Status)
	}
	return &oauth2.Token{
		AccessToken: snap.Token,
		TokenType:   "Bearer",
		Expiry:      snap.ExpiresAt,
	}, nil
}
