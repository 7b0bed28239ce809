package fakebackend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/backend"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/jrsteele09/go-mindcare-client/users"
)

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in backend.LoginRequest
	if !decodeBody(w, r, &in) {
		return
	}

	u, err := b.users.GetByEmail(in.Email)
	if err != nil || !users.CheckPasswordHash(in.Password, u.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !u.Active() {
		writeError(w, http.StatusForbidden, "Account is inactive")
		return
	}

	accessToken, err := b.creator.CreateAccessToken(u.Email, string(u.Role), u.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Token creation failed")
		return
	}
	writeJSON(w, http.StatusOK, backend.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        u.SessionUser(),
	})
}

// verify answers {valid:false} for tokens it cannot honour and rotates
// tokens that are close to expiry when configured to.
func (b *Backend) verify(w http.ResponseWriter, r *http.Request) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims, err := b.creator.Verify(raw)
	if err != nil {
		writeJSON(w, http.StatusOK, backend.VerifyResponse{Valid: false})
		return
	}
	u, err := b.users.GetByEmail(claims.Subject)
	if err != nil || !u.Active() {
		writeJSON(w, http.StatusOK, backend.VerifyResponse{Valid: false})
		return
	}

	resp := backend.VerifyResponse{Valid: true}
	if b.rotateWithin > 0 && claims.Remaining(b.nowFunc()) < b.rotateWithin {
		if resp.NewToken, err = b.creator.CreateAccessToken(u.Email, string(u.Role), u.Name); err != nil {
			writeError(w, http.StatusInternalServerError, "Token creation failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in backend.Registration
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Password != in.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if _, err := b.users.GetByEmail(in.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	role := in.Role
	if role == "" {
		role = sessions.RoleClient
	}
	if _, err := b.AddUser(in.Email, in.Password, role, in.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (b *Backend) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, backend.Health{Status: "healthy", ModelStatus: "active", Version: "1.0.0"})
}
