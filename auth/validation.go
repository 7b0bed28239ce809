package auth

import (
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/internal/validation"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/jrsteele09/go-mindcare-client/token"
	"github.com/pkg/errors"
)

// ValidationError is a Login call with a token or user that cannot form a
// session. It matches ErrInvalidCredentialsShape and unwraps to the token
// error, if the token was the problem.
type ValidationError struct {
	Fields validation.FieldErrors
	cause  error
}

func (e *ValidationError) Error() string {
	msg := "invalid credentials shape"
	if len(e.Fields) > 0 {
		msg += ": " + e.Fields.Error()
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == apperrors.ErrInvalidCredentialsShape
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

type credentials struct {
	Token string        `json:"token" validate:"required,jwt3"`
	User  sessions.User `json:"user"`
}

// validateCredentials checks shape, then decodes the token and rejects it
// if it has already expired at now.
func validateCredentials(rawToken string, user sessions.User, now time.Time) (*token.Claims, error) {
	if fe := validation.Struct(&credentials{Token: rawToken, User: user}); fe != nil {
		return nil, &ValidationError{Fields: fe}
	}
	claims, err := token.Decode(rawToken)
	if err != nil {
		return nil, &ValidationError{cause: err}
	}
	if claims.Expired(now) {
		return nil, &ValidationError{cause: errors.Wrapf(apperrors.ErrTokenExpired, "expired at %s", claims.ExpiresAt.UTC().Format(time.RFC3339))}
	}
	return claims, nil
}

// FormError is a login form rejected before any request was made. Message
// is meant for the person filling in the form.
type FormError struct {
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) Is(target error) bool {
	return target == apperrors.ErrInvalidCredentialsShape
}

const (
	msgFillAllFields = "Please fill in all fields"
	msgInvalidEmail  = "Please enter a valid email address"
)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func validateLoginForm(email, password string) error {
	fe := validation.Struct(&loginForm{Email: strings.TrimSpace(email), Password: password})
	if fe == nil {
		return nil
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return &FormError{Message: msgFillAllFields}
	}
	return &FormError{Message: msgInvalidEmail}
}
