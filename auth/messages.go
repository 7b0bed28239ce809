package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-mindcare-client/backend"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/pkg/errors"
)

const (
	MsgLoginFailed          = "Login failed. Please try again."
	MsgInvalidRequest       = "Invalid request data"
	MsgInvalidCredentials   = "Invalid email or password"
	MsgAdminOnly            = "Access restricted to administrators only"
	MsgServerError          = "Server error. Please try again later"
	MsgInvalidResponse      = "Invalid server response format"
	MsgNetworkFailure       = "Unable to reach the server. Please check your connection."
	MsgLoginInProgress      = "Login already in progress"
	MsgSessionExpired       = "Your session has expired. Please log in again."
	MsgNotAuthenticated     = "Please log in to continue"
	MsgRequestTimedOut      = "The request timed out. Please try again."
	MsgResourceNotAvailable = "The requested item could not be found"
)

// UserMessage turns any error from a session or backend call into text
// that is safe to show. nil gives "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var formErr *FormError
	if errors.As(err, &formErr) {
		return formErr.Message
	}

	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, apperrors.ErrLoginInProgress):
		return MsgLoginInProgress
	case errors.Is(err, backend.ErrInvalidResponse):
		return MsgInvalidResponse
	case errors.As(err, &statusErr):
		return statusMessage(statusErr.Code)
	case errors.Is(err, apperrors.ErrForbiddenRole):
		return MsgAdminOnly
	case errors.Is(err, apperrors.ErrTokenExpired):
		return MsgSessionExpired
	case errors.Is(err, apperrors.ErrInvalidCredentialsShape):
		return MsgInvalidResponse
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return MsgNotAuthenticated
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return MsgInvalidRequest
	case errors.Is(err, context.DeadlineExceeded):
		return MsgRequestTimedOut
	case errors.Is(err, apperrors.ErrNetworkFailure):
		return MsgNetworkFailure
	}
	return MsgLoginFailed
}

func statusMessage(code int) string {
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return MsgInvalidRequest
	case code == http.StatusUnauthorized:
		return MsgInvalidCredentials
	case code == http.StatusForbidden:
		return MsgAdminOnly
	case code == http.StatusNotFound:
		return MsgResourceNotAvailable
	case code >= http.StatusInternalServerError:
		return MsgServerError
	}
	return MsgLoginFailed
}

// FormMessage is UserMessage for forms other than the login screen. Field
// problems found before sending, and the detail of a 400 or 422 from the
// backend, are shown as they are.
func FormMessage(err error) string {
	var inputErr *backend.InputError
	if errors.As(err, &inputErr) {
		return inputErr.Fields.Error()
	}
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) && statusErr.Detail != "" &&
		(statusErr.Code == http.StatusBadRequest || statusErr.Code == http.StatusUnprocessableEntity) {
		return statusErr.Detail
	}
	return UserMessage(err)
}
