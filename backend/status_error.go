package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
)

// StatusError is a non-2xx reply. Detail is the backend's "detail" field
// when it sent one.
type StatusError struct {
	Code   int
	Detail string
}

func newStatusError(code int, body []byte) *StatusError {
	return &StatusError{Code: code, Detail: parseDetail(body)}
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.Code)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Detail)
}

// Unwrap maps the status onto the shared error taxonomy
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized:
		return apperrors.ErrAuthRejected
	case e.Code == http.StatusForbidden:
		return apperrors.ErrForbiddenRole
	case e.Code == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.Code >= http.StatusInternalServerError:
		return apperrors.ErrServer
	default:
		return apperrors.ErrInvalidRequest
	}
}

// parseDetail reads {"detail": "..."}. Validation failures carry a list
// of {"msg": ...} objects instead of a string.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return detail
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(envelope.Detail)
}
