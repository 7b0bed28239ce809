package errors

import (
	"errors"
	"fmt"
)

// Common error types for the MindCare client
var (
	// Session errors
	ErrInvalidCredentialsShape = errors.New("invalid credentials shape")
	ErrAuthRejected            = errors.New("authentication rejected")
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrLoginInProgress         = errors.New("login already in progress")
	ErrForbiddenRole           = errors.New("role not permitted")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")

	// Transport errors
	ErrNetworkFailure = errors.New("network failure")
	ErrInvalidRequest = errors.New("invalid request")
	ErrServer         = errors.New("server error")

	// Assessment errors
	ErrIncompleteAssessment = errors.New("incomplete assessment")
	ErrUnknownAssessment    = errors.New("unknown assessment")
	ErrAnswerOutOfRange     = errors.New("answer out of range")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
