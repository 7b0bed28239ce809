package auth

import (
	"strings"

	"github.com/pkg/errors"
)

// VerifyFailurePolicy decides what Initialize does with a persisted session
// when the backend cannot be reached to verify it.
type VerifyFailurePolicy int

const (
	// KeepOptimistic keeps the locally decoded session
	KeepOptimistic VerifyFailurePolicy = iota
	// ForceLogout clears the session
	ForceLogout
)

func (p VerifyFailurePolicy) String() string {
	if p == ForceLogout {
		return "forceLogout"
	}
	return "keepOptimistic"
}

func ParseVerifyFailurePolicy(name string) (VerifyFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keepoptimistic":
		return KeepOptimistic, nil
	case "forcelogout":
		return ForceLogout, nil
	}
	return KeepOptimistic, errors.Wrapf(ErrUnknownPolicyName, "[ParseVerifyFailurePolicy] %q", name)
}

// LoginFailurePolicy decides what a rejected Login does to the session that
// was already in place.
type LoginFailurePolicy int

const (
	// KeepSession leaves the existing session and storage untouched
	KeepSession LoginFailurePolicy = iota
	// ClearSession logs out
	ClearSession
)

func (p LoginFailurePolicy) String() string {
	if p == ClearSession {
		return "clearSession"
	}
	return "keepSession"
}

func ParseLoginFailurePolicy(name string) (LoginFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keepsession":
		return KeepSession, nil
	case "clearsession":
		return ClearSession, nil
	}
	return KeepSession, errors.Wrapf(ErrUnknownPolicyName, "[ParseLoginFailurePolicy] %q", name)
}
