// Package routeguard decides whether a view may be entered for a given
// session snapshot. It does no I/O; the server wraps it as middleware.
package routeguard

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/sessions"
)

const (
	LoginPath   = "/login"
	FromParam   = "from"
	ErrorParam  = "error"
	DefaultPath = "/"
)

// Outcome of a guard check
type Outcome int

const (
	Allow Outcome = iota
	// Loading means the session has not been rehydrated yet. The caller
	// shows a neutral placeholder and must not redirect.
	Loading
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	default:
		return "deny"
	}
}

// Decision is the result of a guard. RedirectTo and From are only set when
// Outcome is Deny. From is the location that was asked for, so the login
// screen can send the user back there.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
	From       string
}

// Guard is a pure function of the session and the requested location
type Guard func(snap auth.Snapshot, requested *url.URL) Decision

// CanEnter allows any authenticated session
func CanEnter(snap auth.Snapshot, requested *url.URL) Decision {
	switch snap.Status {
	case auth.StatusUninitialized:
		return Decision{Outcome: Loading}
	case auth.StatusAuthenticated:
		return Decision{Outcome: Allow}
	}
	from := requestedLocation(requested)
	return Decision{
		Outcome:    Deny,
		RedirectTo: LoginURL(from, ""),
		From:       from,
	}
}

// RequireRole allows authenticated sessions of role only. Other roles are
// sent to the login screen with an error message.
func RequireRole(role sessions.Role) Guard {
	return func(snap auth.Snapshot, requested *url.URL) Decision {
		decision := CanEnter(snap, requested)
		if decision.Outcome != Allow {
			return decision
		}
		if snap.User != nil && snap.User.Role == role {
			return decision
		}
		from := requestedLocation(requested)
		return Decision{
			Outcome:    Deny,
			RedirectTo: LoginURL(from, auth.MsgAdminOnly),
			From:       from,
		}
	}
}

// LoginURL builds the login location carrying from and an optional error
// message.
func LoginURL(from, message string) string {
	q := url.Values{}
	if from != "" && from != DefaultPath {
		q.Set(FromParam, from)
	}
	if message != "" {
		q.Set(ErrorParam, message)
	}
	if len(q) == 0 {
		return LoginPath
	}
	return LoginPath + "?" + q.Encode()
}

// LoginRedirectTarget returns where to go after a successful login. Only
// local absolute paths are honoured; anything else, including the login
// screen itself, falls back to "/".
func LoginRedirectTarget(from string) string {
	from = strings.TrimSpace(from)
	if from == "" || !strings.HasPrefix(from, "/") {
		return DefaultPath
	}
	// "//host" and "/\host" are treated as scheme relative by browsers
	if strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return DefaultPath
	}

	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return DefaultPath
	}
	if u.Path == LoginPath {
		return DefaultPath
	}
	return u.RequestURI()
}

func requestedLocation(requested *url.URL) string {
	if requested == nil || requested.Path == "" {
		return DefaultPath
	}
	return LoginRedirectTarget(requested.RequestURI())
}
