// Package fakebackend is an in-process stand in for the MindCare HTTP
// backend. It issues HS256 tokens the same way the real backend does and
// keeps all data in memory.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-mindcare-client/backend"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/jrsteele09/go-mindcare-client/token"
	"github.com/jrsteele09/go-mindcare-client/users"
	fakeuserrepo "github.com/jrsteele09/go-mindcare-client/users/repofake"
	"github.com/pkg/errors"
)

const DefaultSecret = "supersecret"

// Hook intercepts a request before the default handler. Returning true
// means the hook wrote the response.
type Hook func(w http.ResponseWriter, r *http.Request) bool

type Backend struct {
	server       *httptest.Server
	users        users.UserRepo
	creator      *token.Creator
	nowFunc      func() time.Time
	rotateWithin time.Duration

	lock       sync.Mutex
	hooks      map[string]Hook
	calls      map[string]int
	resources  map[string]backend.Resource
	therapists map[string]backend.Therapist
	moods      map[string][]backend.MoodEntry
	nextID     int
}

type Option func(*Backend)

func WithNowFunc(now func() time.Time) Option {
	return func(b *Backend) {
		b.nowFunc = now
	}
}

// WithRotateWithin makes /auth/verify hand out a fresh token when the
// presented one has less than d left.
func WithRotateWithin(d time.Duration) Option {
	return func(b *Backend) {
		b.rotateWithin = d
	}
}

// New starts the backend. Close must be called when done.
func New(options ...Option) *Backend {
	b := &Backend{
		users:      fakeuserrepo.NewFakeUserRepo(),
		nowFunc:    time.Now,
		hooks:      make(map[string]Hook),
		calls:      make(map[string]int),
		resources:  make(map[string]backend.Resource),
		therapists: make(map[string]backend.Therapist),
		moods:      make(map[string][]backend.MoodEntry),
	}
	for _, opt := range options {
		opt(b)
	}
	b.creator = token.NewCreator(
		token.NewHMACSigner(DefaultSecret),
		token.WithNowFunc(func() time.Time { return b.nowFunc() }),
	)
	b.server = httptest.NewServer(b.routes())
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) Close() {
	b.server.Close()
}

// Creator issues tokens that this backend accepts
func (b *Backend) Creator() *token.Creator {
	return b.creator
}

// AddUser registers an account with a bcrypt hashed password
func (b *Backend) AddUser(email, password string, role sessions.Role, name string) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Backend.AddUser] hash")
	}
	u := &users.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       users.StatusActive,
		CreatedAt:    b.nowFunc(),
	}
	if err := b.users.Upsert(u); err != nil {
		return nil, err
	}
	return u, nil
}

// IssueToken signs a token for an existing account
func (b *Backend) IssueToken(email string) (string, error) {
	u, err := b.users.GetByEmail(email)
	if err != nil {
		return "", err
	}
	return b.creator.CreateAccessToken(u.Email, string(u.Role), u.Name)
}

// SetHook installs a hook for "METHOD /path". A nil hook removes it.
func (b *Backend) SetHook(route string, hook Hook) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if hook == nil {
		delete(b.hooks, route)
		return
	}
	b.hooks[route] = hook
}

// Calls is how many requests reached "METHOD /path", hooks included
func (b *Backend) Calls(route string) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.calls[route]
}

// Status returns a hook that always answers code with detail
func Status(code int, detail string) Hook {
	return func(w http.ResponseWriter, _ *http.Request) bool {
		writeError(w, code, detail)
		return true
	}
}

func (b *Backend) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		b.lock.Lock()
		b.calls[route]++
		hook := b.hooks[route]
		b.lock.Unlock()

		if r.Header.Get(backend.RequestIDHeader) == "" {
			writeError(w, http.StatusBadRequest, "missing request id")
			return
		}
		if hook != nil && hook(w, r) {
			return
		}
		h(w, r)
	})
}

// currentUser resolves the bearer on r to an account
func (b *Backend) currentUser(r *http.Request) (*users.User, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	claims, err := b.creator.Verify(raw)
	if err != nil {
		return nil, err
	}
	return b.users.GetByEmail(claims.Subject)
}

func (b *Backend) requireUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	u, err := b.currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return u, true
}

func (b *Backend) requireAdmin(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	u, ok := b.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !u.IsAdmin() {
		writeError(w, http.StatusForbidden, "Admin access required")
		return nil, false
	}
	return u, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "invalid JSON body"}},
		})
		return false
	}
	return true
}
