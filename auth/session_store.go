package auth

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-mindcare-client/backend"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/internal/validation"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/jrsteele09/go-mindcare-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const defaultExpiryCheckInterval = 60 * time.Second

// Status of the session as the rest of the application sees it
type Status string

const (
	StatusUninitialized   Status = "uninitialized"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
	StatusExpired         Status = "expired"
)

// Snapshot is a point in time copy of the session
type Snapshot struct {
	Token       string
	User        *sessions.User
	ExpiresAt   time.Time
	Status      Status
	Initialized bool
}

// Verifier confirms a persisted token with the backend at boot
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*backend.VerifyResponse, error)
}

// CredentialsExchanger turns an email and password into a token and user
type CredentialsExchanger interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
}

// SessionStore owns the one session of this client. It keeps the token and
// user in memory and in a sessions.Repo, and the two never disagree: every
// change is applied to both under one lock.
type SessionStore struct {
	repo                sessions.Repo
	verifier            Verifier
	exchanger           CredentialsExchanger
	verifyFailurePolicy VerifyFailurePolicy
	loginFailurePolicy  LoginFailurePolicy
	expiryCheckInterval time.Duration
	recheckOnResume     bool
	requiredRole        sessions.Role
	nowFunc             func() time.Time

	lock        sync.Mutex
	token       string
	user        *sessions.User
	expiresAt   time.Time
	initialized bool
	closed      bool

	initOnce sync.Once
	initErr  error
	ready    chan struct{}

	loginInFlight atomic.Bool

	subsLock    sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int

	watcherCancel context.CancelFunc
	watcherDone   chan struct{}
}

type SessionStoreOption func(*SessionStore)

// WithVerifier makes Initialize confirm a persisted session with the
// backend before trusting it.
func WithVerifier(v Verifier) SessionStoreOption {
	return func(s *SessionStore) {
		s.verifier = v
	}
}

// WithCredentialsExchanger enables Authenticate
func WithCredentialsExchanger(e CredentialsExchanger) SessionStoreOption {
	return func(s *SessionStore) {
		s.exchanger = e
	}
}

func WithVerifyFailurePolicy(p VerifyFailurePolicy) SessionStoreOption {
	return func(s *SessionStore) {
		s.verifyFailurePolicy = p
	}
}

func WithLoginFailurePolicy(p LoginFailurePolicy) SessionStoreOption {
	return func(s *SessionStore) {
		s.loginFailurePolicy = p
	}
}

func WithExpiryCheckInterval(d time.Duration) SessionStoreOption {
	return func(s *SessionStore) {
		if d > 0 {
			s.expiryCheckInterval = d
		}
	}
}

func WithRecheckOnResume(enabled bool) SessionStoreOption {
	return func(s *SessionStore) {
		s.recheckOnResume = enabled
	}
}

// WithRequiredRole restricts sessions to one role, as the admin dashboard
// does. Sessions of any other role are refused or cleared.
func WithRequiredRole(role sessions.Role) SessionStoreOption {
	return func(s *SessionStore) {
		s.requiredRole = role
	}
}

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		s.nowFunc = now
	}
}

func NewSessionStore(repo sessions.Repo, options ...SessionStoreOption) (*SessionStore, error) {
	if repo == nil {
		return nil, errors.New("[NewSessionStore] session repo is required")
	}

	s := &SessionStore{
		repo:                repo,
		expiryCheckInterval: defaultExpiryCheckInterval,
		recheckOnResume:     true,
		nowFunc:             time.Now,
		ready:               make(chan struct{}),
		subscribers:         make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Ready is closed once Initialize has settled
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

func (s *SessionStore) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() Snapshot {
	snap := Snapshot{
		Token:       s.token,
		ExpiresAt:   s.expiresAt,
		Initialized: s.initialized,
	}
	if s.user != nil {
		u := s.user.Clone()
		snap.User = &u
	}

	switch {
	case !s.initialized:
		snap.Status = StatusUninitialized
	case s.token == "" || s.user == nil:
		snap.Status = StatusUnauthenticated
	case !s.nowFunc().Before(s.expiresAt):
		snap.Status = StatusExpired
	default:
		snap.Status = StatusAuthenticated
	}
	return snap
}

// IsAuthenticated is true when a user and an unexpired token are held and
// Initialize has settled.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Snapshot().Status == StatusAuthenticated
}

// mutate runs fn under the lock and notifies subscribers if the visible
// session changed. Nothing runs once the store is closed.
func (s *SessionStore) mutate(fn func() error) error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return ErrStoreClosed
	}
	before := s.snapshotLocked()
	err := fn()
	after := s.snapshotLocked()
	s.lock.Unlock()

	if before.Token != after.Token || before.Status != after.Status || before.Initialized != after.Initialized {
		s.publish(after)
	}
	return err
}

// Login persists token and user as the current session. Rejected input
// follows the LoginFailurePolicy.
func (s *SessionStore) Login(ctx context.Context, rawToken string, user sessions.User) error {
	return s.mutate(func() error {
		return s.loginLocked(ctx, rawToken, user)
	})
}

func (s *SessionStore) loginLocked(ctx context.Context, rawToken string, user sessions.User) error {
	claims, err := validateCredentials(rawToken, user, s.nowFunc())
	if err != nil {
		log.Warn().Err(err).Str("policy", s.loginFailurePolicy.String()).Msg("Login rejected")
		if s.loginFailurePolicy == ClearSession {
			s.clearLocked(ctx, "login rejected")
		}
		return errors.Wrap(err, "[SessionStore.Login]")
	}

	user = user.Clone()
	if err := s.repo.Save(ctx, sessions.Record{Token: rawToken, User: user}); err != nil {
		return errors.Wrap(err, "[SessionStore.Login] persist")
	}
	s.token, s.user, s.expiresAt = rawToken, &user, claims.ExpiresAt

	log.Info().
		Str("email", user.Email).
		Str("role", string(user.Role)).
		Time("expires_at", claims.ExpiresAt).
		Msg("Session established")
	return nil
}

// Logout clears the session. It never fails; storage errors are logged.
func (s *SessionStore) Logout(ctx context.Context) {
	_ = s.mutate(func() error {
		s.clearLocked(ctx, "logout")
		return nil
	})
}

func (s *SessionStore) clearLocked(ctx context.Context, reason string) {
	if err := s.repo.Clear(ctx); err != nil {
		log.Error().Err(err).Str("reason", reason).Msg("Failed to clear persisted session")
	}
	if s.token != "" {
		log.Info().Str("reason", reason).Msg("Session cleared")
	}
	s.token, s.user, s.expiresAt = "", nil, time.Time{}
}

// Initialize rehydrates the session from storage and, with a verifier,
// confirms it with the backend. It runs once; later calls return the first
// result. Ready is closed when it returns.
func (s *SessionStore) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		defer close(s.ready)
		s.initErr = s.initialize(ctx)
	})
	return s.initErr
}

func (s *SessionStore) initialize(ctx context.Context) error {
	record, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return s.settle(func() {})
	case errors.Is(err, sessions.ErrCorruptRecord):
		log.Warn().Err(err).Msg("Persisted session is corrupt")
		return s.settle(func() { s.clearLocked(ctx, "corrupt record") })
	case err != nil:
		settleErr := s.settle(func() {})
		if settleErr != nil {
			return settleErr
		}
		return errors.Wrap(err, "[SessionStore.Initialize] load")
	}

	claims, reason := s.checkRecord(record)
	if reason != "" {
		return s.settle(func() { s.clearLocked(ctx, reason) })
	}

	// Hold the record in memory while the backend is asked about it
	err = s.mutate(func() error {
		user := record.User.Clone()
		s.token, s.user, s.expiresAt = record.Token, &user, claims.ExpiresAt
		return nil
	})
	if err != nil {
		return err
	}

	if s.verifier == nil {
		return s.settle(func() {})
	}

	resp, verifyErr := s.verifier.Verify(ctx, record.Token)
	return s.settle(func() {
		if s.token != record.Token {
			// Superseded by a Login or Logout while the verify was in flight
			return
		}
		s.applyVerifyLocked(ctx, record, resp, verifyErr)
	})
}

// settle applies fn and marks the store initialized
func (s *SessionStore) settle(fn func()) error {
	return s.mutate(func() error {
		fn()
		s.initialized = true
		return nil
	})
}

// checkRecord returns a non-empty reason when record cannot be used
func (s *SessionStore) checkRecord(record *sessions.Record) (*token.Claims, string) {
	claims, err := token.Decode(record.Token)
	if err != nil {
		log.Warn().Err(err).Msg("Persisted token is malformed")
		return nil, "malformed token"
	}
	if claims.Expired(s.nowFunc()) {
		return nil, "token expired"
	}
	if fe := validation.Struct(&record.User); fe != nil {
		log.Warn().Str("fields", fe.Error()).Msg("Persisted user is invalid")
		return nil, "invalid user"
	}
	if s.requiredRole != "" && record.User.Role != s.requiredRole {
		return nil, "role not permitted"
	}
	return claims, ""
}

func (s *SessionStore) applyVerifyLocked(ctx context.Context, record *sessions.Record, resp *backend.VerifyResponse, err error) {
	if err == nil && resp == nil {
		err = backend.ErrInvalidResponse
	}

	switch {
	case err == nil && !resp.Valid:
		s.clearLocked(ctx, "verify rejected")

	case err == nil && resp.NewToken != "":
		if loginErr := s.loginLocked(ctx, resp.NewToken, record.User); loginErr != nil {
			log.Warn().Err(loginErr).Msg("Rotated token rejected")
			s.clearLocked(ctx, "rotated token rejected")
			return
		}
		log.Info().Msg("Session token rotated")

	case err == nil:
		log.Debug().Msg("Session verified")

	case errors.Is(err, apperrors.ErrNetworkFailure),
		errors.Is(err, apperrors.ErrServer),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Warn().Err(err).Str("policy", s.verifyFailurePolicy.String()).Msg("Session verify unavailable")
		if s.verifyFailurePolicy == ForceLogout {
			s.clearLocked(ctx, "verify unavailable")
		}

	default:
		log.Warn().Err(err).Msg("Session verify failed")
		s.clearLocked(ctx, "verify failed")
	}
}

// Authenticate runs the login screen: local checks, credential exchange,
// role gate, then Login. A second call while one is running is rejected
// with ErrLoginInProgress.
func (s *SessionStore) Authenticate(ctx context.Context, email, password string) error {
	if !s.loginInFlight.CompareAndSwap(false, true) {
		return errors.Wrap(apperrors.ErrLoginInProgress, "[SessionStore.Authenticate]")
	}
	defer s.loginInFlight.Store(false)

	if s.exchanger == nil {
		return errors.Wrap(ErrNoExchanger, "[SessionStore.Authenticate]")
	}
	if err := validateLoginForm(email, password); err != nil {
		return err
	}

	resp, err := s.exchanger.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return errors.Wrap(err, "[SessionStore.Authenticate]")
	}

	if s.requiredRole != "" && resp.User.Role != s.requiredRole {
		log.Warn().Str("email", resp.User.Email).Str("role", string(resp.User.Role)).Msg("Login refused for role")
		if s.loginFailurePolicy == ClearSession {
			s.Logout(ctx)
		}
		return errors.Wrapf(apperrors.ErrForbiddenRole, "[SessionStore.Authenticate] role %q", resp.User.Role)
	}
	return s.Login(ctx, resp.AccessToken, resp.User)
}

// CheckExpiry compares the session with storage. It clears the session
// when storage was emptied elsewhere or the token is malformed or
// expired, and adopts a newer session written by another process.
func (s *SessionStore) CheckExpiry(ctx context.Context) {
	if snap := s.Snapshot(); snap.Status == StatusExpired {
		s.publish(snap)
	}

	_ = s.mutate(func() error {
		if !s.initialized {
			return nil
		}

		record, err := s.repo.Load(ctx)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			if s.token != "" {
				s.clearLocked(ctx, "cleared elsewhere")
			}
			return nil
		case errors.Is(err, sessions.ErrCorruptRecord):
			s.clearLocked(ctx, "corrupt record")
			return nil
		case err != nil:
			log.Warn().Err(err).Msg("Expiry check could not read storage")
			if s.token != "" && !s.nowFunc().Before(s.expiresAt) {
				s.clearLocked(ctx, "token expired")
			}
			return nil
		}

		claims, reason := s.checkRecord(record)
		if reason != "" {
			s.clearLocked(ctx, reason)
			return nil
		}
		if record.Token != s.token {
			user := record.User.Clone()
			s.token, s.user, s.expiresAt = record.Token, &user, claims.ExpiresAt
			log.Info().Str("email", user.Email).Msg("Adopted session from storage")
		}
		return nil
	})
}

// Resume rechecks the session when the application regains focus
func (s *SessionStore) Resume(ctx context.Context) {
	if s.recheckOnResume {
		s.CheckExpiry(ctx)
	}
}

// Start runs CheckExpiry on the configured interval until ctx is done or
// Close is called. Starting twice is a no-op.
func (s *SessionStore) Start(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if s.watcherCancel != nil {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.watcherCancel, s.watcherDone = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.expiryCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				s.CheckExpiry(watchCtx)
			}
		}
	}()
	return nil
}

// Close stops the watcher and tears the store down. Results that arrive
// afterwards, such as a verify still in flight, are discarded.
func (s *SessionStore) Close() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	s.closed = true
	cancel, done := s.watcherCancel, s.watcherDone
	s.lock.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Subscribe registers fn for session changes. fn runs on the goroutine
// that made the change and must not block.
func (s *SessionStore) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subsLock.Lock()
	defer s.subsLock.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.subsLock.Lock()
		defer s.subsLock.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *SessionStore) publish(snap Snapshot) {
	s.subsLock.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subsLock.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
