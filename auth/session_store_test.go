package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	fakesessionrepo "github.com/jrsteele09/go-mindcare-client/sessions/repofakes"
	"github.com/jrsteele09/go-mindcare-client/token"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	secretStr       = "supersecret"
	testUserEmail   = "abebe@example.com"
	testAdminEmail  = "admin@example.com"
	testPassword    = "Passw0rd!"
	testTokenExpiry = time.Hour
)

var (
	testUser  = sessions.User{Email: testUserEmail, Role: sessions.RoleClient, Name: "Abebe"}
	testAdmin = sessions.User{Email: testAdminEmail, Role: sessions.RoleAdmin, Name: "Admin"}
)

type testClock struct {
	lock sync.Mutex
	now  time.Time
}

func (c *testClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

// fakeVerifier answers with resp/err. When gate is set, Verify blocks until
// gate is closed.
type fakeVerifier struct {
	lock  sync.Mutex
	calls int
	resp  *backend.VerifyResponse
	err   error
	gate  chan struct{}
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (*backend.VerifyResponse, error) {
	v.lock.Lock()
	v.calls++
	resp, err, gate := v.resp, v.err, v.gate
	v.lock.Unlock()

	if gate != nil {
		<-gate
	}
	return resp, err
}

func (v *fakeVerifier) set(resp *backend.VerifyResponse, err error) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.resp, v.err = resp, err
}

func (v *fakeVerifier) Calls() int {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.calls
}

// testFixture holds all test dependencies
type testFixture struct {
	clock    *testClock
	repo     *fakesessionrepo.FakeSessionRepo
	creator  *token.Creator
	verifier *fakeVerifier
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	return &testFixture{
		clock: clock,
		repo:  fakesessionrepo.NewFakeSessionRepo(),
		creator: token.NewCreator(
			token.NewHMACSigner(secretStr),
			token.WithNowFunc(clock.Now),
			token.WithAccessTokenExpiry(testTokenExpiry),
		),
		verifier: &fakeVerifier{resp: &backend.VerifyResponse{Valid: true}},
	}
}

// newStore builds a store on the fixture's repo and clock
func (f *testFixture) newStore(t *testing.T, options ...auth.SessionStoreOption) *auth.SessionStore {
	t.Helper()

	options = append([]auth.SessionStoreOption{auth.WithNowFunc(f.clock.Now)}, options...)
	store, err := auth.NewSessionStore(f.repo, options...)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func (f *testFixture) issue(t *testing.T, user sessions.User, ttl time.Duration) string {
	t.Helper()
	raw, err := f.creator.CreateAccessTokenExpiring(user.Email, string(user.Role), user.Name, f.clock.Now().Add(ttl))
	require.NoError(t, err)
	return raw
}

func (f *testFixture) persist(t *testing.T, raw string, user sessions.User) {
	t.Helper()
	require.NoError(t, f.repo.Save(context.Background(), sessions.Record{Token: raw, User: user}))
}

func requireReady(t *testing.T, store *auth.SessionStore) {
	t.Helper()
	select {
	case <-store.Ready():
	default:
		t.Fatal("store not ready")
	}
}

func TestNewSessionStore_RequiresRepo(t *testing.T) {
	_, err := auth.NewSessionStore(nil)
	require.Error(t, err)
}

func TestIsAuthenticated_FalseBeforeInitialize(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, f.issue(t, testUser, time.Hour), testUser)
	store := f.newStore(t)

	require.False(t, store.IsAuthenticated())
	require.Equal(t, auth.StatusUninitialized, store.Snapshot().Status)
	select {
	case <-store.Ready():
		t.Fatal("ready before Initialize")
	default:
	}
}

func TestInitialize_NoPersistedSession(t *testing.T) {
	f := setupTestFixture(t)
	store := f.newStore(t, auth.WithVerifier(f.verifier))

	require.NoError(t, store.Initialize(context.Background()))
	requireReady(t, store)

	snap := store.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.True(t, snap.Initialized)
	require.Nil(t, snap.User)
	require.Empty(t, snap.Token)
	require.False(t, store.IsAuthenticated())
	require.Equal(t, 0, f.verifier.Calls())
}

func TestInitialize_ValidToken(t *testing.T) {
	f := setupTestFixture(t)
	raw := f.issue(t, testUser, 30*time.Minute)
	f.persist(t, raw, testUser)
	store := f.newStore(t, auth.WithVerifier(f.verifier))

	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.Equal(t, raw, snap.Token)
	require.Equal(t, testUser, *snap.User)
	require.Equal(t, f.clock.Now().Add(30*time.Minute).Unix(), snap.ExpiresAt.Unix())
	require.True(t, store.IsAuthenticated())
	require.Equal(t, 1, f.verifier.Calls())
}

func TestInitialize_WithoutVerifierTrustsDecodedToken(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, f.issue(t, testUser, time.Minute), testUser)
	store := f.newStore(t)

	require.NoError(t, store.Initialize(context.Background()))
	require.True(t, store.IsAuthenticated())
}

func TestInitialize_ClearsUnusableRecords(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *testFixture)
		options []auth.SessionStoreOption
	}{
		{
			name: "expired token",
			prepare: func(t *testing.T, f *testFixture) {
				f.persist(t, f.issue(t, testUser, -time.Second), testUser)
			},
		},
		{
			name: "token expiring exactly now",
			prepare: func(t *testing.T, f *testFixture) {
				f.persist(t, f.issue(t, testUser, 0), testUser)
			},
		},
		{
			name: "malformed token",
			prepare: func(t *testing.T, f *testFixture) {
				f.persist(t, "not-a-token", testUser)
			},
		},
		{
			name: "token without user",
			prepare: func(t *testing.T, f *testFixture) {
				f.repo.SetEntry(sessions.TokenKey, f.issue(t, testUser, time.Hour))
			},
		},
		{
			name: "user without token",
			prepare: func(t *testing.T, f *testFixture) {
				f.repo.SetEntry(sessions.UserKey, `{"email":"abebe@example.com","role":"client"}`)
			},
		},
		{
			name: "user without email or role",
			prepare: func(t *testing.T, f *testFixture) {
				f.repo.SetEntry(sessions.TokenKey, f.issue(t, testUser, time.Hour))
				f.repo.SetEntry(sessions.UserKey, `{"name":"nobody"}`)
			},
		},
		{
			name: "role not permitted",
			prepare: func(t *testing.T, f *testFixture) {
				f.persist(t, f.issue(t, testUser, time.Hour), testUser)
			},
			options: []auth.SessionStoreOption{auth.WithRequiredRole(sessions.RoleAdmin)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tt.prepare(t, f)
			store := f.newStore(t, append(tt.options, auth.WithVerifier(f.verifier))...)

			require.NoError(t, store.Initialize(context.Background()))
			require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
			require.Empty(t, f.repo.Entries())
			require.Equal(t, 0, f.verifier.Calls())
		})
	}
}

func TestInitialize_VerifyOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		resp       *backend.VerifyResponse
		err        error
		policy     auth.VerifyFailurePolicy
		wantStatus auth.Status
	}{
		{"valid", &backend.VerifyResponse{Valid: true}, nil, auth.KeepOptimistic, auth.StatusAuthenticated},
		{"not valid", &backend.VerifyResponse{Valid: false}, nil, auth.KeepOptimistic, auth.StatusUnauthenticated},
		{"rejected", nil, errors.Wrap(apperrors.ErrAuthRejected, "401"), auth.KeepOptimistic, auth.StatusUnauthenticated},
		{"network keep", nil, errors.Wrap(apperrors.ErrNetworkFailure, "dial"), auth.KeepOptimistic, auth.StatusAuthenticated},
		{"network logout", nil, errors.Wrap(apperrors.ErrNetworkFailure, "dial"), auth.ForceLogout, auth.StatusUnauthenticated},
		{"server keep", nil, errors.Wrap(apperrors.ErrServer, "502"), auth.KeepOptimistic, auth.StatusAuthenticated},
		{"timeout keep", nil, context.DeadlineExceeded, auth.KeepOptimistic, auth.StatusAuthenticated},
		{"nil response", nil, nil, auth.KeepOptimistic, auth.StatusAuthenticated},
		{"unexpected error", nil, errors.Wrap(apperrors.ErrInvalidRequest, "400"), auth.KeepOptimistic, auth.StatusUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.persist(t, f.issue(t, testUser, time.Hour), testUser)
			f.verifier.set(tt.resp, tt.err)
			store := f.newStore(t, auth.WithVerifier(f.verifier), auth.WithVerifyFailurePolicy(tt.policy))

			require.NoError(t, store.Initialize(context.Background()))
			require.Equal(t, tt.wantStatus, store.Snapshot().Status)
			if tt.wantStatus == auth.StatusUnauthenticated {
				require.Empty(t, f.repo.Entries())
			} else {
				require.Len(t, f.repo.Entries(), 2)
			}
		})
	}
}

func TestInitialize_VerifyRotatesToken(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, f.issue(t, testUser, 5*time.Minute), testUser)
	rotated := f.issue(t, testUser, time.Hour)
	f.verifier.set(&backend.VerifyResponse{Valid: true, NewToken: rotated}, nil)
	store := f.newStore(t, auth.WithVerifier(f.verifier))

	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.Equal(t, rotated, snap.Token)
	require.Equal(t, testUser, *snap.User)
	require.Equal(t, rotated, f.repo.Entries()[sessions.TokenKey])
}

func TestInitialize_RotatedTokenMalformed(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, f.issue(t, testUser, 5*time.Minute), testUser)
	f.verifier.set(&backend.VerifyResponse{Valid: true, NewToken: "garbage"}, nil)
	store := f.newStore(t, auth.WithVerifier(f.verifier))

	require.NoError(t, store.Initialize(context.Background()))
	require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
	require.Empty(t, f.repo.Entries())
}

func TestInitialize_RunsOnce(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, f.issue(t, testUser, time.Hour), testUser)
	store := f.newStore(t, auth.WithVerifier(f.verifier))
	ctx := context.Background()

	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Initialize(ctx))
	require.Equal(t, 1, f.verifier.Calls())
}

func TestLogin_PersistsAndRoundTrips(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	store := f.newStore(t)
	require.NoError(t, store.Initialize(ctx))

	raw := f.issue(t, testUser, time.Hour)
	require.NoError(t, store.Login(ctx, raw, testUser))
	require.True(t, store.IsAuthenticated())
	require.Equal(t, 1, f.repo.Saves())

	fresh := f.newStore(t)
	require.NoError(t, fresh.Initialize(ctx))
	snap := fresh.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.Equal(t, raw, snap.Token)
	require.Equal(t, testUser, *snap.User)
}

func TestLogin_KeepsExtraUserFields(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	store := f.newStore(t)
	require.NoError(t, store.Initialize(ctx))

	user := testUser.Clone()
	user.Extra = map[string]any{"status": "Active"}
	require.NoError(t, store.Login(ctx, f.issue(t, user, time.Hour), user))

	fresh := f.newStore(t)
	require.NoError(t, fresh.Initialize(ctx))
	require.Equal(t, "Active", fresh.Snapshot().User.Extra["status"])
}

func TestLogin_BeforeInitializeStaysUninitialized(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	store := f.newStore(t)

	require.NoError(t, store.Login(ctx, f.issue(t, testUser, time.Hour), testUser))
	require.Equal(t, auth.StatusUninitialized, store.Snapshot().Status)
	require.False(t, store.IsAuthenticated())

	require.NoError(t, store.Initialize(ctx))
	require.True(t, store.IsAuthenticated())
}

func TestLogin_RejectsInvalidInputAndLeavesSession(t *testing.T) {
	tests := []struct {
		name     string
		token    func(f *testFixture, t *testing.T) string
		user     sessions.User
		wantErrs []error
	}{
		{
			name:     "empty token",
			token:    func(*testFixture, *testing.T) string { return "" },
			user:     testUser,
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape},
		},
		{
			name:     "two part token",
			token:    func(*testFixture, *testing.T) string { return "abc.def" },
			user:     testUser,
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape},
		},
		{
			name:     "undecodable payload",
			token:    func(*testFixture, *testing.T) string { return "abc.!!!.def" },
			user:     testUser,
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape, apperrors.ErrMalformedToken},
		},
		{
			name:     "expired token",
			token:    func(f *testFixture, t *testing.T) string { return f.issue(t, testUser, -time.Minute) },
			user:     testUser,
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape, apperrors.ErrTokenExpired},
		},
		{
			name:     "missing email",
			token:    func(f *testFixture, t *testing.T) string { return f.issue(t, testUser, time.Hour) },
			user:     sessions.User{Role: sessions.RoleClient},
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape},
		},
		{
			name:     "invalid email",
			token:    func(f *testFixture, t *testing.T) string { return f.issue(t, testUser, time.Hour) },
			user:     sessions.User{Email: "abebe", Role: sessions.RoleClient},
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape},
		},
		{
			name:     "missing role",
			token:    func(f *testFixture, t *testing.T) string { return f.issue(t, testUser, time.Hour) },
			user:     sessions.User{Email: testUserEmail},
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape},
		},
		{
			name:     "unknown role",
			token:    func(f *testFixture, t *testing.T) string { return f.issue(t, testUser, time.Hour) },
			user:     sessions.User{Email: testUserEmail, Role: "therapist"},
			wantErrs: []error{apperrors.ErrInvalidCredentialsShape},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			ctx := context.Background()
			existing := f.issue(t, testAdmin, time.Hour)
			f.persist(t, existing, testAdmin)
			store := f.newStore(t)
			require.NoError(t, store.Initialize(ctx))
			savesBefore := f.repo.Saves()

			err := store.Login(ctx, tt.token(f, t), tt.user)
			require.Error(t, err)
			for _, want := range tt.wantErrs {
				require.ErrorIs(t, err, want)
			}

			var validationErr *auth.ValidationError
			require.ErrorAs(t, err, &validationErr)

			require.Equal(t, savesBefore, f.repo.Saves())
			require.Equal(t, 0, f.repo.Clears())
			snap := store.Snapshot()
			require.Equal(t, auth.StatusAuthenticated, snap.Status)
			require.Equal(t, existing, snap.Token)
			require.Equal(t, existing, f.repo.Entries()[sessions.TokenKey])
		})
	}
}

func TestLogin_ClearSessionPolicy(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.persist(t, f.issue(t, testAdmin, time.Hour), testAdmin)
	store := f.newStore(t, auth.WithLoginFailurePolicy(auth.ClearSession))
	require.NoError(t, store.Initialize(ctx))

	err := store.Login(ctx, "abc.def", testAdmin)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentialsShape)
	require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
	require.Empty(t, f.repo.Entries())
}

func TestLogout_Idempotent(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.persist(t, f.issue(t, testUser, time.Hour), testUser)
	store := f.newStore(t)
	require.NoError(t, store.Initialize(ctx))

	store.Logout(ctx)
	require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
	require.Empty(t, f.repo.Entries())

	store.Logout(ctx)
	require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
	require.Empty(t, f.repo.Entries())
	require.False(t, store.IsAuthenticated())
}

func TestCheckExpiry(t *testing.T) {
	t.Run("expired token logs out", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		f.persist(t, f.issue(t, testUser, 10*time.Minute), testUser)
		store := f.newStore(t)
		require.NoError(t, store.Initialize(ctx))

		var seen []auth.Status
		store.Subscribe(func(s auth.Snapshot) { seen = append(seen, s.Status) })

		store.CheckExpiry(ctx)
		require.True(t, store.IsAuthenticated())

		f.clock.Advance(10 * time.Minute)
		require.Equal(t, auth.StatusExpired, store.Snapshot().Status)
		require.False(t, store.IsAuthenticated())

		store.CheckExpiry(ctx)
		require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
		require.Empty(t, f.repo.Entries())
		require.Equal(t, []auth.Status{auth.StatusExpired, auth.StatusUnauthenticated}, seen)
	})

	t.Run("cleared elsewhere", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		f.persist(t, f.issue(t, testUser, time.Hour), testUser)
		store := f.newStore(t)
		require.NoError(t, store.Initialize(ctx))

		require.NoError(t, f.repo.Clear(ctx))
		store.CheckExpiry(ctx)
		require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
	})

	t.Run("adopts session written elsewhere", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		store := f.newStore(t)
		require.NoError(t, store.Initialize(ctx))

		raw := f.issue(t, testUser, time.Hour)
		f.persist(t, raw, testUser)
		store.CheckExpiry(ctx)

		snap := store.Snapshot()
		require.Equal(t, auth.StatusAuthenticated, snap.Status)
		require.Equal(t, raw, snap.Token)
	})

	t.Run("rejects invalid user written elsewhere", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		store := f.newStore(t)
		require.NoError(t, store.Initialize(ctx))

		f.repo.SetEntry(sessions.TokenKey, f.issue(t, testUser, time.Hour))
		f.repo.SetEntry(sessions.UserKey, `{"email":"abebe@example.com","role":"superuser"}`)
		store.CheckExpiry(ctx)

		require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
		require.Nil(t, store.Snapshot().User)
		require.Empty(t, f.repo.Entries())
	})

	t.Run("malformed token in storage", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		f.persist(t, f.issue(t, testUser, time.Hour), testUser)
		store := f.newStore(t)
		require.NoError(t, store.Initialize(ctx))

		f.repo.SetEntry(sessions.TokenKey, "x.y.z")
		store.CheckExpiry(ctx)
		require.Equal(t, auth.StatusUnauthenticated, store.Snapshot().Status)
		require.Empty(t, f.repo.Entries())
	})

	t.Run("no-op before initialize", func(t *testing.T) {
		f := setupTestFixture(t)
		f.persist(t, f.issue(t, testUser, time.Hour), testUser)
		store := f.newStore(t)

		store.CheckExpiry(context.Background())
		require.Equal(t, auth.StatusUninitialized, store.Snapshot().Status)
		require.Len(t, f.repo.Entries(), 2)
	})
}

func TestResume(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		wantEntries int
	}{
		{"recheck enabled", true, 0},
		{"recheck disabled", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			ctx := context.Background()
			f.persist(t, f.issue(t, testUser, time.Minute), testUser)
			store := f.newStore(t, auth.WithRecheckOnResume(tt.enabled))
			require.NoError(t, store.Initialize(ctx))

			f.clock.Advance(2 * time.Minute)
			store.Resume(ctx)

			require.Len(t, f.repo.Entries(), tt.wantEntries)
			require.False(t, store.IsAuthenticated())
		})
	}
}

func TestStart_WatcherLogsOutOnExpiry(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.persist(t, f.issue(t, testUser, time.Minute), testUser)
	store := f.newStore(t, auth.WithExpiryCheckInterval(5*time.Millisecond))
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Start(ctx))
	require.NoError(t, store.Start(ctx))

	f.clock.Advance(time.Minute)
	require.Eventually(t, func() bool {
		return store.Snapshot().Status == auth.StatusUnauthenticated
	}, time.Second, 5*time.Millisecond)
	require.Empty(t, f.repo.Entries())

	store.Close()
	require.ErrorIs(t, store.Start(ctx), auth.ErrStoreClosed)
}

func TestClose_DiscardsLateVerifyResult(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, f.issue(t, testUser, time.Hour), testUser)
	f.verifier.gate = make(chan struct{})
	f.verifier.set(&backend.VerifyResponse{Valid: false}, nil)
	store := f.newStore(t, auth.WithVerifier(f.verifier))

	done := make(chan error, 1)
	go func() {
		done <- store.Initialize(context.Background())
	}()

	require.Eventually(t, func() bool { return f.verifier.Calls() == 1 }, time.Second, time.Millisecond)
	store.Close()
	close(f.verifier.gate)

	require.ErrorIs(t, <-done, auth.ErrStoreClosed)
	requireReady(t, store)
	require.Equal(t, auth.StatusUninitialized, store.Snapshot().Status)
	require.Len(t, f.repo.Entries(), 2)

	store.Logout(context.Background())
	require.Len(t, f.repo.Entries(), 2)
	require.ErrorIs(t, store.Login(context.Background(), f.issue(t, testUser, time.Hour), testUser), auth.ErrStoreClosed)
}

func TestLoginDuringVerifyWins(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.persist(t, f.issue(t, testUser, time.Hour), testUser)
	f.verifier.gate = make(chan struct{})
	f.verifier.set(&backend.VerifyResponse{Valid: false}, nil)
	store := f.newStore(t, auth.WithVerifier(f.verifier))

	done := make(chan error, 1)
	go func() {
		done <- store.Initialize(ctx)
	}()
	require.Eventually(t, func() bool { return f.verifier.Calls() == 1 }, time.Second, time.Millisecond)

	fresh := f.issue(t, testAdmin, time.Hour)
	require.NoError(t, store.Login(ctx, fresh, testAdmin))
	close(f.verifier.gate)
	require.NoError(t, <-done)

	snap := store.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.Equal(t, fresh, snap.Token)
}

func TestTokenSource(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	store := f.newStore(t)
	ts := store.TokenSource()

	_, err := ts.Token()
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	require.NoError(t, store.Initialize(ctx))
	raw := f.issue(t, testUser, time.Hour)
	require.NoError(t, store.Login(ctx, raw, testUser))

	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, raw, tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())

	f.clock.Advance(time.Hour)
	_, err = ts.Token()
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestSubscribe(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	store := f.newStore(t)

	var seen []auth.Status
	cancel := store.Subscribe(func(s auth.Snapshot) { seen = append(seen, s.Status) })

	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Login(ctx, f.issue(t, testUser, time.Hour), testUser))
	store.Logout(ctx)
	store.Logout(ctx)
	require.Equal(t, []auth.Status{auth.StatusUnauthenticated, auth.StatusAuthenticated, auth.StatusUnauthenticated}, seen)

	cancel()
	require.NoError(t, store.Login(ctx, f.issue(t, testUser, time.Hour), testUser))
	require.Len(t, seen, 3)
}

func TestParsePolicies(t *testing.T) {
	vp, err := auth.ParseVerifyFailurePolicy("forceLogout")
	require.NoError(t, err)
	require.Equal(t, auth.ForceLogout, vp)

	vp, err = auth.ParseVerifyFailurePolicy("")
	require.NoError(t, err)
	require.Equal(t, auth.KeepOptimistic, vp)

	_, err = auth.ParseVerifyFailurePolicy("sometimes")
	require.ErrorIs(t, err, auth.ErrUnknownPolicyName)

	lp, err := auth.ParseLoginFailurePolicy("ClearSession")
	require.NoError(t, err)
	require.Equal(t, auth.ClearSession, lp)
	require.Equal(t, "clearSession", lp.String())

	_, err = auth.ParseLoginFailurePolicy("nope")
	require.ErrorIs(t, err, auth.ErrUnknownPolicyName)
}
