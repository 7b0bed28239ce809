package auth_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/jrsteele09/go-mindcare-client/backend/fakebackend"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	fakesessionrepo "github.com/jrsteele09/go-mindcare-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

type loginFixture struct {
	backend *fakebackend.Backend
	client  *backend.Client
	repo    *fakesessionrepo.FakeSessionRepo
}

func setupLoginFixture(t *testing.T) *loginFixture {
	t.Helper()

	fb := fakebackend.New()
	t.Cleanup(fb.Close)

	_, err := fb.AddUser(testUserEmail, testPassword, sessions.RoleClient, "Abebe")
	require.NoError(t, err)
	_, err = fb.AddUser(testAdminEmail, testPassword, sessions.RoleAdmin, "Admin")
	require.NoError(t, err)

	client, err := backend.NewClient(fb.URL())
	require.NoError(t, err)

	return &loginFixture{
		backend: fb,
		client:  client,
		repo:    fakesessionrepo.NewFakeSessionRepo(),
	}
}

func (f *loginFixture) newStore(t *testing.T, options ...auth.SessionStoreOption) *auth.SessionStore {
	t.Helper()

	options = append([]auth.SessionStoreOption{
		auth.WithVerifier(f.client),
		auth.WithCredentialsExchanger(f.client),
	}, options...)
	store, err := auth.NewSessionStore(f.repo, options...)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

// blockingExchanger holds every Login until release is closed
type blockingExchanger struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
	resp    *backend.LoginResponse
}

func (e *blockingExchanger) Login(_ context.Context, _, _ string) (*backend.LoginResponse, error) {
	e.once.Do(func() { close(e.started) })
	<-e.release
	return e.resp, nil
}

func TestAuthenticate_Success(t *testing.T) {
	f := setupLoginFixture(t)
	ctx := context.Background()
	store := f.newStore(t)

	require.NoError(t, store.Authenticate(ctx, "  "+testUserEmail+" ", testPassword))

	snap := store.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.Equal(t, testUserEmail, snap.User.Email)
	require.Equal(t, sessions.RoleClient, snap.User.Role)
	require.Equal(t, 1, f.repo.Saves())

	// A restart verifies the persisted token with the backend
	fresh := f.newStore(t)
	require.True(t, fresh.IsAuthenticated())
	require.Equal(t, snap.Token, fresh.Snapshot().Token)
	require.Equal(t, 1, f.backend.Calls("GET "+backend.VerifyPath))
}

func TestAuthenticate_FormValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"empty email", "", testPassword, "Please fill in all fields"},
		{"blank email", "   ", testPassword, "Please fill in all fields"},
		{"empty password", testUserEmail, "", "Please fill in all fields"},
		{"bad email", "abebe.example.com", testPassword, "Please enter a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupLoginFixture(t)
			store := f.newStore(t)

			err := store.Authenticate(context.Background(), tt.email, tt.password)
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentialsShape)
			require.Equal(t, tt.wantMsg, auth.UserMessage(err))
			require.Equal(t, 0, f.backend.Calls("POST "+backend.LoginPath))
			require.Equal(t, 0, f.repo.Saves())
		})
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	f := setupLoginFixture(t)
	store := f.newStore(t)

	err := store.Authenticate(context.Background(), testUserEmail, "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrAuthRejected)
	require.Equal(t, auth.MsgInvalidCredentials, auth.UserMessage(err))
	require.False(t, store.IsAuthenticated())
	require.Equal(t, 0, f.repo.Saves())
}

func TestAuthenticate_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		hook    fakebackend.Hook
		wantErr error
		wantMsg string
	}{
		{"server error", fakebackend.Status(http.StatusInternalServerError, "boom"), apperrors.ErrServer, auth.MsgServerError},
		{"validation error", fakebackend.Status(http.StatusUnprocessableEntity, "bad"), apperrors.ErrInvalidRequest, auth.MsgInvalidRequest},
		{
			name: "missing token in reply",
			hook: func(w http.ResponseWriter, _ *http.Request) bool {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"token_type":"bearer","user":{"email":"abebe@example.com","role":"client"}}`))
				return true
			},
			wantErr: backend.ErrInvalidResponse,
			wantMsg: auth.MsgInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupLoginFixture(t)
			store := f.newStore(t)
			f.backend.SetHook("POST "+backend.LoginPath, tt.hook)

			err := store.Authenticate(context.Background(), testUserEmail, testPassword)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantMsg, auth.UserMessage(err))
			require.False(t, store.IsAuthenticated())
		})
	}
}

func TestAuthenticate_RequiredRole(t *testing.T) {
	t.Run("admin accepted", func(t *testing.T) {
		f := setupLoginFixture(t)
		store := f.newStore(t, auth.WithRequiredRole(sessions.RoleAdmin))

		require.NoError(t, store.Authenticate(context.Background(), testAdminEmail, testPassword))
		require.True(t, store.IsAuthenticated())
	})

	t.Run("client refused", func(t *testing.T) {
		f := setupLoginFixture(t)
		store := f.newStore(t, auth.WithRequiredRole(sessions.RoleAdmin))

		err := store.Authenticate(context.Background(), testUserEmail, testPassword)
		require.ErrorIs(t, err, apperrors.ErrForbiddenRole)
		require.Equal(t, auth.MsgAdminOnly, auth.UserMessage(err))
		require.False(t, store.IsAuthenticated())
		require.Equal(t, 0, f.repo.Saves())
	})

	t.Run("client refused clears existing session", func(t *testing.T) {
		f := setupLoginFixture(t)
		store := f.newStore(t,
			auth.WithRequiredRole(sessions.RoleAdmin),
			auth.WithLoginFailurePolicy(auth.ClearSession),
		)
		require.NoError(t, store.Authenticate(context.Background(), testAdminEmail, testPassword))

		err := store.Authenticate(context.Background(), testUserEmail, testPassword)
		require.ErrorIs(t, err, apperrors.ErrForbiddenRole)
		require.False(t, store.IsAuthenticated())
		require.Empty(t, f.repo.Entries())
	})
}

func TestAuthenticate_RejectsConcurrentAttempt(t *testing.T) {
	f := setupLoginFixture(t)
	ctx := context.Background()
	raw, err := f.backend.IssueToken(testUserEmail)
	require.NoError(t, err)

	exchanger := &blockingExchanger{
		started: make(chan struct{}),
		release: make(chan struct{}),
		resp: &backend.LoginResponse{
			AccessToken: raw,
			TokenType:   "bearer",
			User:        testUser,
		},
	}
	store := f.newStore(t, auth.WithCredentialsExchanger(exchanger))

	done := make(chan error, 1)
	go func() {
		done <- store.Authenticate(ctx, testUserEmail, testPassword)
	}()

	select {
	case <-exchanger.started:
	case <-time.After(time.Second):
		t.Fatal("first login never reached the exchanger")
	}

	err = store.Authenticate(ctx, testUserEmail, testPassword)
	require.ErrorIs(t, err, apperrors.ErrLoginInProgress)
	require.Equal(t, auth.MsgLoginInProgress, auth.UserMessage(err))

	close(exchanger.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, f.repo.Saves())
	require.True(t, store.IsAuthenticated())

	// The guard is released once the first attempt finishes
	require.NoError(t, store.Authenticate(ctx, testUserEmail, testPassword))
}

func TestAuthenticate_WithoutExchanger(t *testing.T) {
	store, err := auth.NewSessionStore(fakesessionrepo.NewFakeSessionRepo())
	require.NoError(t, err)
	defer store.Close()

	err = store.Authenticate(context.Background(), testUserEmail, testPassword)
	require.ErrorIs(t, err, auth.ErrNoExchanger)
}

func TestInitialize_VerifyAgainstBackend(t *testing.T) {
	t.Run("revoked account", func(t *testing.T) {
		f := setupLoginFixture(t)
		raw, err := f.backend.IssueToken(testUserEmail)
		require.NoError(t, err)
		require.NoError(t, f.repo.Save(context.Background(), sessions.Record{Token: raw, User: testUser}))
		f.backend.SetHook("GET "+backend.VerifyPath, func(w http.ResponseWriter, _ *http.Request) bool {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"valid":false}`))
			return true
		})

		store := f.newStore(t)
		require.False(t, store.IsAuthenticated())
		require.Empty(t, f.repo.Entries())
	})

	t.Run("backend down keeps session", func(t *testing.T) {
		f := setupLoginFixture(t)
		raw, err := f.backend.IssueToken(testUserEmail)
		require.NoError(t, err)
		require.NoError(t, f.repo.Save(context.Background(), sessions.Record{Token: raw, User: testUser}))
		f.backend.Close()

		store := f.newStore(t)
		require.True(t, store.IsAuthenticated())
	})

	t.Run("backend down with forced logout", func(t *testing.T) {
		f := setupLoginFixture(t)
		raw, err := f.backend.IssueToken(testUserEmail)
		require.NoError(t, err)
		require.NoError(t, f.repo.Save(context.Background(), sessions.Record{Token: raw, User: testUser}))
		f.backend.Close()

		store := f.newStore(t, auth.WithVerifyFailurePolicy(auth.ForceLogout))
		require.False(t, store.IsAuthenticated())
		require.Empty(t, f.repo.Entries())
	})
}

func TestTokenSource_AuthorizesBackendCalls(t *testing.T) {
	f := setupLoginFixture(t)
	ctx := context.Background()
	store := f.newStore(t)

	client, err := backend.NewClient(f.backend.URL(), backend.WithTokenSource(store.TokenSource()))
	require.NoError(t, err)

	_, err = client.MoodStats(ctx, 7)
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	require.NoError(t, store.Authenticate(ctx, testUserEmail, testPassword))
	_, err = client.MoodStats(ctx, 7)
	require.NoError(t, err)
}
