package routeguard_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/routeguard"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/stretchr/testify/require"
)

func snapshot(status auth.Status, role sessions.Role) auth.Snapshot {
	snap := auth.Snapshot{Status: status, Initialized: status != auth.StatusUninitialized}
	if status == auth.StatusAuthenticated || status == auth.StatusExpired {
		snap.Token = "a.b.c"
		snap.User = &sessions.User{Email: "hana@example.com", Role: role}
		snap.ExpiresAt = time.Now().Add(time.Hour)
	}
	return snap
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestCanEnter(t *testing.T) {
	tests := []struct {
		name      string
		status    auth.Status
		requested string
		want      routeguard.Decision
	}{
		{
			name:   "loading while uninitialized",
			status: auth.StatusUninitialized,
			want:   routeguard.Decision{Outcome: routeguard.Loading},
		},
		{
			name:   "authenticated",
			status: auth.StatusAuthenticated,
			want:   routeguard.Decision{Outcome: routeguard.Allow},
		},
		{
			name:      "unauthenticated keeps location",
			status:    auth.StatusUnauthenticated,
			requested: "/assessments/phq9?step=2",
			want: routeguard.Decision{
				Outcome:    routeguard.Deny,
				RedirectTo: "/login?from=%2Fassessments%2Fphq9%3Fstep%3D2",
				From:       "/assessments/phq9?step=2",
			},
		},
		{
			name:      "expired",
			status:    auth.StatusExpired,
			requested: "/therapists",
			want: routeguard.Decision{
				Outcome:    routeguard.Deny,
				RedirectTo: "/login?from=%2Ftherapists",
				From:       "/therapists",
			},
		},
		{
			name:      "root needs no from",
			status:    auth.StatusUnauthenticated,
			requested: "/",
			want: routeguard.Decision{
				Outcome:    routeguard.Deny,
				RedirectTo: "/login",
				From:       "/",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requested *url.URL
			if tt.requested != "" {
				requested = mustParse(t, tt.requested)
			}
			got := routeguard.CanEnter(snapshot(tt.status, sessions.RoleClient), requested)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRequireRole(t *testing.T) {
	guard := routeguard.RequireRole(sessions.RoleAdmin)
	requested := mustParse(t, "/admin/users")

	t.Run("admin allowed", func(t *testing.T) {
		got := guard(snapshot(auth.StatusAuthenticated, sessions.RoleAdmin), requested)
		require.Equal(t, routeguard.Allow, got.Outcome)
	})

	t.Run("client denied with message", func(t *testing.T) {
		got := guard(snapshot(auth.StatusAuthenticated, sessions.RoleClient), requested)
		require.Equal(t, routeguard.Deny, got.Outcome)
		require.Equal(t, "/admin/users", got.From)

		redirect := mustParse(t, got.RedirectTo)
		require.Equal(t, routeguard.LoginPath, redirect.Path)
		require.Equal(t, auth.MsgAdminOnly, redirect.Query().Get(routeguard.ErrorParam))
		require.Equal(t, "/admin/users", redirect.Query().Get(routeguard.FromParam))
	})

	t.Run("loading passes through", func(t *testing.T) {
		got := guard(snapshot(auth.StatusUninitialized, ""), requested)
		require.Equal(t, routeguard.Loading, got.Outcome)
	})

	t.Run("logged out goes to plain login", func(t *testing.T) {
		got := guard(snapshot(auth.StatusUnauthenticated, ""), requested)
		require.Equal(t, routeguard.Deny, got.Outcome)
		require.Equal(t, "/login?from=%2Fadmin%2Fusers", got.RedirectTo)
	})
}

func TestLoginRedirectTarget(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"", "/"},
		{"   ", "/"},
		{"/mood", "/mood"},
		{"/assessments/gad7?x=1", "/assessments/gad7?x=1"},
		{"https://evil.example.com/", "/"},
		{"//evil.example.com", "/"},
		{"/\\evil.example.com", "/"},
		{"javascript:alert(1)", "/"},
		{"mood", "/"},
		{"/login", "/"},
		{"/login?from=/mood", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			require.Equal(t, tt.want, routeguard.LoginRedirectTarget(tt.from))
		})
	}
}

func TestLoginURL(t *testing.T) {
	require.Equal(t, "/login", routeguard.LoginURL("", ""))
	require.Equal(t, "/login", routeguard.LoginURL("/", ""))
	require.Equal(t, "/login?error=Nope&from=%2Fmood", routeguard.LoginURL("/mood", "Nope"))
}

func TestOutcome_String(t *testing.T) {
	require.Equal(t, "allow", routeguard.Allow.String())
	require.Equal(t, "loading", routeguard.Loading.String())
	require.Equal(t, "deny", routeguard.Deny.String())
}
