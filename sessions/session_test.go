package sessions_test

import (
	"testing"

	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/stretchr/testify/require"
)

func TestUserKeepsUnknownFields(t *testing.T) {
	entries := map[string]string{
		sessions.TokenKey: "a.b.c",
		sessions.UserKey:  `{"email":"amara@example.com","role":"client","name":"Amara","id":42,"phone":"+251"}`,
	}

	record, ok, err := sessions.DecodeEntries(entries)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "amara@example.com", record.User.Email)
	require.Equal(t, sessions.RoleClient, record.User.Role)
	require.Equal(t, "Amara", record.User.Name)
	require.Equal(t, float64(42), record.User.Extra["id"])
	require.Equal(t, "+251", record.User.Extra["phone"])

	encoded, err := sessions.EncodeEntries(*record)
	require.NoError(t, err)
	require.Equal(t, "a.b.c", encoded[sessions.TokenKey])
	require.JSONEq(t, entries[sessions.UserKey], encoded[sessions.UserKey])
}

func TestDecodeEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		wantOK  bool
		wantErr bool
	}{
		{name: "empty", entries: map[string]string{}, wantOK: false},
		{name: "empty strings", entries: map[string]string{sessions.TokenKey: "", sessions.UserKey: ""}, wantOK: false},
		{name: "token only", entries: map[string]string{sessions.TokenKey: "a.b.c"}, wantOK: true, wantErr: true},
		{name: "user only", entries: map[string]string{sessions.UserKey: `{"email":"x@y.z","role":"client"}`}, wantOK: true, wantErr: true},
		{name: "bad user json", entries: map[string]string{sessions.TokenKey: "a.b.c", sessions.UserKey: "{"}, wantOK: true, wantErr: true},
		{name: "both", entries: map[string]string{sessions.TokenKey: "a.b.c", sessions.UserKey: `{"email":"x@y.z","role":"admin"}`}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok, err := sessions.DecodeEntries(tt.entries)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantErr {
				require.ErrorIs(t, err, sessions.ErrCorruptRecord)
				require.Nil(t, record)
				return
			}
			require.NoError(t, err)
			if ok {
				require.NotNil(t, record)
			}
		})
	}
}

func TestUserCloneIsIndependent(t *testing.T) {
	u := sessions.User{Email: "a@b.co", Role: sessions.RoleAdmin, Extra: map[string]any{"k": "v"}}
	c := u.Clone()
	c.Extra["k"] = "changed"
	require.Equal(t, "v", u.Extra["k"])
}
