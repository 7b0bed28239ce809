package sessions

import (
	"encoding/json"
	"maps"

	"github.com/pkg/errors"
)

// Role is the account role the backend assigns
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// User is the persisted identity that accompanies a token. Fields other than
// email, role and name that the backend sends are kept in Extra so they
// survive a persist and rehydrate.
type User struct {
	Email string         `json:"email" validate:"required,email"`
	Role  Role           `json:"role" validate:"required,oneof=admin client"`
	Name  string         `json:"name,omitempty"`
	Extra map[string]any `json:"-"`
}

// Clone returns a copy that shares nothing mutable with u
func (u User) Clone() User {
	c := u
	if u.Extra != nil {
		c.Extra = maps.Clone(u.Extra)
	}
	return c
}

func (u User) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(u.Extra)+3)
	for k, v := range u.Extra {
		fields[k] = v
	}
	fields["email"] = u.Email
	fields["role"] = u.Role
	if u.Name != "" {
		fields["name"] = u.Name
	}
	return json.Marshal(fields)
}

func (u *User) UnmarshalJSON(data []byte) error {
	type plainUser struct {
		Email string `json:"email"`
		Role  Role   `json:"role"`
		Name  string `json:"name"`
	}
	var known plainUser
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "email")
	delete(all, "role")
	delete(all, "name")

	u.Email, u.Role, u.Name = known.Email, known.Role, known.Name
	u.Extra = nil
	if len(all) > 0 {
		u.Extra = all
	}
	return nil
}

// Record is everything persisted for a session. Token and User are always
// written and cleared together.
type Record struct {
	Token string
	User  User
}

// Storage entry names, matching the two client-local storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// ErrCorruptRecord is returned when storage holds only one of the two
// entries, or a user entry that does not parse.
var ErrCorruptRecord = errors.New("corrupt session record")

// EncodeEntries flattens a record into its two string entries
func EncodeEntries(record Record) (map[string]string, error) {
	userJSON, err := json.Marshal(record.User)
	if err != nil {
		return nil, errors.Wrap(err, "[sessions.EncodeEntries] marshal user")
	}
	return map[string]string{
		TokenKey: record.Token,
		UserKey:  string(userJSON),
	}, nil
}

// DecodeEntries rebuilds a record. ok is false when neither entry is
// present.
func DecodeEntries(entries map[string]string) (record *Record, ok bool, err error) {
	rawToken, hasToken := entries[TokenKey]
	rawUser, hasUser := entries[UserKey]
	hasToken = hasToken && rawToken != ""
	hasUser = hasUser && rawUser != ""

	switch {
	case !hasToken && !hasUser:
		return nil, false, nil
	case !hasToken:
		return nil, true, errors.Wrap(ErrCorruptRecord, "user entry without token")
	case !hasUser:
		return nil, true, errors.Wrap(ErrCorruptRecord, "token entry without user")
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, true, errors.Wrapf(ErrCorruptRecord, "user entry: %v", err)
	}
	return &Record{Token: rawToken, User: user}, true, nil
}
