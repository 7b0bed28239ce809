package validation_test

import (
	"testing"

	"github.com/jrsteele09/go-mindcare-client/internal/validation"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Token string `json:"token" validate:"required,jwt3"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin client"`
	Mood  int    `json:"value" validate:"gte=1,lte=5"`
}

func TestStruct(t *testing.T) {
	valid := credentials{Token: "a.b.c", Email: "a@b.co", Role: "client", Mood: 3}
	require.Nil(t, validation.Struct(&valid))

	tests := []struct {
		name  string
		mut   func(c *credentials)
		field string
	}{
		{"missing token", func(c *credentials) { c.Token = "" }, "token"},
		{"two part token", func(c *credentials) { c.Token = "a.b" }, "token"},
		{"empty part", func(c *credentials) { c.Token = "a..c" }, "token"},
		{"bad email", func(c *credentials) { c.Email = "nope" }, "email"},
		{"bad role", func(c *credentials) { c.Role = "owner" }, "role"},
		{"mood too high", func(c *credentials) { c.Mood = 6 }, "value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mut(&c)
			fe := validation.Struct(&c)
			require.Len(t, fe, 1)
			require.Contains(t, fe, tt.field)
			require.Contains(t, fe.Error(), tt.field)
		})
	}
}

func TestFieldErrorsOrdered(t *testing.T) {
	fe := validation.Struct(&credentials{})
	require.Len(t, fe, 4)
	require.Equal(t,
		"the field 'email' is required; the field 'role' is required; the field 'token' is required; the field 'value' must be greater than or equal to 1",
		fe.Error())
}
