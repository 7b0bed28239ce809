package users

import (
	"time"

	"github.com/jrsteele09/go-mindcare-client/sessions"
	"golang.org/x/crypto/bcrypt"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// User is an account held by the fake backend
type User struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"` // never serialized
	Role         sessions.Role `json:"role"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == sessions.RoleAdmin
}

func (u *User) Active() bool {
	return u.Status == "" || u.Status == StatusActive
}

// SessionUser is the identity that accompanies a token for this account
func (u *User) SessionUser() sessions.User {
	return sessions.User{Email: u.Email, Role: u.Role, Name: u.Name}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
