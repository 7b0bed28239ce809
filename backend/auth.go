package backend

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	LoginPath    = "/auth/login"
	VerifyPath   = "/auth/verify"
	RegisterPath = "/auth/register"
	HealthPath   = "/api/health"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        sessions.User `json:"user"`
}

// VerifyResponse is the reply to a boot time session check. NewToken is
// set when the backend rotated the token.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	NewToken string `json:"newToken,omitempty"`
}

type Registration struct {
	Name            string        `json:"name" validate:"required,max=100"`
	Email           string        `json:"email" validate:"required,email"`
	Password        string        `json:"password" validate:"required,min=8"`
	ConfirmPassword string        `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            sessions.Role `json:"role,omitempty" validate:"omitempty,oneof=admin client"`
}

type Health struct {
	Status      string `json:"status"`
	ModelStatus string `json:"model_status"`
	Version     string `json:"version"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a bearer token and the user it belongs to
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	in := LoginRequest{Email: email, Password: password}
	if err := validateInput("Client.Login", &in); err != nil {
		return nil, err
	}

	var out LoginResponse
	err := c.do(ctx, request{
		op:     "Client.Login",
		method: http.MethodPost,
		path:   LoginPath,
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User.Email == "" || out.User.Role == "" {
		return nil, errors.Wrap(ErrInvalidResponse, "[Client.Login] missing token or user")
	}
	return &out, nil
}

// Verify asks the backend whether rawToken is still honoured
func (c *Client) Verify(ctx context.Context, rawToken string) (*VerifyResponse, error) {
	var out VerifyResponse
	err := c.do(ctx, request{
		op:     "Client.Verify",
		method: http.MethodGet,
		path:   VerifyPath,
		bearer: &oauth2.Token{AccessToken: rawToken, TokenType: "Bearer"},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a client account. The backend returns a confirmation
// message and no session; the caller logs in afterwards.
func (c *Client) Register(ctx context.Context, in Registration) (string, error) {
	if err := validateInput("Client.Register", &in); err != nil {
		return "", err
	}
	var out messageResponse
	err := c.do(ctx, request{
		op:     "Client.Register",
		method: http.MethodPost,
		path:   RegisterPath,
		body:   in,
	}, &out)
	return out.Message, err
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, request{op: "Client.Health", method: http.MethodGet, path: HealthPath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
