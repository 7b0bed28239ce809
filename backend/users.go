package backend

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-mindcare-client/sessions"
)

const UsersPath = "/api/users"

// Account is a user as the admin dashboard sees it
type Account struct {
	ID     string        `json:"_id"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Status string        `json:"status"`
	Role   sessions.Role `json:"role"`
}

type AccountInput struct {
	Name            string        `json:"name" validate:"required,max=100"`
	Email           string        `json:"email" validate:"required,email"`
	Password        string        `json:"password" validate:"required,min=8"`
	ConfirmPassword string        `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            sessions.Role `json:"role" validate:"required,oneof=admin client"`
	Status          string        `json:"status,omitempty" validate:"omitempty,oneof=Active Inactive"`
}

// AccountUpdate sends only the fields that are set
type AccountUpdate struct {
	Name   *string        `json:"name,omitempty"`
	Email  *string        `json:"email,omitempty" validate:"omitempty,email"`
	Status *string        `json:"status,omitempty" validate:"omitempty,oneof=Active Inactive"`
	Role   *sessions.Role `json:"role,omitempty" validate:"omitempty,oneof=admin client"`
}

func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var out []Account
	err := c.do(ctx, request{
		op:     "Client.ListAccounts",
		method: http.MethodGet,
		path:   UsersPath,
		auth:   authRequired,
	}, &out)
	return out, err
}

func (c *Client) GetAccount(ctx context.Context, id string) (*Account, error) {
	var out Account
	if err := c.do(ctx, request{
		op:     "Client.GetAccount",
		method: http.MethodGet,
		path:   pathID(UsersPath, id),
		auth:   authRequired,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAccount(ctx context.Context, in AccountInput) (*Account, error) {
	if err := validateInput("Client.CreateAccount", &in); err != nil {
		return nil, err
	}
	var out Account
	if err := c.do(ctx, request{
		op:     "Client.CreateAccount",
		method: http.MethodPost,
		path:   UsersPath,
		body:   in,
		auth:   authRequired,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAccount(ctx context.Context, id string, in AccountUpdate) (*Account, error) {
	if err := validateInput("Client.UpdateAccount", &in); err != nil {
		return nil, err
	}
	var out Account
	if err := c.do(ctx, request{
		op:     "Client.UpdateAccount",
		method: http.MethodPut,
		path:   pathID(UsersPath, id),
		body:   in,
		auth:   authRequired,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:     "Client.DeleteAccount",
		method: http.MethodDelete,
		path:   pathID(UsersPath, id),
		auth:   authRequired,
	}, nil)
}
