package backend

import (
	"context"
	"net/http"
)

const TherapistsPath = "/api/therapists"

type Therapist struct {
	ID                string            `json:"id,omitempty"`
	Name              string            `json:"name" validate:"required"`
	Credentials       string            `json:"credentials" validate:"required"`
	Specialties       []string          `json:"specialties"`
	Location          string            `json:"location" validate:"required"`
	Languages         []string          `json:"languages"`
	Insurance         []string          `json:"insurance"`
	Telehealth        bool              `json:"telehealth"`
	Photo             string            `json:"photo"`
	Bio               string            `json:"bio"`
	PhoneNumber       string            `json:"phone_number,omitempty"`
	Website           string            `json:"website,omitempty" validate:"omitempty,url"`
	SocialLinks       map[string]string `json:"social_links,omitempty"`
	YearsOfExperience *int              `json:"years_of_experience,omitempty" validate:"omitempty,gte=0"`
	Availability      string            `json:"availability,omitempty"`
}

func (c *Client) ListTherapists(ctx context.Context) ([]Therapist, error) {
	var out []Therapist
	err := c.do(ctx, request{
		op:     "Client.ListTherapists",
		method: http.MethodGet,
		path:   TherapistsPath,
		auth:   authOptional,
	}, &out)
	return out, err
}

func (c *Client) GetTherapist(ctx context.Context, id string) (*Therapist, error) {
	var out Therapist
	if err := c.do(ctx, request{
		op:     "Client.GetTherapist",
		method: http.MethodGet,
		path:   pathID(TherapistsPath, id),
		auth:   authOptional,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTherapist(ctx context.Context, in Therapist) (*Therapist, error) {
	return c.writeTherapist(ctx, "Client.CreateTherapist", http.MethodPost, TherapistsPath, in)
}

func (c *Client) UpdateTherapist(ctx context.Context, id string, in Therapist) (*Therapist, error) {
	return c.writeTherapist(ctx, "Client.UpdateTherapist", http.MethodPut, pathID(TherapistsPath, id), in)
}

func (c *Client) writeTherapist(ctx context.Context, op, method, path string, in Therapist) (*Therapist, error) {
	in.ID = ""
	if err := validateInput(op, &in); err != nil {
		return nil, err
	}
	var out Therapist
	if err := c.do(ctx, request{op: op, method: method, path: path, body: in, auth: authRequired}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTherapist(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:     "Client.DeleteTherapist",
		method: http.MethodDelete,
		path:   pathID(TherapistsPath, id),
		auth:   authRequired,
	}, nil)
}
