package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const ResourcesPath = "/api/resources"

type Resource struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type ResourceInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Type        string `json:"type" validate:"required,max=50"`
	Category    string `json:"category" validate:"required,max=50"`
	Source      string `json:"source" validate:"required,max=100"`
	URL         string `json:"url" validate:"required,url,max=500"`
	Description string `json:"description" validate:"required,max=1000"`
}

// ResourceQuery filters the library. Category "all" or empty means every
// category.
type ResourceQuery struct {
	Search   string
	Category string
	Limit    int
	Skip     int
}

func (q ResourceQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	return v
}

func (c *Client) ListResources(ctx context.Context, q ResourceQuery) ([]Resource, error) {
	var out []Resource
	err := c.do(ctx, request{
		op:     "Client.ListResources",
		method: http.MethodGet,
		path:   ResourcesPath,
		query:  q.values(),
		auth:   authOptional,
	}, &out)
	return out, err
}

func (c *Client) ResourceCategories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	err := c.do(ctx, request{
		op:     "Client.ResourceCategories",
		method: http.MethodGet,
		path:   ResourcesPath + "/categories",
		auth:   authOptional,
	}, &out)
	return out.Categories, err
}

func (c *Client) GetResource(ctx context.Context, id string) (*Resource, error) {
	var out Resource
	if err := c.do(ctx, request{
		op:     "Client.GetResource",
		method: http.MethodGet,
		path:   pathID(ResourcesPath, id),
		auth:   authOptional,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateResource(ctx context.Context, in ResourceInput) (*Resource, error) {
	return c.writeResource(ctx, "Client.CreateResource", http.MethodPost, ResourcesPath, in)
}

func (c *Client) UpdateResource(ctx context.Context, id string, in ResourceInput) (*Resource, error) {
	return c.writeResource(ctx, "Client.UpdateResource", http.MethodPut, pathID(ResourcesPath, id), in)
}

func (c *Client) writeResource(ctx context.Context, op, method, path string, in ResourceInput) (*Resource, error) {
	if err := validateInput(op, &in); err != nil {
		return nil, err
	}
	var out Resource
	if err := c.do(ctx, request{op: op, method: method, path: path, body: in, auth: authRequired}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResource(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:     "Client.DeleteResource",
		method: http.MethodDelete,
		path:   pathID(ResourcesPath, id),
		auth:   authRequired,
	}, nil)
}
