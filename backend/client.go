package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
)

const (
	RequestIDHeader = "X-Request-ID"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// ErrInvalidResponse is returned when a 2xx body does not have the shape
// the client expects.
var ErrInvalidResponse = errors.WithMessage(apperrors.ErrServer, "invalid server response format")

// Client talks to the MindCare backend. Calls go through a circuit breaker;
// while the breaker is open every call fails fast with ErrNetworkFailure.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	tokens     oauth2.TokenSource
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTokenSource supplies the bearer for endpoints that need a session
func WithTokenSource(tokens oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func WithBreakerSettings(settings gobreaker.Settings) ClientOption {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[backend.NewClient] base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("[backend.NewClient] unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    gobreaker.NewCircuitBreaker(DefaultBreakerSettings("mindcare-backend")),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// DefaultBreakerSettings trips after at least three requests of which 60%
// failed. Client errors (4xx) are not failures.
func DefaultBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 100,
		Interval:    5 * time.Second,
		Timeout:     3 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Backend circuit breaker state changed")
		},
	}
}

type authMode int

const (
	authNone     authMode = iota
	authOptional          // send the bearer when a session exists
	authRequired
)

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   authMode
	bearer *oauth2.Token
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	httpReq, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}
	requestID := httpReq.Header.Get(RequestIDHeader)
	started := time.Now()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, newStatusError(resp.StatusCode, body)
		}
		return &response{status: resp.StatusCode, body: body}, nil
	})

	logEvent := log.Debug().
		Str("request_id", requestID).
		Str("method", r.method).
		Str("path", r.path).
		Dur("elapsed", time.Since(started))

	if err != nil {
		logEvent.Err(err).Msg("Backend request failed")
		return c.transportError(ctx, r.op, err)
	}

	resp := result.(*response)
	logEvent.Int("status", resp.status).Msg("Backend request")

	if resp.status >= http.StatusBadRequest {
		return errors.WithMessage(newStatusError(resp.status, resp.body), "["+r.op+"]")
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return errors.Wrapf(ErrInvalidResponse, "[%s] %v", r.op, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u := *c.baseURL
	u.Path = u.Path + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, errors.Wrapf(err, "[%s] marshal", r.op)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s] new request", r.op)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	bearer := r.bearer
	if bearer == nil && r.auth != authNone && c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil && r.auth == authRequired {
			return nil, errors.Wrapf(err, "[%s] token", r.op)
		}
		if err == nil {
			bearer = tok
		}
	}
	if bearer == nil && r.auth == authRequired {
		return nil, errors.Wrapf(apperrors.ErrNotAuthenticated, "[%s]", r.op)
	}
	if bearer != nil {
		bearer.SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return errors.WithMessage(statusErr, "["+op+"]")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return errors.Wrapf(apperrors.ErrNetworkFailure, "[%s] %v", op, err)
	case ctx.Err() != nil:
		return errors.Wrapf(ctx.Err(), "[%s]", op)
	default:
		return errors.Wrapf(apperrors.ErrNetworkFailure, "[%s] %v", op, err)
	}
}

// InputError is a payload rejected locally, before any request was sent
type InputError struct {
	Op     string
	Fields validation.FieldErrors
}

func (e *InputError) Error() string {
	return fmt.Sprintf("[%s] invalid request: %v", e.Op, e.Fields)
}

func (e *InputError) Unwrap() error {
	return apperrors.ErrInvalidRequest
}

func validateInput(op string, v any) error {
	if fe := validation.Struct(v); fe != nil {
		return &InputError{Op: op, Fields: fe}
	}
	return nil
}

func pathID(prefix, id string) string {
	return fmt.Sprintf("%s/%s", prefix, url.PathEscape(id))
}
