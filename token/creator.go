package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/pkg/errors"
)

const defaultAccessTokenExpiry = 60 * time.Minute

// Creator issues and verifies access tokens in the shape the MindCare
// backend uses (sub = email, HS256). The client itself never signs tokens;
// Creator backs the fake backend and tests.
type Creator struct {
	signer            Signer
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type CreatorOption func(*Creator)

func WithAccessTokenExpiry(expiry time.Duration) CreatorOption {
	return func(c *Creator) {
		c.accessTokenExpiry = expiry
	}
}

func WithNowFunc(now func() time.Time) CreatorOption {
	return func(c *Creator) {
		c.nowFunc = now
	}
}

func NewCreator(signer Signer, options ...CreatorOption) *Creator {
	c := &Creator{
		signer:            signer,
		accessTokenExpiry: defaultAccessTokenExpiry,
		nowFunc:           time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// CreateAccessToken signs a token for the user that expires after the
// configured lifetime.
func (c *Creator) CreateAccessToken(email, role, name string) (string, error) {
	return c.CreateAccessTokenExpiring(email, role, name, c.nowFunc().Add(c.accessTokenExpiry))
}

func (c *Creator) CreateAccessTokenExpiring(email, role, name string, expiresAt time.Time) (string, error) {
	claims := jwtlib.MapClaims{
		"sub":  email, // Subject: the user's email, as the backend issues it
		"role": role,
		"iat":  int64(c.nowFunc().Unix()),
		"exp":  int64(expiresAt.Unix()),
		"jti":  uuid.New().String(),
	}
	if name != "" {
		claims["name"] = name
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Creator.CreateAccessToken] sign")
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token and returns its claims
func (c *Creator) Verify(rawToken string) (*Claims, error) {
	parsed, err := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(c.nowFunc),
	).Parse(rawToken, c.signer.GetVerificationKey)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.Wrap(apperrors.ErrTokenExpired, "[Creator.Verify]")
		}
		return nil, errors.Wrapf(apperrors.ErrMalformedToken, "[Creator.Verify] %v", err)
	}
	if !parsed.Valid {
		return nil, errors.Wrap(apperrors.ErrMalformedToken, "[Creator.Verify] invalid token")
	}
	return Decode(rawToken)
}
