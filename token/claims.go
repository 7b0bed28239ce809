package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/pkg/errors"
)

// Claims are the decoded, unverified contents of a bearer token. The client
// never holds the signing secret, so the only thing it can trust about a
// token is what the backend tells it on /auth/verify; the claims are used
// for expiry checks and display.
type Claims struct {
	Subject   string         // Email of the user the backend issued the token to
	Role      string         // Role claim, if the backend included one
	Name      string         // Display name, if present
	ExpiresAt time.Time      // From the "exp" claim (epoch seconds)
	IssuedAt  time.Time      // From the "iat" claim, zero if absent
	Raw       map[string]any // Every claim as decoded
}

// Expired reports whether the token is no longer usable at now. A token is
// valid strictly before its exp second.
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Remaining is the lifetime left at now, zero once expired
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.Expired(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Decode reads the payload of a three part token without verifying the
// signature. Anything that is not a dot separated triple with a base64url
// JSON payload carrying a numeric exp claim is ErrMalformedToken.
func Decode(rawToken string) (*Claims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, errors.Wrap(apperrors.ErrMalformedToken, "[token.Decode] empty token")
	}
	if strings.Count(rawToken, ".") != 2 {
		return nil, errors.Wrap(apperrors.ErrMalformedToken, "[token.Decode] expected three parts")
	}

	mapClaims := jwtlib.MapClaims{}
	parsed, _, err := jwtlib.NewParser(jwtlib.WithPaddingAllowed()).ParseUnverified(rawToken, mapClaims)
	// An unknown alg only matters for verification; the payload is still usable.
	if err != nil && !(parsed != nil && errors.Is(err, jwtlib.ErrTokenUnverifiable)) {
		return nil, errors.Wrapf(apperrors.ErrMalformedToken, "[token.Decode] %v", err)
	}
	if decoded, ok := parsed.Claims.(jwtlib.MapClaims); ok {
		mapClaims = decoded
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrMalformedToken, "[token.Decode] exp: %v", err)
	}
	if exp == nil {
		return nil, errors.Wrap(apperrors.ErrMalformedToken, "[token.Decode] missing exp claim")
	}

	claims := &Claims{
		ExpiresAt: exp.Time,
		Raw:       map[string]any(mapClaims),
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Role, _ = mapClaims["role"].(string)
	claims.Name, _ = mapClaims["name"].(string)
	return claims, nil
}
