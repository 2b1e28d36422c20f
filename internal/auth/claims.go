package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime in minutes used when a non-positive TTL is requested.
const DefaultTokenTTL = 60

// clockSkew is tolerated on exp, nbf and iat between the minting host and
// this one.
const clockSkew = 30 * time.Second

// Identity is the signed-in user as reported by the external identity
// provider. Subject is the provider's stable user id.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Claims extends the registered JWT claims with the identity's contact
// details.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"sid"`
}

// Identity returns the user the token was issued for.
func (c *Claims) Identity() Identity {
	return Identity{Subject: c.Subject, Email: c.Email, Name: c.Name}
}

// GenerateAccessToken signs an HS256 session token for id.
// Tokens are validated by signature only; nothing is stored server-side.
func GenerateAccessToken(id Identity, secret, issuer string, ttlMinutes int) (string, error) {
	if id.Subject == "" {
		return "", ErrMissingSubject
	}
	if secret == "" {
		return "", ErrMissingSecret
	}
	if ttlMinutes <= 0 {
		ttlMinutes = DefaultTokenTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute)),
			ID:        uuid.NewString(),
		},
		Email:     id.Email,
		Name:      id.Name,
		SessionID: uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken validates tokenString and returns its claims.
// The token must be HS256, carry an expiry and a subject, and match issuer
// when issuer is non-empty.
func ParseToken(tokenString, secret, issuer string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims, nil
}
