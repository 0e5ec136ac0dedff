// Package token issues and verifies the signed session tokens that prove a
// prior successful login. Tokens are HS256 JWTs carrying the authenticated
// record's identifier and role, valid for a bounded lifetime.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated principal embedded in a session token.
type Identity struct {
	ID   uuid.UUID
	Role string
}

// Claims is the JWT payload for a session token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Issuer creates and verifies session tokens with a process-wide HMAC secret.
// The secret always comes from configuration; there is no default.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for the given identity.
func (i *Issuer) Issue(id uuid.UUID, role string) (string, error) {
	if role != RoleDoctor && role != RolePatient {
		return "", fmt.Errorf("unknown role %q", role)
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a signed token and returns the embedded identity.
func (i *Issuer) Verify(tokenStr string) (*Identity, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}
	if claims.Role != RoleDoctor && claims.Role != RolePatient {
		return nil, fmt.Errorf("invalid token role %q", claims.Role)
	}
	return &Identity{ID: id, Role: claims.Role}, nil
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext retrieves the authenticated identity, or nil if the request was
// not authenticated.
func FromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}
