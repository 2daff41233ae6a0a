// Package auth issues and checks the ES256 bearer tokens that remote agents
// present when submitting opponent actions.
package auth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer   = "nanchess"
	Audience = "nanchess-agent"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// AgentClaims identifies the agent and the session it may play in. An empty
// Session allows any session.
type AgentClaims struct {
	Session string `json:"session,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies agent tokens with one key pair.
type Signer struct {
	key *ecdsa.PrivateKey
	kid string
	now func() time.Time
	ttl time.Duration
}

// NewSigner returns a signer whose tokens are valid for ttl.
func NewSigner(key *ecdsa.PrivateKey, ttl time.Duration) *Signer {
	return &Signer{key: key, kid: KeyID(key), now: time.Now, ttl: ttl}
}

// IssueAgentToken signs a token for agent, optionally bound to session.
func (s *Signer) IssueAgentToken(agent, session string) (string, error) {
	now := s.now()
	claims := AgentClaims{
		Session: session,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   agent,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = s.kid

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign agent token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, issuer, audience and expiry.
func (s *Signer) ValidateToken(raw string) (*AgentClaims, error) {
	var claims AgentClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return &s.key.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &claims, nil
}

type contextKey struct{}

// FromContext returns the claims stored by Middleware.
func FromContext(ctx context.Context) (*AgentClaims, bool) {
	c, ok := ctx.Value(contextKey{}).(*AgentClaims)
	return c, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Middleware rejects requests without a valid agent token and stores the
// claims in the request context.
func (s *Signer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := BearerToken(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		claims, err := s.ValidateToken(raw)
		if err != nil {
			http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, claims)))
	})
}
