// Package token signs wizard session IDs into compact JWTs so the browser
// carries an unforgeable reference instead of the raw session key.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "enrolld/pkg/domain-errors"
)

// Claims carries the wizard session reference.
type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Signer issues and validates session tokens with an HMAC key.
type Signer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewSigner constructs a Signer. ttl bounds the token lifetime and should
// match the session store TTL.
func NewSigner(signingKey string, issuer string, ttl time.Duration) *Signer {
	return &Signer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// Issue signs a token referencing the given session ID.
func (s *Signer) Issue(sessionID uuid.UUID, now time.Time) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// SessionID validates the token and returns the session ID it references.
func (s *Signer) SessionID(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "session token has expired")
		}
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if !parsed.Valid {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token claims")
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token claims")
	}
	return id, nil
}
