package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mangodeliveries/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid session token")
	ErrExpiredToken     = errors.New("session has expired")
	ErrInvalidClaims    = errors.New("invalid session claims")
	ErrTokenNotYetValid = errors.New("session is not yet valid")
	ErrMissingSubject   = errors.New("missing character token in claims")
)

// SessionClaims carries the opaque provider token behind the browser
// cookie. Only the provider token goes into the cookie; roles and
// whitelist state are re-resolved from the database on every request.
type SessionClaims struct {
	jwt.RegisteredClaims
	CharacterToken string `json:"character_token"`
}

// SessionCodec signs and validates the browser session cookie
type SessionCodec struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewSessionCodec creates a SessionCodec from configuration
func NewSessionCodec(cfg config.SessionConfig) *SessionCodec {
	return &SessionCodec{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
	}
}

// Issue creates a signed session cookie value for the character token
func (c *SessionCodec) Issue(characterToken string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.expiration)

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		CharacterToken: characterToken,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses a session cookie value and returns the character token
func (c *SessionCodec) Validate(cookieValue string) (string, error) {
	token, err := jwt.ParseWithClaims(cookieValue, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return "", ErrTokenNotYetValid
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidClaims
	}
	if claims.CharacterToken == "" {
		return "", ErrMissingSubject
	}

	return claims.CharacterToken, nil
}

// Expiration returns the configured session lifetime
func (c *SessionCodec) Expiration() time.Duration {
	return c.expiration
}
