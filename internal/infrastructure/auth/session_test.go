package auth

import (
	"testing"
	"time"

	"github.com/mangodeliveries/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec(expiration time.Duration) *SessionCodec {
	return NewSessionCodec(config.SessionConfig{
		Secret:     "test-secret-key-that-is-long-enough",
		Expiration: expiration,
		Issuer:     "mango-backend",
	})
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	codec := newCodec(time.Hour)

	cookie, expiresAt, err := codec.Issue("provider-token-abc")
	require.NoError(t, err)
	assert.NotEmpty(t, cookie)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	token, err := codec.Validate(cookie)
	require.NoError(t, err)
	assert.Equal(t, "provider-token-abc", token)
}

func TestSessionCodec_Validate(t *testing.T) {
	codec := newCodec(time.Hour)

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := codec.Validate("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired session", func(t *testing.T) {
		expired := newCodec(-time.Minute)
		cookie, _, err := expired.Issue("provider-token-abc")
		require.NoError(t, err)

		_, err = codec.Validate(cookie)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other := NewSessionCodec(config.SessionConfig{
			Secret:     "a-completely-different-secret-key",
			Expiration: time.Hour,
			Issuer:     "mango-backend",
		})
		cookie, _, err := other.Issue("provider-token-abc")
		require.NoError(t, err)

		_, err = codec.Validate(cookie)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects empty character token", func(t *testing.T) {
		cookie, _, err := codec.Issue("")
		require.NoError(t, err)

		_, err = codec.Validate(cookie)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}
