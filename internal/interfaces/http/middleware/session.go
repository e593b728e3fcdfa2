package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/infrastructure/auth"
)

// CharacterKey is the gin context key carrying the resolved identity
const CharacterKey = "character"

// IdentityRefresher re-resolves the identity behind a session token.
// Satisfied by the identity application service.
type IdentityRefresher interface {
	Refresh(ctx context.Context, token string) (*identity.Character, error)
}

// Session resolves the session cookie into a character and stores it in
// the request context. A missing, invalid or stale session just leaves
// the identity unset; handlers decide whether that is fatal.
func Session(codec *auth.SessionCodec, cookieName string, refresher IdentityRefresher, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(cookieName)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		token, err := codec.Validate(cookie)
		if err != nil {
			logger.Debug("rejecting session cookie", zap.Error(err))
			c.Next()
			return
		}

		character, err := refresher.Refresh(c.Request.Context(), token)
		if err != nil {
			logger.Debug("session identity no longer resolvable", zap.Error(err))
			c.Next()
			return
		}

		c.Set(CharacterKey, character)
		c.Next()
	}
}

// CharacterFrom returns the resolved session identity, or nil when the
// request carries no valid session.
func CharacterFrom(c *gin.Context) *identity.Character {
	value, ok := c.Get(CharacterKey)
	if !ok {
		return nil
	}
	character, ok := value.(*identity.Character)
	if !ok {
		return nil
	}
	return character
}
