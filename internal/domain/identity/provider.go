package identity

import (
	"context"
	"time"
)

// Profile is the raw character record returned by the identity provider.
type Profile struct {
	ID            int64
	Name          string
	Birthday      time.Time
	CorporationID int64
	AllianceID    *int64
}

// Provider is the external identity authority (EVE SSO + ESI). All calls
// are fallible network operations; implementations must not retry.
type Provider interface {
	// AuthorizeURL builds the login redirect carrying the state nonce.
	AuthorizeURL(state string) string
	// ExchangeCode swaps an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)
	// Verify resolves an access token to the owning character id.
	Verify(ctx context.Context, token string) (int64, error)
	// Profile fetches the public character record.
	Profile(ctx context.Context, characterID int64) (*Profile, error)
	// Portrait fetches the 64px character portrait URL.
	Portrait(ctx context.Context, characterID int64) (string, error)
	// Corporation fetches a corporation's name and icon URL.
	Corporation(ctx context.Context, corporationID int64) (name, icon string, err error)
	// Alliance fetches an alliance's name and icon URL.
	Alliance(ctx context.Context, allianceID int64) (name, icon string, err error)
}
