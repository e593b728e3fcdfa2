package identity

import (
	"context"

	"github.com/mangodeliveries/backend/internal/domain/shared"
)

// Alert strings returned to the browser on authorization failures.
const (
	AlertLoginRequired = "You need to login before submitting contracts."
	AlertNotAllowed    = "You aren't allowed to submit contracts. Either you have been banned, or your corporation isn't whitelisted."
	AlertDirectorOnly  = "Only directors can perform this action."
)

// Gate evaluates the access policy for every mutating or sensitive read.
// A ban is an unconditional veto; role flags and whitelist membership
// cannot override it.
type Gate struct {
	characters CharacterRepository
	bans       BanRepository
	allows     AllowlistRepository
}

// NewGate creates a Gate over the administered lists
func NewGate(characters CharacterRepository, bans BanRepository, allows AllowlistRepository) *Gate {
	return &Gate{
		characters: characters,
		bans:       bans,
		allows:     allows,
	}
}

// Refresh re-resolves the identity behind a session token. Mutating calls
// refresh explicitly instead of trusting the session snapshot. A lookup
// failure is reported as AUTHENTICATION_REQUIRED, never as an internal
// error, so page routes can redirect to login.
func (g *Gate) Refresh(ctx context.Context, token string) (*Character, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	character, err := g.characters.FindByToken(ctx, token)
	if err != nil {
		return nil, shared.NewDomainError("AUTHENTICATION_REQUIRED", AlertLoginRequired)
	}
	return character, nil
}

// IsAuthorized evaluates the policy for a resolved identity. Evaluation
// order: nil check, ban veto, then any of corporation whitelist, alliance
// whitelist (only when the character has one), director, freighter.
func (g *Gate) IsAuthorized(ctx context.Context, character *Character) (bool, error) {
	if character == nil {
		return false, nil
	}

	banned, err := g.bans.IsBanned(ctx, character.CharacterName)
	if err != nil {
		return false, err
	}
	if banned {
		return false, nil
	}

	if character.Director || character.Freighter {
		return true, nil
	}

	corporationAllowed, err := g.allows.IsAllowed(ctx, SubjectCorporation, character.CorporationName)
	if err != nil {
		return false, err
	}
	if corporationAllowed {
		return true, nil
	}

	if character.HasAlliance() {
		allianceAllowed, err := g.allows.IsAllowed(ctx, SubjectAlliance, *character.AllianceName)
		if err != nil {
			return false, err
		}
		if allianceAllowed {
			return true, nil
		}
	}

	return false, nil
}

// RequireAuthorized guards a member-level capability
func (g *Gate) RequireAuthorized(ctx context.Context, character *Character) error {
	if character == nil {
		return shared.NewDomainError("AUTHENTICATION_REQUIRED", AlertLoginRequired)
	}
	allowed, err := g.IsAuthorized(ctx, character)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.NewDomainError("FORBIDDEN", AlertNotAllowed)
	}
	return nil
}

// RequireDirector guards a director-only capability
func (g *Gate) RequireDirector(character *Character) error {
	if character == nil {
		return shared.NewDomainError("AUTHENTICATION_REQUIRED", AlertLoginRequired)
	}
	if !character.Director {
		return shared.NewDomainError("FORBIDDEN", AlertDirectorOnly)
	}
	return nil
}

// RequireStaff guards capabilities available to directors and freighters
func (g *Gate) RequireStaff(character *Character) error {
	if character == nil {
		return shared.NewDomainError("AUTHENTICATION_REQUIRED", AlertLoginRequired)
	}
	if !character.Director && !character.Freighter {
		return shared.ErrForbidden
	}
	return nil
}
