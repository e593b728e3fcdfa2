package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StateStore holds single-use login state nonces between the redirect to
// the identity provider and the callback.
type StateStore interface {
	Put(ctx context.Context, state string, ttl time.Duration) error
	// Take consumes the state; it returns false when the state was never
	// issued or has already been used.
	Take(ctx context.Context, state string) (bool, error)
}

// stateTTL bounds how long a login redirect may stay pending
const stateTTL = 15 * time.Minute

// LoginService drives the identity-provider handshake and session
// refresh. The handshake itself (code exchange, verification) lives in
// the provider; this service owns state checking, profile assembly and
// the authorization decision.
type LoginService struct {
	provider   identity.Provider
	characters identity.CharacterRepository
	gate       *identity.Gate
	states     StateStore
	logger     *zap.Logger
}

// NewLoginService creates a LoginService
func NewLoginService(provider identity.Provider, characters identity.CharacterRepository, gate *identity.Gate, states StateStore, logger *zap.Logger) *LoginService {
	return &LoginService{
		provider:   provider,
		characters: characters,
		gate:       gate,
		states:     states,
		logger:     logger,
	}
}

// BeginLogin issues a state nonce and returns the provider redirect URL
func (s *LoginService) BeginLogin(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.states.Put(ctx, state, stateTTL); err != nil {
		return "", err
	}
	return s.provider.AuthorizeURL(state), nil
}

// CallbackResult is the outcome of a completed handshake
type CallbackResult struct {
	Character  *identity.Character
	Authorized bool
}

// Callback completes the handshake: it verifies the state nonce, swaps
// the code for a token, assembles the full profile from the provider and
// persists it, then evaluates the access policy. A state mismatch is
// FORBIDDEN; any provider failure is UPSTREAM_ERROR and logged with its
// cause, never leaked to the client.
func (s *LoginService) Callback(ctx context.Context, state, code string) (*CallbackResult, error) {
	ok, err := s.states.Take(ctx, state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("FORBIDDEN", "Login state mismatch")
	}

	token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, s.upstream("code exchange failed", err)
	}

	characterID, err := s.provider.Verify(ctx, token)
	if err != nil {
		return nil, s.upstream("token verification failed", err)
	}

	character, err := s.assembleCharacter(ctx, characterID, token)
	if err != nil {
		return nil, err
	}

	// Role flags survive re-login; they are administered locally, not by
	// the provider.
	if existing, err := s.characters.FindByID(ctx, characterID); err == nil {
		character.Director = existing.Director
		character.Freighter = existing.Freighter
	}

	if err := s.characters.Save(ctx, character); err != nil {
		return nil, err
	}

	authorized, err := s.gate.IsAuthorized(ctx, character)
	if err != nil {
		return nil, err
	}

	return &CallbackResult{Character: character, Authorized: authorized}, nil
}

// Refresh re-resolves the identity behind a session token
func (s *LoginService) Refresh(ctx context.Context, token string) (*identity.Character, error) {
	return s.gate.Refresh(ctx, token)
}

// assembleCharacter builds the full profile from provider lookups
func (s *LoginService) assembleCharacter(ctx context.Context, characterID int64, token string) (*identity.Character, error) {
	profile, err := s.provider.Profile(ctx, characterID)
	if err != nil {
		return nil, s.upstream("profile lookup failed", err)
	}

	portrait, err := s.provider.Portrait(ctx, characterID)
	if err != nil {
		return nil, s.upstream("portrait lookup failed", err)
	}

	corporationName, corporationIcon, err := s.provider.Corporation(ctx, profile.CorporationID)
	if err != nil {
		return nil, s.upstream("corporation lookup failed", err)
	}

	character := &identity.Character{
		ID:                  profile.ID,
		Token:               token,
		CharacterName:       profile.Name,
		CharacterPortrait:   portrait,
		CharacterBirthday:   profile.Birthday,
		CorporationID:       profile.CorporationID,
		CorporationName:     corporationName,
		CorporationPortrait: corporationIcon,
	}

	if profile.AllianceID != nil {
		allianceName, allianceIcon, err := s.provider.Alliance(ctx, *profile.AllianceID)
		if err != nil {
			return nil, s.upstream("alliance lookup failed", err)
		}
		character.AllianceID = profile.AllianceID
		character.AllianceName = &allianceName
		character.AlliancePortrait = &allianceIcon
	}

	return character, nil
}

func (s *LoginService) upstream(message string, cause error) error {
	s.logger.Error("identity provider call failed",
		zap.String("stage", message),
		zap.Error(cause))
	return shared.ErrUpstream
}
