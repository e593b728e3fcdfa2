package admin

import (
	"context"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/admin"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service dispatches director administration directives and assembles the
// director dashboard read model.
type Service struct {
	gate         *identity.Gate
	characters   identity.CharacterRepository
	bans         identity.BanRepository
	allows       identity.AllowlistRepository
	settings     admin.SettingsRepository
	destinations admin.DestinationRepository
	exclusions   admin.ExclusionRepository
	logger       *zap.Logger
}

// NewService creates the admin service over the administered stores
func NewService(
	gate *identity.Gate,
	characters identity.CharacterRepository,
	bans identity.BanRepository,
	allows identity.AllowlistRepository,
	settings admin.SettingsRepository,
	destinations admin.DestinationRepository,
	exclusions admin.ExclusionRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		gate:         gate,
		characters:   characters,
		bans:         bans,
		allows:       allows,
		settings:     settings,
		destinations: destinations,
		exclusions:   exclusions,
		logger:       logger,
	}
}

// Dispatch executes a single directive on behalf of a director. The
// directive set is closed; every variant is matched here and an
// unrecognized one is rejected as invalid input.
func (s *Service) Dispatch(ctx context.Context, actor *identity.Character, directive admin.Directive) error {
	if err := s.gate.RequireDirector(actor); err != nil {
		return err
	}

	var err error
	switch d := directive.(type) {
	case admin.BanCharacter:
		err = s.bans.Ban(ctx, d.CharacterName)
	case admin.UnbanCharacter:
		err = s.unban(ctx, d.CharacterName)
	case admin.GrantFreighter:
		err = s.setFreighter(ctx, d.CharacterName, true)
	case admin.RevokeFreighter:
		err = s.setFreighter(ctx, d.CharacterName, false)
	case admin.AllowCorporation:
		err = s.allows.Allow(ctx, identity.SubjectCorporation, d.CorporationName)
	case admin.DisallowCorporation:
		err = s.disallow(ctx, identity.SubjectCorporation, d.CorporationName)
	case admin.AllowAlliance:
		err = s.allows.Allow(ctx, identity.SubjectAlliance, d.AllianceName)
	case admin.DisallowAlliance:
		err = s.disallow(ctx, identity.SubjectAlliance, d.AllianceName)
	case admin.ExcludeItemType:
		err = s.exclusions.ExcludeItem(ctx, admin.ExcludedItemType{TypeID: d.TypeID, Name: d.Name})
	case admin.ReincludeItemType:
		err = s.reincludeItem(ctx, d.TypeID)
	case admin.ExcludeMarketGroup:
		err = s.exclusions.ExcludeGroup(ctx, admin.ExcludedMarketGroup{MarketGroupID: d.MarketGroupID, Name: d.Name})
	case admin.ReincludeMarketGroup:
		err = s.reincludeGroup(ctx, d.MarketGroupID)
	case admin.UpdateSettings:
		err = s.updateSettings(ctx, d.MaxVolume)
	case admin.AddDestination:
		err = s.destinations.Add(ctx, admin.Destination{Name: d.Name, Image: d.Image})
	case admin.RemoveDestination:
		err = s.destinations.Remove(ctx, d.Name)
	default:
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown admin command")
	}
	if err != nil {
		return err
	}

	s.logger.Info("admin directive applied",
		zap.String("actor", actor.CharacterName),
		zap.String("target", directive.Target()))
	return nil
}

func (s *Service) unban(ctx context.Context, name string) error {
	banned, err := s.bans.IsBanned(ctx, name)
	if err != nil {
		return err
	}
	if !banned {
		return shared.NewDomainError("NOT_FOUND", "Character is not banned")
	}
	return s.bans.Unban(ctx, name)
}

func (s *Service) setFreighter(ctx context.Context, name string, freighter bool) error {
	if _, err := s.characters.FindByName(ctx, name); err != nil {
		return shared.NewDomainError("NOT_FOUND", "Character has never logged in")
	}
	return s.characters.SetFreighter(ctx, name, freighter)
}

func (s *Service) disallow(ctx context.Context, kind identity.SubjectKind, name string) error {
	allowed, err := s.allows.IsAllowed(ctx, kind, name)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.NewDomainError("NOT_FOUND", "Subject is not whitelisted")
	}
	return s.allows.Disallow(ctx, kind, name)
}

func (s *Service) reincludeItem(ctx context.Context, typeID int64) error {
	excluded, err := s.exclusions.IsItemExcluded(ctx, typeID)
	if err != nil {
		return err
	}
	if !excluded {
		return shared.NewDomainError("NOT_FOUND", "Item type is not excluded")
	}
	return s.exclusions.ReincludeItem(ctx, typeID)
}

func (s *Service) reincludeGroup(ctx context.Context, marketGroupID int64) error {
	excluded, err := s.exclusions.IsMarketGroupExcluded(ctx, marketGroupID)
	if err != nil {
		return err
	}
	if !excluded {
		return shared.NewDomainError("NOT_FOUND", "Market group is not excluded")
	}
	return s.exclusions.ReincludeGroup(ctx, marketGroupID)
}

func (s *Service) updateSettings(ctx context.Context, maxVolume float64) error {
	if maxVolume <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Max volume must be positive")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		settings = admin.DefaultSettings()
	}
	settings.MaxVolume = maxVolume
	settings.UpdatedAt = time.Now()
	return s.settings.Save(ctx, settings)
}

// Dashboard is the director console read model
type Dashboard struct {
	Banned         []identity.BanEntry
	Freighters     []identity.Character
	Corporations   []identity.AllowEntry
	Alliances      []identity.AllowEntry
	ExcludedItems  []admin.ExcludedItemType
	ExcludedGroups []admin.ExcludedMarketGroup
	Destinations   []admin.Destination
	Settings       *admin.Settings
}

// Dashboard assembles the director console state. Director only.
func (s *Service) Dashboard(ctx context.Context, actor *identity.Character) (*Dashboard, error) {
	if err := s.gate.RequireDirector(actor); err != nil {
		return nil, err
	}

	banned, err := s.bans.Banned(ctx)
	if err != nil {
		return nil, err
	}
	freighters, err := s.characters.Freighters(ctx)
	if err != nil {
		return nil, err
	}
	corporations, err := s.allows.Allowed(ctx, identity.SubjectCorporation)
	if err != nil {
		return nil, err
	}
	alliances, err := s.allows.Allowed(ctx, identity.SubjectAlliance)
	if err != nil {
		return nil, err
	}
	items, err := s.exclusions.ExcludedItems(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.exclusions.ExcludedGroups(ctx)
	if err != nil {
		return nil, err
	}
	destinations, err := s.destinations.All(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		settings = admin.DefaultSettings()
	}

	return &Dashboard{
		Banned:         banned,
		Freighters:     freighters,
		Corporations:   corporations,
		Alliances:      alliances,
		ExcludedItems:  items,
		ExcludedGroups: groups,
		Destinations:   destinations,
		Settings:       settings,
	}, nil
}
