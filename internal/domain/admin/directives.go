package admin

import (
	"context"
	"time"
)

// Directive is the closed set of director administration commands. The
// variant is selected once at the HTTP boundary and matched exhaustively
// by the dispatcher; there is no dispatch on request shape anywhere else.
type Directive interface {
	directive()
	// Target names the administered subject for audit logging.
	Target() string
}

// BanCharacter vetoes a character from every mutating operation
type BanCharacter struct{ CharacterName string }

// UnbanCharacter lifts a character ban
type UnbanCharacter struct{ CharacterName string }

// GrantFreighter flags a character as operational courier staff
type GrantFreighter struct{ CharacterName string }

// RevokeFreighter removes the freighter flag
type RevokeFreighter struct{ CharacterName string }

// AllowCorporation whitelists a corporation by name
type AllowCorporation struct{ CorporationName string }

// DisallowCorporation removes a corporation from the whitelist
type DisallowCorporation struct{ CorporationName string }

// AllowAlliance whitelists an alliance by name
type AllowAlliance struct{ AllianceName string }

// DisallowAlliance removes an alliance from the whitelist
type DisallowAlliance struct{ AllianceName string }

// ExcludeItemType bars an item type from appraisals
type ExcludeItemType struct {
	TypeID int64
	Name   string
}

// ReincludeItemType lifts an item type exclusion
type ReincludeItemType struct{ TypeID int64 }

// ExcludeMarketGroup bars a whole market group from appraisals
type ExcludeMarketGroup struct {
	MarketGroupID int64
	Name          string
}

// ReincludeMarketGroup lifts a market group exclusion
type ReincludeMarketGroup struct{ MarketGroupID int64 }

// UpdateSettings replaces the tunable settings singleton
type UpdateSettings struct{ MaxVolume float64 }

// AddDestination adds a deliverable destination to the catalog
type AddDestination struct {
	Name  string
	Image string
}

// RemoveDestination removes a destination from the catalog
type RemoveDestination struct{ Name string }

func (BanCharacter) directive()         {}
func (UnbanCharacter) directive()       {}
func (GrantFreighter) directive()       {}
func (RevokeFreighter) directive()      {}
func (AllowCorporation) directive()     {}
func (DisallowCorporation) directive()  {}
func (AllowAlliance) directive()        {}
func (DisallowAlliance) directive()     {}
func (ExcludeItemType) directive()      {}
func (ReincludeItemType) directive()    {}
func (ExcludeMarketGroup) directive()   {}
func (ReincludeMarketGroup) directive() {}
func (UpdateSettings) directive()       {}
func (AddDestination) directive()       {}
func (RemoveDestination) directive()    {}

func (d BanCharacter) Target() string         { return d.CharacterName }
func (d UnbanCharacter) Target() string       { return d.CharacterName }
func (d GrantFreighter) Target() string       { return d.CharacterName }
func (d RevokeFreighter) Target() string      { return d.CharacterName }
func (d AllowCorporation) Target() string     { return d.CorporationName }
func (d DisallowCorporation) Target() string  { return d.CorporationName }
func (d AllowAlliance) Target() string        { return d.AllianceName }
func (d DisallowAlliance) Target() string     { return d.AllianceName }
func (d ExcludeItemType) Target() string      { return d.Name }
func (d ReincludeItemType) Target() string    { return "" }
func (d ExcludeMarketGroup) Target() string   { return d.Name }
func (d ReincludeMarketGroup) Target() string { return "" }
func (d UpdateSettings) Target() string       { return "settings" }
func (d AddDestination) Target() string       { return d.Name }
func (d RemoveDestination) Target() string    { return d.Name }

// Settings is the director-writable tunables singleton
type Settings struct {
	ID        int64 `gorm:"primaryKey"`
	MaxVolume float64
	UpdatedAt time.Time
}

// DefaultSettings returns the settings used before a director tunes them
func DefaultSettings() *Settings {
	return &Settings{ID: 1, MaxVolume: 340_000}
}

// SettingsRepository persists the settings singleton
type SettingsRepository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// Destination is a deliverable endpoint shown on the landing page
type Destination struct {
	Name      string `gorm:"primaryKey;size:100"`
	Image     string
	CreatedAt time.Time
}

// DestinationRepository persists the destination catalog
type DestinationRepository interface {
	All(ctx context.Context) ([]Destination, error)
	Add(ctx context.Context, destination Destination) error
	// Remove deletes a destination; a missing name yields NOT_FOUND.
	Remove(ctx context.Context, name string) error
}

// ExcludedItemType bars a single item type from appraisals
type ExcludedItemType struct {
	TypeID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	CreatedAt time.Time
}

// ExcludedMarketGroup bars an entire market group from appraisals
type ExcludedMarketGroup struct {
	MarketGroupID int64 `gorm:"primaryKey;autoIncrement:false"`
	Name          string
	CreatedAt     time.Time
}

// ExclusionRepository administers the cargo exclusion lists. It also
// serves the pricing engine's exclusion checks.
type ExclusionRepository interface {
	IsItemExcluded(ctx context.Context, typeID int64) (bool, error)
	IsMarketGroupExcluded(ctx context.Context, marketGroupID int64) (bool, error)
	ExcludeItem(ctx context.Context, item ExcludedItemType) error
	ReincludeItem(ctx context.Context, typeID int64) error
	ExcludeGroup(ctx context.Context, group ExcludedMarketGroup) error
	ReincludeGroup(ctx context.Context, marketGroupID int64) error
	ExcludedItems(ctx context.Context) ([]ExcludedItemType, error)
	ExcludedGroups(ctx context.Context) ([]ExcludedMarketGroup, error)
}
