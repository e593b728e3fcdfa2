package identity

import (
	"context"
	"time"
)

// Character is the resolved identity behind a session. It is re-fetched
// from the configured provider on login and treated as immutable within a
// single request.
type Character struct {
	ID                  int64 `gorm:"primaryKey;autoIncrement:false"`
	Token               string
	CharacterName       string `gorm:"uniqueIndex;size:100"`
	CharacterPortrait   string
	CharacterBirthday   time.Time
	CorporationID       int64
	CorporationName     string
	CorporationPortrait string
	AllianceID          *int64
	AllianceName        *string
	AlliancePortrait    *string
	Freighter           bool
	Director            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasAlliance reports whether the character belongs to an alliance.
func (c *Character) HasAlliance() bool {
	return c.AllianceName != nil && *c.AllianceName != ""
}

// RoleName returns a human label for the character's operational role.
func (c *Character) RoleName() string {
	switch {
	case c.Director:
		return "director"
	case c.Freighter:
		return "freighter"
	default:
		return "member"
	}
}

// CharacterRepository persists character profiles keyed by their external id
type CharacterRepository interface {
	Save(ctx context.Context, character *Character) error
	FindByID(ctx context.Context, id int64) (*Character, error)
	FindByToken(ctx context.Context, token string) (*Character, error)
	FindByName(ctx context.Context, name string) (*Character, error)
	SetFreighter(ctx context.Context, name string, freighter bool) error
	Freighters(ctx context.Context) ([]Character, error)
}

// BanEntry records a per-character veto. Allowed false means banned; an
// entry is removed (or flipped) on unban.
type BanEntry struct {
	CharacterName string `gorm:"primaryKey;size:100"`
	Allowed       bool
	CreatedAt     time.Time
}

// BanRepository administers the character ban list
type BanRepository interface {
	IsBanned(ctx context.Context, characterName string) (bool, error)
	Ban(ctx context.Context, characterName string) error
	Unban(ctx context.Context, characterName string) error
	Banned(ctx context.Context) ([]BanEntry, error)
}

// SubjectKind discriminates the allow-list key space
type SubjectKind string

const (
	SubjectCorporation SubjectKind = "corporation"
	SubjectAlliance    SubjectKind = "alliance"
)

// AllowEntry whitelists a corporation or alliance by name
type AllowEntry struct {
	SubjectName string      `gorm:"primaryKey;size:100"`
	Kind        SubjectKind `gorm:"primaryKey;size:20"`
	Allowed     bool
	CreatedAt   time.Time
}

// AllowlistRepository administers the corporation/alliance allow lists
type AllowlistRepository interface {
	IsAllowed(ctx context.Context, kind SubjectKind, name string) (bool, error)
	Allow(ctx context.Context, kind SubjectKind, name string) error
	Disallow(ctx context.Context, kind SubjectKind, name string) error
	Allowed(ctx context.Context, kind SubjectKind) ([]AllowEntry, error)
}
