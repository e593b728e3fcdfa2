package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mangodeliveries/backend/internal/domain/contract"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/pricing"
)

// CharacterView is the identity snapshot the frontend renders
type CharacterView struct {
	ID                  int64   `json:"id"`
	CharacterName       string  `json:"characterName"`
	CharacterPortrait   string  `json:"characterPortrait"`
	CharacterBirthday   string  `json:"characterBirthday"`
	CorporationID       int64   `json:"corporationId"`
	CorporationName     string  `json:"corporationName"`
	CorporationPortrait string  `json:"corporationPortrait"`
	AllianceID          *int64  `json:"allianceId,omitempty"`
	AllianceName        *string `json:"allianceName,omitempty"`
	AlliancePortrait    *string `json:"alliancePortrait,omitempty"`
	Freighter           bool    `json:"freighter"`
	Director            bool    `json:"director"`
}

// NewCharacterView builds the view for a resolved character. The session
// token never leaves the server.
func NewCharacterView(ch *identity.Character) CharacterView {
	return CharacterView{
		ID:                  ch.ID,
		CharacterName:       ch.CharacterName,
		CharacterPortrait:   ch.CharacterPortrait,
		CharacterBirthday:   ch.CharacterBirthday.Format("2006-01-02 15:04:05"),
		CorporationID:       ch.CorporationID,
		CorporationName:     ch.CorporationName,
		CorporationPortrait: ch.CorporationPortrait,
		AllianceID:          ch.AllianceID,
		AllianceName:        ch.AllianceName,
		AlliancePortrait:    ch.AlliancePortrait,
		Freighter:           ch.Freighter,
		Director:            ch.Director,
	}
}

// ContractView is a contract row with the display fields the frontend
// expects pre-rendered.
type ContractView struct {
	ID                        int64   `json:"id"`
	Link                      string  `json:"link"`
	Destination               string  `json:"destination"`
	Value                     string  `json:"value"`
	ValueFormatted            string  `json:"valueFormatted"`
	ValueShort                string  `json:"valueShort"`
	Quote                     string  `json:"quote"`
	QuoteFormatted            string  `json:"quoteFormatted"`
	QuoteShort                string  `json:"quoteShort"`
	Volume                    float64 `json:"volume"`
	VolumeFormatted           string  `json:"volumeFormatted"`
	ValueVolumeRatio          int64   `json:"valueVolumeRatio"`
	ValueVolumeRatioFormatted string  `json:"valueVolumeRatioFormatted"`
	Multiplier                int     `json:"multiplier"`
	SubmitterID               int64   `json:"submitterId"`
	SubmitterName             string  `json:"submitterName"`
	Submitted                 int64   `json:"submitted"`
	SubmittedFormatted        string  `json:"submittedFormatted"`
	Status                    string  `json:"status"`
	Version                   int     `json:"version"`
}

// NewContractView renders a contract for the frontend
func NewContractView(c *contract.Contract) ContractView {
	return ContractView{
		ID:                        c.ID,
		Link:                      c.Link,
		Destination:               c.Destination,
		Value:                     c.Reward.StringFixed(2),
		ValueFormatted:            pricing.Comma(c.Reward),
		ValueShort:                pricing.Shorten(c.Reward, 2),
		Quote:                     c.Quote.StringFixed(2),
		QuoteFormatted:            pricing.Comma(c.Quote),
		QuoteShort:                pricing.Shorten(c.Quote, 2),
		Volume:                    c.Volume,
		VolumeFormatted:           pricing.Comma(decimal.NewFromFloat(c.Volume)),
		ValueVolumeRatio:          c.RewardPerVolume,
		ValueVolumeRatioFormatted: pricing.Comma(decimal.NewFromInt(c.RewardPerVolume)),
		Multiplier:                c.Multiplier,
		SubmitterID:               c.SubmitterID,
		SubmitterName:             c.SubmitterName,
		Submitted:                 c.SubmittedAt.Unix(),
		SubmittedFormatted:        c.SubmittedAt.UTC().Format("January 2 2006, 15:04:05"),
		Status:                    c.Status.String(),
		Version:                   c.Version,
	}
}

// NewContractViews renders a contract list
func NewContractViews(contracts []contract.Contract) []ContractView {
	views := make([]ContractView, 0, len(contracts))
	for i := range contracts {
		views = append(views, NewContractView(&contracts[i]))
	}
	return views
}

// AuditEntryView is one audit trail row
type AuditEntryView struct {
	ID         int64  `json:"id"`
	ContractID int64  `json:"contractId"`
	ActorID    int64  `json:"actorId"`
	ActorName  string `json:"actorName"`
	Action     string `json:"action"`
	Details    string `json:"details"`
	Timestamp  string `json:"timestamp"`
}

// NewAuditEntryViews renders an audit history
func NewAuditEntryViews(entries []contract.AuditEntry) []AuditEntryView {
	views := make([]AuditEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, AuditEntryView{
			ID:         e.ID,
			ContractID: e.ContractID,
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			Action:     string(e.Action),
			Details:    e.Details,
			Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return views
}
