package contract

import (
	"fmt"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a courier contract
type Status string

const (
	StatusPending   Status = "pending"
	StatusOngoing   Status = "ongoing"
	StatusFlagged   Status = "flagged"
	StatusFinalized Status = "finalized"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusOngoing, StatusFlagged, StatusFinalized, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status retains the contract for history
// only; no transition ever leaves a terminal state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinalized, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusOngoing || target == StatusCancelled
	case StatusOngoing:
		return target == StatusFlagged || target == StatusFinalized ||
			target == StatusFailed || target == StatusCancelled
	case StatusFlagged:
		return target == StatusFinalized || target == StatusFailed
	case StatusFinalized, StatusFailed, StatusCancelled:
		return false
	}
	return false
}

// Contract is a courier delivery job. Records are never deleted; terminal
// states are retained for dispute history. Version is the optimistic
// concurrency token, strictly incremented on every successful mutation.
type Contract struct {
	ID              int64 `gorm:"primaryKey"`
	Link            string
	Destination     string
	Reward          decimal.Decimal `gorm:"type:decimal(20,2)"`
	Quote           decimal.Decimal `gorm:"type:decimal(20,2)"`
	Volume          float64
	RewardPerVolume int64
	Multiplier      int
	SubmitterID     int64
	SubmitterName   string
	SubmittedAt     time.Time
	Status          Status `gorm:"size:20;index"`
	Version         int    `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewContract creates a pending contract at version 1
func NewContract(link, destination string, reward, quote decimal.Decimal, volume float64, multiplier int, submitterID int64, submitterName string) (*Contract, error) {
	if link == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Contract link cannot be empty")
	}
	if destination == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Destination cannot be empty")
	}
	if volume <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Volume must be positive")
	}
	if multiplier < 1 {
		multiplier = 1
	}
	if submitterID == 0 || submitterName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Submitter is required")
	}

	ratio := int64(0)
	if volume > 0 {
		ratio = reward.Div(decimal.NewFromFloat(volume)).Round(0).IntPart()
	}

	now := time.Now()
	return &Contract{
		Link:            link,
		Destination:     destination,
		Reward:          reward,
		Quote:           quote,
		Volume:          volume,
		RewardPerVolume: ratio,
		Multiplier:      multiplier,
		SubmitterID:     submitterID,
		SubmitterName:   submitterName,
		SubmittedAt:     now,
		Status:          StatusPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// transition moves the contract to target after checking the state machine
func (c *Contract) transition(target Status) error {
	if !c.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Contract #%d cannot go from %s to %s", c.ID, c.Status, target))
	}
	c.Status = target
	c.UpdatedAt = time.Now()
	return nil
}

// Accept moves a pending contract into delivery
func (c *Contract) Accept() error {
	return c.transition(StatusOngoing)
}

// Flag marks an ongoing contract as problematic pending director review
func (c *Contract) Flag() error {
	return c.transition(StatusFlagged)
}

// Complete finalizes an ongoing or flagged contract
func (c *Contract) Complete() error {
	return c.transition(StatusFinalized)
}

// Fail marks an ongoing or flagged contract as failed
func (c *Contract) Fail() error {
	return c.transition(StatusFailed)
}

// Cancel withdraws a pending or ongoing contract
func (c *Contract) Cancel() error {
	return c.transition(StatusCancelled)
}

// ApplyTax deducts a director-applied reward correction. Allowed while the
// contract is being worked or after completion; the deduction never takes
// the reward negative.
func (c *Contract) ApplyTax(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Tax amount cannot be negative")
	}
	if c.Status == StatusPending || c.Status == StatusCancelled || c.Status == StatusFailed {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Contract #%d cannot be taxed while %s", c.ID, c.Status))
	}
	taxed := c.Reward.Sub(amount)
	if taxed.IsNegative() {
		taxed = decimal.Zero
	}
	c.Reward = taxed
	c.UpdatedAt = time.Now()
	return nil
}
