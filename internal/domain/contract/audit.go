package contract

import (
	"context"
	"time"
)

// AuditAction enumerates the recordable actions against a contract
type AuditAction string

const (
	AuditCreate   AuditAction = "create"
	AuditAccept   AuditAction = "accept"
	AuditComplete AuditAction = "complete"
	AuditReject   AuditAction = "reject"
	AuditFail     AuditAction = "fail"
	AuditCancel   AuditAction = "cancel"
)

// IsValid checks if the action is a known AuditAction
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditCreate, AuditAccept, AuditComplete, AuditReject, AuditFail, AuditCancel:
		return true
	}
	return false
}

// AuditEntry is one immutable line of the contract audit trail. The
// timestamp is assigned at write time by the ledger, never by the caller.
type AuditEntry struct {
	ID         int64 `gorm:"primaryKey"`
	ContractID int64 `gorm:"index"`
	ActorID    int64
	ActorName  string
	Action     AuditAction `gorm:"size:20"`
	Details    string
	Timestamp  time.Time `gorm:"index"`
}

// Actor identifies who performed an audited action
type Actor struct {
	ID   int64
	Name string
}

// AuditTrail is the append-only action log. Implementations expose no
// update or delete operations; history must reproduce the exact sequence
// of actions regardless of concurrent writers.
type AuditTrail interface {
	Log(ctx context.Context, contractID int64, actor Actor, action AuditAction, details string) error
	GetHistory(ctx context.Context, contractID int64) ([]AuditEntry, error)
}
