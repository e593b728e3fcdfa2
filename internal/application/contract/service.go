package contract

import (
	"context"
	"fmt"
	"sync"

	"github.com/mangodeliveries/backend/internal/domain/contract"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/pricing"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service drives the contract ledger: creation, the staff batch
// operations, and the read-side lists. Every successful mutation appends
// exactly one audit entry and emits a best-effort notification.
type Service struct {
	contracts contract.Repository
	audit     contract.AuditTrail
	gate      *identity.Gate
	quoter    *pricing.AppraisalQuoter
	sinks     []contract.NotificationSink
	logger    *zap.Logger
}

// NewService creates a contract Service
func NewService(contracts contract.Repository, audit contract.AuditTrail, gate *identity.Gate, quoter *pricing.AppraisalQuoter, sinks []contract.NotificationSink, logger *zap.Logger) *Service {
	return &Service{
		contracts: contracts,
		audit:     audit,
		gate:      gate,
		quoter:    quoter,
		sinks:     sinks,
		logger:    logger,
	}
}

// SubmitRequest is the input for creating a contract
type SubmitRequest struct {
	Link          string
	Destination   string
	AppraisalCode string
	Multiplier    int
}

// Create validates the appraisal behind the request, opens a pending
// contract at version 1, logs the create audit entry and notifies the
// sinks.
func (s *Service) Create(ctx context.Context, actor *identity.Character, req SubmitRequest) (*contract.Contract, error) {
	if err := s.gate.RequireAuthorized(ctx, actor); err != nil {
		return nil, err
	}

	quote, err := s.quoter.Quote(ctx, req.AppraisalCode, req.Multiplier)
	if err != nil {
		return nil, err
	}

	c, err := contract.NewContract(
		req.Link,
		req.Destination,
		quote.Reward,
		quote.Quote,
		quote.Volume,
		quote.Multiplier,
		actor.ID,
		actor.CharacterName,
	)
	if err != nil {
		return nil, err
	}

	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := s.audit.Log(ctx, c.ID, contract.Actor{ID: actor.ID, Name: actor.CharacterName},
		contract.AuditCreate,
		fmt.Sprintf("Volume: %s, Reward: %s", pricing.Comma(decimal.NewFromFloat(c.Volume)), pricing.Comma(c.Quote))); err != nil {
		return nil, err
	}

	s.notifyNew(ctx, c)
	return c, nil
}

// OperationKind tags a batch operation
type OperationKind string

const (
	OpAccept   OperationKind = "accept"
	OpFlag     OperationKind = "flag"
	OpComplete OperationKind = "complete"
	OpFail     OperationKind = "fail"
	OpCancel   OperationKind = "cancel"
	OpTax      OperationKind = "tax"
)

// Operation is one compare-and-swap mutation against a contract
type Operation struct {
	ContractID      int64
	Kind            OperationKind
	ExpectedVersion int
	TaxAmount       decimal.Decimal
}

// OperationResult reports the outcome of a single batch operation.
// Operations targeting different contracts are independent; a conflict on
// one never rolls back another.
type OperationResult struct {
	ContractID int64
	Kind       OperationKind
	Err        error
}

// ApplyBatch evaluates each operation independently and concurrently
// against the current stored version of its target contract. A stale
// expectedVersion rejects that operation with CONCURRENT_MODIFICATION and
// leaves the rest of the batch untouched.
func (s *Service) ApplyBatch(ctx context.Context, actor *identity.Character, ops []Operation) ([]OperationResult, error) {
	if err := s.gate.RequireStaff(actor); err != nil {
		return nil, err
	}
	for _, op := range ops {
		if op.Kind == OpTax {
			if err := s.gate.RequireDirector(actor); err != nil {
				return nil, err
			}
			break
		}
	}

	results := make([]OperationResult, len(ops))
	var wg sync.WaitGroup
	for i, op := range ops {
		wg.Add(1)
		go func(i int, op Operation) {
			defer wg.Done()
			results[i] = OperationResult{
				ContractID: op.ContractID,
				Kind:       op.Kind,
				Err:        s.applyOne(ctx, actor, op),
			}
		}(i, op)
	}
	wg.Wait()

	return results, nil
}

// applyOne performs one mutation under compare-and-swap semantics
func (s *Service) applyOne(ctx context.Context, actor *identity.Character, op Operation) error {
	c, err := s.contracts.FindByID(ctx, op.ContractID)
	if err != nil {
		return err
	}
	if c.Version != op.ExpectedVersion {
		return shared.NewConcurrentModificationError(op.ContractID)
	}

	var action contract.AuditAction
	details := ""
	notify := true

	switch op.Kind {
	case OpAccept:
		err = c.Accept()
		action = contract.AuditAccept
	case OpFlag:
		err = c.Flag()
		action = contract.AuditReject
		details = "Flagged for director review"
	case OpComplete:
		err = c.Complete()
		action = contract.AuditComplete
	case OpFail:
		err = c.Fail()
		action = contract.AuditFail
	case OpCancel:
		err = c.Cancel()
		action = contract.AuditCancel
	case OpTax:
		err = c.ApplyTax(op.TaxAmount)
		action = contract.AuditComplete
		details = fmt.Sprintf("Tax applied: %s ISK", pricing.Comma(op.TaxAmount))
		notify = false
	default:
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown operation %q", op.Kind))
	}
	if err != nil {
		return err
	}

	if err := s.contracts.CompareAndSwap(ctx, c, op.ExpectedVersion); err != nil {
		return err
	}

	if err := s.audit.Log(ctx, c.ID, contract.Actor{ID: actor.ID, Name: actor.CharacterName}, action, details); err != nil {
		return err
	}

	if notify {
		s.notifyStatus(ctx, c.ID, c.Status, actor.CharacterName)
	}
	return nil
}

// Cancel withdraws a contract. Staff can cancel anything still
// cancellable; a member can only cancel their own pending submission.
func (s *Service) Cancel(ctx context.Context, actor *identity.Character, contractID int64, expectedVersion int) error {
	if err := s.gate.RequireAuthorized(ctx, actor); err != nil {
		return err
	}

	c, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return err
	}
	staff := actor.Director || actor.Freighter
	if !staff && (c.SubmitterID != actor.ID || c.Status != contract.StatusPending) {
		return shared.ErrForbidden
	}
	if c.Version != expectedVersion {
		return shared.NewConcurrentModificationError(contractID)
	}

	if err := c.Cancel(); err != nil {
		return err
	}
	if err := s.contracts.CompareAndSwap(ctx, c, expectedVersion); err != nil {
		return err
	}
	if err := s.audit.Log(ctx, c.ID, contract.Actor{ID: actor.ID, Name: actor.CharacterName}, contract.AuditCancel, ""); err != nil {
		return err
	}

	s.notifyStatus(ctx, c.ID, c.Status, actor.CharacterName)
	return nil
}

// ListPending returns pending contracts; ownerID 0 lists all submitters
func (s *Service) ListPending(ctx context.Context, ownerID int64) ([]contract.Contract, error) {
	return s.contracts.FindByStatus(ctx, []contract.Status{contract.StatusPending}, ownerID)
}

// ListOngoing returns in-flight contracts, flagged ones included
func (s *Service) ListOngoing(ctx context.Context, ownerID int64) ([]contract.Contract, error) {
	return s.contracts.FindByStatus(ctx, []contract.Status{contract.StatusOngoing, contract.StatusFlagged}, ownerID)
}

// ListFinalized returns contracts in a terminal state
func (s *Service) ListFinalized(ctx context.Context, ownerID int64) ([]contract.Contract, error) {
	return s.contracts.FindByStatus(ctx, []contract.Status{contract.StatusFinalized, contract.StatusFailed, contract.StatusCancelled}, ownerID)
}

// History returns the full audit trail of one contract, oldest first
func (s *Service) History(ctx context.Context, contractID int64) ([]contract.AuditEntry, error) {
	return s.audit.GetHistory(ctx, contractID)
}

// notifyNew fans the new-contract event out to every sink. Sink failures
// are logged and never surface to the caller.
func (s *Service) notifyNew(ctx context.Context, c *contract.Contract) {
	event := contract.NewContractEvent{
		ContractID:  c.ID,
		Creator:     c.SubmitterName,
		Origin:      "Jita",
		Destination: c.Destination,
		Volume:      c.Volume,
		Reward:      pricing.Comma(c.Quote),
		Collateral:  pricing.Comma(c.Reward),
		Link:        c.Link,
	}
	for _, sink := range s.sinks {
		if err := sink.NotifyNewContract(ctx, event); err != nil {
			s.logger.Warn("new contract notification failed",
				zap.Int64("contract_id", c.ID),
				zap.Error(err))
		}
	}
}

func (s *Service) notifyStatus(ctx context.Context, contractID int64, status contract.Status, actor string) {
	for _, sink := range s.sinks {
		if err := sink.NotifyStatusChange(ctx, contractID, status, actor); err != nil {
			s.logger.Warn("status change notification failed",
				zap.Int64("contract_id", contractID),
				zap.String("status", string(status)),
				zap.Error(err))
		}
	}
}
