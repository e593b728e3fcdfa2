package contract

import "context"

// Repository owns contract persistence. Mutation goes exclusively through
// CompareAndSwap so ledger logic stays testable without a real datastore.
type Repository interface {
	Create(ctx context.Context, contract *Contract) error
	FindByID(ctx context.Context, id int64) (*Contract, error)
	// CompareAndSwap persists the mutated contract only if the stored
	// version still equals expectedVersion, incrementing the version in
	// the same write. A stale expectation yields the
	// CONCURRENT_MODIFICATION domain error carrying the contract id.
	CompareAndSwap(ctx context.Context, contract *Contract, expectedVersion int) error
	// FindByStatus lists contracts in any of the given statuses, ordered
	// by submission time descending. ownerID 0 means all submitters.
	FindByStatus(ctx context.Context, statuses []Status, ownerID int64) ([]Contract, error)
}

// NewContractEvent carries the data for a new-contract notification
type NewContractEvent struct {
	ContractID  int64
	Creator     string
	Origin      string
	Destination string
	Volume      float64
	Reward      string
	Collateral  string
	Link        string
}

// NotificationSink delivers contract events to an external channel.
// Delivery is best effort: failures are logged by the caller and never
// affect the caller-visible result.
type NotificationSink interface {
	NotifyNewContract(ctx context.Context, event NewContractEvent) error
	NotifyStatusChange(ctx context.Context, contractID int64, status Status, actor string) error
}
