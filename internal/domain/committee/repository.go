package committee

import "context"

// Repository persists committee ledgers. Create and Update write the whole
// aggregate so payments and draws never diverge from the committee row.
type Repository interface {
	Create(ctx context.Context, ledger Ledger) error
	GetByID(ctx context.Context, committeeID string) (Ledger, bool, error)
	Update(ctx context.Context, ledger Ledger) error
	Delete(ctx context.Context, committeeID string) error
	List(ctx context.Context) ([]Ledger, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Ledger, error)
}
