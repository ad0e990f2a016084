package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/komiti/internal/domain/committee"
)

type CommitteeRepository struct {
	db *DB
}

func NewCommitteeRepository(db *DB) *CommitteeRepository {
	return &CommitteeRepository{db: db}
}

func (r *CommitteeRepository) Create(ctx context.Context, ledger committee.Ledger) error {
	id := ledger.Committee.ID
	return r.db.write(ctx, func(d *dataset) error {
		if _, exists := d.ledgers[id]; exists {
			return fmt.Errorf("%w: committee=%s", committee.ErrAlreadyExists, id)
		}
		d.ledgers[id] = ledger.Clone()
		d.order = append(d.order, id)
		return nil
	})
}

func (r *CommitteeRepository) GetByID(_ context.Context, committeeID string) (committee.Ledger, bool, error) {
	var (
		out committee.Ledger
		ok  bool
	)
	r.db.read(func(d *dataset) {
		var l committee.Ledger
		l, ok = d.ledgers[committeeID]
		if ok {
			out = l.Clone()
		}
	})
	return out, ok, nil
}

func (r *CommitteeRepository) Update(ctx context.Context, ledger committee.Ledger) error {
	id := ledger.Committee.ID
	return r.db.write(ctx, func(d *dataset) error {
		if _, exists := d.ledgers[id]; !exists {
			return fmt.Errorf("%w: committee=%s", committee.ErrNotFound, id)
		}
		d.ledgers[id] = ledger.Clone()
		return nil
	})
}

// Delete drops the ledger. Unknown ids are not an error.
func (r *CommitteeRepository) Delete(ctx context.Context, committeeID string) error {
	exists := false
	r.db.read(func(d *dataset) {
		_, exists = d.ledgers[committeeID]
	})
	if !exists {
		return nil
	}

	return r.db.write(ctx, func(d *dataset) error {
		if _, ok := d.ledgers[committeeID]; !ok {
			return nil
		}
		delete(d.ledgers, committeeID)
		for i, id := range d.order {
			if id == committeeID {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
		return nil
	})
}

func (r *CommitteeRepository) List(_ context.Context) ([]committee.Ledger, error) {
	return r.collect(func(committee.Committee) bool { return true }), nil
}

func (r *CommitteeRepository) ListByOwner(_ context.Context, ownerID string) ([]committee.Ledger, error) {
	return r.collect(func(c committee.Committee) bool { return c.OwnerID == ownerID }), nil
}

func (r *CommitteeRepository) collect(keep func(committee.Committee) bool) []committee.Ledger {
	var out []committee.Ledger
	r.db.read(func(d *dataset) {
		out = make([]committee.Ledger, 0, len(d.order))
		for _, id := range d.order {
			l := d.ledgers[id]
			if keep(l.Committee) {
				out = append(out, l.Clone())
			}
		}
	})
	return out
}
