package postgres

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/komiti/internal/domain/committee"
	qb "github.com/riskibarqy/komiti/internal/platform/querybuilder"
)

// CommitteeRepository stores a ledger across committees, committee_members,
// payments and draws. Writes run in one transaction.
type CommitteeRepository struct {
	db *sqlx.DB
}

func NewCommitteeRepository(db *sqlx.DB) *CommitteeRepository {
	return &CommitteeRepository{db: db}
}

func (r *CommitteeRepository) Create(ctx context.Context, ledger committee.Ledger) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create committee: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("committees", committeeInsertFromDomain(ledger.Committee), "")
	if err != nil {
		return fmt.Errorf("build create committee query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: committee=%s", committee.ErrAlreadyExists, ledger.Committee.ID)
		}
		return fmt.Errorf("create committee: %w", err)
	}

	if err := insertMembers(ctx, tx, ledger.Committee); err != nil {
		return err
	}
	if err := upsertPayments(ctx, tx, ledger.Payments); err != nil {
		return err
	}
	if err := insertDraws(ctx, tx, ledger.Draws); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create committee tx: %w", err)
	}
	return nil
}

func (r *CommitteeRepository) GetByID(ctx context.Context, committeeID string) (committee.Ledger, bool, error) {
	query, args, err := qb.Select("*").From("committees").
		Where(qb.Eq("public_id", committeeID)).
		ToSQL()
	if err != nil {
		return committee.Ledger{}, false, fmt.Errorf("build get committee query: %w", err)
	}

	var row committeeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return committee.Ledger{}, false, nil
		}
		return committee.Ledger{}, false, fmt.Errorf("get committee: %w", err)
	}

	ledgers, err := r.assemble(ctx, []committeeTableModel{row})
	if err != nil {
		return committee.Ledger{}, false, err
	}
	return ledgers[0], true, nil
}

func (r *CommitteeRepository) Update(ctx context.Context, ledger committee.Ledger) error {
	c := ledger.Committee

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx update committee: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Update("committees").
		Set("name", c.Name).
		Set("amount_per_cycle", c.AmountPerCycle).
		Set("start_date", nullTime(c.StartDate)).
		Set("current_cycle", c.CurrentCycle).
		Set("is_active", c.IsActive).
		Set("status", string(c.Status)).
		Set("updated_at", c.UpdatedAt).
		Where(qb.Eq("public_id", c.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update committee query: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update committee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update committee: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: committee=%s", committee.ErrNotFound, c.ID)
	}

	deleteMembers, deleteArgs, err := qb.DeleteFrom("committee_members").
		Where(qb.Eq("committee_id", c.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete committee members query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteMembers, deleteArgs...); err != nil {
		return fmt.Errorf("delete committee members: %w", err)
	}
	if err := insertMembers(ctx, tx, c); err != nil {
		return err
	}
	if err := upsertPayments(ctx, tx, ledger.Payments); err != nil {
		return err
	}
	if err := insertDraws(ctx, tx, ledger.Draws); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update committee tx: %w", err)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for members, payments and draws.
func (r *CommitteeRepository) Delete(ctx context.Context, committeeID string) error {
	query, args, err := qb.DeleteFrom("committees").
		Where(qb.Eq("public_id", committeeID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete committee query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete committee: %w", err)
	}
	return nil
}

func (r *CommitteeRepository) List(ctx context.Context) ([]committee.Ledger, error) {
	return r.list(ctx, qb.Select("*").From("committees").OrderBy("id ASC"))
}

func (r *CommitteeRepository) ListByOwner(ctx context.Context, ownerID string) ([]committee.Ledger, error) {
	return r.list(ctx, qb.Select("*").From("committees").
		Where(qb.Eq("owner_id", ownerID)).
		OrderBy("id ASC"))
}

func (r *CommitteeRepository) list(ctx context.Context, b *qb.SelectBuilder) ([]committee.Ledger, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list committees query: %w", err)
	}

	var rows []committeeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list committees: %w", err)
	}
	if len(rows) == 0 {
		return []committee.Ledger{}, nil
	}
	return r.assemble(ctx, rows)
}

// assemble loads the child rows of every committee in three queries and
// rebuilds ledgers in row order.
func (r *CommitteeRepository) assemble(ctx context.Context, rows []committeeTableModel) ([]committee.Ledger, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PublicID)
	}

	var members []memberTableModel
	if err := r.selectChildren(ctx, &members, "committee_members", ids, "committee_id", "position"); err != nil {
		return nil, err
	}
	var payments []paymentTableModel
	if err := r.selectChildren(ctx, &payments, "payments", ids, "committee_id", "cycle"); err != nil {
		return nil, err
	}
	var draws []drawTableModel
	if err := r.selectChildren(ctx, &draws, "draws", ids, "committee_id", "cycle"); err != nil {
		return nil, err
	}

	membersBy := make(map[string][]memberTableModel, len(rows))
	for _, m := range members {
		membersBy[m.CommitteeID] = append(membersBy[m.CommitteeID], m)
	}
	paymentsBy := make(map[string][]committee.Payment, len(rows))
	for _, p := range payments {
		paymentsBy[p.CommitteeID] = append(paymentsBy[p.CommitteeID], paymentFromRow(p))
	}
	drawsBy := make(map[string][]committee.Draw, len(rows))
	for _, d := range draws {
		drawsBy[d.CommitteeID] = append(drawsBy[d.CommitteeID], drawFromRow(d))
	}

	out := make([]committee.Ledger, 0, len(rows))
	for _, row := range rows {
		c := committeeFromRow(row, membersBy[row.PublicID])
		ledger := committee.Ledger{
			Committee: c,
			Payments:  paymentsBy[row.PublicID],
			Draws:     drawsBy[row.PublicID],
		}
		if ledger.Payments == nil {
			ledger.Payments = []committee.Payment{}
		}
		if ledger.Draws == nil {
			ledger.Draws = []committee.Draw{}
		}
		sortPayments(ledger)
		out = append(out, ledger)
	}
	return out, nil
}

func (r *CommitteeRepository) selectChildren(ctx context.Context, dest any, table string, ids []string, fk, orderBy string) error {
	query, args, err := qb.Select("*").From(table).
		Where(qb.In(fk, ids)).
		OrderBy(fk, orderBy).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build select %s query: %w", table, err)
	}
	if err := r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

// sortPayments restores the cycle-major, member-order layout produced at
// creation.
func sortPayments(l committee.Ledger) {
	position := make(map[string]int, len(l.Committee.Members))
	for i, m := range l.Committee.Members {
		position[m.ID] = i
	}
	slices.SortStableFunc(l.Payments, func(a, b committee.Payment) int {
		if c := cmp.Compare(a.Cycle, b.Cycle); c != 0 {
			return c
		}
		return cmp.Compare(position[a.MemberID], position[b.MemberID])
	})
}

func insertMembers(ctx context.Context, tx *sqlx.Tx, c committee.Committee) error {
	if len(c.Members) == 0 {
		return nil
	}
	query, args, err := qb.InsertModels("committee_members", membersFromDomain(c), "")
	if err != nil {
		return fmt.Errorf("build insert committee members query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert committee members: %w", err)
	}
	return nil
}

func upsertPayments(ctx context.Context, tx *sqlx.Tx, payments []committee.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	query, args, err := qb.InsertModels("payments", paymentsFromDomain(payments),
		"ON CONFLICT (public_id) DO UPDATE SET is_paid = EXCLUDED.is_paid, paid_at = EXCLUDED.paid_at")
	if err != nil {
		return fmt.Errorf("build upsert payments query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert payments: %w", err)
	}
	return nil
}

// insertDraws is append-only. The (committee_id, cycle) constraint rejects a
// second draw for the same cycle.
func insertDraws(ctx context.Context, tx *sqlx.Tx, draws []committee.Draw) error {
	if len(draws) == 0 {
		return nil
	}
	query, args, err := qb.InsertModels("draws", drawsFromDomain(draws), "ON CONFLICT (public_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert draws query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", committee.ErrDuplicateDraw, err)
		}
		return fmt.Errorf("insert draws: %w", err)
	}
	return nil
}
