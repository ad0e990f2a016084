package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/shopspring/decimal"
)

type committeeTableModel struct {
	ID             int64           `db:"id"`
	PublicID       string          `db:"public_id"`
	OwnerID        string          `db:"owner_id"`
	Name           string          `db:"name"`
	AmountPerCycle decimal.Decimal `db:"amount_per_cycle"`
	TotalCycles    int             `db:"total_cycles"`
	StartDate      sql.NullTime    `db:"start_date"`
	CurrentCycle   int             `db:"current_cycle"`
	IsActive       bool            `db:"is_active"`
	Status         string          `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type committeeInsertModel struct {
	PublicID       string          `db:"public_id"`
	OwnerID        string          `db:"owner_id"`
	Name           string          `db:"name"`
	AmountPerCycle decimal.Decimal `db:"amount_per_cycle"`
	TotalCycles    int             `db:"total_cycles"`
	StartDate      sql.NullTime    `db:"start_date"`
	CurrentCycle   int             `db:"current_cycle"`
	IsActive       bool            `db:"is_active"`
	Status         string          `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type memberTableModel struct {
	CommitteeID string       `db:"committee_id"`
	MemberID    string       `db:"member_id"`
	Position    int          `db:"position"`
	Name        string       `db:"name"`
	Contact     string       `db:"contact"`
	JoinedAt    sql.NullTime `db:"joined_at"`
}

type paymentTableModel struct {
	PublicID    string          `db:"public_id"`
	CommitteeID string          `db:"committee_id"`
	MemberID    string          `db:"member_id"`
	Cycle       int             `db:"cycle"`
	Amount      decimal.Decimal `db:"amount"`
	IsPaid      bool            `db:"is_paid"`
	PaidAt      sql.NullTime    `db:"paid_at"`
}

type drawTableModel struct {
	PublicID       string    `db:"public_id"`
	CommitteeID    string    `db:"committee_id"`
	Cycle          int       `db:"cycle"`
	WinnerMemberID string    `db:"winner_member_id"`
	DrawnAt        time.Time `db:"drawn_at"`
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return nullTime(*t)
}

func committeeInsertFromDomain(c committee.Committee) committeeInsertModel {
	return committeeInsertModel{
		PublicID:       c.ID,
		OwnerID:        c.OwnerID,
		Name:           c.Name,
		AmountPerCycle: c.AmountPerCycle,
		TotalCycles:    c.TotalCycles,
		StartDate:      nullTime(c.StartDate),
		CurrentCycle:   c.CurrentCycle,
		IsActive:       c.IsActive,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func membersFromDomain(c committee.Committee) []memberTableModel {
	out := make([]memberTableModel, 0, len(c.Members))
	for i, m := range c.Members {
		out = append(out, memberTableModel{
			CommitteeID: c.ID,
			MemberID:    m.ID,
			Position:    i,
			Name:        m.Name,
			Contact:     m.Contact,
			JoinedAt:    nullTime(m.JoinedAt),
		})
	}
	return out
}

func paymentsFromDomain(payments []committee.Payment) []paymentTableModel {
	out := make([]paymentTableModel, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentTableModel{
			PublicID:    p.ID,
			CommitteeID: p.CommitteeID,
			MemberID:    p.MemberID,
			Cycle:       p.Cycle,
			Amount:      p.Amount,
			IsPaid:      p.IsPaid,
			PaidAt:      nullTimePtr(p.PaidAt),
		})
	}
	return out
}

func drawsFromDomain(draws []committee.Draw) []drawTableModel {
	out := make([]drawTableModel, 0, len(draws))
	for _, d := range draws {
		out = append(out, drawTableModel{
			PublicID:       d.ID,
			CommitteeID:    d.CommitteeID,
			Cycle:          d.Cycle,
			WinnerMemberID: d.WinnerMemberID,
			DrawnAt:        d.DrawnAt,
		})
	}
	return out
}

func committeeFromRow(row committeeTableModel, members []memberTableModel) committee.Committee {
	c := committee.Committee{
		ID:             row.PublicID,
		OwnerID:        row.OwnerID,
		Name:           row.Name,
		AmountPerCycle: row.AmountPerCycle,
		TotalCycles:    row.TotalCycles,
		CurrentCycle:   row.CurrentCycle,
		IsActive:       row.IsActive,
		Status:         committee.Status(row.Status),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		Members:        make([]committee.Member, 0, len(members)),
	}
	if row.StartDate.Valid {
		c.StartDate = row.StartDate.Time
	}
	for _, m := range members {
		member := committee.Member{ID: m.MemberID, Name: m.Name, Contact: m.Contact}
		if m.JoinedAt.Valid {
			member.JoinedAt = m.JoinedAt.Time
		}
		c.Members = append(c.Members, member)
	}
	return c
}

func paymentFromRow(row paymentTableModel) committee.Payment {
	p := committee.Payment{
		ID:          row.PublicID,
		CommitteeID: row.CommitteeID,
		MemberID:    row.MemberID,
		Cycle:       row.Cycle,
		Amount:      row.Amount,
		IsPaid:      row.IsPaid,
	}
	if row.PaidAt.Valid {
		paidAt := row.PaidAt.Time
		p.PaidAt = &paidAt
	}
	return p
}

func drawFromRow(row drawTableModel) committee.Draw {
	return committee.Draw{
		ID:             row.PublicID,
		CommitteeID:    row.CommitteeID,
		Cycle:          row.Cycle,
		WinnerMemberID: row.WinnerMemberID,
		DrawnAt:        row.DrawnAt,
	}
}
