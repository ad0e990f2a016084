// Package state persists the whole dataset as one versioned document.
package state

import (
	"context"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/shopspring/decimal"
)

// CurrentVersion is written by Save. Older documents are upgraded by Migrate.
const CurrentVersion = 1

type Store interface {
	Load(ctx context.Context) (StoredState, error)
	Save(ctx context.Context, s StoredState) error
}

type StoredState struct {
	Version    int               `json:"version"`
	Committees []CommitteeRecord `json:"committees"`
	Payments   []PaymentRecord   `json:"payments"`
	Draws      []DrawRecord      `json:"draws"`
	Users      []UserRecord      `json:"users"`
	Settings   []SettingsRecord  `json:"settings"`
}

type CommitteeRecord struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"ownerId"`
	Name           string          `json:"name"`
	AmountPerCycle decimal.Decimal `json:"amountPerCycle"`
	TotalCycles    int             `json:"totalCycles"`
	StartDate      time.Time       `json:"startDate"`
	Members        []MemberRecord  `json:"members"`
	CurrentCycle   int             `json:"currentCycle"`
	IsActive       bool            `json:"isActive"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type MemberRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Contact  string    `json:"contact,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

type PaymentRecord struct {
	ID          string          `json:"id"`
	CommitteeID string          `json:"committeeId"`
	MemberID    string          `json:"memberId"`
	Cycle       int             `json:"cycleIndex"`
	Amount      decimal.Decimal `json:"amount"`
	IsPaid      bool            `json:"isPaid"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
}

type DrawRecord struct {
	ID             string    `json:"id"`
	CommitteeID    string    `json:"committeeId"`
	Cycle          int       `json:"cycleIndex"`
	WinnerMemberID string    `json:"winnerMemberId"`
	DrawnAt        time.Time `json:"drawnAt"`
}

type UserRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	EmailOrPhone string    `json:"emailOrPhone"`
	JoinedAt     time.Time `json:"joinedAt"`
}

type SettingsRecord struct {
	UserID         string    `json:"userId"`
	Language       string    `json:"language"`
	Theme          string    `json:"theme"`
	Notifications  bool      `json:"notifications"`
	EmailReminders bool      `json:"emailReminders"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func Empty() StoredState {
	return StoredState{
		Version:    CurrentVersion,
		Committees: []CommitteeRecord{},
		Payments:   []PaymentRecord{},
		Draws:      []DrawRecord{},
		Users:      []UserRecord{},
		Settings:   []SettingsRecord{},
	}
}

// Snapshot flattens domain aggregates into a StoredState. Ledger order is kept.
func Snapshot(ledgers []committee.Ledger, users []user.User, settings []user.Settings) StoredState {
	out := Empty()
	for _, l := range ledgers {
		c := l.Committee
		members := make([]MemberRecord, 0, len(c.Members))
		for _, m := range c.Members {
			members = append(members, MemberRecord{ID: m.ID, Name: m.Name, Contact: m.Contact, JoinedAt: m.JoinedAt})
		}
		out.Committees = append(out.Committees, CommitteeRecord{
			ID:             c.ID,
			OwnerID:        c.OwnerID,
			Name:           c.Name,
			AmountPerCycle: c.AmountPerCycle,
			TotalCycles:    c.TotalCycles,
			StartDate:      c.StartDate,
			Members:        members,
			CurrentCycle:   c.CurrentCycle,
			IsActive:       c.IsActive,
			Status:         string(c.Status),
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
		})
		for _, p := range l.Payments {
			out.Payments = append(out.Payments, PaymentRecord{
				ID:          p.ID,
				CommitteeID: p.CommitteeID,
				MemberID:    p.MemberID,
				Cycle:       p.Cycle,
				Amount:      p.Amount,
				IsPaid:      p.IsPaid,
				PaidAt:      p.PaidAt,
			})
		}
		for _, d := range l.Draws {
			out.Draws = append(out.Draws, DrawRecord{
				ID:             d.ID,
				CommitteeID:    d.CommitteeID,
				Cycle:          d.Cycle,
				WinnerMemberID: d.WinnerMemberID,
				DrawnAt:        d.DrawnAt,
			})
		}
	}
	for _, u := range users {
		out.Users = append(out.Users, UserRecord{ID: u.ID, Name: u.Name, EmailOrPhone: u.EmailOrPhone, JoinedAt: u.JoinedAt})
	}
	for _, s := range settings {
		out.Settings = append(out.Settings, SettingsRecord{
			UserID:         s.UserID,
			Language:       string(s.Language),
			Theme:          string(s.Theme),
			Notifications:  s.Notifications,
			EmailReminders: s.EmailReminders,
			UpdatedAt:      s.UpdatedAt,
		})
	}
	return out
}

// Ledgers regroups payments and draws under their committees. Rows pointing
// at unknown committees are dropped.
func (s StoredState) Ledgers() []committee.Ledger {
	index := make(map[string]int, len(s.Committees))
	out := make([]committee.Ledger, 0, len(s.Committees))
	for _, rec := range s.Committees {
		members := make([]committee.Member, 0, len(rec.Members))
		for _, m := range rec.Members {
			members = append(members, committee.Member{ID: m.ID, Name: m.Name, Contact: m.Contact, JoinedAt: m.JoinedAt})
		}
		index[rec.ID] = len(out)
		out = append(out, committee.Ledger{
			Committee: committee.Committee{
				ID:             rec.ID,
				OwnerID:        rec.OwnerID,
				Name:           rec.Name,
				AmountPerCycle: rec.AmountPerCycle,
				TotalCycles:    rec.TotalCycles,
				StartDate:      rec.StartDate,
				Members:        members,
				CurrentCycle:   rec.CurrentCycle,
				IsActive:       rec.IsActive,
				Status:         committee.Status(rec.Status),
				CreatedAt:      rec.CreatedAt,
				UpdatedAt:      rec.UpdatedAt,
			},
			Payments: []committee.Payment{},
			Draws:    []committee.Draw{},
		})
	}

	for _, p := range s.Payments {
		i, ok := index[p.CommitteeID]
		if !ok {
			continue
		}
		out[i].Payments = append(out[i].Payments, committee.Payment{
			ID:          p.ID,
			CommitteeID: p.CommitteeID,
			MemberID:    p.MemberID,
			Cycle:       p.Cycle,
			Amount:      p.Amount,
			IsPaid:      p.IsPaid,
			PaidAt:      p.PaidAt,
		})
	}
	for _, d := range s.Draws {
		i, ok := index[d.CommitteeID]
		if !ok {
			continue
		}
		out[i].Draws = append(out[i].Draws, committee.Draw{
			ID:             d.ID,
			CommitteeID:    d.CommitteeID,
			Cycle:          d.Cycle,
			WinnerMemberID: d.WinnerMemberID,
			DrawnAt:        d.DrawnAt,
		})
	}

	return out
}

func (s StoredState) DomainUsers() []user.User {
	out := make([]user.User, 0, len(s.Users))
	for _, u := range s.Users {
		out = append(out, user.User{ID: u.ID, Name: u.Name, EmailOrPhone: u.EmailOrPhone, JoinedAt: u.JoinedAt})
	}
	return out
}

func (s StoredState) DomainSettings() []user.Settings {
	out := make([]user.Settings, 0, len(s.Settings))
	for _, rec := range s.Settings {
		out = append(out, user.Settings{
			UserID:         rec.UserID,
			Language:       user.Language(rec.Language),
			Theme:          user.Theme(rec.Theme),
			Notifications:  rec.Notifications,
			EmailReminders: rec.EmailReminders,
			UpdatedAt:      rec.UpdatedAt,
		})
	}
	return out
}
