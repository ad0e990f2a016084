package httpapi

import (
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/reminder"
	"github.com/riskibarqy/komiti/internal/domain/report"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/usecase"
	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Name         string `json:"name" validate:"omitempty,max=120"`
	EmailOrPhone string `json:"email_or_phone" validate:"required,max=200"`
}

type updateSettingsRequest struct {
	Language       *string `json:"language" validate:"omitempty,oneof=en ur"`
	Theme          *string `json:"theme" validate:"omitempty,oneof=light dark"`
	Notifications  *bool   `json:"notifications"`
	EmailReminders *bool   `json:"email_reminders"`
}

type memberRequest struct {
	ID      string `json:"id" validate:"omitempty,max=64"`
	Name    string `json:"name" validate:"required,max=120"`
	Contact string `json:"contact" validate:"omitempty,max=200"`
}

type createCommitteeRequest struct {
	Name           string          `json:"name" validate:"required,max=120"`
	AmountPerCycle decimal.Decimal `json:"amount_per_cycle"`
	TotalCycles    int             `json:"total_cycles" validate:"gte=0"`
	StartDate      string          `json:"start_date" validate:"required"`
	Members        []memberRequest `json:"members" validate:"required,min=1,dive"`
}

type updateCommitteeRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=120"`
	AmountPerCycle *decimal.Decimal `json:"amount_per_cycle"`
	StartDate      *string          `json:"start_date"`
}

type togglePaymentRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Cycle    int    `json:"cycle" validate:"required,gte=1"`
}

type recordDrawRequest struct {
	Cycle          int    `json:"cycle" validate:"required,gte=1"`
	WinnerMemberID string `json:"winner_member_id" validate:"required"`
}

type userDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	EmailOrPhone string    `json:"email_or_phone"`
	JoinedAt     time.Time `json:"joined_at"`
}

type loginDTO struct {
	User        userDTO   `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Created     bool      `json:"created"`
}

type settingsDTO struct {
	Language       string `json:"language"`
	Theme          string `json:"theme"`
	Notifications  bool   `json:"notifications"`
	EmailReminders bool   `json:"email_reminders"`
}

type memberDTO struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Contact  string    `json:"contact,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

type committeeDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	AmountPerCycle decimal.Decimal `json:"amount_per_cycle"`
	TotalCycles    int             `json:"total_cycles"`
	StartDate      string          `json:"start_date"`
	CurrentCycle   int             `json:"current_cycle"`
	IsActive       bool            `json:"is_active"`
	Status         string          `json:"status"`
	Members        []memberDTO     `json:"members"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type paymentDTO struct {
	ID       string          `json:"id"`
	MemberID string          `json:"member_id"`
	Cycle    int             `json:"cycle"`
	Amount   decimal.Decimal `json:"amount"`
	IsPaid   bool            `json:"is_paid"`
	PaidAt   *time.Time      `json:"paid_at,omitempty"`
}

type drawDTO struct {
	ID             string    `json:"id"`
	Cycle          int       `json:"cycle"`
	WinnerMemberID string    `json:"winner_member_id"`
	DrawnAt        time.Time `json:"drawn_at"`
}

type drawResultDTO struct {
	Draw      drawDTO      `json:"draw"`
	Winner    memberDTO    `json:"winner"`
	Committee committeeDTO `json:"committee"`
}

type cycleStatusDTO struct {
	Cycle           int             `json:"cycle"`
	DueDate         string          `json:"due_date,omitempty"`
	PaidCount       int             `json:"paid_count"`
	TotalCount      int             `json:"total_count"`
	CollectedAmount decimal.Decimal `json:"collected_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	Complete        bool            `json:"complete"`
}

type dashboardDTO struct {
	TotalCommittees  int             `json:"total_committees"`
	ActiveCommittees int             `json:"active_committees"`
	TotalMembers     int             `json:"total_members"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	CollectedAmount  decimal.Decimal `json:"collected_amount"`
	UpcomingDraws    int             `json:"upcoming_draws"`
}

type reportDTO struct {
	Committee       committeeDTO     `json:"committee"`
	ExpectedAmount  decimal.Decimal  `json:"expected_amount"`
	CollectedAmount decimal.Decimal  `json:"collected_amount"`
	PendingAmount   decimal.Decimal  `json:"pending_amount"`
	CompletionRate  float64          `json:"completion_rate"`
	Cycles          []cycleStatusDTO `json:"cycles"`
	Draws           []drawDTO        `json:"draws"`
}

type reminderDTO struct {
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	Contact    string          `json:"contact,omitempty"`
	Cycle      int             `json:"cycle"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    string          `json:"due_date,omitempty"`
	Text       string          `json:"text"`
	Fallback   bool            `json:"fallback"`
}

type summaryDTO struct {
	Text string `json:"text"`
}

func userToDTO(u user.User) userDTO {
	return userDTO{
		ID:           u.ID,
		Name:         u.Name,
		EmailOrPhone: u.EmailOrPhone,
		JoinedAt:     u.JoinedAt,
	}
}

func loginToDTO(v usecase.LoginResult) loginDTO {
	return loginDTO{
		User:        userToDTO(v.User),
		AccessToken: v.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   v.ExpiresAt,
		Created:     v.Created,
	}
}

func settingsToDTO(s user.Settings) settingsDTO {
	return settingsDTO{
		Language:       string(s.Language),
		Theme:          string(s.Theme),
		Notifications:  s.Notifications,
		EmailReminders: s.EmailReminders,
	}
}

func memberToDTO(m committee.Member) memberDTO {
	return memberDTO{ID: m.ID, Name: m.Name, Contact: m.Contact, JoinedAt: m.JoinedAt}
}

func membersToDTO(members []committee.Member) []memberDTO {
	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberToDTO(m))
	}
	return out
}

func committeeToDTO(c committee.Committee) committeeDTO {
	return committeeDTO{
		ID:             c.ID,
		Name:           c.Name,
		AmountPerCycle: c.AmountPerCycle,
		TotalCycles:    c.TotalCycles,
		StartDate:      formatDate(c.StartDate),
		CurrentCycle:   c.CurrentCycle,
		IsActive:       c.IsActive,
		Status:         string(c.Status),
		Members:        membersToDTO(c.Members),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func paymentToDTO(p committee.Payment) paymentDTO {
	return paymentDTO{
		ID:       p.ID,
		MemberID: p.MemberID,
		Cycle:    p.Cycle,
		Amount:   p.Amount,
		IsPaid:   p.IsPaid,
		PaidAt:   p.PaidAt,
	}
}

func paymentsToDTO(items []committee.Payment) []paymentDTO {
	out := make([]paymentDTO, 0, len(items))
	for _, p := range items {
		out = append(out, paymentToDTO(p))
	}
	return out
}

func drawToDTO(d committee.Draw) drawDTO {
	return drawDTO{ID: d.ID, Cycle: d.Cycle, WinnerMemberID: d.WinnerMemberID, DrawnAt: d.DrawnAt}
}

func drawsToDTO(items []committee.Draw) []drawDTO {
	out := make([]drawDTO, 0, len(items))
	for _, d := range items {
		out = append(out, drawToDTO(d))
	}
	return out
}

func drawResultToDTO(v usecase.DrawResult) drawResultDTO {
	return drawResultDTO{
		Draw:      drawToDTO(v.Draw),
		Winner:    memberToDTO(v.Winner),
		Committee: committeeToDTO(v.Committee),
	}
}

func cycleStatusToDTO(c committee.Committee, s committee.CycleStatus) cycleStatusDTO {
	return cycleStatusDTO{
		Cycle:           s.Cycle,
		DueDate:         formatDate(c.DueDate(s.Cycle)),
		PaidCount:       s.PaidCount,
		TotalCount:      s.TotalCount,
		CollectedAmount: s.CollectedAmount,
		PendingAmount:   s.PendingAmount,
		Complete:        s.Complete,
	}
}

func dashboardToDTO(d report.Dashboard) dashboardDTO {
	return dashboardDTO{
		TotalCommittees:  d.TotalCommittees,
		ActiveCommittees: d.ActiveCommittees,
		TotalMembers:     d.TotalMembers,
		PendingAmount:    d.PendingAmount,
		CollectedAmount:  d.CollectedAmount,
		UpcomingDraws:    d.UpcomingDraws,
	}
}

func reportToDTO(r report.CommitteeReport) reportDTO {
	cycles := make([]cycleStatusDTO, 0, len(r.Cycles))
	for _, cs := range r.Cycles {
		cycles = append(cycles, cycleStatusToDTO(r.Committee, cs))
	}
	return reportDTO{
		Committee:       committeeToDTO(r.Committee),
		ExpectedAmount:  r.ExpectedAmount,
		CollectedAmount: r.CollectedAmount,
		PendingAmount:   r.PendingAmount,
		CompletionRate:  r.CompletionRate,
		Cycles:          cycles,
		Draws:           drawsToDTO(r.Draws),
	}
}

func remindersToDTO(items []reminder.Reminder) []reminderDTO {
	out := make([]reminderDTO, 0, len(items))
	for _, r := range items {
		out = append(out, reminderDTO{
			MemberID:   r.MemberID,
			MemberName: r.MemberName,
			Contact:    r.Contact,
			Cycle:      r.Cycle,
			Amount:     r.Amount,
			DueDate:    formatDate(r.DueDate),
			Text:       r.Text,
			Fallback:   r.Fallback,
		})
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
