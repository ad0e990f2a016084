package state

import (
	"bytes"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/shopspring/decimal"
)

var ErrUnsupportedVersion = crerr.New("unsupported state version")

type versionProbe struct {
	Version *int `json:"version"`
}

// Migrate decodes a persisted document of any known version into the current
// StoredState shape. An empty document yields an empty state.
func Migrate(raw []byte) (StoredState, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Empty(), nil
	}

	var probe versionProbe
	if err := sonic.Unmarshal(raw, &probe); err != nil {
		return StoredState{}, crerr.Wrap(err, "decode state header")
	}

	version := 0
	if probe.Version != nil {
		version = *probe.Version
	}

	switch version {
	case 0:
		return upgradeLegacy(raw)
	case CurrentVersion:
		var out StoredState
		if err := sonic.Unmarshal(raw, &out); err != nil {
			return StoredState{}, crerr.Wrap(err, "decode state v1")
		}
		return normalize(out), nil
	default:
		return StoredState{}, crerr.Wrapf(ErrUnsupportedVersion, "version %d", version)
	}
}

func normalize(s StoredState) StoredState {
	s.Version = CurrentVersion
	if s.Committees == nil {
		s.Committees = []CommitteeRecord{}
	}
	if s.Payments == nil {
		s.Payments = []PaymentRecord{}
	}
	if s.Draws == nil {
		s.Draws = []DrawRecord{}
	}
	if s.Users == nil {
		s.Users = []UserRecord{}
	}
	if s.Settings == nil {
		s.Settings = []SettingsRecord{}
	}
	for i := range s.Committees {
		if s.Committees[i].Members == nil {
			s.Committees[i].Members = []MemberRecord{}
		}
	}
	return s
}

// Unversioned documents written before the schema carried a version field.

type legacyState struct {
	CurrentUser *legacyUser     `json:"currentUser"`
	Users       []legacyUser    `json:"users"`
	Groups      []legacyGroup   `json:"groups"`
	Payments    []legacyPayment `json:"payments"`
	Draws       []legacyDraw    `json:"draws"`
}

type legacyUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmailOrPhone string `json:"emailOrPhone"`
	JoinedAt     string `json:"joinedAt"`
}

type legacyMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	JoinedAt string `json:"joinedAt"`
}

type legacyGroup struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	TotalCycles int             `json:"totalCycles"`
	StartDate   string          `json:"startDate"`
	Members     []legacyMember  `json:"members"`
	Status      string          `json:"status"`
	Currency    string          `json:"currency"`
}

type legacyPayment struct {
	ID         string `json:"id"`
	GroupID    string `json:"groupId"`
	CycleIndex int    `json:"cycleIndex"`
	MemberID   string `json:"memberId"`
	Status     string `json:"status"`
	PaidDate   string `json:"paidDate"`
}

type legacyDraw struct {
	ID             string `json:"id"`
	GroupID        string `json:"groupId"`
	CycleIndex     int    `json:"cycleIndex"`
	WinnerMemberID string `json:"winnerMemberId"`
	DrawDate       string `json:"drawDate"`
}

var legacyStatuses = map[string]committee.Status{
	"ACTIVE":    committee.StatusActive,
	"COMPLETED": committee.StatusCompleted,
	"ARCHIVED":  committee.StatusArchived,
}

func upgradeLegacy(raw []byte) (StoredState, error) {
	var legacy legacyState
	if err := sonic.Unmarshal(raw, &legacy); err != nil {
		return StoredState{}, crerr.Wrap(err, "decode legacy state")
	}

	out := Empty()
	ownerID := ""
	if legacy.CurrentUser != nil {
		ownerID = legacy.CurrentUser.ID
	}

	for _, u := range legacy.Users {
		joinedAt, err := parseLegacyTime(u.JoinedAt)
		if err != nil {
			return StoredState{}, crerr.Wrapf(err, "legacy user %s", u.ID)
		}
		out.Users = append(out.Users, UserRecord{ID: u.ID, Name: u.Name, EmailOrPhone: u.EmailOrPhone, JoinedAt: joinedAt})
	}

	drawCounts := make(map[string]int, len(legacy.Groups))
	groups := make(map[string]legacyGroup, len(legacy.Groups))
	for _, g := range legacy.Groups {
		groups[g.ID] = g
	}
	for _, d := range legacy.Draws {
		if _, ok := groups[d.GroupID]; !ok {
			continue
		}
		drawnAt, err := parseLegacyTime(d.DrawDate)
		if err != nil {
			return StoredState{}, crerr.Wrapf(err, "legacy draw %s", d.ID)
		}
		drawCounts[d.GroupID]++
		out.Draws = append(out.Draws, DrawRecord{
			ID:             d.ID,
			CommitteeID:    d.GroupID,
			Cycle:          d.CycleIndex,
			WinnerMemberID: d.WinnerMemberID,
			DrawnAt:        drawnAt,
		})
	}

	for _, g := range legacy.Groups {
		status, ok := legacyStatuses[strings.ToUpper(strings.TrimSpace(g.Status))]
		if !ok {
			return StoredState{}, crerr.Newf("legacy group %s: unknown status %q", g.ID, g.Status)
		}
		startDate, err := parseLegacyTime(g.StartDate)
		if err != nil {
			return StoredState{}, crerr.Wrapf(err, "legacy group %s", g.ID)
		}

		members := make([]MemberRecord, 0, len(g.Members))
		for _, m := range g.Members {
			joinedAt, err := parseLegacyTime(m.JoinedAt)
			if err != nil {
				return StoredState{}, crerr.Wrapf(err, "legacy member %s", m.ID)
			}
			members = append(members, MemberRecord{ID: m.ID, Name: m.Name, Contact: m.Phone, JoinedAt: joinedAt})
		}

		currentCycle := drawCounts[g.ID]
		if currentCycle >= g.TotalCycles && status == committee.StatusActive {
			status = committee.StatusCompleted
		}
		out.Committees = append(out.Committees, CommitteeRecord{
			ID:             g.ID,
			OwnerID:        ownerID,
			Name:           g.Name,
			AmountPerCycle: g.Amount,
			TotalCycles:    g.TotalCycles,
			StartDate:      startDate,
			Members:        members,
			CurrentCycle:   currentCycle,
			IsActive:       status == committee.StatusActive,
			Status:         string(status),
			CreatedAt:      startDate,
			UpdatedAt:      startDate,
		})
	}

	seen := make(map[string]struct{}, len(legacy.Payments))
	for _, p := range legacy.Payments {
		g, ok := groups[p.GroupID]
		if !ok {
			continue
		}
		rec := PaymentRecord{
			ID:          p.ID,
			CommitteeID: p.GroupID,
			MemberID:    p.MemberID,
			Cycle:       p.CycleIndex,
			Amount:      g.Amount,
			IsPaid:      strings.EqualFold(p.Status, "PAID"),
		}
		if rec.ID == "" {
			rec.ID = committee.PaymentID(p.GroupID, p.CycleIndex, p.MemberID)
		}
		if rec.IsPaid && p.PaidDate != "" {
			paidAt, err := parseLegacyTime(p.PaidDate)
			if err != nil {
				return StoredState{}, crerr.Wrapf(err, "legacy payment %s", rec.ID)
			}
			rec.PaidAt = &paidAt
		}
		seen[committee.PaymentID(p.GroupID, p.CycleIndex, p.MemberID)] = struct{}{}
		out.Payments = append(out.Payments, rec)
	}

	// Older writers could drop rows; every member owes every cycle.
	for _, g := range legacy.Groups {
		for cycle := 1; cycle <= g.TotalCycles; cycle++ {
			for _, m := range g.Members {
				id := committee.PaymentID(g.ID, cycle, m.ID)
				if _, ok := seen[id]; ok {
					continue
				}
				out.Payments = append(out.Payments, PaymentRecord{
					ID:          id,
					CommitteeID: g.ID,
					MemberID:    m.ID,
					Cycle:       cycle,
					Amount:      g.Amount,
				})
			}
		}
	}

	return out, nil
}

func parseLegacyTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, crerr.Wrapf(err, "parse time %q", v)
	}
	return t, nil
}
