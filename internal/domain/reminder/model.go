package reminder

import (
	"context"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/shopspring/decimal"
)

type Request struct {
	MemberName    string
	CommitteeName string
	Amount        decimal.Decimal
	DueCycle      int
	DueDate       time.Time
	Language      user.Language
}

type SummaryRequest struct {
	CommitteeName  string
	TotalMembers   int
	TotalCollected decimal.Decimal
	Cycle          int
	Language       user.Language
}

// Generator produces free-form text. Any error means the caller should use the
// template variant.
type Generator interface {
	GenerateReminder(ctx context.Context, req Request) (string, error)
	GenerateSummary(ctx context.Context, req SummaryRequest) (string, error)
}

type Reminder struct {
	CommitteeID string
	MemberID    string
	MemberName  string
	Contact     string
	Cycle       int
	Amount      decimal.Decimal
	DueDate     time.Time
	Text        string
	Fallback    bool
}
