package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/report"
	"github.com/sourcegraph/conc/iter"
)

type ReportService struct {
	repo committee.Repository
}

func NewReportService(repo committee.Repository) *ReportService {
	return &ReportService{repo: repo}
}

// Dashboard aggregates the committees owned by ownerID.
func (s *ReportService) Dashboard(ctx context.Context, ownerID string) (report.Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Dashboard")
	defer span.End()

	ledgers, err := s.repo.ListByOwner(ctx, strings.TrimSpace(ownerID))
	if err != nil {
		return report.Dashboard{}, fmt.Errorf("list committees by owner: %w", err)
	}
	return report.DashboardStats(ledgers), nil
}

func (s *ReportService) Report(ctx context.Context, committeeID string) (report.CommitteeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Report", committeeAttr(committeeID))
	defer span.End()

	ledger, err := loadLedger(ctx, s.repo, committeeID)
	if err != nil {
		return report.CommitteeReport{}, err
	}
	return report.CommitteeReportOf(ledger), nil
}

// Reports builds one report per owned committee, in listing order.
func (s *ReportService) Reports(ctx context.Context, ownerID string) ([]report.CommitteeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Reports")
	defer span.End()

	ledgers, err := s.repo.ListByOwner(ctx, strings.TrimSpace(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list committees by owner: %w", err)
	}

	mapper := iter.Mapper[committee.Ledger, report.CommitteeReport]{MaxGoroutines: 4}
	return mapper.Map(ledgers, func(l *committee.Ledger) report.CommitteeReport {
		return report.CommitteeReportOf(*l)
	}), nil
}
