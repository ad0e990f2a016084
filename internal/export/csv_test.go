package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() report.CommitteeReport {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return report.CommitteeReport{
		Committee: committee.Committee{
			ID:             "c1",
			Name:           "Office, Pool",
			AmountPerCycle: decimal.NewFromInt(1000),
			TotalCycles:    2,
			StartDate:      start,
			CurrentCycle:   1,
			Status:         committee.StatusActive,
			Members:        []committee.Member{{ID: "a", Name: "Ali"}, {ID: "b", Name: "Sara"}},
		},
		ExpectedAmount:  decimal.NewFromInt(4000),
		CollectedAmount: decimal.NewFromInt(2000),
		PendingAmount:   decimal.NewFromInt(2000),
		CompletionRate:  50,
		Cycles: []committee.CycleStatus{
			{Cycle: 1, PaidCount: 2, TotalCount: 2, CollectedAmount: decimal.NewFromInt(2000), PendingAmount: decimal.Zero, Complete: true},
			{Cycle: 2, PaidCount: 0, TotalCount: 2, CollectedAmount: decimal.Zero, PendingAmount: decimal.NewFromInt(2000)},
		},
		Draws: []committee.Draw{{ID: "d1", CommitteeID: "c1", Cycle: 1, WinnerMemberID: "b", DrawnAt: start.Add(time.Hour)}},
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(sampleReport())
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "Office, Pool"}, records[2])
	assert.Equal(t, []string{"completion_rate", "50.00"}, records[12])
	assert.Equal(t, []string{"1", "2026-01-01", "2", "2", "2000.00", "0.00", "true"}, records[14])
	assert.Equal(t, []string{"2", "2026-02-01", "0", "2", "0.00", "2000.00", "false"}, records[15])
	assert.Equal(t, []string{"1", "b", "Sara", "2026-01-01T01:00:00Z"}, records[len(records)-1])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "committee-c1-report.csv", FileName(sampleReport()))
}
