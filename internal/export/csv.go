// Package export renders committee reports for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/report"
	"github.com/valyala/bytebufferpool"
)

const ContentTypeCSV = "text/csv; charset=utf-8"

// WriteCSV writes the report as three blocks separated by blank rows:
// summary fields, per-cycle collection status and draw history.
func WriteCSV(w io.Writer, r report.CommitteeReport) error {
	cw := csv.NewWriter(w)
	c := r.Committee

	rows := [][]string{
		{"field", "value"},
		{"committee_id", c.ID},
		{"name", c.Name},
		{"status", string(c.Status)},
		{"amount_per_cycle", c.AmountPerCycle.StringFixed(2)},
		{"members", strconv.Itoa(len(c.Members))},
		{"total_cycles", strconv.Itoa(c.TotalCycles)},
		{"current_cycle", strconv.Itoa(c.CurrentCycle)},
		{"start_date", formatDate(c.StartDate)},
		{"expected_amount", r.ExpectedAmount.StringFixed(2)},
		{"collected_amount", r.CollectedAmount.StringFixed(2)},
		{"pending_amount", r.PendingAmount.StringFixed(2)},
		{"completion_rate", strconv.FormatFloat(r.CompletionRate, 'f', 2, 64)},
		{},
		{"cycle", "due_date", "paid", "total", "collected", "pending", "complete"},
	}
	for _, cs := range r.Cycles {
		rows = append(rows, []string{
			strconv.Itoa(cs.Cycle),
			formatDate(c.DueDate(cs.Cycle)),
			strconv.Itoa(cs.PaidCount),
			strconv.Itoa(cs.TotalCount),
			cs.CollectedAmount.StringFixed(2),
			cs.PendingAmount.StringFixed(2),
			strconv.FormatBool(cs.Complete),
		})
	}

	rows = append(rows, []string{}, []string{"draw_cycle", "winner_member_id", "winner_name", "drawn_at"})
	for _, d := range r.Draws {
		name := ""
		if m, ok := c.MemberByID(d.WinnerMemberID); ok {
			name = m.Name
		}
		rows = append(rows, []string{
			strconv.Itoa(d.Cycle),
			d.WinnerMemberID,
			name,
			d.DrawnAt.UTC().Format(time.RFC3339),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func RenderCSV(r report.CommitteeReport) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := WriteCSV(buf, r); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func FileName(r report.CommitteeReport) string {
	return "committee-" + r.Committee.ID + "-report.csv"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
