package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/export"
	"github.com/riskibarqy/komiti/internal/usecase"
)

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.GetDashboard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dashboard, err := h.reportService.Dashboard(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "get dashboard failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, dashboardToDTO(dashboard))
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.GetReport")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rep, err := h.reportService.Report(ctx, ledger.Committee.ID)
	if err != nil {
		h.fail(ctx, w, "get report failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, reportToDTO(rep))
}

func (h *Handler) ExportReportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.ExportReportCSV")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rep, err := h.reportService.Report(ctx, ledger.Committee.ID)
	if err != nil {
		h.fail(ctx, w, "get report failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	body, err := export.RenderCSV(rep)
	if err != nil {
		h.fail(ctx, w, "render report csv failed", err, "committee_id", ledger.Committee.ID)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(rep)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ListReminders builds reminders for the cycle awaiting a draw. The language
// comes from ?language= or the caller's settings.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.ListReminders")
	defer span.End()

	principal, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	language, err := h.resolveLanguage(ctx, principal.UserID, r.URL.Query().Get("language"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	reminders, err := h.reminderService.PendingReminders(ctx, ledger.Committee.ID, language)
	if err != nil {
		h.fail(ctx, w, "build reminders failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, remindersToDTO(reminders))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.GetSummary")
	defer span.End()

	principal, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	language, err := h.resolveLanguage(ctx, principal.UserID, r.URL.Query().Get("language"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	text, err := h.reminderService.GenerateSummary(ctx, ledger.Committee.ID, language)
	if err != nil {
		h.fail(ctx, w, "generate summary failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summaryDTO{Text: text})
}

func (h *Handler) resolveLanguage(ctx context.Context, userID, raw string) (user.Language, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw != "" {
		language := user.Language(raw)
		if !user.IsValidLanguage(language) {
			return "", fmt.Errorf("%w: unsupported language %q", usecase.ErrInvalidInput, raw)
		}
		return language, nil
	}

	settings, err := h.userService.GetSettings(ctx, userID)
	if err != nil {
		return "", err
	}
	return settings.Language, nil
}
