package httpapi

import (
	"net/http"

	"github.com/riskibarqy/komiti/internal/usecase"
)

// ListPayments returns one cycle when ?cycle= is given, otherwise the whole
// matrix ordered by cycle.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.ListPayments")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	cycle, err := parseCycle(r.URL.Query().Get("cycle"), false)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	payments, err := h.paymentService.ListPayments(ctx, ledger.Committee.ID, cycle)
	if err != nil {
		h.fail(ctx, w, "list payments failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, paymentsToDTO(payments))
}

func (h *Handler) TogglePayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.TogglePayment")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req togglePaymentRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	payment, err := h.paymentService.TogglePayment(ctx, usecase.TogglePaymentInput{
		CommitteeID: ledger.Committee.ID,
		MemberID:    req.MemberID,
		Cycle:       req.Cycle,
	})
	if err != nil {
		h.fail(ctx, w, "toggle payment failed", err, "committee_id", ledger.Committee.ID, "member_id", req.MemberID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, paymentToDTO(payment))
}

func (h *Handler) GetCycleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.GetCycleStatus")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	cycle, err := parseCycle(r.PathValue("cycle"), true)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.paymentService.CycleStatus(ctx, ledger.Committee.ID, cycle)
	if err != nil {
		h.fail(ctx, w, "cycle status failed", err, "committee_id", ledger.Committee.ID, "cycle", cycle)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, cycleStatusToDTO(ledger.Committee, status))
}
