package httpapi

import (
	"net/http"

	"github.com/riskibarqy/komiti/internal/usecase"
)

func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.ListCandidates")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	candidates, err := h.drawService.EligibleCandidates(ctx, ledger.Committee.ID)
	if err != nil {
		h.fail(ctx, w, "list candidates failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, membersToDTO(candidates))
}

func (h *Handler) ListDraws(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.ListDraws")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	draws, err := h.drawService.ListDraws(ctx, ledger.Committee.ID)
	if err != nil {
		h.fail(ctx, w, "list draws failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, drawsToDTO(draws))
}

// RunDraw picks the next cycle's winner server-side. The response is final;
// clients animate the reveal afterwards.
func (h *Handler) RunDraw(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.RunDraw")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.drawService.Draw(ctx, ledger.Committee.ID)
	if err != nil {
		h.fail(ctx, w, "draw failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, drawResultToDTO(result))
}

func (h *Handler) RecordDraw(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.RecordDraw")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordDrawRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.drawService.RecordDraw(ctx, usecase.RecordDrawInput{
		CommitteeID:    ledger.Committee.ID,
		Cycle:          req.Cycle,
		WinnerMemberID: req.WinnerMemberID,
	})
	if err != nil {
		h.fail(ctx, w, "record draw failed", err, "committee_id", ledger.Committee.ID, "cycle", req.Cycle)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, drawResultToDTO(result))
}
