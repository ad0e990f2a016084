package httpapi

import (
	"net/http"

	"github.com/riskibarqy/komiti/internal/usecase"
)

func (h *Handler) ListCommittees(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.ListCommittees")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ledgers, err := h.committeeService.ListByOwner(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "list committees failed", err, "user_id", principal.UserID)
		return
	}

	items := make([]committeeDTO, 0, len(ledgers))
	for _, l := range ledgers {
		items = append(items, committeeToDTO(l.Committee))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateCommittee(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.CreateCommittee")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createCommitteeRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	members := make([]usecase.MemberInput, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, usecase.MemberInput{ID: m.ID, Name: m.Name, Contact: m.Contact})
	}

	ledger, err := h.committeeService.Create(ctx, usecase.CreateCommitteeInput{
		OwnerID:        principal.UserID,
		Name:           req.Name,
		AmountPerCycle: req.AmountPerCycle,
		TotalCycles:    req.TotalCycles,
		StartDate:      startDate,
		Members:        members,
	})
	if err != nil {
		h.fail(ctx, w, "create committee failed", err, "user_id", principal.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, committeeToDTO(ledger.Committee))
}

func (h *Handler) GetCommittee(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.GetCommittee")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, committeeToDTO(ledger.Committee))
}

func (h *Handler) UpdateCommittee(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.UpdateCommittee")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateCommitteeRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdateCommitteeInput{
		CommitteeID:    ledger.Committee.ID,
		Name:           req.Name,
		AmountPerCycle: req.AmountPerCycle,
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		input.StartDate = &startDate
	}

	updated, err := h.committeeService.Update(ctx, input)
	if err != nil {
		h.fail(ctx, w, "update committee failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, committeeToDTO(updated.Committee))
}

func (h *Handler) ArchiveCommittee(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.ArchiveCommittee")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	archived, err := h.committeeService.Archive(ctx, ledger.Committee.ID)
	if err != nil {
		h.fail(ctx, w, "archive committee failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, committeeToDTO(archived.Committee))
}

func (h *Handler) DeleteCommittee(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.DeleteCommittee")
	defer span.End()

	_, ledger, err := h.ownedLedger(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.committeeService.Delete(ctx, ledger.Committee.ID); err != nil {
		h.fail(ctx, w, "delete committee failed", err, "committee_id", ledger.Committee.ID)
		return
	}
	writeNoContent(w)
}
