package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/usecase"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	committeeService *usecase.CommitteeService
	paymentService   *usecase.PaymentService
	drawService      *usecase.DrawService
	reportService    *usecase.ReportService
	reminderService  *usecase.ReminderService
	userService      *usecase.UserService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	committeeService *usecase.CommitteeService,
	paymentService *usecase.PaymentService,
	drawService *usecase.DrawService,
	reportService *usecase.ReportService,
	reminderService *usecase.ReminderService,
	userService *usecase.UserService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		committeeService: committeeService,
		paymentService:   paymentService,
		drawService:      drawService,
		reportService:    reportService,
		reminderService:  reminderService,
		userService:      userService,
		logger:           logger,
		validator:        validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeRequest reads a JSON body into dst, rejecting unknown fields, and
// validates it.
func (h *Handler) decodeRequest(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(r.Context(), dst)
}

// ownedLedger loads the committee named in the path. Committees of other
// owners are reported as missing.
func (h *Handler) ownedLedger(ctx context.Context, r *http.Request) (user.Principal, committee.Ledger, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return user.Principal{}, committee.Ledger{}, err
	}

	committeeID := strings.TrimSpace(r.PathValue("committeeID"))
	ledger, err := h.committeeService.Get(ctx, committeeID)
	if err != nil {
		return principal, committee.Ledger{}, err
	}
	if ledger.Committee.OwnerID != principal.UserID {
		return principal, committee.Ledger{}, fmt.Errorf("%w: committee=%s", usecase.ErrNotFound, committeeID)
	}
	return principal, ledger, nil
}

func parseCycle(raw string, required bool) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: cycle is required", usecase.ErrInvalidInput)
		}
		return 0, nil
	}
	cycle, err := strconv.Atoi(raw)
	if err != nil || cycle < 1 {
		return 0, fmt.Errorf("%w: cycle must be a positive integer", usecase.ErrInvalidInput)
	}
	return cycle, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", usecase.ErrInvalidInput, raw)
	}
	return t.UTC(), nil
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if mapError(err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	writeError(ctx, w, err)
}
