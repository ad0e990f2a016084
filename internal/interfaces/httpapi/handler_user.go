package httpapi

import (
	"net/http"

	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/usecase"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.userService.Login(ctx, usecase.LoginInput{
		Name:         req.Name,
		EmailOrPhone: req.EmailOrPhone,
	})
	if err != nil {
		h.fail(ctx, w, "login failed", err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, loginToDTO(result))
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.GetMe")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.GetProfile(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "get profile failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, userToDTO(u))
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.GetSettings")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	settings, err := h.userService.GetSettings(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "get settings failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(settings))
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "httpapi.Handler.UpdateSettings")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateSettingsRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdateSettingsInput{
		UserID:         principal.UserID,
		Notifications:  req.Notifications,
		EmailReminders: req.EmailReminders,
	}
	if req.Language != nil {
		language := user.Language(*req.Language)
		input.Language = &language
	}
	if req.Theme != nil {
		theme := user.Theme(*req.Theme)
		input.Theme = &theme
	}

	settings, err := h.userService.UpdateSettings(ctx, input)
	if err != nil {
		h.fail(ctx, w, "update settings failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(settings))
}
