package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorewheel/internal/auth"
	"github.com/dukerupert/chorewheel/internal/badge"
	"github.com/dukerupert/chorewheel/internal/lifecycle"
)

type BadgeHandler struct {
	lifecycle *lifecycle.Service
	logger    *slog.Logger
}

func NewBadgeHandler(svc *lifecycle.Service, logger *slog.Logger) *BadgeHandler {
	return &BadgeHandler{lifecycle: svc, logger: logger}
}

// Catalog returns the full badge catalog.
func (h *BadgeHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, badge.Catalog())
}

// Progress returns the caller's standing against every badge.
func (h *BadgeHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	statuses, err := h.lifecycle.BadgeProgress(r.Context(), userID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.logger.Error("badge progress", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to compute badge progress")
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
