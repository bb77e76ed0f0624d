package handler

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/chorewheel/internal/auth"
	"github.com/dukerupert/chorewheel/internal/store"
)

type UserHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewUserHandler(us *store.UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: us, logger: logger}
}

// Me returns the caller's profile with points and badges.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("me", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (h *UserHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if !isPIN(req.PIN) {
		writeError(w, http.StatusBadRequest, "invalid_pin", "PIN must be exactly 4 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to hash PIN")
		return
	}
	if err := h.users.SetPIN(r.Context(), auth.UserID(r.Context()), string(hash)); err != nil {
		h.logger.Error("set pin", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to set PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin_set"})
}

func (h *UserHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	hash, err := h.users.PINHash(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("verify pin", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to verify PIN")
		return
	}
	if hash == "" {
		writeError(w, http.StatusBadRequest, "no_pin", "no PIN set for this account")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		writeError(w, http.StatusUnauthorized, "incorrect_pin", "incorrect PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
