package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/chorewheel/internal/auth"
	"github.com/dukerupert/chorewheel/internal/middleware"
	"github.com/dukerupert/chorewheel/internal/store"
)

const sessionTTL = 30 * 24 * time.Hour

type AuthHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	sessions   *store.SessionStore
	secure     bool
	logger     *slog.Logger
}

func NewAuthHandler(us *store.UserStore, hs *store.HouseholdStore, ss *store.SessionStore, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      us,
		households: hs,
		sessions:   ss,
		secure:     secureCookies,
		logger:     logger,
	}
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	PIN   string `json:"pin"`
}

// Register creates a user account and opens a session. Household membership
// comes later through create or join.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "email and name are required")
		return
	}

	if req.PIN != "" && !isPIN(req.PIN) {
		writeError(w, http.StatusBadRequest, "invalid_pin", "PIN must be exactly 4 digits")
		return
	}

	existing, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to check account")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
		return
	}

	user, err := h.users.Create(r.Context(), req.Email, req.Name)
	if err != nil {
		h.logger.Error("register create", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	if req.PIN != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
		if err != nil {
			h.logger.Error("register hash pin", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "failed to set PIN")
			return
		}
		if err := h.users.SetPIN(r.Context(), user.ID, string(hash)); err != nil {
			h.logger.Error("register set pin", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "failed to set PIN")
			return
		}
		user.HasPIN = true
	}

	sess, err := h.sessions.Create(r.Context(), user.ID, sessionTTL)
	if err != nil {
		h.logger.Error("register session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to open session")
		return
	}

	h.setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "token": sess.Token})
}

type loginRequest struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

// Login authenticates by email, verifying the PIN when the account has one.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to look up account")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or PIN is incorrect")
		return
	}

	if user.HasPIN {
		hash, err := h.users.PINHash(r.Context(), user.ID)
		if err != nil {
			h.logger.Error("login pin hash", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "failed to verify PIN")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or PIN is incorrect")
			return
		}
	}

	sess, err := h.sessions.Create(r.Context(), user.ID, sessionTTL)
	if err != nil {
		h.logger.Error("login session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to open session")
		return
	}

	// Resume the user's household when they belong to exactly one.
	households, err := h.households.ListForUser(r.Context(), user.ID)
	if err == nil && len(households) == 1 {
		if err := h.sessions.SetHousehold(r.Context(), sess.Token, households[0].ID); err != nil {
			h.logger.Error("login set household", "error", err)
		}
	}

	h.setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": sess.Token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if ok && ac.Token != "" {
		if err := h.sessions.Delete(r.Context(), ac.Token); err != nil {
			h.logger.Error("logout", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func isPIN(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
