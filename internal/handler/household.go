package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/chorewheel/internal/auth"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	users      *store.UserStore
	sessions   *store.SessionStore
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, users: us, sessions: ss, logger: logger}
}

type createHouseholdRequest struct {
	Name string `json:"name"`
}

// Create makes a new household with the caller as owner and switches the
// session to it.
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "name is required")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	household, err := h.households.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create household")
		return
	}
	if _, err := h.households.AddMember(r.Context(), household.ID, ac.UserID, "owner"); err != nil {
		h.logger.Error("create household add owner", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to add owner")
		return
	}
	if err := h.sessions.SetHousehold(r.Context(), ac.Token, household.ID); err != nil {
		h.logger.Error("create household switch session", "error", err)
	}

	writeJSON(w, http.StatusCreated, household)
}

type joinRequest struct {
	InviteCode string `json:"invite_code"`
}

// Join adds the caller to the household behind an invite code.
func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	household, err := h.households.GetByInviteCode(r.Context(), code)
	if err != nil {
		h.logger.Error("join lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to look up invite")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "not_found", "invite code not recognized")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	member, err := h.households.GetMember(r.Context(), household.ID, ac.UserID)
	if err != nil {
		h.logger.Error("join member check", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to check membership")
		return
	}
	if member == nil {
		if _, err := h.households.AddMember(r.Context(), household.ID, ac.UserID, "member"); err != nil {
			h.logger.Error("join add member", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "failed to join household")
			return
		}
	}
	if err := h.sessions.SetHousehold(r.Context(), ac.Token, household.ID); err != nil {
		h.logger.Error("join switch session", "error", err)
	}

	writeJSON(w, http.StatusOK, household)
}

// Get returns the active household with its members.
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	household, err := h.households.Get(r.Context(), householdID)
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load household")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "not_found", "household not found")
		return
	}

	members, err := h.users.ListByHousehold(r.Context(), householdID)
	if err != nil {
		h.logger.Error("get household members", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load members")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"household": household, "members": members})
}

// Switch changes the session's active household to another one the caller
// belongs to.
func (h *HouseholdHandler) Switch(w http.ResponseWriter, r *http.Request) {
	targetID := idParam(r)
	ac, _ := auth.FromContext(r.Context())

	member, err := h.households.GetMember(r.Context(), targetID, ac.UserID)
	if err != nil {
		h.logger.Error("switch member check", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to check membership")
		return
	}
	if member == nil {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of that household")
		return
	}

	if err := h.sessions.SetHousehold(r.Context(), ac.Token, targetID); err != nil {
		h.logger.Error("switch session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to switch household")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"household_id": targetID})
}

// Delete removes the active household. Owner only; enforced by middleware.
func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if err := h.households.Delete(r.Context(), ac.HouseholdID); err != nil {
		h.logger.Error("delete household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete household")
		return
	}
	if err := h.sessions.SetHousehold(r.Context(), ac.Token, ""); err != nil {
		h.logger.Error("delete household clear session", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RemoveMember takes a member out of the active household. Owner only;
// enforced by middleware. Owners cannot remove themselves.
func (h *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	targetID := idParam(r)
	if targetID == ac.UserID {
		writeError(w, http.StatusBadRequest, "invalid_target", "owners cannot remove themselves")
		return
	}

	member, err := h.households.GetMember(r.Context(), ac.HouseholdID, targetID)
	if err != nil {
		h.logger.Error("remove member check", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to check membership")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "not_found", "member not found")
		return
	}

	if err := h.households.RemoveMember(r.Context(), ac.HouseholdID, targetID); err != nil {
		h.logger.Error("remove member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to remove member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ListMine returns every household the caller belongs to.
func (h *HouseholdHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	households, err := h.households.ListForUser(r.Context(), ac.UserID)
	if err != nil {
		h.logger.Error("list households", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to list households")
		return
	}
	if households == nil {
		households = []model.Household{}
	}
	writeJSON(w, http.StatusOK, households)
}
