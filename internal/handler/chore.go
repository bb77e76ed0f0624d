package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/chorewheel/internal/auth"
	"github.com/dukerupert/chorewheel/internal/lifecycle"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/recurrence"
	"github.com/dukerupert/chorewheel/internal/store"
	"github.com/dukerupert/chorewheel/internal/websocket"
)

type ChoreHandler struct {
	chores    *store.ChoreStore
	lifecycle *lifecycle.Service
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, svc *lifecycle.Service, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: cs, lifecycle: svc, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(householdID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type choreRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedTo     *string    `json:"assigned_to"`
	DueDate        *time.Time `json:"due_date"`
	PointValue     int        `json:"point_value"`
	RecurrenceRule string     `json:"recurrence_rule"`
}

// validate checks the fields shared by create and update.
func (req *choreRequest) validate() (code, message string) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "missing_fields", "title is required"
	}
	if req.PointValue < 0 {
		return "invalid_point_value", "point value must not be negative"
	}
	if req.RecurrenceRule != "" {
		if _, err := recurrence.Parse(req.RecurrenceRule); err != nil {
			return "invalid_pattern", err.Error()
		}
	}
	return "", ""
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if code, msg := req.validate(); code != "" {
		writeError(w, http.StatusUnprocessableEntity, code, msg)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	var next *time.Time
	if req.RecurrenceRule != "" && req.DueDate != nil {
		n, err := recurrence.NextAfter(req.RecurrenceRule, *req.DueDate)
		if err == nil {
			next = n
		}
	}

	chore, err := h.chores.Create(r.Context(), &model.Chore{
		HouseholdID:    ac.HouseholdID,
		Title:          req.Title,
		Description:    req.Description,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      ac.UserID,
		DueDate:        req.DueDate,
		PointValue:     req.PointValue,
		RecurrenceRule: req.RecurrenceRule,
		NextOccurrence: next,
	})
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create chore")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("chore", "created", chore.ID, nil))
	writeJSON(w, http.StatusCreated, chore)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var filter store.ChoreFilter
	if v := r.URL.Query().Get("assigned_to"); v != "" {
		filter.AssignedTo = &v
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}

	chores, err := h.chores.ListByHousehold(r.Context(), ac.HouseholdID, filter)
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	chore, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	chore, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req choreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if code, msg := req.validate(); code != "" {
		writeError(w, http.StatusUnprocessableEntity, code, msg)
		return
	}

	chore.Title = req.Title
	chore.Description = req.Description
	chore.AssignedTo = req.AssignedTo
	chore.DueDate = req.DueDate
	chore.PointValue = req.PointValue
	chore.RecurrenceRule = req.RecurrenceRule

	if err := h.chores.Update(r.Context(), chore); err != nil {
		h.logger.Error("update chore", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to update chore")
		return
	}

	h.broadcast(chore.HouseholdID, websocket.NewMessage("chore", "updated", chore.ID, nil))
	writeJSON(w, http.StatusOK, chore)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	chore, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.chores.Delete(r.Context(), chore.ID, chore.HouseholdID); err != nil {
		h.logger.Error("delete chore", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete chore")
		return
	}

	h.broadcast(chore.HouseholdID, websocket.NewMessage("chore", "deleted", chore.ID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type completeRequest struct {
	SkipNext bool `json:"skip_next"`
}

// Complete runs the completion flow and maps lifecycle errors to the API's
// error codes. Post-completion failures still return the partial result so
// clients can show what did happen.
func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req completeRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	result, err := h.lifecycle.CompleteChore(r.Context(), idParam(r), ac.UserID, !req.SkipNext)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrChoreNotFound), errors.Is(err, lifecycle.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "not_found", err.Error())
		case errors.Is(err, lifecycle.ErrAlreadyCompleted):
			writeError(w, http.StatusConflict, "already_completed", err.Error())
		case errors.Is(err, recurrence.ErrInvalidPattern):
			writeError(w, http.StatusUnprocessableEntity, "invalid_pattern", err.Error())
		case errors.Is(err, lifecycle.ErrPointsCredit):
			h.logger.Error("complete chore points", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": "points_credit_failed", "result": result,
			})
		case errors.Is(err, lifecycle.ErrBadgeEvaluation):
			h.logger.Error("complete chore badges", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": "badge_evaluation_failed", "result": result,
			})
		default:
			h.logger.Error("complete chore", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "failed to complete chore")
		}
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("chore", "completed", result.Chore.ID, map[string]any{
		"points_awarded": result.PointsAwarded,
		"new_badges":     result.NewBadges,
	}))
	for _, key := range result.NewBadges {
		h.broadcast(ac.HouseholdID, websocket.NewMessage("badge", "earned", key, map[string]any{
			"user_id": ac.UserID,
		}))
	}
	if result.NextChore != nil {
		h.broadcast(ac.HouseholdID, websocket.NewMessage("chore", "created", result.NextChore.ID, nil))
	}

	writeJSON(w, http.StatusOK, result)
}

// PreviewNext computes the next due date for the chore's rule without
// completing it.
func (h *ChoreHandler) PreviewNext(w http.ResponseWriter, r *http.Request) {
	chore, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if !chore.IsRecurring() {
		writeJSON(w, http.StatusOK, map[string]any{"next": nil})
		return
	}

	anchor := chore.Anchor()
	if anchor == nil {
		now := time.Now().UTC()
		anchor = &now
	}
	next, err := h.lifecycle.PreviewNext(chore.RecurrenceRule, *anchor)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_pattern", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"next": next})
}

// loadOwned fetches the chore and checks it belongs to the caller's active
// household. Writes the error response itself when the chore is unavailable.
func (h *ChoreHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*model.Chore, bool) {
	chore, err := h.chores.Get(r.Context(), idParam(r))
	if err != nil {
		h.logger.Error("get chore", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load chore")
		return nil, false
	}
	if chore == nil || chore.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusNotFound, "not_found", "chore not found")
		return nil, false
	}
	return chore, true
}
