package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorewheel/internal/auth"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

type LeaderboardHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewLeaderboardHandler(us *store.UserStore, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{users: us, logger: logger}
}

type leaderboardEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Badges int    `json:"badges"`
}

// Get ranks household members by points. The period query parameter selects
// the counter: total (default), week, or month.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	users, err := h.users.ListByHousehold(r.Context(), householdID)
	if err != nil {
		h.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load leaderboard")
		return
	}

	period := r.URL.Query().Get("period")
	points := func(u *model.User) int {
		switch period {
		case "week":
			return u.WeeklyPoints
		case "month":
			return u.MonthlyPoints
		default:
			return u.TotalPoints
		}
	}

	entries := make([]leaderboardEntry, len(users))
	for i := range users {
		entries[i] = leaderboardEntry{
			UserID: users[i].ID,
			Name:   users[i].Name,
			Points: points(&users[i]),
			Badges: len(users[i].Badges),
		}
	}

	// ListByHousehold orders by total points; re-sort for period views.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Points > entries[j-1].Points; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	writeJSON(w, http.StatusOK, entries)
}
