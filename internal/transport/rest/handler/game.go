package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"quizclash/internal/cache"
	"quizclash/internal/service"
)

// GameHandler serves read-only game endpoints. Mutation happens over the
// WebSocket command surface.
type GameHandler struct {
	gameSvc     *service.GameService
	leaderboard cache.LeaderboardCache
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService, leaderboard cache.LeaderboardCache) *GameHandler {
	return &GameHandler{
		gameSvc:     gameSvc,
		leaderboard: leaderboard,
	}
}

// Get handles GET /v1/games/{code}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	summary, err := h.gameSvc.GetGame(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get game")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Leaderboard handles GET /v1/games/{code}/leaderboard
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	summary, err := h.gameSvc.GetGame(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get game")
		return
	}

	entries, err := h.leaderboard.GetTop(r.Context(), code, len(summary.Players))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}

	// The sorted set stores uids only; names come from the roster
	names := make(map[string]string, len(summary.Players))
	for _, p := range summary.Players {
		names[p.UID] = p.DisplayName
	}
	for i := range entries {
		entries[i].DisplayName = names[entries[i].UID]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gameCode":    code,
		"leaderboard": entries,
	})
}
