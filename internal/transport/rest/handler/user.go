package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"quizclash/internal/service"
)

// UserHandler serves per-player history and aggregate stats
type UserHandler struct {
	statsSvc *service.StatsService
}

// NewUserHandler creates a new user handler
func NewUserHandler(statsSvc *service.StatsService) *UserHandler {
	return &UserHandler{statsSvc: statsSvc}
}

// Results handles GET /v1/users/{uid}/results
func (h *UserHandler) Results(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	results, err := h.statsSvc.ResultsForUser(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get results")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uid":     uid,
		"results": results,
	})
}

// Stats handles GET /v1/users/{uid}/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	stats, err := h.statsSvc.StatsForUser(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uid":   uid,
		"stats": stats,
	})
}
